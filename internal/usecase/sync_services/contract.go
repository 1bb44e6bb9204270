package sync_services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	ReplaceServices(ctx context.Context, id uuid.UUID, serviceIDs []int64) error
	UpdateEndTime(ctx context.Context, id uuid.UUID, endTime time.Time, manual bool) error
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error)
}

// EndTimeResolver вычисляет время окончания записи
type EndTimeResolver interface {
	ResolveEndTime(ctx context.Context, start time.Time, serviceIDs []int64, explicitEnd *time.Time) (time.Time, error)
}

// OverlapDetector ищет пересечения на дорожке
type OverlapDetector interface {
	FindOverlaps(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
