package create_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
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

// TrackLocker блокировка дорожки на время проверки и сохранения
type TrackLocker interface {
	Acquire(ctx context.Context, track domain.Track) (lock.Release, error)
}

// Notifier уведомления о записях (fire-and-forget)
type Notifier interface {
	NotifyCreated(ctx context.Context, appointment *domain.Appointment)
}

// MetricsRecorder доменные метрики
type MetricsRecorder interface {
	IncAppointmentCreated(track string, overlapConfirmed bool)
	IncOverlapHalt(flow string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
