package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// ServiceRepository источник длительностей услуг
type ServiceRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error)
}

// AppointmentRepository источник активных записей дорожки
// FindByTrackExcluding возвращает записи со статусом != cancelled, отсортированные по началу,
// время окончания NULL заменяется временем начала
type AppointmentRepository interface {
	FindByTrackExcluding(ctx context.Context, track domain.Track, excludeID *uuid.UUID) ([]domain.OverlapSummary, error)
}
