package preview_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// EndTimeResolver вычисляет время окончания записи
type EndTimeResolver interface {
	ResolveEndTime(ctx context.Context, start time.Time, serviceIDs []int64, explicitEnd *time.Time) (time.Time, error)
}

// OverlapDetector ищет пересечения на дорожке
type OverlapDetector interface {
	FindOverlaps(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
