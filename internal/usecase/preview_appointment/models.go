package preview_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Request кандидат записи для предварительной проверки
type Request struct {
	Track      string     `validate:"required,oneof=male female"`
	StartTime  time.Time  // Время начала
	EndTime    *time.Time // Время окончания вручную (опционально)
	ServiceIDs []int64    `validate:"max=50,dive,gt=0"`
	ExcludeID  *uuid.UUID // Редактируемая запись
}

// Response рассчитанный интервал и пересечения
type Response struct {
	StartTime time.Time
	EndTime   time.Time
	Conflicts []domain.OverlapSummary
}
