package domain

import (
	"time"

	"github.com/google/uuid"
)

// OverlapSummary краткая информация о пересекающейся записи
// Достаточна для показа оператору без загрузки записи целиком
type OverlapSummary struct {
	AppointmentID uuid.UUID
	CustomerName  string
	StartTime     time.Time
	EndTime       time.Time
}
