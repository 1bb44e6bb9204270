package sync_services

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Request новый набор услуг записи
type Request struct {
	AppointmentID uuid.UUID
	ServiceIDs    []int64
}

// Response результат синхронизации
// Warnings - пересечения с новым интервалом, сохранение они не блокируют
type Response struct {
	AppointmentID uuid.UUID
	ServiceIDs    []int64
	EndTime       time.Time
	EndTimeManual bool
	Warnings      []domain.OverlapSummary
}
