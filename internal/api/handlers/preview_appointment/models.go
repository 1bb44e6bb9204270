package preview_appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	previewAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/preview_appointment"
)

// PreviewRequest HTTP request model
type PreviewRequest struct {
	Track      string  `json:"track"`
	StartTime  string  `json:"startTime"`
	EndTime    *string `json:"endTime,omitempty"`
	ServiceIDs []int64 `json:"serviceIds"`
	ExcludeID  *string `json:"excludeId,omitempty"` // ID редактируемой записи
}

// PreviewResponse HTTP response model
type PreviewResponse struct {
	StartTime time.Time                 `json:"startTime"`
	EndTime   time.Time                 `json:"endTime"`
	Conflicts []models.ConflictResponse `json:"conflicts"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *PreviewRequest) ToUseCaseRequest(loc *time.Location) (*previewAppointment.Request, error) {
	startTime, err := handlers.ParseTimestamp(r.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	endTime, err := handlers.ParseOptionalTimestamp(r.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	var excludeID *uuid.UUID
	if r.ExcludeID != nil && *r.ExcludeID != "" {
		id, err := uuid.Parse(*r.ExcludeID)
		if err != nil {
			return nil, fmt.Errorf("excludeId: %w", err)
		}
		excludeID = &id
	}

	return &previewAppointment.Request{
		Track:      r.Track,
		StartTime:  startTime,
		EndTime:    endTime,
		ServiceIDs: r.ServiceIDs,
		ExcludeID:  excludeID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *previewAppointment.Response) *PreviewResponse {
	return &PreviewResponse{
		StartTime: resp.StartTime,
		EndTime:   resp.EndTime,
		Conflicts: models.FromDomainConflicts(resp.Conflicts),
	}
}
