package sync_appointment_services

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	syncServices "github.com/m04kA/SMC-SalonBooking/internal/usecase/sync_services"
)

// SyncServicesRequest HTTP request model
type SyncServicesRequest struct {
	ServiceIDs []int64 `json:"serviceIds"`
}

// SyncServicesResponse HTTP response model
type SyncServicesResponse struct {
	AppointmentID string                    `json:"appointmentId"`
	ServiceIDs    []int64                   `json:"serviceIds"`
	EndTime       time.Time                 `json:"endTime"`
	EndTimeManual bool                      `json:"endTimeManual"`
	Warnings      []models.ConflictResponse `json:"warnings"`
}

func fromUseCaseResponse(resp *syncServices.Response) *SyncServicesResponse {
	serviceIDs := resp.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}

	return &SyncServicesResponse{
		AppointmentID: resp.AppointmentID.String(),
		ServiceIDs:    serviceIDs,
		EndTime:       resp.EndTime,
		EndTimeManual: resp.EndTimeManual,
		Warnings:      models.FromDomainConflicts(resp.Warnings),
	}
}
