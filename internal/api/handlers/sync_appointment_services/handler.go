package sync_appointment_services

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	syncServices "github.com/m04kA/SMC-SalonBooking/internal/usecase/sync_services"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректный список услуг"
	msgNotFound             = "запись не найдена"
	msgCancelled            = "отменённую запись нельзя редактировать"
	msgServiceNotFound      = "услуга не найдена"
)

type Handler struct {
	useCase SyncServicesUseCase
	logger  Logger
}

func NewHandler(useCase SyncServicesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/appointments/{id}/services
// Заменяет набор услуг и пересчитывает окончание; пересечения возвращаются в warnings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.logger.Warn("PUT /appointments/{id}/services - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req SyncServicesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id}/services - Invalid request body: appointment_id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &syncServices.Request{
		AppointmentID: id,
		ServiceIDs:    req.ServiceIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, syncServices.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/{id}/services - Invalid input: appointment_id=%s, error=%v", id, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, syncServices.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/{id}/services - Appointment not found: appointment_id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, syncServices.ErrServiceNotFound):
			h.logger.Warn("PUT /appointments/{id}/services - Service not found: appointment_id=%s, error=%v", id, err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, syncServices.ErrAppointmentCancelled):
			h.logger.Warn("PUT /appointments/{id}/services - Appointment cancelled: appointment_id=%s", id)
			handlers.RespondConflict(w, msgCancelled)

		default:
			h.logger.Error("PUT /appointments/{id}/services - Failed to sync services: appointment_id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /appointments/{id}/services - Services synced successfully: appointment_id=%s, services=%d, warnings=%d",
		id, len(result.ServiceIDs), len(result.Warnings))
	handlers.RespondJSON(w, http.StatusOK, fromUseCaseResponse(result))
}
