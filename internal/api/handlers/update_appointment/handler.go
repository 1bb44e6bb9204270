package update_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	updateAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/update_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTime          = "некорректный формат времени, ожидается RFC 3339 или YYYY-MM-DDTHH:MM"
	msgInvalidInput         = "некорректные данные записи"
	msgNotFound             = "запись не найдена"
	msgCancelled            = "отменённую запись нельзя редактировать"
	msgInvalidTransition    = "недопустимая смена статуса"
	msgServiceNotFound      = "услуга не найдена"
	msgTrackBusy            = "дорожка занята другой записью, повторите запрос"
	msgOverlap              = "изменённая запись пересекается с другими записями, подтвердите изменение"
)

type Handler struct {
	useCase  UpdateAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase UpdateAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle PUT /api/v1/appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req UpdateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid request body: appointment_id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id, h.location)
	if err != nil {
		h.logger.Warn("PUT /appointments/{id} - Failed to parse request: appointment_id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, updateAppointment.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/{id} - Invalid input: appointment_id=%s, error=%v", id, err)
			handlers.RespondBadRequest(w, msgInvalidInput+": "+err.Error())

		case errors.Is(err, updateAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/{id} - Appointment not found: appointment_id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateAppointment.ErrServiceNotFound):
			h.logger.Warn("PUT /appointments/{id} - Service not found: appointment_id=%s, error=%v", id, err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, updateAppointment.ErrAppointmentCancelled):
			h.logger.Warn("PUT /appointments/{id} - Appointment cancelled: appointment_id=%s", id)
			handlers.RespondConflict(w, msgCancelled)

		case errors.Is(err, updateAppointment.ErrInvalidTransition):
			h.logger.Warn("PUT /appointments/{id} - Invalid transition: appointment_id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, updateAppointment.ErrTrackBusy):
			h.logger.Warn("PUT /appointments/{id} - Track busy: appointment_id=%s", id)
			handlers.RespondConflict(w, msgTrackBusy)

		default:
			h.logger.Error("PUT /appointments/{id} - Failed to update appointment: appointment_id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Halted() {
		h.logger.Info("PUT /appointments/{id} - Overlap confirmation required: appointment_id=%s, conflicts=%d",
			id, len(result.Conflicts))
		handlers.RespondOverlap(w, msgOverlap, models.FromDomainConflicts(result.Conflicts))
		return
	}

	h.logger.Info("PUT /appointments/{id} - Appointment updated successfully: appointment_id=%s, status=%s",
		id, result.Appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result.Appointment))
}
