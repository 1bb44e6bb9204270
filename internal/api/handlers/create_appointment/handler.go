package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC 3339 или YYYY-MM-DDTHH:MM"
	msgInvalidInput       = "некорректные данные записи"
	msgServiceNotFound    = "услуга не найдена"
	msgTrackBusy          = "дорожка занята другой записью, повторите запрос"
	msgOverlap            = "запись пересекается с другими записями, подтвердите создание"
)

type Handler struct {
	useCase  CreateAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var userID *int64
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, h.location)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput+": "+err.Error())

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: %v", err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrTrackBusy):
			h.logger.Warn("POST /appointments - Track busy: track=%s", req.Track)
			handlers.RespondConflict(w, msgTrackBusy)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: track=%s, error=%v", req.Track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Halted() {
		h.logger.Info("POST /appointments - Overlap confirmation required: track=%s, conflicts=%d",
			req.Track, len(result.Conflicts))
		handlers.RespondOverlap(w, msgOverlap, models.FromDomainConflicts(result.Conflicts))
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%s, track=%s",
		result.Appointment.ID, result.Appointment.Track)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result.Appointment))
}
