package preview_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	previewAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/preview_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные параметры: время или ID записи"
	msgInvalidInput       = "некорректные данные записи"
)

type Handler struct {
	useCase  PreviewAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase PreviewAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/appointments/preview
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/preview - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(h.location)
	if err != nil {
		h.logger.Warn("POST /appointments/preview - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, previewAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments/preview - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput+": "+err.Error())

		default:
			h.logger.Error("POST /appointments/preview - Failed to preview appointment: track=%s, error=%v", req.Track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/preview - Preview computed: track=%s, conflicts=%d", req.Track, len(result.Conflicts))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
