package preview_appointment

import (
	"context"

	previewAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/preview_appointment"
)

type PreviewAppointmentUseCase interface {
	Execute(ctx context.Context, req *previewAppointment.Request) (*previewAppointment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
