package sync_appointment_services

import (
	"context"

	syncServices "github.com/m04kA/SMC-SalonBooking/internal/usecase/sync_services"
)

type SyncServicesUseCase interface {
	Execute(ctx context.Context, req *syncServices.Request) (*syncServices.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
