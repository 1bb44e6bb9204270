package preview_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
	"github.com/m04kA/SMC-SalonBooking/pkg/validation"
)

var validate = validation.New()

// UseCase use case предварительной проверки записи
type UseCase struct {
	resolver EndTimeResolver
	detector OverlapDetector
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(resolver EndTimeResolver, detector OverlapDetector, logger Logger) *UseCase {
	return &UseCase{
		resolver: resolver,
		detector: detector,
		logger:   logger,
	}
}

// Execute вычисляет окончание и ищет пересечения, ничего не сохраняя
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PreviewAppointment: track=%s, start=%s, services=%v",
		req.Track, req.StartTime.Format("2006-01-02T15:04"), req.ServiceIDs)

	// 1. Валидация входных данных
	if err := validate.Struct(req); err != nil {
		uc.logger.Warn("PreviewAppointment: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// 2. Вычисляем время окончания
	end, err := uc.resolver.ResolveEndTime(ctx, req.StartTime, req.ServiceIDs, req.EndTime)
	if err != nil {
		if errors.Is(err, scheduling.ErrEndBeforeStart) {
			uc.logger.Warn("PreviewAppointment: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("PreviewAppointment: failed to resolve end time: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve end time: %v", ErrInternal, err)
	}

	// 3. Ищем пересечения
	conflicts, err := uc.detector.FindOverlaps(ctx, domain.Track(req.Track), req.StartTime, end, req.ExcludeID)
	if err != nil {
		uc.logger.Error("PreviewAppointment: failed to find overlaps: %v", err)
		return nil, fmt.Errorf("%w: failed to find overlaps: %v", ErrInternal, err)
	}

	uc.logger.Info("PreviewAppointment: end=%s, conflicts=%d", end.Format("2006-01-02T15:04"), len(conflicts))

	return &Response{
		StartTime: req.StartTime,
		EndTime:   end,
		Conflicts: conflicts,
	}, nil
}
