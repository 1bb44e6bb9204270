package create_appointment

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/pkg/validation"
)

var validate = validation.New()

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return fmt.Errorf("%w: endTime must not be before startTime", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(req.Products))
	for _, p := range req.Products {
		if _, ok := seen[p.ProductID]; ok {
			return fmt.Errorf("%w: duplicate product id=%d", ErrInvalidInput, p.ProductID)
		}
		seen[p.ProductID] = struct{}{}
	}

	return nil
}

// ensureServicesExist проверяет, что все услуги существуют и активны
// Прикрепление услуги к записи требует её наличия, в отличие от расчёта длительности
func ensureServicesExist(ctx context.Context, repo ServiceRepository, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	services, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	active := make(map[int64]struct{}, len(services))
	for _, s := range services {
		if s.IsActive {
			active[s.ID] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := active[id]; !ok {
			return fmt.Errorf("%w: id=%d", ErrServiceNotFound, id)
		}
	}

	return nil
}
