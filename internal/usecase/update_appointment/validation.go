package update_appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/pkg/validation"
)

var validate = validation.New()

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for field, value := range map[string]*string{
		"customerName":  req.CustomerName,
		"customerEmail": req.CustomerEmail,
		"customerPhone": req.CustomerPhone,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field)
		}
	}

	if req.StartTime != nil && req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime must not be zero", ErrInvalidInput)
	}

	if req.EndTime != nil && req.ClearEndTime {
		return fmt.Errorf("%w: endTime and clearEndTime are mutually exclusive", ErrInvalidInput)
	}

	if req.ServiceIDs != nil {
		for _, id := range *req.ServiceIDs {
			if id <= 0 {
				return fmt.Errorf("%w: invalid service id=%d", ErrInvalidInput, id)
			}
		}
	}

	if req.Products != nil {
		seen := make(map[int64]struct{}, len(*req.Products))
		for _, p := range *req.Products {
			if err := validate.Struct(p); err != nil {
				return fmt.Errorf("%w: product id=%d: %v", ErrInvalidInput, p.ProductID, err)
			}
			if _, ok := seen[p.ProductID]; ok {
				return fmt.Errorf("%w: duplicate product id=%d", ErrInvalidInput, p.ProductID)
			}
			seen[p.ProductID] = struct{}{}
		}
	}

	return nil
}

// ensureServicesExist проверяет, что все услуги существуют и активны
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
