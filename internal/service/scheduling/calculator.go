package scheduling

import (
	"context"
	"fmt"
)

// Calculator считает суммарную длительность услуг
type Calculator struct {
	services ServiceRepository
}

// NewCalculator создает калькулятор длительности
func NewCalculator(services ServiceRepository) *Calculator {
	return &Calculator{services: services}
}

// TotalDuration возвращает суммарную длительность услуг в минутах
// Идентификаторы рассматриваются как множество, неизвестные услуги дают 0
func (c *Calculator) TotalDuration(ctx context.Context, serviceIDs []int64) (int, error) {
	ids := UniqueIDs(serviceIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	services, err := c.services.GetByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: TotalDuration - get services: %w", ErrInternal, err)
	}

	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}

	return total, nil
}

// UniqueIDs убирает повторы, сохраняя порядок первого появления
func UniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
