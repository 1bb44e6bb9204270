package scheduling

import (
	"context"
	"time"
)

// Resolver вычисляет время окончания записи
type Resolver struct {
	calculator *Calculator
}

// NewResolver создает резолвер времени окончания
func NewResolver(calculator *Calculator) *Resolver {
	return &Resolver{calculator: calculator}
}

// ResolveEndTime возвращает время окончания записи
//
// Правила:
// 1. explicitEnd задан - возвращается без изменений (не раньше start)
// 2. иначе start + суммарная длительность услуг
// 3. суммарная длительность 0 - запись нулевой длины, end == start
//
// Одинаковые входные данные всегда дают одинаковый результат
func (r *Resolver) ResolveEndTime(ctx context.Context, start time.Time, serviceIDs []int64, explicitEnd *time.Time) (time.Time, error) {
	if explicitEnd != nil {
		if explicitEnd.Before(start) {
			return time.Time{}, ErrEndBeforeStart
		}
		return *explicitEnd, nil
	}

	total, err := r.calculator.TotalDuration(ctx, serviceIDs)
	if err != nil {
		return time.Time{}, err
	}

	if total <= 0 {
		return start, nil
	}

	return start.Add(time.Duration(total) * time.Minute), nil
}
