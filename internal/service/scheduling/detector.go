package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Detector ищет пересечения записи с активными записями той же дорожки
type Detector struct {
	appointments AppointmentRepository
}

// NewDetector создает детектор пересечений
func NewDetector(appointments AppointmentRepository) *Detector {
	return &Detector{appointments: appointments}
}

// FindOverlaps возвращает записи дорожки track, пересекающиеся с интервалом [start, end]
// excludeID исключает саму редактируемую запись. Результат отсортирован по началу записи
func (d *Detector) FindOverlaps(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrack, track)
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	existing, err := d.appointments.FindByTrackExcluding(ctx, track, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlaps - find by track: %w", ErrInternal, err)
	}

	conflicts := make([]domain.OverlapSummary, 0)
	for _, e := range existing {
		// дублирует фильтр хранилища по excludeID
		if excludeID != nil && e.AppointmentID == *excludeID {
			continue
		}
		if Overlaps(e.StartTime, e.EndTime, start, end) {
			conflicts = append(conflicts, e)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})

	return conflicts, nil
}

// Overlaps проверяет пересечение существующей записи [existingStart, existingEnd]
// с кандидатом [start, end]. Достаточно выполнения любого из условий:
//
//  1. existingStart <= start && existingEnd > start  - начало кандидата внутри существующей
//  2. existingStart < end && existingEnd >= end      - конец кандидата внутри существующей
//  3. existingStart >= start && existingEnd <= end   - существующая внутри кандидата
//  4. existingStart <= start && existingEnd >= end   - кандидат внутри существующей
//
// Строгие сравнения в 1 и 2 разрешают записи встык: конец одной равен началу другой
func Overlaps(existingStart, existingEnd, start, end time.Time) bool {
	startInside := !existingStart.After(start) && existingEnd.After(start)
	endInside := existingStart.Before(end) && !existingEnd.Before(end)
	existingContained := !existingStart.Before(start) && !existingEnd.After(end)
	candidateContained := !existingStart.After(start) && !existingEnd.Before(end)

	return startInside || endInside || existingContained || candidateContained
}
