package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

type fakeServiceRepo struct {
	durations map[int64]int
	calls     int
	lastIDs   []int64
	err       error
}

func (f *fakeServiceRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Service, error) {
	f.calls++
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}

	result := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		if d, ok := f.durations[id]; ok {
			result = append(result, &domain.Service{ID: id, DurationMinutes: d, IsActive: true})
		}
	}
	return result, nil
}

type storedAppointment struct {
	id     uuid.UUID
	name   string
	track  domain.Track
	status domain.AppointmentStatus
	start  time.Time
	end    *time.Time
}

// fakeAppointmentRepo повторяет фильтрацию, которую делает SQL запрос хранилища
type fakeAppointmentRepo struct {
	items []storedAppointment
	err   error
}

func (f *fakeAppointmentRepo) FindByTrackExcluding(_ context.Context, track domain.Track, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	if f.err != nil {
		return nil, f.err
	}

	result := make([]domain.OverlapSummary, 0)
	for _, a := range f.items {
		if a.track != track || a.status == domain.StatusCancelled {
			continue
		}
		if excludeID != nil && a.id == *excludeID {
			continue
		}
		end := a.start
		if a.end != nil {
			end = *a.end
		}
		result = append(result, domain.OverlapSummary{
			AppointmentID: a.id,
			CustomerName:  a.name,
			StartTime:     a.start,
			EndTime:       end,
		})
	}
	return result, nil
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func atPtr(hour, minute int) *time.Time {
	t := at(hour, minute)
	return &t
}
