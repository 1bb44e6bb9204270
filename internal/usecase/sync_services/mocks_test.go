package sync_services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
)

// memoryStore хранилище записей и услуг в памяти
type memoryStore struct {
	appointments map[uuid.UUID]*domain.Appointment
	services     map[int64]*domain.Service

	replaceErr error
	findErr    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		appointments: make(map[uuid.UUID]*domain.Appointment),
		services: map[int64]*domain.Service{
			1: {ID: 1, Name: "Haircut", DurationMinutes: 30, IsActive: true},
			2: {ID: 2, Name: "Beard", DurationMinutes: 15, IsActive: true},
			3: {ID: 3, Name: "Archived", DurationMinutes: 60, IsActive: false},
		},
	}
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *memoryStore) ReplaceServices(_ context.Context, id uuid.UUID, serviceIDs []int64) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.appointments[id].ServiceIDs = serviceIDs
	return nil
}

func (s *memoryStore) UpdateEndTime(_ context.Context, id uuid.UUID, endTime time.Time, manual bool) error {
	s.appointments[id].EndTime = &endTime
	s.appointments[id].EndTimeManual = manual
	return nil
}

func (s *memoryStore) GetByIDs(_ context.Context, ids []int64) ([]*domain.Service, error) {
	result := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := s.services[id]; ok {
			result = append(result, svc)
		}
	}
	return result, nil
}

func (s *memoryStore) FindByTrackExcluding(_ context.Context, track domain.Track, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	result := make([]domain.OverlapSummary, 0)
	for _, a := range s.appointments {
		if a.Track != track || a.IsCancelled() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		start, end := a.Interval()
		result = append(result, domain.OverlapSummary{
			AppointmentID: a.ID,
			CustomerName:  a.CustomerName,
			StartTime:     start,
			EndTime:       end,
		})
	}
	return result, nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var errStore = errors.New("db down")

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}
