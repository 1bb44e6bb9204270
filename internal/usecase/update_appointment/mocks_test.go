package update_appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
)

// memoryStore хранилище записей и услуг в памяти
type memoryStore struct {
	appointments map[uuid.UUID]*domain.Appointment
	services     map[int64]*domain.Service

	getErr           error
	updates          int
	replacedServices int
	replacedProducts int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		appointments: make(map[uuid.UUID]*domain.Appointment),
		services: map[int64]*domain.Service{
			1: {ID: 1, Name: "Haircut", DurationMinutes: 30, IsActive: true},
			2: {ID: 2, Name: "Colouring", DurationMinutes: 90, IsActive: true},
			3: {ID: 3, Name: "Archived", DurationMinutes: 60, IsActive: false},
		},
	}
}

func (s *memoryStore) put(a *domain.Appointment) {
	copied := *a
	s.appointments[a.ID] = &copied
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *memoryStore) Update(_ context.Context, a *domain.Appointment) error {
	stored, ok := s.appointments[a.ID]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	services, products := stored.ServiceIDs, stored.Products
	s.put(a)
	s.appointments[a.ID].ServiceIDs = services
	s.appointments[a.ID].Products = products
	s.updates++
	return nil
}

func (s *memoryStore) ReplaceServices(_ context.Context, id uuid.UUID, serviceIDs []int64) error {
	s.appointments[id].ServiceIDs = serviceIDs
	s.replacedServices++
	return nil
}

func (s *memoryStore) ReplaceProducts(_ context.Context, id uuid.UUID, products []domain.ProductItem) error {
	s.appointments[id].Products = products
	s.replacedProducts++
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

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLocker struct {
	err      error
	acquired []domain.Track
}

func (l *fakeLocker) Acquire(_ context.Context, track domain.Track) (lock.Release, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, track)
	return func(context.Context) error { return nil }, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
	cancelled []uuid.UUID
}

func (n *fakeNotifier) NotifyConfirmed(_ context.Context, a *domain.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, a.ID)
}

func (n *fakeNotifier) NotifyCancelled(_ context.Context, a *domain.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, a.ID)
}

type fakeMetrics struct {
	halts int
}

func (m *fakeMetrics) IncOverlapHalt(string) {
	m.halts++
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var errStore = errors.New("db down")

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func atPtr(hour, minute int) *time.Time {
	t := at(hour, minute)
	return &t
}

type failingTx struct {
	err error
}

func (tx failingTx) DoSerializable(context.Context, func(ctx context.Context) error) error {
	return tx.err
}
