package create_appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
)

// memoryStore хранилище записей и услуг в памяти
type memoryStore struct {
	appointments []*domain.Appointment
	services     map[int64]*domain.Service
	createErr    error
}

func (s *memoryStore) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.appointments = append(s.appointments, a)
	return a, nil
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

type passthroughTx struct {
	calls int
	err   error
}

func (tx *passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	if tx.err != nil {
		return tx.err
	}
	return fn(ctx)
}

type fakeLocker struct {
	err      error
	acquired []domain.Track
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, track domain.Track) (lock.Release, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, track)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	created []*domain.Appointment
}

func (n *fakeNotifier) NotifyCreated(_ context.Context, a *domain.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, a)
}

type fakeMetrics struct {
	created int
	halts   map[string]int
}

func (m *fakeMetrics) IncAppointmentCreated(string, bool) {
	m.created++
}

func (m *fakeMetrics) IncOverlapHalt(flow string) {
	if m.halts == nil {
		m.halts = make(map[string]int)
	}
	m.halts[flow]++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}
