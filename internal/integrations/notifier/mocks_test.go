package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (l *recordingLogger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warn(string, ...interface{}) {}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

type fakePublisher struct {
	mu          sync.Mutex
	events      []Event
	err         error
	hasDeadline bool
}

func (p *fakePublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, p.hasDeadline = ctx.Deadline()
	p.events = append(p.events, event)
	return p.err
}

type fakeMetrics struct {
	mu     sync.Mutex
	failed map[string]int
}

func (m *fakeMetrics) IncNotificationFailed(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed == nil {
		m.failed = make(map[string]int)
	}
	m.failed[event]++
}

func sampleAppointment() *domain.Appointment {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	return &domain.Appointment{
		ID:            uuid.MustParse("2f1b6c1e-7d5a-4d7e-9a53-3d2f5a0c9b11"),
		CustomerName:  "Anna",
		CustomerEmail: "anna@example.com",
		CustomerPhone: "+70000000000",
		Track:         domain.TrackFemale,
		StartTime:     start,
		EndTime:       &end,
		Status:        domain.StatusPending,
	}
}
