package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

type mockAppointmentRepo struct {
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	listFunc         func(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	getByUserIDFunc  func(ctx context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error
	cancelFunc       func(ctx context.Context, id uuid.UUID, reason *string, cancelledAt time.Time) error
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockAppointmentRepo) GetByUserID(ctx context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	return m.getByUserIDFunc(ctx, userID, status)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockAppointmentRepo) Cancel(ctx context.Context, id uuid.UUID, reason *string, cancelledAt time.Time) error {
	return m.cancelFunc(ctx, id, reason, cancelledAt)
}

type mockDetector struct {
	findFunc func(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error)
}

func (m *mockDetector) FindOverlaps(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	return m.findFunc(ctx, track, start, end, excludeID)
}

type recordingNotifier struct {
	confirmed []*domain.Appointment
	cancelled []*domain.Appointment
}

func (n *recordingNotifier) NotifyConfirmed(_ context.Context, a *domain.Appointment) {
	n.confirmed = append(n.confirmed, a)
}

func (n *recordingNotifier) NotifyCancelled(_ context.Context, a *domain.Appointment) {
	n.cancelled = append(n.cancelled, a)
}

type txModeKey struct{}

// recordingTx выполняет fn сразу, помечая контекст режимом транзакции
type recordingTx struct {
	writes   int
	readOnly int
	err      error
}

func (m *recordingTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.writes++
	if m.err != nil {
		return m.err
	}
	return fn(context.WithValue(ctx, txModeKey{}, "rw"))
}

func (m *recordingTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.readOnly++
	if m.err != nil {
		return m.err
	}
	return fn(context.WithValue(ctx, txModeKey{}, "ro"))
}

func txMode(ctx context.Context) string {
	mode, _ := ctx.Value(txModeKey{}).(string)
	return mode
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

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func newAppointment(status domain.AppointmentStatus) *domain.Appointment {
	end := at(11, 0)
	return &domain.Appointment{
		ID:           uuid.New(),
		CustomerName: "Anna",
		Track:        domain.TrackFemale,
		StartTime:    at(10, 0),
		EndTime:      &end,
		Status:       status,
	}
}
