package update_appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

type fixture struct {
	store    *memoryStore
	locker   *fakeLocker
	notifier *fakeNotifier
	metrics  *fakeMetrics
	uc       *UseCase
}

func newFixture() *fixture {
	store := newMemoryStore()
	calc := scheduling.NewCalculator(store)

	f := &fixture{
		store:    store,
		locker:   &fakeLocker{},
		notifier: &fakeNotifier{},
		metrics:  &fakeMetrics{},
	}
	f.uc = NewUseCase(
		store,
		store,
		scheduling.NewResolver(calc),
		scheduling.NewDetector(store),
		f.locker,
		f.notifier,
		f.metrics,
		passthroughTx{},
		nopLogger{},
	)
	f.uc.timeProvider = fixedClock{now: at(8, 0)}
	return f
}

func (f *fixture) seed(track domain.Track, status domain.AppointmentStatus, start, end time.Time, serviceIDs ...int64) *domain.Appointment {
	a := &domain.Appointment{
		ID:            uuid.New(),
		CustomerName:  "Existing",
		CustomerEmail: "existing@example.com",
		CustomerPhone: "+70000000000",
		Track:         track,
		StartTime:     start,
		EndTime:       &end,
		Status:        status,
		ServiceIDs:    serviceIDs,
	}
	f.store.put(a)
	return a
}

func TestExecute_SelfExclusion(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackMale, domain.StatusConfirmed, at(10, 0), at(11, 0))

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, Remarks: ptr.Ptr("window seat")})
	require.NoError(t, err)

	require.NotNil(t, resp.Appointment)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "window seat", *f.store.appointments[a.ID].Remarks)
	assert.Equal(t, at(11, 0), *f.store.appointments[a.ID].EndTime)
	assert.Equal(t, 0, f.metrics.halts)
}

func TestExecute_HaltsOnOverlapWithOther(t *testing.T) {
	f := newFixture()
	other := f.seed(domain.TrackMale, domain.StatusPending, at(12, 0), at(13, 0))
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(10, 30), 1)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, StartTime: atPtr(12, 15)})
	require.NoError(t, err)

	assert.True(t, resp.Halted())
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, other.ID, resp.Conflicts[0].AppointmentID)
	assert.Equal(t, 0, f.store.updates)
	assert.Equal(t, at(10, 0), f.store.appointments[a.ID].StartTime)
	assert.Equal(t, 1, f.metrics.halts)
}

func TestExecute_OverrideSavesDespiteOverlap(t *testing.T) {
	f := newFixture()
	f.seed(domain.TrackMale, domain.StatusPending, at(12, 0), at(13, 0))
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(10, 30), 1)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ID:               a.ID,
		StartTime:        atPtr(12, 15),
		OverlapConfirmed: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Appointment)
	assert.Equal(t, at(12, 15), resp.Appointment.StartTime)
	assert.Equal(t, at(12, 45), *resp.Appointment.EndTime)
	assert.Equal(t, 1, f.store.updates)
}

func TestExecute_StartChangeReResolvesEnd(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackFemale, domain.StatusPending, at(10, 0), at(10, 30), 1)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, StartTime: atPtr(14, 0)})
	require.NoError(t, err)

	assert.Equal(t, at(14, 30), *resp.Appointment.EndTime)
	assert.False(t, resp.Appointment.EndTimeManual)
}

func TestExecute_ServicesChangeReResolvesEnd(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackFemale, domain.StatusPending, at(10, 0), at(10, 30), 1)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, ServiceIDs: &[]int64{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, at(12, 0), *resp.Appointment.EndTime)
	assert.Equal(t, []int64{1, 2}, f.store.appointments[a.ID].ServiceIDs)
	assert.Equal(t, 1, f.store.replacedServices)
}

func TestExecute_ManualEndSurvivesServiceChange(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackFemale, domain.StatusPending, at(10, 0), at(10, 45), 1)
	f.store.appointments[a.ID].EndTimeManual = true

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, ServiceIDs: &[]int64{2}})
	require.NoError(t, err)

	assert.Equal(t, at(10, 45), *resp.Appointment.EndTime)
	assert.True(t, resp.Appointment.EndTimeManual)
}

func TestExecute_ClearEndTimeReturnsToAuto(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackFemale, domain.StatusPending, at(10, 0), at(10, 45), 2)
	f.store.appointments[a.ID].EndTimeManual = true

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, ClearEndTime: true})
	require.NoError(t, err)

	assert.Equal(t, at(11, 30), *resp.Appointment.EndTime)
	assert.False(t, resp.Appointment.EndTimeManual)
}

func TestExecute_ExplicitEnd(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackFemale, domain.StatusPending, at(10, 0), at(10, 30), 1)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, EndTime: atPtr(11, 15)})
	require.NoError(t, err)

	assert.Equal(t, at(11, 15), *resp.Appointment.EndTime)
	assert.True(t, resp.Appointment.EndTimeManual)
}

func TestExecute_TrackChangeLocksTargetTrack(t *testing.T) {
	f := newFixture()
	f.seed(domain.TrackFemale, domain.StatusConfirmed, at(10, 0), at(11, 0))
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(11, 0))

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, Track: ptr.Ptr("female")})
	require.NoError(t, err)

	assert.True(t, resp.Halted())
	assert.Equal(t, []domain.Track{domain.TrackFemale}, f.locker.acquired)
}

func TestExecute_ConfirmThroughEditNotifies(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(11, 0))

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)
	assert.Equal(t, []uuid.UUID{a.ID}, f.notifier.confirmed)
	assert.Empty(t, f.notifier.cancelled)
}

func TestExecute_CancelThroughEditSkipsDetection(t *testing.T) {
	f := newFixture()
	f.seed(domain.TrackMale, domain.StatusConfirmed, at(10, 0), at(11, 0))
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(11, 0))

	resp, err := f.uc.Execute(context.Background(), &Request{
		ID:                 a.ID,
		Status:             ptr.Ptr("cancelled"),
		CancellationReason: ptr.Ptr("client called"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Appointment)
	assert.Equal(t, domain.StatusCancelled, resp.Appointment.Status)
	assert.Equal(t, at(8, 0), *resp.Appointment.CancelledAt)
	assert.Equal(t, "client called", *resp.Appointment.CancellationReason)
	assert.Equal(t, []uuid.UUID{a.ID}, f.notifier.cancelled)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture, id uuid.UUID) *Request
		wantErr error
	}{
		{
			name: "not found",
			prepare: func(_ *fixture, _ uuid.UUID) *Request {
				return &Request{ID: uuid.New()}
			},
			wantErr: ErrAppointmentNotFound,
		},
		{
			name: "cancelled",
			prepare: func(f *fixture, id uuid.UUID) *Request {
				f.store.appointments[id].Status = domain.StatusCancelled
				return &Request{ID: id, Remarks: ptr.Ptr("x")}
			},
			wantErr: ErrAppointmentCancelled,
		},
		{
			name: "confirmed back to pending",
			prepare: func(f *fixture, id uuid.UUID) *Request {
				f.store.appointments[id].Status = domain.StatusConfirmed
				return &Request{ID: id, Status: ptr.Ptr("pending")}
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "end before start",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, EndTime: atPtr(9, 0)}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "end and clear together",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, EndTime: atPtr(11, 0), ClearEndTime: true}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "empty customer name",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, CustomerName: ptr.Ptr("  ")}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown track",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, Track: ptr.Ptr("kids")}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "inactive service",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, ServiceIDs: &[]int64{3}}
			},
			wantErr: ErrServiceNotFound,
		},
		{
			name: "duplicate product",
			prepare: func(_ *fixture, id uuid.UUID) *Request {
				return &Request{ID: id, Products: &[]ProductItem{{ProductID: 5, Quantity: 1}, {ProductID: 5, Quantity: 1}}}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "track busy",
			prepare: func(f *fixture, id uuid.UUID) *Request {
				f.locker.err = lock.ErrLockTimeout
				return &Request{ID: id, Remarks: ptr.Ptr("x")}
			},
			wantErr: ErrTrackBusy,
		},
		{
			name: "store failure",
			prepare: func(f *fixture, id uuid.UUID) *Request {
				f.store.getErr = errStore
				return &Request{ID: id}
			},
			wantErr: ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(11, 0))

			resp, err := f.uc.Execute(context.Background(), tt.prepare(f, a.ID))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			assert.Equal(t, 0, f.store.updates)
		})
	}
}

func TestExecute_SerializationRetriesExhausted(t *testing.T) {
	f := newFixture()
	a := f.seed(domain.TrackMale, domain.StatusPending, at(10, 0), at(11, 0))
	f.uc.txManager = failingTx{err: fmt.Errorf("%w: %v", txmanager.ErrSerialization, "could not serialize access")}

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, StartTime: atPtr(12, 0)})

	assert.ErrorIs(t, err, ErrTrackBusy)
	assert.Nil(t, resp)
}
