package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

func TestOverlaps_Clauses(t *testing.T) {
	tests := []struct {
		name           string
		existingStart  time.Time
		existingEnd    time.Time
		candidateStart time.Time
		candidateEnd   time.Time
		want           bool
	}{
		{"candidate starts inside existing", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"candidate ends inside existing", at(10, 0), at(11, 0), at(9, 30), at(10, 30), true},
		{"existing inside candidate", at(8, 45), at(9, 0), at(8, 30), at(9, 30), true},
		{"candidate inside existing", at(8, 0), at(12, 0), at(9, 0), at(10, 0), true},
		{"identical intervals", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"candidate right after existing", at(8, 0), at(9, 0), at(9, 0), at(10, 0), false},
		{"candidate right before existing", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.existingStart, tt.existingEnd, tt.candidateStart, tt.candidateEnd))
		})
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	intervals := [][2]time.Time{
		{at(8, 0), at(9, 0)},
		{at(8, 30), at(9, 30)},
		{at(9, 0), at(10, 0)},
		{at(8, 45), at(9, 0)},
		{at(7, 0), at(12, 0)},
		{at(10, 0), at(10, 15)},
	}

	for _, a := range intervals {
		for _, b := range intervals {
			assert.Equal(t,
				Overlaps(a[0], a[1], b[0], b[1]),
				Overlaps(b[0], b[1], a[0], a[1]),
				"a=%s-%s b=%s-%s", a[0].Format("15:04"), a[1].Format("15:04"), b[0].Format("15:04"), b[1].Format("15:04"),
			)
		}
	}
}

func TestDetector_FindOverlaps(t *testing.T) {
	existingID := uuid.New()
	cancelledID := uuid.New()
	femaleID := uuid.New()
	earlyID := uuid.New()

	repo := &fakeAppointmentRepo{items: []storedAppointment{
		{id: existingID, name: "Anna", track: domain.TrackMale, status: domain.StatusConfirmed, start: at(10, 0), end: atPtr(11, 0)},
		{id: cancelledID, name: "Boris", track: domain.TrackMale, status: domain.StatusCancelled, start: at(10, 0), end: atPtr(11, 0)},
		{id: femaleID, name: "Vera", track: domain.TrackFemale, status: domain.StatusPending, start: at(10, 0), end: atPtr(11, 0)},
		{id: earlyID, name: "Gleb", track: domain.TrackMale, status: domain.StatusPending, start: at(8, 0), end: atPtr(9, 0)},
	}}
	detector := NewDetector(repo)
	ctx := context.Background()

	t.Run("same track overlap is reported", func(t *testing.T) {
		conflicts, err := detector.FindOverlaps(ctx, domain.TrackMale, at(10, 30), at(11, 30), nil)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, existingID, conflicts[0].AppointmentID)
		assert.Equal(t, "Anna", conflicts[0].CustomerName)
		assert.Equal(t, at(10, 0), conflicts[0].StartTime)
		assert.Equal(t, at(11, 0), conflicts[0].EndTime)
	})

	t.Run("other track never conflicts", func(t *testing.T) {
		repo := &fakeAppointmentRepo{items: []storedAppointment{
			{id: existingID, name: "Anna", track: domain.TrackMale, status: domain.StatusConfirmed, start: at(10, 0), end: atPtr(11, 0)},
		}}
		conflicts, err := NewDetector(repo).FindOverlaps(ctx, domain.TrackFemale, at(10, 0), at(11, 0), nil)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("cancelled appointments are ignored", func(t *testing.T) {
		conflicts, err := detector.FindOverlaps(ctx, domain.TrackMale, at(10, 0), at(11, 0), nil)
		require.NoError(t, err)
		for _, c := range conflicts {
			assert.NotEqual(t, cancelledID, c.AppointmentID)
		}
	})

	t.Run("self is excluded on edit", func(t *testing.T) {
		conflicts, err := detector.FindOverlaps(ctx, domain.TrackMale, at(10, 0), at(11, 0), &existingID)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("back to back is allowed", func(t *testing.T) {
		conflicts, err := detector.FindOverlaps(ctx, domain.TrackMale, at(9, 0), at(10, 0), nil)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("results ordered by start", func(t *testing.T) {
		conflicts, err := detector.FindOverlaps(ctx, domain.TrackMale, at(7, 0), at(12, 0), nil)
		require.NoError(t, err)
		require.Len(t, conflicts, 2)
		assert.Equal(t, earlyID, conflicts[0].AppointmentID)
		assert.Equal(t, existingID, conflicts[1].AppointmentID)
	})

	t.Run("invalid track", func(t *testing.T) {
		_, err := detector.FindOverlaps(ctx, domain.Track("kids"), at(9, 0), at(10, 0), nil)
		assert.ErrorIs(t, err, ErrInvalidTrack)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := detector.FindOverlaps(ctx, domain.TrackMale, at(10, 0), at(9, 0), nil)
		assert.ErrorIs(t, err, ErrEndBeforeStart)
	})
}

func TestDetector_FindOverlaps_ContainedExisting(t *testing.T) {
	id := uuid.New()
	repo := &fakeAppointmentRepo{items: []storedAppointment{
		{id: id, name: "Dina", track: domain.TrackFemale, status: domain.StatusPending, start: at(8, 45), end: atPtr(9, 0)},
	}}

	conflicts, err := NewDetector(repo).FindOverlaps(context.Background(), domain.TrackFemale, at(8, 30), at(9, 30), nil)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, id, conflicts[0].AppointmentID)
}

func TestDetector_FindOverlaps_SymmetricBetweenAppointments(t *testing.T) {
	a := storedAppointment{id: uuid.New(), name: "A", track: domain.TrackMale, status: domain.StatusPending, start: at(9, 0), end: atPtr(10, 0)}
	b := storedAppointment{id: uuid.New(), name: "B", track: domain.TrackMale, status: domain.StatusPending, start: at(9, 30), end: atPtr(10, 30)}
	detector := NewDetector(&fakeAppointmentRepo{items: []storedAppointment{a, b}})
	ctx := context.Background()

	fromA, err := detector.FindOverlaps(ctx, a.track, a.start, *a.end, &a.id)
	require.NoError(t, err)
	fromB, err := detector.FindOverlaps(ctx, b.track, b.start, *b.end, &b.id)
	require.NoError(t, err)

	require.Len(t, fromA, 1)
	require.Len(t, fromB, 1)
	assert.Equal(t, b.id, fromA[0].AppointmentID)
	assert.Equal(t, a.id, fromB[0].AppointmentID)
}

func TestDetector_FindOverlaps_NullEndIsZeroLength(t *testing.T) {
	id := uuid.New()
	repo := &fakeAppointmentRepo{items: []storedAppointment{
		{id: id, name: "Egor", track: domain.TrackMale, status: domain.StatusPending, start: at(9, 15)},
	}}
	detector := NewDetector(repo)

	conflicts, err := detector.FindOverlaps(context.Background(), domain.TrackMale, at(9, 0), at(10, 0), nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)

	conflicts, err = detector.FindOverlaps(context.Background(), domain.TrackMale, at(10, 0), at(11, 0), nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetector_StoreError(t *testing.T) {
	detector := NewDetector(&fakeAppointmentRepo{err: errors.New("db down")})

	_, err := detector.FindOverlaps(context.Background(), domain.TrackMale, at(9, 0), at(10, 0), nil)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestDetector_StoreErrorKeepsCause(t *testing.T) {
	detector := NewDetector(&fakeAppointmentRepo{err: &pq.Error{Code: "40001"}})

	_, err := detector.FindOverlaps(context.Background(), domain.TrackMale, at(9, 0), at(10, 0), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
	assert.True(t, txmanager.IsSerializationFailure(err), "serialization failure must reach the retry loop")
}
