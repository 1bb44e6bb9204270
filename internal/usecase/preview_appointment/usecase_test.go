package preview_appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
)

type mockResolver struct {
	resolveFunc func(ctx context.Context, start time.Time, serviceIDs []int64, explicitEnd *time.Time) (time.Time, error)
}

func (m *mockResolver) ResolveEndTime(ctx context.Context, start time.Time, serviceIDs []int64, explicitEnd *time.Time) (time.Time, error) {
	return m.resolveFunc(ctx, start, serviceIDs, explicitEnd)
}

type mockDetector struct {
	findFunc func(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error)
}

func (m *mockDetector) FindOverlaps(ctx context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	return m.findFunc(ctx, track, start, end, excludeID)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestExecute_ReturnsEndAndConflicts(t *testing.T) {
	excluded := uuid.New()
	conflict := domain.OverlapSummary{AppointmentID: uuid.New(), CustomerName: "Olga", StartTime: at(8, 45), EndTime: at(9, 0)}

	resolver := &mockResolver{resolveFunc: func(_ context.Context, start time.Time, ids []int64, explicitEnd *time.Time) (time.Time, error) {
		assert.Equal(t, []int64{1, 2}, ids)
		assert.Nil(t, explicitEnd)
		return start.Add(time.Hour), nil
	}}
	detector := &mockDetector{findFunc: func(_ context.Context, track domain.Track, start, end time.Time, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
		assert.Equal(t, domain.TrackFemale, track)
		assert.Equal(t, at(8, 30), start)
		assert.Equal(t, at(9, 30), end)
		require.NotNil(t, excludeID)
		assert.Equal(t, excluded, *excludeID)
		return []domain.OverlapSummary{conflict}, nil
	}}

	uc := NewUseCase(resolver, detector, nopLogger{})
	resp, err := uc.Execute(context.Background(), &Request{
		Track:      "female",
		StartTime:  at(8, 30),
		ServiceIDs: []int64{1, 2},
		ExcludeID:  &excluded,
	})

	require.NoError(t, err)
	assert.Equal(t, at(9, 30), resp.EndTime)
	assert.Equal(t, []domain.OverlapSummary{conflict}, resp.Conflicts)
}

func TestExecute_Errors(t *testing.T) {
	okResolver := &mockResolver{resolveFunc: func(_ context.Context, start time.Time, _ []int64, _ *time.Time) (time.Time, error) {
		return start, nil
	}}
	okDetector := &mockDetector{findFunc: func(context.Context, domain.Track, time.Time, time.Time, *uuid.UUID) ([]domain.OverlapSummary, error) {
		return nil, nil
	}}

	tests := []struct {
		name     string
		req      *Request
		resolver *mockResolver
		detector *mockDetector
		wantErr  error
	}{
		{
			name:     "invalid track",
			req:      &Request{Track: "kids", StartTime: at(9, 0)},
			resolver: okResolver,
			detector: okDetector,
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "missing start",
			req:      &Request{Track: "male"},
			resolver: okResolver,
			detector: okDetector,
			wantErr:  ErrInvalidInput,
		},
		{
			name: "end before start",
			req:  &Request{Track: "male", StartTime: at(9, 0)},
			resolver: &mockResolver{resolveFunc: func(context.Context, time.Time, []int64, *time.Time) (time.Time, error) {
				return time.Time{}, scheduling.ErrEndBeforeStart
			}},
			detector: okDetector,
			wantErr:  ErrInvalidInput,
		},
		{
			name: "detector failure",
			req:  &Request{Track: "male", StartTime: at(9, 0)},
			resolver: okResolver,
			detector: &mockDetector{findFunc: func(context.Context, domain.Track, time.Time, time.Time, *uuid.UUID) ([]domain.OverlapSummary, error) {
				return nil, errors.New("db down")
			}},
			wantErr: ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUseCase(tt.resolver, tt.detector, nopLogger{})
			resp, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}
