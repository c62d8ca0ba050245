package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJobReader struct {
	mock.Mock
}

func (m *MockJobReader) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if j := args.Get(0); j != nil {
		return j.(*job.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGetJobQueryHandler_Handle(t *testing.T) {
	t0 := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	pickup, _ := kernel.NewLocation(14.6928, -17.4467)
	dropoff, _ := kernel.NewLocation(14.7167, -17.4677)

	t.Run("should expose allowed transitions of a live job", func(t *testing.T) {
		courierID := kernel.NewUUID()
		j, err := job.RestoreJob(job.Snapshot{
			ID: kernel.NewUUID(), Pickup: pickup, Dropoff: dropoff, Price: 3500, Weight: 2,
			Urgency: job.UrgencyExpress, Status: job.Accepted, CourierID: &courierID,
			CreatedAt: t0, StatusChangedAt: t0.Add(time.Minute),
			EnteredAt: map[job.Status]time.Time{
				job.FindingDriver: t0.Add(time.Second),
				job.Accepted:      t0.Add(time.Minute),
			},
			MatchAttempts: 1, Version: 2,
		})
		require.NoError(t, err)

		reader := &MockJobReader{}
		reader.On("Get", mock.Anything, j.ID()).Return(j, nil).Once()
		query, err := queries.NewGetJobQuery(j.ID())
		require.NoError(t, err)

		view, err := queries.NewGetJobQueryHandler(reader).Handle(context.Background(), query)

		require.NoError(t, err)
		assert.Equal(t, job.Accepted, view.Status)
		assert.False(t, view.IsTerminal)
		assert.Equal(t, []job.Status{job.PickingUp, job.Cancelled}, view.AllowedTransitions)
		assert.Equal(t, &courierID, view.CourierID)
		assert.Equal(t, int64(2), view.Version)
		assert.Equal(t, 1, view.MatchAttempts)
		assert.Len(t, view.Timeline, 2)
		assert.Nil(t, view.Cancellation)
		reader.AssertExpectations(t)
	})

	t.Run("should mark terminal jobs", func(t *testing.T) {
		j, err := job.RestoreJob(job.Snapshot{
			ID: kernel.NewUUID(), Pickup: pickup, Dropoff: dropoff, Price: 1000,
			Urgency: job.UrgencyStandard, Status: job.Cancelled, CreatedAt: t0,
			Cancellation: &job.Cancellation{By: job.InitiatorClient, Reason: "changed my mind"},
		})
		require.NoError(t, err)

		reader := &MockJobReader{}
		reader.On("Get", mock.Anything, j.ID()).Return(j, nil).Once()
		query, _ := queries.NewGetJobQuery(j.ID())

		view, err := queries.NewGetJobQueryHandler(reader).Handle(context.Background(), query)

		require.NoError(t, err)
		assert.True(t, view.IsTerminal)
		assert.Empty(t, view.AllowedTransitions)
		require.NotNil(t, view.Cancellation)
		assert.Equal(t, job.InitiatorClient, view.Cancellation.By)
	})

	t.Run("should pass not found through", func(t *testing.T) {
		id := kernel.NewUUID()
		reader := &MockJobReader{}
		reader.On("Get", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("job", id.String())).Once()
		query, _ := queries.NewGetJobQuery(id)

		_, err := queries.NewGetJobQueryHandler(reader).Handle(context.Background(), query)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should reject a zero-value query without reading", func(t *testing.T) {
		reader := &MockJobReader{}

		_, err := queries.NewGetJobQueryHandler(reader).Handle(context.Background(), queries.GetJobQuery{})

		require.ErrorIs(t, err, queries.ErrGetJobQueryIsNotConstructed)
		reader.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
