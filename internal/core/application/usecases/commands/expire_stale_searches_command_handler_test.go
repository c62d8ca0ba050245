package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func restoreJob(t *testing.T, status job.Status, changedAt time.Time, attempts int) *job.Job {
	t.Helper()
	loc, _ := kernel.NewLocation(14.7, -17.4)
	j, err := job.RestoreJob(job.Snapshot{
		ID: kernel.NewUUID(), Pickup: loc, Dropoff: loc, Price: 1000, Weight: 1,
		Urgency: job.UrgencyStandard, Status: status, CreatedAt: t0,
		StatusChangedAt: changedAt, MatchAttempts: attempts,
	})
	require.NoError(t, err)
	return j
}

// sweepUoW returns a factory whose repository answers one FindByStatusChangedBefore call.
func sweepUoW(status job.Status, cutoff time.Time, batch int, found []*job.Job, err error) (*MockJobUoWFactory, *MockJobRepository) {
	repo := new(MockJobRepository)
	repo.On("FindByStatusChangedBefore", mock.Anything, status, cutoff, batch).Return(found, err).Once()
	uow := new(MockUoW)
	uow.On("JobRepository").Return(repo).Once()
	factory := new(MockJobUoWFactory)
	factory.On("Create").Return(uow).Once()
	return factory, repo
}

func targets(target job.Status) any {
	return mock.MatchedBy(func(cmd commands.TransitionJobCommand) bool {
		return cmd.Target() == target
	})
}

func TestNewExpireStaleSearchesCommand(t *testing.T) {
	t.Run("should default the batch", func(t *testing.T) {
		cmd, err := commands.NewExpireStaleSearchesCommand(time.Minute, 0)

		require.NoError(t, err)
		assert.Equal(t, commands.DefaultSweepBatch, cmd.Batch())
		assert.Equal(t, time.Minute, cmd.OfferTimeout())
	})

	t.Run("should reject a non-positive timeout", func(t *testing.T) {
		_, err := commands.NewExpireStaleSearchesCommand(0, 10)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestExpireStaleSearchesCommandHandler_Handle(t *testing.T) {
	now := t0.Add(time.Hour)
	cmd, err := commands.NewExpireStaleSearchesCommand(2*time.Minute, 50)
	require.NoError(t, err)

	t.Run("should move stale searches to no driver found", func(t *testing.T) {
		// Arrange
		stale := restoreJob(t, job.FindingDriver, now.Add(-3*time.Minute), 1)
		raced := restoreJob(t, job.FindingDriver, now.Add(-5*time.Minute), 1)
		factory, repo := sweepUoW(job.FindingDriver, now.Add(-2*time.Minute), 50, []*job.Job{stale, raced}, nil)

		transitions := new(MockTransitioner)
		transitions.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.TransitionJobCommand) bool {
			return c.JobID() == stale.ID() && c.Target() == job.NoDriverFound
		})).Return(stale, nil).Once()
		transitions.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.TransitionJobCommand) bool {
			return c.JobID() == raced.ID()
		})).Return(nil, job.NewIllegalTransitionError(job.Accepted, job.NoDriverFound)).Once()

		handler := commands.NewExpireStaleSearchesCommandHandler(factory, transitions, clock.NewFixed(now), logging.Discard())

		// Act
		err := handler.Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		transitions.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("should keep going and join failures", func(t *testing.T) {
		first := restoreJob(t, job.FindingDriver, now.Add(-3*time.Minute), 1)
		second := restoreJob(t, job.FindingDriver, now.Add(-3*time.Minute), 1)
		factory, _ := sweepUoW(job.FindingDriver, now.Add(-2*time.Minute), 50, []*job.Job{first, second}, nil)
		conflict := errs.NewConcurrentModificationError("job", first.ID().String())

		transitions := new(MockTransitioner)
		transitions.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.TransitionJobCommand) bool {
			return c.JobID() == first.ID()
		})).Return(nil, conflict).Once()
		transitions.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.TransitionJobCommand) bool {
			return c.JobID() == second.ID()
		})).Return(second, nil).Once()

		err := commands.NewExpireStaleSearchesCommandHandler(factory, transitions, clock.NewFixed(now), logging.Discard()).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConcurrentModification)
		transitions.AssertExpectations(t)
	})

	t.Run("should return the query error", func(t *testing.T) {
		queryErr := errors.New("connection reset")
		factory, _ := sweepUoW(job.FindingDriver, now.Add(-2*time.Minute), 50, nil, queryErr)
		transitions := new(MockTransitioner)

		err := commands.NewExpireStaleSearchesCommandHandler(factory, transitions, clock.NewFixed(now), logging.Discard()).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, queryErr)
		transitions.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}
