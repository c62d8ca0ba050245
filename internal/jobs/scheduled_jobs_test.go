package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRetryHandler struct {
	mock.Mock
}

func (m *MockRetryHandler) Handle(ctx context.Context, cmd commands.RetryUnmatchedJobsCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockExpiryHandler struct {
	mock.Mock
}

func (m *MockExpiryHandler) Handle(ctx context.Context, cmd commands.ExpireStaleSearchesCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockScheduledJob struct {
	mock.Mock
}

func (m *MockScheduledJob) Start() error {
	return m.Called().Error(0)
}

func (m *MockScheduledJob) Stop() {
	m.Called()
}

func TestMatchingRetryJob(t *testing.T) {
	cmd, err := commands.NewRetryUnmatchedJobsCommand(3, 30*time.Second, 10*time.Minute, 50)
	require.NoError(t, err)

	t.Run("should run the sweep with a bounded context", func(t *testing.T) {
		handler := &MockRetryHandler{}
		handler.On("Handle", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		}), cmd).Return(nil).Once()

		jobs.NewMatchingRetryJob(handler, cmd, "", time.Minute, logging.Discard()).Run()

		handler.AssertExpectations(t)
	})

	t.Run("should swallow sweep failures", func(t *testing.T) {
		handler := &MockRetryHandler{}
		handler.On("Handle", mock.Anything, cmd).Return(errors.New("db down")).Once()

		assert.NotPanics(t, jobs.NewMatchingRetryJob(handler, cmd, "", 0, logging.Discard()).Run)
		handler.AssertExpectations(t)
	})

	t.Run("should tick on schedule", func(t *testing.T) {
		handler := &MockRetryHandler{}
		ticked := make(chan struct{}, 4)
		handler.On("Handle", mock.Anything, cmd).Run(func(mock.Arguments) {
			select {
			case ticked <- struct{}{}:
			default:
			}
		}).Return(nil)

		job := jobs.NewMatchingRetryJob(handler, cmd, "* * * * * *", time.Second, logging.Discard())
		require.NoError(t, job.Start())
		defer job.Stop()

		select {
		case <-ticked:
		case <-time.After(3 * time.Second):
			t.Fatal("sweep never ran")
		}
	})

	t.Run("should reject an invalid schedule", func(t *testing.T) {
		job := jobs.NewMatchingRetryJob(&MockRetryHandler{}, cmd, "every now and then", 0, logging.Discard())

		require.Error(t, job.Start())
	})
}

func TestSearchExpiryJob(t *testing.T) {
	cmd, err := commands.NewExpireStaleSearchesCommand(2*time.Minute, 50)
	require.NoError(t, err)

	t.Run("should run the sweep", func(t *testing.T) {
		handler := &MockExpiryHandler{}
		handler.On("Handle", mock.Anything, cmd).Return(nil).Once()

		jobs.NewSearchExpiryJob(handler, cmd, "", time.Minute, logging.Discard()).Run()

		handler.AssertExpectations(t)
	})

	t.Run("should reject an invalid schedule", func(t *testing.T) {
		job := jobs.NewSearchExpiryJob(&MockExpiryHandler{}, cmd, "* *", 0, logging.Discard())

		require.Error(t, job.Start())
	})
}

func TestJobManager(t *testing.T) {
	t.Run("should start in order and stop in reverse", func(t *testing.T) {
		first, second := &MockScheduledJob{}, &MockScheduledJob{}
		first.On("Start").Return(nil).Once()
		second.On("Start").Return(nil).Once()
		mock.InOrder(
			second.On("Stop").Return().Once(),
			first.On("Stop").Return().Once(),
		)

		manager := jobs.NewJobManager(first, second)
		require.NoError(t, manager.StartAll())
		manager.StopAll()

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("should stop started jobs when one fails to start", func(t *testing.T) {
		first, second := &MockScheduledJob{}, &MockScheduledJob{}
		first.On("Start").Return(nil).Once()
		first.On("Stop").Return().Once()
		second.On("Start").Return(errors.New("bad spec")).Once()

		err := jobs.NewJobManager(first, second).StartAll()

		require.ErrorContains(t, err, "bad spec")
		first.AssertExpectations(t)
		second.AssertNotCalled(t, "Stop")
	})
}
