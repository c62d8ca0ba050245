package http_test

import (
	"context"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"

	"github.com/stretchr/testify/mock"
)

type MockJobCreator struct{ mock.Mock }

func (m *MockJobCreator) Handle(ctx context.Context, cmd commands.CreateJobCommand) (*job.Job, error) {
	args := m.Called(ctx, cmd)
	j, _ := args.Get(0).(*job.Job)
	return j, args.Error(1)
}

type MockJobTransitioner struct{ mock.Mock }

func (m *MockJobTransitioner) Handle(ctx context.Context, cmd commands.TransitionJobCommand) (*job.Job, error) {
	args := m.Called(ctx, cmd)
	j, _ := args.Get(0).(*job.Job)
	return j, args.Error(1)
}

type MockJobGetter struct{ mock.Mock }

func (m *MockJobGetter) Handle(ctx context.Context, query queries.GetJobQuery) (queries.GetJobQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetJobQueryResponse), args.Error(1)
}

type MockActiveJobsLister struct{ mock.Mock }

func (m *MockActiveJobsLister) Handle(
	ctx context.Context,
	query queries.ListActiveJobsQuery,
) ([]queries.ListActiveJobsQueryResponse, error) {
	args := m.Called(ctx, query)
	out, _ := args.Get(0).([]queries.ListActiveJobsQueryResponse)
	return out, args.Error(1)
}

type MockCourierRegistrar struct{ mock.Mock }

func (m *MockCourierRegistrar) Handle(ctx context.Context, cmd commands.RegisterCourierCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockCourierApprover struct{ mock.Mock }

func (m *MockCourierApprover) Handle(ctx context.Context, cmd commands.ApproveCourierCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockCourierStatusUpdater struct{ mock.Mock }

func (m *MockCourierStatusUpdater) Handle(
	ctx context.Context,
	cmd commands.UpdateCourierStatusCommand,
) (*courier.Courier, error) {
	args := m.Called(ctx, cmd)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

type MockCourierLocationUpdater struct{ mock.Mock }

func (m *MockCourierLocationUpdater) Handle(ctx context.Context, cmd commands.UpdateCourierLocationCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockCouriersLister struct{ mock.Mock }

func (m *MockCouriersLister) Handle(
	ctx context.Context,
	query queries.ListCouriersQuery,
) ([]queries.ListCouriersQueryResponse, error) {
	args := m.Called(ctx, query)
	out, _ := args.Get(0).([]queries.ListCouriersQueryResponse)
	return out, args.Error(1)
}
