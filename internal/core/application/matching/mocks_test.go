package matching_test

import (
	"context"
	"math"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	pickup = mustLocation(14.6928, -17.4467)
)

var kmPerDegreeLat = kernel.EarthRadiusKm * math.Pi / 180

type MockCourierFinder struct{ mock.Mock }

func (m *MockCourierFinder) FindMatchable(ctx context.Context, filter ports.CourierFilter) ([]*courier.Courier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierFinder) FindByIDs(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockLocationIndex struct{ mock.Mock }

func (m *MockLocationIndex) Upsert(ctx context.Context, id kernel.UUID, l kernel.Location) error {
	return m.Called(ctx, id, l).Error(0)
}

func (m *MockLocationIndex) Remove(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLocationIndex) Nearby(ctx context.Context, center kernel.Location, radiusKm float64, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, center, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockJobReader struct{ mock.Mock }

func (m *MockJobReader) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyCourier(ctx context.Context, courierID kernel.UUID, offer ports.Offer) error {
	return m.Called(ctx, courierID, offer).Error(0)
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, jobID kernel.UUID, from, to job.Status) error {
	return m.Called(ctx, jobID, from, to).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func mustLocation(lat, lng float64) kernel.Location {
	l, err := kernel.NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return l
}

type courierSpec struct {
	rating     float64
	kmNorth    float64
	deliveries int
	located    time.Time
	approved   bool
	online     bool
	available  bool
	noLocation bool
}

func activeCourier(rating, kmNorth float64) courierSpec {
	return courierSpec{rating: rating, kmNorth: kmNorth, deliveries: 10, located: now, approved: true, online: true, available: true}
}

func buildCourier(t *testing.T, s courierSpec) *courier.Courier {
	t.Helper()
	snap := courier.Snapshot{
		ID: kernel.NewUUID(), Name: "courier",
		Approved: s.approved, Online: s.online, Available: s.available,
		Rating: s.rating, TotalDeliveries: s.deliveries,
	}
	if !s.noLocation {
		loc := mustLocation(pickup.Lat()+s.kmNorth/kmPerDegreeLat, pickup.Lng())
		snap.Location = &loc
		snap.LocatedAt = s.located
	}
	c, err := courier.RestoreCourier(snap)
	require.NoError(t, err)
	return c
}

func searchingJob(t *testing.T, status job.Status) *job.Job {
	t.Helper()
	snap := job.Snapshot{
		ID: kernel.NewUUID(), Pickup: pickup, Dropoff: mustLocation(14.72, -17.46),
		Price: 3500, Weight: 1, Urgency: job.UrgencyExpress, Status: status, CreatedAt: now,
	}
	if status.RequiresCourier() {
		id := kernel.NewUUID()
		snap.CourierID = &id
	}
	j, err := job.RestoreJob(snap)
	require.NoError(t, err)
	return j
}
