package matching_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/matching"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCourierRegistry_EligibleFor(t *testing.T) {
	cfg := matching.DefaultRegistryConfig()

	t.Run("should apply every eligibility rule", func(t *testing.T) {
		ctx := t.Context()
		j := searchingJob(t, job.FindingDriver)

		ok := buildCourier(t, activeCourier(4.5, 1))
		edge := buildCourier(t, activeCourier(4.0, 4.9))
		tooFar := buildCourier(t, activeCourier(5, 5.5))
		lowRated := buildCourier(t, activeCourier(3.9, 1))
		stale := activeCourier(5, 1)
		stale.located = now.Add(-11 * time.Minute)
		unapproved := activeCourier(5, 1)
		unapproved.approved = false
		offline := activeCourier(5, 1)
		offline.online = false
		busy := activeCourier(5, 1)
		busy.available = false
		nowhere := activeCourier(5, 0)
		nowhere.noLocation = true

		pool := []*courier.Courier{
			ok, edge, tooFar, lowRated,
			buildCourier(t, stale), buildCourier(t, unapproved), buildCourier(t, offline),
			buildCourier(t, busy), buildCourier(t, nowhere),
		}

		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, ports.CourierFilter{
			MinRating:    4.0,
			LocatedSince: now.Add(-10 * time.Minute),
			Near:         pickup,
			RadiusKm:     5,
		}).Return(pool, nil).Once()

		registry := matching.NewCourierRegistry(finder, nil, fixedClock{now}, cfg, logging.Discard())

		got, err := registry.EligibleFor(ctx, j)

		require.NoError(t, err)
		assert.Equal(t, []*courier.Courier{ok, edge}, got)
		finder.AssertExpectations(t)
	})

	t.Run("should return an empty slice when nothing matches", func(t *testing.T) {
		ctx := t.Context()
		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, mock.Anything).Return([]*courier.Courier{}, nil).Once()

		registry := matching.NewCourierRegistry(finder, nil, fixedClock{now}, cfg, logging.Discard())

		got, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("should propagate storage errors", func(t *testing.T) {
		ctx := t.Context()
		storeErr := errors.New("connection reset")
		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, mock.Anything).Return(nil, storeErr).Once()

		registry := matching.NewCourierRegistry(finder, nil, fixedClock{now}, cfg, logging.Discard())

		_, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.ErrorIs(t, err, storeErr)
	})

	t.Run("should load candidates from the location index", func(t *testing.T) {
		ctx := t.Context()
		near := buildCourier(t, activeCourier(4.8, 0.5))
		ids := []kernel.UUID{near.ID()}

		index := new(MockLocationIndex)
		index.On("Nearby", ctx, pickup, 5.0, 200).Return(ids, nil).Once()
		finder := new(MockCourierFinder)
		finder.On("FindByIDs", ctx, ids).Return([]*courier.Courier{near}, nil).Once()

		registry := matching.NewCourierRegistry(finder, index, fixedClock{now}, cfg, logging.Discard())

		got, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.NoError(t, err)
		assert.Equal(t, []*courier.Courier{near}, got)
		finder.AssertNotCalled(t, "FindMatchable", mock.Anything, mock.Anything)
	})

	t.Run("should fall back to the store when the index fails", func(t *testing.T) {
		ctx := t.Context()
		near := buildCourier(t, activeCourier(4.8, 0.5))

		index := new(MockLocationIndex)
		index.On("Nearby", ctx, pickup, 5.0, 200).Return(nil, errors.New("redis down")).Once()
		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, mock.Anything).Return([]*courier.Courier{near}, nil).Once()

		registry := matching.NewCourierRegistry(finder, index, fixedClock{now}, cfg, logging.Discard())

		got, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
	t.Run("should fall back to the store when the index is empty", func(t *testing.T) {
		ctx := t.Context()
		near := buildCourier(t, activeCourier(4.8, 0.5))

		index := new(MockLocationIndex)
		index.On("Nearby", ctx, pickup, 5.0, 200).Return([]kernel.UUID{}, nil).Once()
		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, mock.Anything).Return([]*courier.Courier{near}, nil).Once()

		registry := matching.NewCourierRegistry(finder, index, fixedClock{now}, cfg, logging.Discard())

		got, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.NoError(t, err)
		assert.Equal(t, []*courier.Courier{near}, got)
		finder.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("should return every eligible courier when there are more than the prefetch limit", func(t *testing.T) {
		ctx := t.Context()
		small := cfg
		small.PrefetchLimit = 3

		// The index page is filled by busy couriers standing closer than anyone else.
		indexed := make([]kernel.UUID, 0, small.PrefetchLimit)
		for range small.PrefetchLimit {
			indexed = append(indexed, kernel.NewUUID())
		}

		atPickup := buildCourier(t, activeCourier(4.9, 0))
		pool := []*courier.Courier{atPickup}
		for i := range 5 {
			pool = append(pool, buildCourier(t, activeCourier(4.5, 0.5+float64(i)*0.5)))
		}

		index := new(MockLocationIndex)
		index.On("Nearby", ctx, pickup, 5.0, 3).Return(indexed, nil).Once()
		finder := new(MockCourierFinder)
		finder.On("FindMatchable", ctx, ports.CourierFilter{
			MinRating:    4.0,
			LocatedSince: now.Add(-10 * time.Minute),
			Near:         pickup,
			RadiusKm:     5,
		}).Return(pool, nil).Once()

		registry := matching.NewCourierRegistry(finder, index, fixedClock{now}, small, logging.Discard())

		got, err := registry.EligibleFor(ctx, searchingJob(t, job.FindingDriver))

		require.NoError(t, err)
		assert.Len(t, got, 6)
		assert.Contains(t, got, atPickup)
		finder.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
		finder.AssertExpectations(t)
	})
}
