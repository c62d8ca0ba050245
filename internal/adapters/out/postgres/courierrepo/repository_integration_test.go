package courierrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seenAt = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type CourierRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *courierrepo.GormCourierRepository
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&courierrepo.CourierDTO{}))
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers").Error)
	suite.repository = courierrepo.NewGormCourierRepository(suite.db)
}

func (suite *CourierRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

// online adds an approved, online, available courier at (lat, lng).
func (suite *CourierRepositoryIntegrationTestSuite) online(name string, rating, lat, lng float64, locatedAt time.Time) *courier.Courier {
	loc, err := kernel.NewLocation(lat, lng)
	suite.Require().NoError(err)
	c, err := courier.RestoreCourier(courier.Snapshot{
		ID: kernel.NewUUID(), Name: name, Approved: true, Online: true, Available: true,
		Rating: rating, Location: &loc, LocatedAt: locatedAt,
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), c))
	return c
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAdd_RoundTripsEveryField() {
	ctx := context.Background()
	c := suite.online("Awa", 4.75, 14.6928, -17.4467, seenAt)
	suite.Require().NoError(c.Credit(2975))
	suite.Require().NoError(c.Debit(500))
	c.CompleteDelivery()
	suite.Require().NoError(suite.repository.Update(ctx, c))

	got, err := suite.repository.Get(ctx, c.ID())

	suite.Require().NoError(err)
	suite.Equal("Awa", got.Name())
	suite.True(got.IsApproved())
	suite.True(got.IsOnline())
	suite.True(got.IsAvailable())
	suite.InDelta(4.75, got.Rating(), 1e-9)
	suite.Equal(1, got.TotalDeliveries())
	suite.InDelta(2975.0, got.TotalEarnings(), 0.001)
	suite.InDelta(2475.0, got.Balance(), 0.001)
	loc, ok := got.Location()
	suite.Require().True(ok)
	suite.InDelta(14.6928, loc.Lat(), 1e-9)
	suite.InDelta(-17.4467, loc.Lng(), 1e-9)
	suite.True(seenAt.Equal(got.LocatedAt()))
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAdd_WithoutLocation() {
	ctx := context.Background()
	c, err := courier.NewCourier(kernel.NewUUID(), "Moussa", 4.2)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Add(ctx, c))
	got, err := suite.repository.Get(ctx, c.ID())

	suite.Require().NoError(err)
	_, ok := got.Location()
	suite.False(ok)
	suite.False(got.IsApproved())
	suite.True(got.LocatedAt().IsZero())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_PersistsFalseFlags() {
	ctx := context.Background()
	c := suite.online("Awa", 4.5, 14.69, -17.44, seenAt)
	c.GoOffline()

	suite.Require().NoError(suite.repository.Update(ctx, c))
	got, err := suite.repository.Get(ctx, c.ID())

	suite.Require().NoError(err)
	suite.False(got.IsOnline())
	suite.False(got.IsAvailable())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_UnknownCourier() {
	c, err := courier.NewCourier(kernel.NewUUID(), "Ghost", 4)
	suite.Require().NoError(err)

	err = suite.repository.Update(context.Background(), c)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CourierRepositoryIntegrationTestSuite) TestFindMatchable_AppliesEveryFilter() {
	ctx := context.Background()
	pickup, _ := kernel.NewLocation(14.6928, -17.4467)

	near := suite.online("near", 4.8, 14.6950, -17.4450, seenAt)
	_ = suite.online("low rated", 3.9, 14.6950, -17.4450, seenAt)
	_ = suite.online("stale", 4.8, 14.6950, -17.4450, seenAt.Add(-time.Hour))
	_ = suite.online("far", 4.8, 14.9000, -17.1000, seenAt)

	busy := suite.online("busy", 4.9, 14.6940, -17.4460, seenAt)
	suite.Require().NoError(busy.AssignJob())
	suite.Require().NoError(suite.repository.Update(ctx, busy))

	offline := suite.online("offline", 4.9, 14.6940, -17.4460, seenAt)
	offline.GoOffline()
	suite.Require().NoError(suite.repository.Update(ctx, offline))

	unapproved, err := courier.NewCourier(kernel.NewUUID(), "unapproved", 5)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, unapproved))

	found, err := suite.repository.FindMatchable(ctx, ports.CourierFilter{
		MinRating:    4.0,
		LocatedSince: seenAt.Add(-10 * time.Minute),
		Near:         pickup,
		RadiusKm:     5,
	})

	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(near.ID(), found[0].ID())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestFindMatchable_EmptyIsNotAnError() {
	found, err := suite.repository.FindMatchable(context.Background(), ports.CourierFilter{MinRating: 4})

	suite.Require().NoError(err)
	suite.Empty(found)
}

func (suite *CourierRepositoryIntegrationTestSuite) TestFindMatchable_Limit() {
	for range 5 {
		suite.online("courier", 4.5, 14.69, -17.44, seenAt)
	}

	found, err := suite.repository.FindMatchable(context.Background(), ports.CourierFilter{Limit: 3})

	suite.Require().NoError(err)
	suite.Len(found, 3)
	suite.Equal(-1, found[0].ID().Compare(found[1].ID()))
}

func (suite *CourierRepositoryIntegrationTestSuite) TestFindMatchable_NearestFirst() {
	pickup, _ := kernel.NewLocation(14.6928, -17.4467)

	// Added farthest first so neither insertion nor id order matches distance.
	_ = suite.online("4 km", 4.5, 14.7288, -17.4467, seenAt)
	_ = suite.online("3 km", 4.5, 14.6928, -17.4189, seenAt)
	_ = suite.online("2 km", 4.5, 14.6748, -17.4467, seenAt)
	second := suite.online("1 km", 4.5, 14.6928, -17.4560, seenAt)
	first := suite.online("at pickup", 4.5, 14.6928, -17.4467, seenAt)

	found, err := suite.repository.FindMatchable(context.Background(), ports.CourierFilter{
		MinRating: 4,
		Near:      pickup,
		RadiusKm:  5,
		Limit:     2,
	})

	suite.Require().NoError(err)
	suite.Require().Len(found, 2)
	suite.Equal(first.ID(), found[0].ID())
	suite.Equal(second.ID(), found[1].ID())

	all, err := suite.repository.FindMatchable(context.Background(), ports.CourierFilter{
		MinRating: 4,
		Near:      pickup,
		RadiusKm:  5,
	})
	suite.Require().NoError(err)
	suite.Len(all, 5)
	suite.Equal("4 km", all[4].Name())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestFindByIDs_SkipsUnknownIDs() {
	ctx := context.Background()
	a := suite.online("a", 4.5, 14.69, -17.44, seenAt)
	b := suite.online("b", 4.5, 14.69, -17.44, seenAt)

	found, err := suite.repository.FindByIDs(ctx, []kernel.UUID{b.ID(), kernel.NewUUID(), a.ID()})

	suite.Require().NoError(err)
	suite.Len(found, 2)

	empty, err := suite.repository.FindByIDs(ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetForUpdate_InsideTransaction() {
	ctx := context.Background()
	c := suite.online("Awa", 4.5, 14.69, -17.44, seenAt)

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		repo := courierrepo.NewGormCourierRepository(tx)
		locked, err := repo.GetForUpdate(ctx, c.ID())
		if err != nil {
			return err
		}
		if err = locked.Credit(100); err != nil {
			return err
		}
		return repo.Update(ctx, locked)
	})
	suite.Require().NoError(err)

	got, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.InDelta(100.0, got.Balance(), 0.001)
}

func TestCourierRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CourierRepositoryIntegrationTestSuite))
}
