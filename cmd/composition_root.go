package cmd

import (
	"context"
	"log/slog"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/eventbus"
	"dispatch/internal/adapters/out/fanout"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/adapters/out/websocket"
	"dispatch/internal/core/application/matching"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Adapters are the optional outbound integrations. A nil field disables the
// integration.
type Adapters struct {
	LocationIndex ports.LocationIndex
	Geocoder      ports.Geocoder
	// OfferChannel delivers offers next to the websocket hub.
	OfferChannel ports.Notifier
	// EventSink receives every committed domain event.
	EventSink eventbus.Handler
}

type CompositionRoot struct {
	cfg      Config
	logger   *slog.Logger
	gormDB   *gorm.DB
	adapters Adapters

	uowFactory *postgres.GormUnitOfWorkFactory
	clock      ports.Clock
	executor   *jobs.MatchingExecutor
	hub        *websocket.Hub
	bus        *eventbus.Bus
	transition *commands.TransitionJobCommandHandler
}

// NewCompositionRoot wires the core to storage and the given adapters. The
// matching executor is created but not started.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	adapters Adapters,
	clock ports.Clock,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		adapters:   adapters,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, cfg.DBLockTimeout),
		clock:      clock,
		executor:   jobs.NewMatchingExecutor(cfg.MatchWorkers, cfg.MatchQueueSize, cfg.MatchTimeout, logger),
		hub:        websocket.NewHub(logger),
		bus:        eventbus.NewBus(),
	}
	if adapters.EventSink != nil {
		c.bus.Subscribe(adapters.EventSink)
	}

	engine, err := c.newMatchingEngine()
	if err != nil {
		return nil, err
	}

	c.transition, err = commands.NewTransitionJobCommandHandler(commands.TransitionJobDeps{
		UoWFactory: c.uowFactoryForTransitions(),
		Policy: services.DefaultCancellationPolicy{
			CourierPenalty: cfg.CancelCourierPenalty,
			ClientFee:      cfg.CancelClientFee,
		},
		Matcher:        engine,
		Scheduler:      c.executor,
		Notifier:       c.notifier(),
		Events:         c.bus,
		Clock:          clock,
		CommissionRate: cfg.CommissionRate,
		Logger:         logger,
		Index:          adapters.LocationIndex,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) newMatchingEngine() (*matching.Engine, error) {
	scoring, err := services.NewScoringEngine(services.ScoringConfig{
		Weights:        c.cfg.Weights,
		SearchRadiusKm: c.cfg.SearchRadiusKm,
	})
	if err != nil {
		return nil, err
	}

	registry := matching.NewCourierRegistry(
		courierrepo.NewGormCourierRepository(c.gormDB),
		c.adapters.LocationIndex,
		c.clock,
		matching.RegistryConfig{
			SearchRadiusKm:    c.cfg.SearchRadiusKm,
			MinRating:         c.cfg.MinRating,
			LocationFreshness: c.cfg.LocationFreshness,
		},
		c.logger,
	)

	return matching.NewEngine(
		jobrepo.NewGormJobRepository(c.gormDB),
		registry,
		scoring,
		c.notifier(),
		c.cfg.MaxNotify,
		c.logger,
	)
}

// notifier sends offers and status changes over the websocket hub and, when
// configured, the broker.
func (c *CompositionRoot) notifier() ports.Notifier {
	channels := []ports.Notifier{c.hub}
	if c.adapters.OfferChannel != nil {
		channels = append(channels, c.adapters.OfferChannel)
	}
	return fanout.New(c.logger, channels...)
}

func (c *CompositionRoot) uowFactoryForTransitions() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) jobUoWFactory() commands.JobUoWFactory {
	return FuncJobUoWFactory(func() commands.JobUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) courierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) Executor() *jobs.MatchingExecutor {
	return c.executor
}

func (c *CompositionRoot) Hub() *websocket.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateTransitionJobCommandHandler() *commands.TransitionJobCommandHandler {
	return c.transition
}

func (c *CompositionRoot) CreateCreateJobCommandHandler() commands.CreateJobCommandHandler {
	return commands.NewCreateJobCommandHandler(c.jobUoWFactory(), c.adapters.Geocoder, c.clock)
}

func (c *CompositionRoot) CreateRegisterCourierCommandHandler() commands.RegisterCourierCommandHandler {
	return commands.NewRegisterCourierCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateApproveCourierCommandHandler() commands.ApproveCourierCommandHandler {
	return commands.NewApproveCourierCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateUpdateCourierStatusCommandHandler() commands.UpdateCourierStatusCommandHandler {
	return commands.NewUpdateCourierStatusCommandHandler(c.courierUoWFactory(), c.adapters.LocationIndex, c.logger)
}

func (c *CompositionRoot) CreateUpdateCourierLocationCommandHandler() commands.UpdateCourierLocationCommandHandler {
	return commands.NewUpdateCourierLocationCommandHandler(
		c.courierUoWFactory(), c.adapters.LocationIndex, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRetryUnmatchedJobsCommandHandler() commands.RetryUnmatchedJobsCommandHandler {
	return commands.NewRetryUnmatchedJobsCommandHandler(c.jobUoWFactory(), c.transition, c.clock, c.logger)
}

func (c *CompositionRoot) CreateExpireStaleSearchesCommandHandler() commands.ExpireStaleSearchesCommandHandler {
	return commands.NewExpireStaleSearchesCommandHandler(c.jobUoWFactory(), c.transition, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetJobQueryHandler() queries.GetJobQueryHandler {
	return queries.NewGetJobQueryHandler(jobrepo.NewGormJobRepository(c.gormDB))
}

func (c *CompositionRoot) CreateListActiveJobsQueryHandler() queries.ListActiveJobsQueryHandler {
	return queries.NewListActiveJobsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCouriersQueryHandler() queries.ListCouriersQueryHandler {
	return queries.NewListCouriersQueryHandler(c.gormDB)
}

// CreateJobManager builds the retry and expiry sweeps.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	retryCmd, err := commands.NewRetryUnmatchedJobsCommand(
		c.cfg.MaxMatchAttempts, c.cfg.RetryBackoff, c.cfg.MaxRetryBackoff, c.cfg.SweepBatch)
	if err != nil {
		return nil, err
	}
	expiryCmd, err := commands.NewExpireStaleSearchesCommand(c.cfg.OfferTimeout, c.cfg.SweepBatch)
	if err != nil {
		return nil, err
	}

	return jobs.NewJobManager(
		jobs.NewMatchingRetryJob(c.CreateRetryUnmatchedJobsCommandHandler(), retryCmd,
			c.cfg.RetrySchedule, c.cfg.MatchTimeout, c.logger),
		jobs.NewSearchExpiryJob(c.CreateExpireStaleSearchesCommandHandler(), expiryCmd,
			c.cfg.ExpirySchedule, c.cfg.MatchTimeout, c.logger),
	), nil
}

// CreateRouter builds the HTTP entry point.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateJob:             c.CreateCreateJobCommandHandler(),
		TransitionJob:         c.transition,
		GetJob:                c.CreateGetJobQueryHandler(),
		ListActiveJobs:        c.CreateListActiveJobsQueryHandler(),
		RegisterCourier:       c.CreateRegisterCourierCommandHandler(),
		ApproveCourier:        c.CreateApproveCourierCommandHandler(),
		UpdateCourierStatus:   c.CreateUpdateCourierStatusCommandHandler(),
		UpdateCourierLocation: c.CreateUpdateCourierLocationCommandHandler(),
		ListCouriers:          c.CreateListCouriersQueryHandler(),
	}, c.logger)

	return httpadapter.NewRouter(httpadapter.RouterDeps{
		Server:   server,
		Sessions: c.hub,
		Health:   c.ping,
		Logger:   c.logger,
	})
}

func (c *CompositionRoot) ping(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncJobUoWFactory func() commands.JobUoW

func (f FuncJobUoWFactory) Create() commands.JobUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
