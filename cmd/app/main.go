package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/googlemaps"
	"dispatch/internal/adapters/out/kafka"
	postgresadapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/rabbitmq"
	redisadapter "dispatch/internal/adapters/out/redis"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/logging"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewLogger(configs.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, logger); err != nil {
		logger.Error("Dispatch stopped with error", "error", err)
		stop()
		log.Fatal(err)
	}
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if configs.DBAutoMigrate {
		if err = postgresadapter.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	adapters, closeAdapters, err := openAdapters(ctx, configs, logger)
	if err != nil {
		return err
	}
	defer closeAdapters()

	app, err := cmd.NewCompositionRoot(configs, gormDB, adapters, clock.System{}, logger)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}

	app.Executor().Start()

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start scheduled jobs: %w", err)
	}

	e, err := app.CreateRouter()
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", configs.HTTPPort)
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := e.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("http shutdown: %w", err))
	}
	jobManager.StopAll()
	if err := app.Executor().Stop(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("executor drain: %w", err))
	}
	app.Hub().Close()

	logger.Info("Dispatch stopped")
	return shutdownErr
}

// openAdapters connects the optional integrations that are configured and
// returns a func closing them in reverse order.
func openAdapters(ctx context.Context, configs cmd.Config, logger *slog.Logger) (cmd.Adapters, func(), error) {
	var (
		adapters cmd.Adapters
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if configs.RedisAddr != "" {
		client, err := redisadapter.NewClient(ctx, configs.RedisAddr, configs.RedisPassword)
		if err != nil {
			closeAll()
			return cmd.Adapters{}, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		adapters.LocationIndex = redisadapter.NewLocationIndex(client, redisadapter.DefaultKey)
		logger.Info("Redis location index enabled", "addr", configs.RedisAddr)
	}

	if configs.RabbitMQURL != "" {
		client, err := rabbitmq.Dial(configs.RabbitMQURL)
		if err != nil {
			closeAll()
			return cmd.Adapters{}, nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		closers = append(closers, client.Close)
		adapters.OfferChannel = rabbitmq.NewNotifier(client, clock.System{})
		logger.Info("RabbitMQ offer channel enabled")
	}

	if len(configs.KafkaBrokers) > 0 {
		forwarder := kafka.NewEventForwarder(
			kafka.NewWriter(configs.KafkaBrokers, configs.KafkaEventsTopic), kafka.DefaultQueueSize, logger)
		closers = append(closers, func() { _ = forwarder.Close() })
		adapters.EventSink = forwarder.Handle
		logger.Info("Kafka event forwarding enabled", "topic", configs.KafkaEventsTopic)
	}

	if configs.GoogleMapsAPIKey != "" {
		client, err := googlemaps.NewClient(configs.GoogleMapsAPIKey)
		if err != nil {
			closeAll()
			return cmd.Adapters{}, nil, err
		}
		adapters.Geocoder = googlemaps.NewGeocoder(client, configs.GoogleMapsRegion)
		logger.Info("Google Maps geocoding enabled")
	}

	return adapters, closeAll, nil
}
