package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/core/domain/services"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
	LogLevel        string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBAutoMigrate bool
	DBLockTimeout time.Duration

	RedisAddr        string
	RedisPassword    string
	RabbitMQURL      string
	KafkaBrokers     []string
	KafkaEventsTopic string
	GoogleMapsAPIKey string
	GoogleMapsRegion string

	SearchRadiusKm    float64
	MinRating         float64
	MaxNotify         int
	LocationFreshness time.Duration
	Weights           services.Weights

	CommissionRate       float64
	CancelCourierPenalty float64
	CancelClientFee      float64

	MatchTimeout     time.Duration
	MatchWorkers     int
	MatchQueueSize   int
	MaxMatchAttempts int
	RetryBackoff     time.Duration
	MaxRetryBackoff  time.Duration
	OfferTimeout     time.Duration
	SweepBatch       int
	RetrySchedule    string
	ExpirySchedule   string
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads .env when present, then the environment. Every malformed
// value is reported, not just the first.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	r := &envReader{}
	cfg := Config{
		HTTPPort:        r.str("HTTP_PORT", "8080"),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        r.str("LOG_LEVEL", "info"),

		DBHost:        r.str("DB_HOST", "localhost"),
		DBPort:        r.str("DB_PORT", "5432"),
		DBUser:        r.str("DB_USER", "postgres"),
		DBPassword:    r.str("DB_PASSWORD", "postgres"),
		DBName:        r.str("DB_NAME", "dispatch"),
		DBSslMode:     r.str("DB_SSLMODE", "disable"),
		DBAutoMigrate: r.bool("DB_AUTO_MIGRATE", true),
		DBLockTimeout: r.duration("DB_LOCK_TIMEOUT", 3*time.Second),

		RedisAddr:        r.str("REDIS_ADDR", ""),
		RedisPassword:    r.str("REDIS_PASSWORD", ""),
		RabbitMQURL:      r.str("RABBITMQ_URL", ""),
		KafkaBrokers:     r.list("KAFKA_BROKERS"),
		KafkaEventsTopic: r.str("KAFKA_EVENTS_TOPIC", "dispatch.job-events"),
		GoogleMapsAPIKey: r.str("GOOGLE_MAPS_API_KEY", ""),
		GoogleMapsRegion: r.str("GOOGLE_MAPS_REGION", ""),

		SearchRadiusKm:    r.float("MATCH_SEARCH_RADIUS_KM", 5),
		MinRating:         r.float("MATCH_MIN_RATING", 4.0),
		MaxNotify:         r.int("MATCH_MAX_NOTIFY", 3),
		LocationFreshness: r.duration("MATCH_LOCATION_FRESHNESS", 10*time.Minute),
		Weights:           r.weights("MATCH_WEIGHTS", services.DefaultWeights()),

		CommissionRate:       r.float("COMMISSION_RATE", 0.15),
		CancelCourierPenalty: r.float("CANCEL_COURIER_PENALTY", 500),
		CancelClientFee:      r.float("CANCEL_CLIENT_FEE", 300),

		MatchTimeout:     r.duration("MATCH_TIMEOUT", 30*time.Second),
		MatchWorkers:     r.int("MATCH_WORKERS", 4),
		MatchQueueSize:   r.int("MATCH_QUEUE_SIZE", 256),
		MaxMatchAttempts: r.int("MATCH_MAX_ATTEMPTS", 3),
		RetryBackoff:     r.duration("MATCH_RETRY_BACKOFF", 30*time.Second),
		MaxRetryBackoff:  r.duration("MATCH_MAX_RETRY_BACKOFF", 10*time.Minute),
		OfferTimeout:     r.duration("MATCH_OFFER_TIMEOUT", 2*time.Minute),
		SweepBatch:       r.int("SWEEP_BATCH", 100),
		RetrySchedule:    r.str("MATCH_RETRY_SCHEDULE", ""),
		ExpirySchedule:   r.str("MATCH_EXPIRY_SCHEDULE", ""),
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envReader collects parse failures so they can be reported together.
type envReader struct {
	errs []error
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) list(key string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *envReader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *envReader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

// weights parses "rating,proximity,acceptance,responsiveness".
func (r *envReader) weights(key string, def services.Weights) services.Weights {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		r.fail(key, v, errors.New("expected four comma separated weights"))
		return def
	}
	values := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			r.fail(key, v, err)
			return def
		}
		values[i] = f
	}
	w := services.Weights{Rating: values[0], Proximity: values[1], Acceptance: values[2], Responsiveness: values[3]}
	if err := w.Validate(); err != nil {
		r.fail(key, v, err)
		return def
	}
	return w
}
