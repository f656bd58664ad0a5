package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/auth"
	"github.com/taxirent/bookingservice/internal/availability"
	"github.com/taxirent/bookingservice/internal/circuitbreaker"
	"github.com/taxirent/bookingservice/internal/config"
	"github.com/taxirent/bookingservice/internal/db"
	"github.com/taxirent/bookingservice/internal/events"
	"github.com/taxirent/bookingservice/internal/log"
	"github.com/taxirent/bookingservice/internal/metrics"
	"github.com/taxirent/bookingservice/internal/retry"
)

// NewValidator creates the customer token validator based on configuration
func NewValidator(ctx context.Context, cfg *config.Config) (auth.Validator, error) {
	log.Info(ctx, "Initializing customer token validator",
		zap.String("mode", cfg.Auth.Mode))

	var opts []auth.JWTOption
	if cfg.Auth.Issuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.Auth.Issuer))
	}

	switch cfg.Auth.Mode {
	case "jwt":
		if cfg.Auth.PublicKeyPEM != "" {
			return auth.NewJWTValidator(cfg.Auth.PublicKeyPEM, opts...)
		}
		return auth.NewJWTValidatorFromFile(cfg.Auth.PublicKeyPath, opts...)
	case "dev":
		log.Warn(ctx, "Using development token validator - tokens are not verified")
		return auth.DevValidator{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}
}

// NewPublisher creates the booking event publisher. Without Kafka, events
// are kept in memory.
func NewPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		log.Info(ctx, "Kafka disabled, booking events are recorded in memory")
		return &events.RecordingPublisher{}, nil
	}

	publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		ClientID: cfg.Kafka.ClientID,
		Timeout:  cfg.Kafka.Timeout,
		Retry:    retry.DefaultConfig(),
	}, log.L(ctx))
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "Kafka publisher initialized",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return publisher, nil
}

// NewAvailability creates the occupied-date source. Static entries from the
// configuration always apply; the postgres source adds reservations.
func NewAvailability(ctx context.Context, cfg *config.Config) (availability.Source, *db.Pool, error) {
	static := availability.NewStaticSource()
	for _, o := range cfg.Availability.Static {
		if err := static.AddStrings(o.CarID, o.Dates); err != nil {
			return nil, nil, err
		}
	}

	if cfg.Availability.Source != "postgres" {
		return static, nil, nil
	}

	dbConfig := db.DefaultConfig()
	dbConfig.DSN = cfg.Postgres.DSN
	dbConfig.MaxConns = cfg.Postgres.MaxConns
	pool, err := db.NewPool(ctx, dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	breaker := circuitbreaker.New("availability-postgres", cfg.Availability.Breaker, log.L(ctx))
	breaker.OnStateChange(func(name string, to circuitbreaker.State) {
		metrics.RecordBreakerState(name, int(to))
	})
	reservations := availability.WithBreaker(availability.NewPostgresSource(pool), breaker)
	return availability.Merge(static, reservations), pool, nil
}
