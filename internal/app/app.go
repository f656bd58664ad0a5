package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/booking"
	"github.com/taxirent/bookingservice/internal/cache"
	"github.com/taxirent/bookingservice/internal/catalog"
	"github.com/taxirent/bookingservice/internal/config"
	"github.com/taxirent/bookingservice/internal/db"
	"github.com/taxirent/bookingservice/internal/events"
	"github.com/taxirent/bookingservice/internal/log"
	"github.com/taxirent/bookingservice/internal/metrics"
	"github.com/taxirent/bookingservice/internal/ratelimit"
	"github.com/taxirent/bookingservice/internal/tracing"
)

// App holds the booking service and the infrastructure behind it
type App struct {
	config        *config.Config
	logger        *zap.Logger
	cars          *catalog.MemoryCarStore
	dbPool        *db.Pool
	cache         *cache.Cache
	publisher     events.Publisher
	metricsServer *metrics.Server
	stopTracing   func(context.Context)

	Service *booking.Service
}

// New creates a new application instance. The logger must already be
// initialised.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.L(ctx)

	logger.Info("Initializing booking application",
		zap.String("app_name", cfg.AppName),
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("availability", cfg.Availability.Source))

	a := &App{config: cfg, logger: logger}

	if cfg.Tracing.Enabled {
		stop, err := tracing.Init(cfg.Tracing, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.stopTracing = stop
	}

	a.cars = catalog.NewMemoryCarStore()
	n, err := catalog.LoadCSV(ctx, cfg.Catalog.Path, a.cars)
	if err != nil {
		a.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded", zap.Int("cars", n))

	source, pool, err := NewAvailability(ctx, cfg)
	if err != nil {
		a.Shutdown(ctx)
		return nil, err
	}
	a.dbPool = pool

	validator, err := NewValidator(ctx, cfg)
	if err != nil {
		a.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize validator: %w", err)
	}

	a.publisher, err = NewPublisher(ctx, cfg)
	if err != nil {
		a.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize publisher: %w", err)
	}

	// Redis is optional: without it sessions cannot be resumed.
	var (
		snapshots booking.SnapshotStore
		limiter   ratelimit.RateLimiter
	)
	if cfg.Redis.Enabled {
		c, err := cache.NewCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis initialization failed, continuing without session checkpoints",
				zap.Error(err),
				zap.String("redis_addr", cfg.Redis.Addr))
		} else {
			a.cache = c
			snapshots = cache.NewSessionCache(c, cfg.Redis.SessionTTL)
			if cfg.RateLimit.Enabled {
				limiter = ratelimit.NewRedisRateLimiter(c.Client(), cfg.RateLimit, logger)
			}
		}
	}

	if cfg.Metrics.Enabled {
		a.metricsServer = metrics.NewServer(cfg.Metrics.Addr, logger)
	}

	a.Service = booking.NewService(booking.Options{
		Cars:         a.cars,
		Availability: source,
		Calendar:     cfg.Booking.CalendarConfig(),
		Pricing:      cfg.Booking.Pricing(),
		Validator:    validator,
		Publisher:    a.publisher,
		Snapshots:    snapshots,
		Limiter:      limiter,
	})
	return a, nil
}

// Cars returns the loaded catalog
func (a *App) Cars() *catalog.MemoryCarStore {
	return a.cars
}

// Published returns events kept in memory when Kafka is disabled.
func (a *App) Published() []*events.Event {
	if rec, ok := a.publisher.(*events.RecordingPublisher); ok {
		return rec.Events
	}
	return nil
}

// StartMetrics serves /metrics in the background when enabled
func (a *App) StartMetrics(ctx context.Context) {
	if a.metricsServer == nil {
		return
	}
	go func() {
		if err := a.metricsServer.Start(ctx); err != nil {
			a.logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}

// Shutdown releases every resource the application holds
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Shutting down booking application")

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Error("Failed to stop metrics server", zap.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Failed to close publisher", zap.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	if a.stopTracing != nil {
		a.stopTracing(ctx)
	}

	a.logger.Info("Application shutdown complete")
}
