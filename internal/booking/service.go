package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/auth"
	"github.com/taxirent/bookingservice/internal/availability"
	"github.com/taxirent/bookingservice/internal/cache"
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/catalog"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/events"
	"github.com/taxirent/bookingservice/internal/log"
	"github.com/taxirent/bookingservice/internal/metrics"
	"github.com/taxirent/bookingservice/internal/pricing"
	"github.com/taxirent/bookingservice/internal/ratelimit"
	"github.com/taxirent/bookingservice/internal/selection"
	"github.com/taxirent/bookingservice/internal/tracing"
)

// SnapshotStore persists session snapshots. *cache.SessionCache implements it.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, snapshot interface{}) error
	Load(ctx context.Context, sessionID string, dest interface{}) error
}

// Options wires the service. Cars, Availability and Validator are required.
type Options struct {
	Cars         catalog.CarRepository
	Availability availability.Source
	Calendar     calendar.Config
	Pricing      pricing.Config
	Validator    auth.Validator
	Publisher    events.Publisher
	Snapshots    SnapshotStore
	// Limiter caps submissions per customer. Nil disables the check.
	Limiter ratelimit.RateLimiter
}

// Service opens booking sessions for cars and turns them into submitted
// bookings.
type Service struct {
	cars         catalog.CarRepository
	availability availability.Source
	calendarCfg  calendar.Config
	calc         *pricing.Calculator
	validator    auth.Validator
	publisher    events.Publisher
	snapshots    SnapshotStore
	limiter      ratelimit.RateLimiter
}

func NewService(opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		cars:         opts.Cars,
		availability: opts.Availability,
		calendarCfg:  opts.Calendar,
		calc:         pricing.NewCalculator(opts.Pricing),
		validator:    opts.Validator,
		publisher:    publisher,
		snapshots:    opts.Snapshots,
		limiter:      opts.Limiter,
	}
}

// Confirmation acknowledges a submitted booking. The deposit is paid at
// pickup and is not part of the grand total.
type Confirmation struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	CarID        string         `json:"car_id"`
	CustomerID   string         `json:"customer_id"`
	Totals       pricing.Totals `json:"totals"`
	DepositCents int64          `json:"deposit_cents"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}

// ParseDate parses an ISO date from the host UI.
func (s *Service) ParseDate(value string) (civil.Date, error) {
	return domain.ParseDate(value)
}

// Open starts a new session for carID.
func (s *Service) Open(ctx context.Context, carID string) (session *Session, err error) {
	ctx, span := tracing.StartSpan(ctx, "booking.Open", attribute.String("car_id", carID))
	defer func() { tracing.End(span, err) }()

	return s.open(ctx, uuid.NewString(), carID)
}

func (s *Service) open(ctx context.Context, sessionID, carID string) (*Session, error) {
	ctx = log.WithCarID(log.WithSessionID(ctx, sessionID), carID)

	car, ok := s.cars.Get(carID)
	if !ok {
		return nil, domain.NewNotFoundError("car", carID)
	}

	cfg := s.calendarCfg
	today := calendar.New(cfg).Today()
	occupied, err := s.availability.OccupiedDates(ctx, carID, today)
	if err != nil {
		metrics.RecordError("availability", "booking")
		log.Error(ctx, "Failed to load occupied dates", zap.Error(err))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to load availability: %v", err))
	}
	cfg.Occupied = occupied.Union(cfg.Occupied)

	session := NewSession(sessionID, car, calendar.New(cfg), s.calc)
	session.Observe(func(mode selection.ShiftMode, res selection.RangeResult) {
		metrics.RecordSelection(mode.String(), res.Applied, res.Skipped)
		log.Debug(ctx, "Selection applied",
			zap.String("mode", mode.String()),
			zap.Bool("deselect", res.Deselect),
			zap.Int("applied", res.Applied),
			zap.Int("skipped", res.Skipped))
	})

	metrics.RecordSessionOpened()
	log.Info(ctx, "Booking session opened",
		zap.Int("occupied_dates", len(cfg.Occupied)),
		zap.String("month", session.Month().String()))
	return session, nil
}

// Submit books the session's selection for the customer behind token.
func (s *Service) Submit(ctx context.Context, session *Session, token string) (conf *Confirmation, err error) {
	ctx, span := tracing.StartSpan(ctx, "booking.Submit",
		attribute.String("session_id", session.ID()),
		attribute.String("car_id", session.Car().ID))
	defer func() { tracing.End(span, err) }()
	ctx = log.WithCarID(log.WithSessionID(ctx, session.ID()), session.Car().ID)

	customerID, err := s.validator.Validate(ctx, token)
	if err != nil {
		log.Warn(ctx, "Rejected booking submission", zap.Error(err))
		return nil, domain.NewUnauthorizedError("login required to submit a booking")
	}
	ctx = log.WithCustomerID(ctx, customerID)

	if err := s.allow(ctx, customerID); err != nil {
		return nil, err
	}

	summary := session.Summary()
	if !summary.CanSubmit {
		return nil, domain.NewInvalidStateError("no shifts selected", session.ID())
	}

	confirmation := &Confirmation{
		ID:           uuid.NewString(),
		SessionID:    session.ID(),
		CarID:        summary.CarID,
		CustomerID:   customerID,
		Totals:       summary.Totals,
		DepositCents: summary.DepositCents,
		SubmittedAt:  time.Now().UTC(),
	}

	event := events.NewEvent(events.TypeBookingSubmitted, confirmation.CarID, confirmationData(confirmation))
	err = s.publisher.Publish(ctx, event)
	metrics.RecordEventPublished(event.Type, err)
	if err != nil {
		log.Error(ctx, "Failed to publish booking event", zap.Error(err))
		return nil, domain.NewInternalError("failed to submit booking")
	}

	metrics.RecordBookingSubmitted(confirmation.Totals.GrandTotalCents)
	log.Info(ctx, "Booking submitted",
		zap.String("confirmation_id", confirmation.ID),
		zap.Int("items", len(confirmation.Totals.Items)),
		zap.Int64("grand_total_cents", confirmation.Totals.GrandTotalCents))
	return confirmation, nil
}

// allow applies the per-customer submission limit. A limiter failure lets
// the submission through.
func (s *Service) allow(ctx context.Context, customerID string) error {
	if s.limiter == nil {
		return nil
	}

	allowed, err := s.limiter.Allow(ctx, ratelimit.SubmitKey(customerID))
	if err != nil {
		log.Warn(ctx, "Rate limit check failed, allowing submission", zap.Error(err))
		return nil
	}
	if !allowed {
		log.Warn(ctx, "Booking submission rate limit exceeded")
		metrics.RecordError("rate_limited", "booking")
		return domain.NewRateLimitedError("too many booking submissions, try again later")
	}
	return nil
}

func confirmationData(c *Confirmation) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(c.Totals.Items))
	for _, item := range c.Totals.Items {
		items = append(items, map[string]interface{}{
			"date":        item.Date.String(),
			"shift":       item.Mode.String(),
			"label":       item.Label,
			"price_cents": item.PriceCents,
		})
	}
	return map[string]interface{}{
		"confirmation_id":    c.ID,
		"session_id":         c.SessionID,
		"car_id":             c.CarID,
		"customer_id":        c.CustomerID,
		"items":              items,
		"subtotal_cents":     c.Totals.SubtotalCents,
		"platform_fee_cents": c.Totals.PlatformFeeCents,
		"grand_total_cents":  c.Totals.GrandTotalCents,
		"deposit_cents":      c.DepositCents,
		"submitted_at":       c.SubmittedAt.Format(time.RFC3339),
	}
}

// Checkpoint saves the session so it can be resumed. It does nothing when
// no snapshot store is configured.
func (s *Service) Checkpoint(ctx context.Context, session *Session) error {
	if s.snapshots == nil {
		return nil
	}

	start := time.Now()
	err := s.snapshots.Save(ctx, session.ID(), session.Snapshot())
	metrics.RecordRedisOperation("session_save", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to checkpoint session %s: %w", session.ID(), err)
	}
	return nil
}

// Resume reopens a checkpointed session. Availability is reloaded, so
// dates taken in the meantime are dropped from the selection.
func (s *Service) Resume(ctx context.Context, sessionID string) (session *Session, err error) {
	ctx, span := tracing.StartSpan(ctx, "booking.Resume", attribute.String("session_id", sessionID))
	defer func() { tracing.End(span, err) }()

	if s.snapshots == nil {
		return nil, domain.NewNotFoundError("session", sessionID)
	}

	var snap Snapshot
	start := time.Now()
	err = s.snapshots.Load(ctx, sessionID, &snap)
	metrics.RecordRedisOperation("session_load", err, time.Since(start))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, domain.NewNotFoundError("session", sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	session, err = s.open(ctx, sessionID, snap.CarID)
	if err != nil {
		return nil, err
	}
	kept, err := session.Restore(snap)
	if err != nil {
		return nil, err
	}

	if dropped := len(snap.Entries) - kept; dropped > 0 {
		log.Info(log.WithSessionID(ctx, sessionID), "Dropped unavailable dates on resume", zap.Int("dropped", dropped))
	}
	return session, nil
}
