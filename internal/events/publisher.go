package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeBookingSubmitted = "booking.submitted"
)

// Event represents a domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Aggregate string                 `json:"aggregate"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
	Version   int                    `json:"version"`
}

// Publisher defines the interface for publishing events
type Publisher interface {
	// Publish publishes an event
	Publish(ctx context.Context, event *Event) error

	// PublishBatch publishes multiple events
	PublishBatch(ctx context.Context, events []*Event) error

	// Close closes the publisher
	Close() error
}

// NewEvent creates a new event. aggregate is the id the event is keyed by.
func NewEvent(eventType, aggregate string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Aggregate: aggregate,
		Data:      data,
		Timestamp: time.Now().Unix(),
		Version:   1,
	}
}

func (e *Event) validate() error {
	if e == nil {
		return fmt.Errorf("event is nil")
	}
	if e.Type == "" {
		return fmt.Errorf("event %s has no type", e.ID)
	}
	return nil
}

// NoopPublisher is a no-operation publisher for testing and development
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event *Event) error { return nil }

func (NoopPublisher) PublishBatch(ctx context.Context, events []*Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

// RecordingPublisher keeps published events in memory. The CLI uses it to
// print what would have been sent.
type RecordingPublisher struct {
	Events []*Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event *Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) PublishBatch(ctx context.Context, events []*Event) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
		}
	}
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }
