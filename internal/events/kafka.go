package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/retry"
)

// KafkaConfig configures the Kafka publisher
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	Timeout  time.Duration
	Retry    retry.Config
}

// KafkaPublisher publishes events to a Kafka topic with a sarama SyncProducer.
// Messages are keyed by the event aggregate so a car's events stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	retry    retry.Config
	logger   *zap.Logger
}

// NewKafkaPublisher connects to the brokers
func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, cfg.Topic, cfg.Retry, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, retryCfg retry.Config, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		retry:    retryCfg,
		logger:   logger,
	}
}

func newSaramaConfig(cfg KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	// Retries happen in Publish so they are visible in logs.
	sc.Producer.Retry.Max = 0
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = cfg.Timeout
		sc.Net.DialTimeout = cfg.Timeout
	}
	return sc
}

// Publish sends one event
func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}

	err = retry.Do(ctx, p.retry, p.logger, func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return classify(err)
		}
		p.logger.Debug("Published event",
			zap.String("topic", p.topic),
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// PublishBatch sends events in one produce call
func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		msg, err := p.message(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	err := retry.Do(ctx, p.retry, p.logger, func() error {
		if err := p.producer.SendMessages(msgs); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(events), err)
	}
	return nil
}

// Close closes the publisher
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaPublisher) message(event *Event) (*sarama.ProducerMessage, error) {
	if err := event.validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Aggregate),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID)},
		},
	}, nil
}

// classify marks errors that a resend cannot fix.
func classify(err error) error {
	switch {
	case errors.Is(err, sarama.ErrMessageSizeTooLarge),
		errors.Is(err, sarama.ErrInvalidMessage),
		errors.Is(err, sarama.ErrUnknownTopicOrPartition),
		errors.Is(err, sarama.ErrTopicAuthorizationFailed),
		errors.Is(err, sarama.ErrClosedClient):
		return retry.Permanent(err)
	}
	return err
}
