package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxirent/bookingservice/internal/retry"
)

func testRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
}

func submittedEvent() *Event {
	return NewEvent(TypeBookingSubmitted, "car-001", map[string]interface{}{
		"confirmation_id":   "c-1",
		"grand_total_cents": 82820,
	})
}

func TestNoopPublisher(t *testing.T) {
	publisher := NoopPublisher{}
	ctx := context.Background()

	if err := publisher.Publish(ctx, submittedEvent()); err != nil {
		t.Errorf("Expected no error from NoopPublisher, got: %v", err)
	}
	if err := publisher.PublishBatch(ctx, []*Event{submittedEvent()}); err != nil {
		t.Errorf("Expected no error from NoopPublisher, got: %v", err)
	}
}

func TestPublisherInterface(t *testing.T) {
	var _ Publisher = NoopPublisher{}
	var _ Publisher = &RecordingPublisher{}
	var _ Publisher = &KafkaPublisher{}
}

func TestNewEvent(t *testing.T) {
	e := submittedEvent()

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeBookingSubmitted, e.Type)
	assert.Equal(t, "car-001", e.Aggregate)
	assert.Equal(t, 1, e.Version)
	assert.NotZero(t, e.Timestamp)
	assert.NotEqual(t, e.ID, submittedEvent().ID)
}

func TestRecordingPublisher(t *testing.T) {
	p := &RecordingPublisher{}

	require.NoError(t, p.PublishBatch(context.Background(), []*Event{submittedEvent(), submittedEvent()}))
	assert.Len(t, p.Events, 2)

	assert.Error(t, p.Publish(context.Background(), &Event{ID: "x"}))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	event := submittedEvent()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.ID != event.ID || got.Type != TypeBookingSubmitted {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "bookings", testRetry(), zap.NewNop())
	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_RetriesTransientFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	producer.ExpectSendMessageAndSucceed()

	publisher := NewKafkaPublisherWithProducer(producer, "bookings", testRetry(), zap.NewNop())
	require.NoError(t, publisher.Publish(context.Background(), submittedEvent()))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PermanentFailureIsNotRetried(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrMessageSizeTooLarge)

	publisher := NewKafkaPublisherWithProducer(producer, "bookings", testRetry(), zap.NewNop())
	err := publisher.Publish(context.Background(), submittedEvent())

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrMessageSizeTooLarge)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishBatch(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	publisher := NewKafkaPublisherWithProducer(producer, "bookings", testRetry(), zap.NewNop())
	require.NoError(t, publisher.PublishBatch(context.Background(), []*Event{submittedEvent(), submittedEvent()}))
	require.NoError(t, publisher.PublishBatch(context.Background(), nil))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_RejectsInvalidEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	publisher := NewKafkaPublisherWithProducer(producer, "bookings", testRetry(), zap.NewNop())
	assert.Error(t, publisher.Publish(context.Background(), &Event{ID: "no-type"}))
	require.NoError(t, publisher.Close())
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{Topic: "bookings"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewSaramaConfig(t *testing.T) {
	sc := newSaramaConfig(KafkaConfig{ClientID: "booking-calendar", Timeout: 3 * time.Second})

	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.Equal(t, "booking-calendar", sc.ClientID)
	assert.Equal(t, 3*time.Second, sc.Producer.Timeout)
}
