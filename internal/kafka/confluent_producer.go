package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
)

const headerEventType = "event_type"

// ConfluentProducer implements StreamEventProducer using confluent-kafka-go.
type ConfluentProducer struct {
	producer *kafka.Producer
	topic    string
	reports  chan struct{}
}

// NewConfluentProducer creates the producer and makes sure the topic exists.
func NewConfluentProducer(brokers, topic string, partitions int) (*ConfluentProducer, error) {
	if err := pubsub.EnsureTopic(brokers, topic, partitions); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Str("topic", topic).Msg("failed to ensure topic, may already exist")
	}

	p, err := pubsub.NewProducer(brokers)
	if err != nil {
		return nil, err
	}

	cp := &ConfluentProducer{
		producer: p,
		topic:    topic,
		reports:  make(chan struct{}),
	}
	go pubsub.DrainDeliveryReports(p, cp.reports, "stream-events")

	return cp, nil
}

// produce keys every record by stream id so one stream stays on one partition.
// The event type is mirrored into a header for consumers that route on it.
func (cp *ConfluentProducer) produce(ctx context.Context, event *StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}

	err = cp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &cp.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.StreamID),
		Value:          value,
		Headers:        []kafka.Header{{Key: headerEventType, Value: []byte(event.Type)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce %s: %w", event.Type, err)
	}
	return nil
}

func (cp *ConfluentProducer) ProduceStreamStarted(ctx context.Context, streamID, broadcasterID string) error {
	return cp.produce(ctx, streamStartedEvent(streamID, broadcasterID, time.Now()))
}

func (cp *ConfluentProducer) ProduceStreamEnded(ctx context.Context, streamID, broadcasterID, reason string) error {
	return cp.produce(ctx, streamEndedEvent(streamID, broadcasterID, reason, time.Now()))
}

func (cp *ConfluentProducer) ProduceTipSent(ctx context.Context, tx *domain.Transaction) error {
	return cp.produce(ctx, tipSentEvent(tx))
}

// Close flushes pending messages and closes the producer.
func (cp *ConfluentProducer) Close() error {
	if remaining := cp.producer.Flush(5000); remaining > 0 {
		l := pkglog.L()
		l.Warn().Int("remaining", remaining).Msg("stream events left unflushed")
	}
	cp.producer.Close()
	<-cp.reports
	return nil
}
