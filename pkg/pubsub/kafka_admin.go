package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

const (
	defaultPartitions = 4
	adminTimeout      = 10 * time.Second
)

// EnsureTopic creates topic with single-replica partitions. A topic that
// already exists is not an error.
func EnsureTopic(brokers, topic string, partitions int) error {
	if partitions <= 0 {
		partitions = defaultPartitions
	}

	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("failed to create kafka admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError, kafka.ErrTopicAlreadyExists:
		default:
			return fmt.Errorf("failed to create topic %s: %s", r.Topic, r.Error.Error())
		}
	}
	return nil
}

// NewProducer builds the producer settings shared by every publisher in
// this module: leader acks, short linger, snappy batches.
func NewProducer(brokers string) (*kafka.Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return p, nil
}

// DrainDeliveryReports logs failed deliveries until the producer is closed,
// then closes done.
func DrainDeliveryReports(p *kafka.Producer, done chan<- struct{}, what string) {
	defer close(done)
	for e := range p.Events() {
		m, ok := e.(*kafka.Message)
		if !ok || m.TopicPartition.Error == nil {
			continue
		}
		l := pkglog.L()
		topic := ""
		if m.TopicPartition.Topic != nil {
			topic = *m.TopicPartition.Topic
		}
		l.Error().Err(m.TopicPartition.Error).Str("producer", what).Str("topic", topic).Msg("kafka delivery failed")
	}
}
