package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

const pollTimeoutMs = 500

// channelToTopicAndKey maps a channel onto a Kafka topic and message key.
//
//	"coord:stream:S1:status" → topic: "coord-status", key: "S1"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	scope, streamID, suffix, err := splitChannel(channel)
	if err != nil {
		return "", "", err
	}
	return scope + "-" + strings.ReplaceAll(suffix, "_", "-"), streamID, nil
}

// patternToTopic maps a wildcard pattern onto the topic it covers.
//
//	"coord:stream:*:status" → "coord-status"
func patternToTopic(pattern string) (string, error) {
	topic, key, err := channelToTopicAndKey(pattern)
	if err != nil {
		return "", err
	}
	if key != "*" {
		return "", fmt.Errorf("pattern must wildcard the stream id: %s", pattern)
	}
	return topic, nil
}

type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
}

func (s *kafkaSubscription) stop() error {
	s.cancel()
	return s.consumer.Close()
}

// KafkaPubSub implements PubSub on Kafka topics keyed by stream id.
// Consumer groups are suffixed with the subscription key, and GroupID is
// expected to be unique per instance, so every instance sees every event.
type KafkaPubSub struct {
	cfg      KafkaConfig
	producer *kafka.Producer
	reports  chan struct{}

	mu      sync.Mutex
	subs    map[string]*kafkaSubscription
	created map[string]struct{}
}

// NewKafkaPubSub creates a new Kafka-based PubSub instance.
func NewKafkaPubSub(cfg KafkaConfig) (*KafkaPubSub, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka pubsub: brokers are required")
	}

	p, err := NewProducer(cfg.Brokers)
	if err != nil {
		return nil, err
	}

	k := &KafkaPubSub{
		cfg:      cfg,
		producer: p,
		reports:  make(chan struct{}),
		subs:     make(map[string]*kafkaSubscription),
		created:  make(map[string]struct{}),
	}
	go DrainDeliveryReports(p, k.reports, "pubsub")

	return k, nil
}

// topicOnce runs EnsureTopic the first time a topic is touched.
func (k *KafkaPubSub) topicOnce(topic string) {
	k.mu.Lock()
	_, done := k.created[topic]
	k.created[topic] = struct{}{}
	k.mu.Unlock()
	if done {
		return
	}

	if err := EnsureTopic(k.cfg.Brokers, topic, k.cfg.Partitions); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Str("topic", topic).Msg("failed to ensure pubsub topic")
	}
}

// Publish publishes an event to the topic derived from channel.
func (k *KafkaPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}
	k.topicOnce(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
	}
	if err := k.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

// Subscribe consumes the channel's topic, keeping only messages for its stream.
func (k *KafkaPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	topic, streamID, err := channelToTopicAndKey(channel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel: %w", err)
	}
	return k.subscribe(ctx, channel, topic, streamID)
}

// SubscribePattern consumes every message on the pattern's topic.
func (k *KafkaPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	topic, err := patternToTopic(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	return k.subscribe(ctx, pattern, topic, "")
}

func (k *KafkaPubSub) subscribe(ctx context.Context, subKey, topic, onlyStream string) (<-chan *Event, error) {
	k.topicOnce(topic)

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       k.cfg.Brokers,
		"group.id":                k.groupID(subKey),
		"auto.offset.reset":       "latest",
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if err := c.Subscribe(topic, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &kafkaSubscription{consumer: c, cancel: cancel}

	k.mu.Lock()
	prev := k.subs[subKey]
	k.subs[subKey] = sub
	k.mu.Unlock()
	if prev != nil {
		prev.stop()
	}

	eventCh := make(chan *Event, eventBuffer)
	go k.consume(subCtx, c, eventCh, onlyStream)
	return eventCh, nil
}

func (k *KafkaPubSub) groupID(subKey string) string {
	base := k.cfg.GroupID
	if base == "" {
		base = "pubsub-default"
	}
	return base + "-" + sanitizeGroupID(subKey)
}

func (k *KafkaPubSub) consume(ctx context.Context, c *kafka.Consumer, eventCh chan<- *Event, onlyStream string) {
	defer close(eventCh)
	l := pkglog.L()

	for ctx.Err() == nil {
		switch e := c.Poll(pollTimeoutMs).(type) {
		case nil:
		case *kafka.Message:
			event, ok := decodeMessage(e.Key, e.Value, onlyStream)
			if !ok {
				continue
			}
			select {
			case eventCh <- event:
			case <-ctx.Done():
				return
			default:
				l.Warn().Str(pkglog.FieldStreamID, event.StreamID).Msg("pubsub consumer is behind, event dropped")
			}
		case kafka.Error:
			l.Error().Err(e).Int("code", int(e.Code())).Bool("fatal", e.IsFatal()).Msg("kafka pubsub error")
			if e.IsFatal() {
				return
			}
		}
	}
}

// decodeMessage turns a record into an event. Records for other streams
// and undecodable values are skipped.
func decodeMessage(key, value []byte, onlyStream string) (*Event, bool) {
	if onlyStream != "" && string(key) != onlyStream {
		return nil, false
	}
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Msg("dropping malformed kafka pubsub event")
		return nil, false
	}
	return &event, true
}

// Unsubscribe unsubscribes from a channel or pattern.
func (k *KafkaPubSub) Unsubscribe(ctx context.Context, channel string) error {
	k.mu.Lock()
	sub, ok := k.subs[channel]
	delete(k.subs, channel)
	k.mu.Unlock()

	if !ok {
		return nil
	}
	if err := sub.stop(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	return nil
}

// Close stops every subscription, flushes and closes the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	subs := k.subs
	k.subs = make(map[string]*kafkaSubscription)
	k.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}

	k.producer.Flush(5000)
	k.producer.Close()
	<-k.reports
	return nil
}

var groupIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeGroupID(s string) string {
	return groupIDRegexp.ReplaceAllString(s, "-")
}
