package pubsub

import (
	"fmt"
	"time"
)

// Drivers
const (
	DriverRedis = "redis"
	DriverKafka = "kafka"
	DriverNone  = "none"
)

// Config selects the broker that relays stream status between instances.
type Config struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig configures the Kafka driver. GroupID should be unique per
// instance; subscriptions sharing a group split the stream between them.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	GroupID    string `mapstructure:"group_id"`
	Partitions int    `mapstructure:"partitions"`
}

// Enabled reports whether a broker driver is configured.
func (c Config) Enabled() bool {
	return c.Driver != "" && c.Driver != DriverNone
}

// Validate checks that the selected driver has what it needs to connect.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverNone:
		return nil
	case DriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("pubsub: redis address is required")
		}
	case DriverKafka:
		if c.Kafka.Brokers == "" {
			return fmt.Errorf("pubsub: kafka brokers are required")
		}
	default:
		return fmt.Errorf("unsupported pubsub driver: %q", c.Driver)
	}
	return nil
}

// NewPubSub connects the configured driver.
func NewPubSub(cfg Config) (PubSub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaPubSub(cfg.Kafka)
	case DriverRedis:
		return NewRedisPubSub(cfg.Redis)
	default:
		return nil, fmt.Errorf("pubsub driver %q has no broker", cfg.Driver)
	}
}
