package config

import (
	"time"

	pkgconfig "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/database"
	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/storage"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Database  database.Config
	Redis     RedisConfig
	Cache     CacheConfig
	PubSub    pubsub.Config
	Kafka     KafkaConfig
	Storage   storage.Config
	Chat      ChatConfig
	Instance  InstanceConfig
	Log       pkglog.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	ReadBuffer     int           `mapstructure:"read_buffer"`
	WriteBuffer    int           `mapstructure:"write_buffer"`
}

// WithDefaults fills zero fields so a partially configured client still has
// working deadlines and a send buffer.
func (c WebSocketConfig) WithDefaults() WebSocketConfig {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	return c
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig controls the Redis stream cache. Disabled falls back to the database.
type CacheConfig struct {
	Enabled   bool
	Prefix    string
	StreamTTL time.Duration `mapstructure:"stream_ttl"`
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type ChatConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

type InstanceConfig struct {
	ID string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 65536)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.read_buffer", 1024)
	v.SetDefault("websocket.write_buffer", 1024)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "streamvibe")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/streamvibe.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.prefix", "coord:streams")
	v.SetDefault("cache.stream_ttl", "30s")
	v.SetDefault("pubsub.driver", "redis")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.password", "")
	v.SetDefault("pubsub.redis.db", 0)
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "stream-coordinator")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "stream-events")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./data/recaps")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("chat.max_length", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "stream-coordinator")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("pubsub.kafka.group_id", "KAFKA_PUBSUB_GROUP_ID")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_STREAM_TOPIC")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.local.base_path", "STORAGE_LOCAL_PATH")
	v.BindEnv("storage.s3.endpoint", "STORAGE_S3_ENDPOINT")
	v.BindEnv("storage.s3.region", "STORAGE_S3_REGION")
	v.BindEnv("storage.s3.bucket", "STORAGE_S3_BUCKET")
	v.BindEnv("storage.s3.prefix", "STORAGE_S3_PREFIX")
	v.BindEnv("storage.s3.access_key_id", "STORAGE_S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "STORAGE_S3_SECRET_ACCESS_KEY")
	v.BindEnv("instance.id", "INSTANCE_ID")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = parseDuration(v, "server.shutdown_timeout", 10*time.Second)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Cache.StreamTTL = parseDuration(v, "cache.stream_ttl", 30*time.Second)

	if cfg.Instance.ID == "" {
		cfg.Instance.ID = uuid.NewString()
	}
	cfg.Log.InstanceID = cfg.Instance.ID
	// every instance must see every status event
	cfg.PubSub.Kafka.GroupID = cfg.PubSub.Kafka.GroupID + "-" + cfg.Instance.ID

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
