package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"FinDash/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// MaxForecastOffset is the largest forecast offset, in months, the service
// accepts.
const MaxForecastOffset = 120

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"1337"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"findash.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Mongo struct {
		URI            string        `yaml:"uri" default:"mongodb://localhost:27017"`
		Database       string        `yaml:"database"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
		MaxPoolSize    uint64        `yaml:"max_pool_size" default:"20"`
	} `yaml:"mongo"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"findash:"`
		Pool     struct {
			Size    int           `yaml:"size" default:"10"`
			MinIdle int           `yaml:"min_idle" default:"2"`
			Timeout time.Duration `yaml:"timeout" default:"4s"`
		} `yaml:"pool"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"findash"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert" default:"true"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"10s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			Changes   string `yaml:"changes" default:"dashboard.changes"`
			Forecasts string `yaml:"forecasts" default:"forecast.computed"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"findash"`
			InstanceID string        `yaml:"instance_id"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"dashboard.changes.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Forecast struct {
		Offset   int           `yaml:"offset" default:"12"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"10m"`
		Archive  bool          `yaml:"archive" default:"true"`
	} `yaml:"forecast"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl" default:"5m"`
		MaxEntries      int           `yaml:"max_entries" default:"1024"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
		// LocalTTL bounds the in-process copy kept in front of Redis.
		LocalTTL time.Duration `yaml:"local_ttl" default:"30s"`
	} `yaml:"cache"`
	Provider struct {
		Type    string        `yaml:"type" default:"store"`
		BaseURL string        `yaml:"base_url" default:"http://localhost:1337"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"provider"`
	RateLimit struct {
		Enabled    bool    `yaml:"enabled" default:"true"`
		Capacity   float64 `yaml:"capacity" default:"60"`
		RefillRate float64 `yaml:"refill_rate" default:"10"`
	} `yaml:"ratelimit"`
	Live struct {
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"live"`
	Seed struct {
		Path string `yaml:"path" default:"config/seed.json"`
	} `yaml:"seed"`
}

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Keys missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. getenv is injected for tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("MONGO_URL"); v != "" {
		c.Mongo.URI = v
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitAndTrim(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("PROVIDER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := getenv("INSTANCE_ID"); v != "" {
		c.Kafka.Consumer.InstanceID = v
	}
}

// ConsumerGroupID returns this instance's consumer group. Every instance
// keeps its own local cache and live clients, so each one must see every
// change event: the group is suffixed with the instance ID, or with the
// hostname when none is configured.
func (c *Config) ConsumerGroupID(hostname func() (string, error)) string {
	id := strings.TrimSpace(c.Kafka.Consumer.InstanceID)
	if id == "" {
		if h, err := hostname(); err == nil {
			id = strings.TrimSpace(h)
		}
	}
	if id == "" {
		return c.Kafka.Consumer.GroupID
	}
	return c.Kafka.Consumer.GroupID + "-" + id
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Forecast.Offset < 0 || c.Forecast.Offset > MaxForecastOffset {
		return fmt.Errorf("forecast.offset must be within [0, %d], got %d", MaxForecastOffset, c.Forecast.Offset)
	}
	switch c.Provider.Type {
	case "store":
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for the store provider")
		}
	case "http":
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the http provider")
		}
	default:
		return fmt.Errorf("provider.type must be 'store' or 'http', got '%s'", c.Provider.Type)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if strings.TrimSpace(c.Kafka.Topics.Changes) == "" {
			return fmt.Errorf("kafka.topics.changes is required when kafka is enabled")
		}
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka to be enabled")
	}
	return nil
}
