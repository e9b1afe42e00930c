package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"BetPulse/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig     `yaml:"server"`
	Logger      LoggerConfig     `yaml:"logger"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Fetch       FetchConfig      `yaml:"fetch"`
	Cache       CacheConfig      `yaml:"cache"`
	Source      SourceConfig     `yaml:"source"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Exporter    ExporterConfig   `yaml:"exporter"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
	RateLimit       struct {
		RPS     float64       `yaml:"rps" default:"0" validate:"gte=0"`
		Burst   int           `yaml:"burst" default:"20" validate:"gte=0"`
		IdleTTL time.Duration `yaml:"idle_ttl" default:"10m"`
	} `yaml:"rate_limit"`
	AggregateTimeout time.Duration `yaml:"aggregate_timeout" default:"10s"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
	MaxAgeDays int    `yaml:"max_age_days" default:"0"`
	Compress   bool   `yaml:"compress"`
	// ErrorTopic enables the aggregated error-log collector when set.
	ErrorTopic    string        `yaml:"error_topic"`
	FlushInterval time.Duration `yaml:"flush_interval" default:"30s"`
	FlushCount    int           `yaml:"flush_count" default:"100"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

type FetchConfig struct {
	BaseURL    string        `yaml:"base_url" default:"http://localhost:8000" validate:"required,url"`
	Timeout    time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	Retries    int           `yaml:"retries" default:"3" validate:"gte=0"`
	RetryDelay time.Duration `yaml:"retry_delay" default:"1s" validate:"gte=0"`
	CacheTTL   time.Duration `yaml:"cache_ttl" default:"5m" validate:"gte=0"`
	HealthPath string        `yaml:"health_path" default:"/health"`
	RateLimit  struct {
		RPS   float64 `yaml:"rps" default:"0" validate:"gte=0"`
		Burst int     `yaml:"burst" default:"1" validate:"gte=0"`
	} `yaml:"rate_limit"`
}

type CacheConfig struct {
	Backend       string `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
	MemoryMaxSize int    `yaml:"memory_max_size" default:"1000" validate:"gte=0"`
	Redis         struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"betpulse"`
		PoolSize int    `yaml:"pool_size" default:"10" validate:"gte=0"`
	} `yaml:"redis"`
}

type SourceConfig struct {
	Type                 string `yaml:"type" default:"http" validate:"oneof=http clickhouse"`
	BetsPath             string `yaml:"bets_path" default:"/api/bets"`
	RecentBetsPath       string `yaml:"recent_bets_path" default:"/api/bets/recent"`
	PredictionsPath      string `yaml:"predictions_path" default:"/api/predictions"`
	RecentPredictionPath string `yaml:"recent_predictions_path" default:"/api/predictions/recent"`
	OpportunitiesPath    string `yaml:"opportunities_path" default:"/api/opportunities/recent"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RecordsTopic string   `yaml:"records_topic" default:"betpulse.records"`
	MetricsTopic string   `yaml:"metrics_topic" default:"betpulse.metrics"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		Enabled    bool          `yaml:"enabled"`
		GroupID    string        `yaml:"group_id" default:"betpulse"`
		Workers    int           `yaml:"workers" default:"2"`
		BufferSize int           `yaml:"buffer_size" default:"100"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"betpulse.records.dlq"`
		MinBytes   int           `yaml:"min_bytes" default:"10000"`
		MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
	} `yaml:"consumer"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type ClickHouseConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"betpulse"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert" default:"true"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert" default:"true"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

// Enabled reports whether a ClickHouse host is configured.
func (c ClickHouseConfig) Enabled() bool { return c.Host != "" }

type ExporterConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval" default:"1m" validate:"gt=0"`
	Ranges   []string      `yaml:"ranges" default:"[\"day\",\"week\",\"month\",\"all\"]" validate:"dive,oneof=day week month all"`
}

var validate = validator.New()

// Default returns a Config populated from struct-tag defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Missing keys take
// their struct-tag defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
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
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from BETPULSE_* variables resolved by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BETPULSE_API_BASE_URL"); ok && v != "" {
		c.Fetch.BaseURL = v
	}
	if v, ok := lookup("BETPULSE_FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BETPULSE_FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if v, ok := lookup("BETPULSE_FETCH_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BETPULSE_FETCH_RETRIES: %w", err)
		}
		c.Fetch.Retries = n
	}
	if v, ok := lookup("BETPULSE_KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v, ok := lookup("BETPULSE_SOURCE"); ok && v != "" {
		c.Source.Type = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

// Validate checks field rules and cross-section requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Source.Type == "clickhouse" && !c.ClickHouse.Enabled() {
		return fmt.Errorf("source.type 'clickhouse' requires clickhouse.host")
	}
	if c.Kafka.Consumer.Enabled && !c.ClickHouse.Enabled() {
		return fmt.Errorf("kafka.consumer requires clickhouse.host")
	}
	if (c.Kafka.Consumer.Enabled || c.Exporter.Enabled) && !c.Kafka.Enabled() {
		return fmt.Errorf("kafka.brokers cannot be empty when consumer or exporter is enabled")
	}
	return nil
}
