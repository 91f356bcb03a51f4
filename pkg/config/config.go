package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Market data providers.
const (
	ProviderYahoo      = "yahoo"
	ProviderClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		RateLimit       struct {
			Enabled bool    `yaml:"enabled" default:"true"`
			Rate    float64 `yaml:"rate" default:"5" validate:"gt=0"`
			Burst   int     `yaml:"burst" default:"20" validate:"min=1"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		Path    string        `yaml:"path" default:"/metrics"`
		Slow    time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"metrics"`
	Market struct {
		Provider   string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo clickhouse"`
		BaseURL    string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		UserAgent  string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; sectorvol/1.0)"`
		Timeout    time.Duration `yaml:"timeout" default:"20s"`
		Rate       float64       `yaml:"rate" default:"2" validate:"gt=0"`
		Burst      int           `yaml:"burst" default:"4" validate:"min=1"`
		MaxRetries uint64        `yaml:"max_retries" default:"3"`
		Breaker    struct {
			MaxFailures uint32        `yaml:"max_failures" default:"5" validate:"min=1"`
			OpenTimeout time.Duration `yaml:"open_timeout" default:"30s"`
		} `yaml:"breaker"`
	} `yaml:"market"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl" default:"12h"`
		MemorySize int           `yaml:"memory_size" default:"256" validate:"min=1"`
		Redis      struct {
			Enabled  bool          `yaml:"enabled"`
			Addr     string        `yaml:"addr" default:"localhost:6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix" default:"sectorvol"`
			L1TTL    time.Duration `yaml:"l1_ttl" default:"5m"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Analytics struct {
		Window          int           `yaml:"window" default:"25" validate:"min=2"`
		PeriodsPerYear  float64       `yaml:"periods_per_year" default:"252" validate:"gt=0"`
		Threshold       float64       `yaml:"threshold" default:"0.35" validate:"gte=0"`
		Contamination   float64       `yaml:"contamination" default:"0.1" validate:"gt=0,lte=0.5"`
		Seed            uint64        `yaml:"seed" default:"42"`
		Trees           int           `yaml:"trees" default:"100" validate:"min=1"`
		MaxSamples      int           `yaml:"max_samples" default:"256" validate:"min=2"`
		ResultCacheSize int           `yaml:"result_cache_size" default:"128" validate:"min=1"`
		ResultCacheTTL  time.Duration `yaml:"result_cache_ttl" default:"1h"`
	} `yaml:"analytics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"market"`
		Table            string        `yaml:"table" default:"daily_prices"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"sectorvol.anomalies"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Load reads a YAML configuration file over the defaults and validates it.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SECTORVOL_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		c.Market.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// read applies struct defaults first so the file only overrides what it names.
func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if path == "" {
		return &c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Market.Provider == ProviderClickHouse && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when market.provider is clickhouse")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
