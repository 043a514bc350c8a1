// Package config loads application configuration from environment
// variables and an optional YAML file. Defaults are filled first, then
// the environment, then the file: a file passed explicitly on the
// command line is the most specific source and wins.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "spendscope/internal/errors"
)

// EnvPrefix is the environment variable prefix, e.g. SPENDSCOPE_SERVER_PORT.
const EnvPrefix = "SPENDSCOPE"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// MaxUploadBytes bounds multipart uploads on the analyze endpoint.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`

	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/spendscope.log"`
}

// PipelineConfig carries the analysis defaults applied when a request
// or CLI flag does not override them.
type PipelineConfig struct {
	ReportingCurrency    string  `yaml:"reporting_currency" envconfig:"REPORTING_CURRENCY" default:"USD" validate:"len=3"`
	FiscalYearStartMonth int     `yaml:"fiscal_year_start_month" envconfig:"FISCAL_YEAR_START_MONTH" default:"3" validate:"min=0,max=11"`
	TailSpendMultiplier  float64 `yaml:"tail_spend_multiplier" envconfig:"TAIL_SPEND_MULTIPLIER" default:"0.05" validate:"gt=0"`
	ABCThresholdA        float64 `yaml:"abc_threshold_a" envconfig:"ABC_THRESHOLD_A" default:"0.70" validate:"gt=0,lt=1"`
	ABCThresholdB        float64 `yaml:"abc_threshold_b" envconfig:"ABC_THRESHOLD_B" default:"0.90" validate:"gt=0,lte=1,gtefield=ABCThresholdA"`

	// ExchangeRates overrides entries of the built-in rate table,
	// keyed by currency code, valued in units per USD.
	ExchangeRates map[string]float64 `yaml:"exchange_rates" envconfig:"EXCHANGE_RATES"`

	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"out"`
	PresetsFile string `yaml:"presets_file" envconfig:"PRESETS_FILE" default:"presets.yml"`
	Concurrency int    `yaml:"concurrency" envconfig:"CONCURRENCY" default:"4" validate:"min=1"`
}

// Load reads configuration from the environment and, when present, the
// YAML file at path. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	var cfg Config

	// Defaults and environment first; the file then overlays only the
	// keys it actually carries.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(path, &cfg); err != nil {
				return nil, apperrors.NewConfigError("failed to load config from file", err).
					WithContext("path", path)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return &cfg, nil
}

// Default returns the configuration with every field at its default.
func Default() *Config {
	var cfg Config
	// Processing an unused prefix still applies struct defaults.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
