package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/exim-ops/ledgerrecon/internal/ledger"
	"github.com/exim-ops/ledgerrecon/internal/logger"
)

// FileName is the config file looked up in the working directory.
const FileName = "ledgerrecon.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEDGERRECON_"

// Config represents the top-level ledgerrecon.yaml configuration.
type Config struct {
	Interest InterestConfig `yaml:"interest"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
}

// InterestConfig sets the overdue interest policy.
type InterestConfig struct {
	AnnualRate    string `yaml:"annual_rate" validate:"required,numeric"` // decimal fraction, "0.12" is 12%
	GraceDays     int    `yaml:"grace_days" validate:"gte=0"`
	DayCountBasis int    `yaml:"day_count_basis" validate:"oneof=360 365 366"`
}

// ServerConfig controls the HTTP listener and upload handling.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	CleanupDelay   time.Duration `yaml:"cleanup_delay" validate:"gte=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	TempDir        string        `yaml:"temp_dir,omitempty"` // empty means the OS temp dir
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
	Output string `yaml:"output"`
}

// StorageConfig controls archiving of rendered reports to S3-compatible storage.
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Region       string `yaml:"region" validate:"required_if=Enabled true"`
	Bucket       string `yaml:"bucket" validate:"required_if=Enabled true"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style"`
	Prefix       string `yaml:"prefix,omitempty"`
}

// Load reads a ledgerrecon.yaml file from disk. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the standard 12% / 30 day / 365 day policy.
func Default() *Config {
	return &Config{
		Interest: InterestConfig{
			AnnualRate:    "0.12",
			GraceDays:     30,
			DayCountBasis: 365,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			CleanupDelay:   5 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Storage: StorageConfig{
			Region:       "us-east-1",
			UsePathStyle: true,
			Prefix:       "reports",
		},
	}
}

// Resolve loads path, or ./ledgerrecon.yaml when path is empty and the file
// exists, or the defaults. Environment overrides are applied and the result
// is validated.
func Resolve(path string) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		loaded, err := Load(FileName)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
			cfg = Default()
		default:
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LEDGERRECON_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INTEREST_ANNUAL_RATE": &c.Interest.AnnualRate,
		"SERVER_ADDR":          &c.Server.Addr,
		"SERVER_TEMP_DIR":      &c.Server.TempDir,
		"LOG_LEVEL":            &c.Log.Level,
		"LOG_FORMAT":           &c.Log.Format,
		"LOG_OUTPUT":           &c.Log.Output,
		"STORAGE_ENDPOINT":     &c.Storage.Endpoint,
		"STORAGE_REGION":       &c.Storage.Region,
		"STORAGE_BUCKET":       &c.Storage.Bucket,
		"STORAGE_ACCESS_KEY":   &c.Storage.AccessKey,
		"STORAGE_SECRET_KEY":   &c.Storage.SecretKey,
		"STORAGE_PREFIX":       &c.Storage.Prefix,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"STORAGE_ENABLED":        &c.Storage.Enabled,
		"STORAGE_USE_PATH_STYLE": &c.Storage.UsePathStyle,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parsing %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	ints := map[string]*int{
		"INTEREST_GRACE_DAYS":      &c.Interest.GraceDays,
		"INTEREST_DAY_COUNT_BASIS": &c.Interest.DayCountBasis,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parsing %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the interest rate.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy converts the interest section into an engine policy.
func (c *Config) Policy() (ledger.Policy, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.Interest.AnnualRate))
	if err != nil {
		return ledger.Policy{}, fmt.Errorf("parsing interest.annual_rate %q: %w", c.Interest.AnnualRate, err)
	}
	if rate.IsNegative() {
		return ledger.Policy{}, fmt.Errorf("interest.annual_rate must not be negative, got %s", rate)
	}
	return ledger.Policy{
		AnnualRate:    rate,
		GraceDays:     c.Interest.GraceDays,
		DayCountBasis: c.Interest.DayCountBasis,
	}, nil
}

// LoggerConfig returns the logging section in the logger package's shape.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	if c.Log.Output != "" {
		cfg.Output = c.Log.Output
	}
	return cfg
}
