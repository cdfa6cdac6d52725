package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Model     ModelConfig     `mapstructure:"model"`
	Batch     BatchConfig     `mapstructure:"batch"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatasetConfig locates the product records served by the API
type DatasetConfig struct {
	Driver string `mapstructure:"driver"` // "csv", "sqlite" or "postgres"
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

// ModelConfig selects the fitted bundle and the predictor backing it
type ModelConfig struct {
	BundlePath    string        `mapstructure:"bundle_path"`
	BundleVersion string        `mapstructure:"bundle_version"` // empty means latest
	Predictor     string        `mapstructure:"predictor"`      // "local" or "remote"
	RemoteURL     string        `mapstructure:"remote_url"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
	RemoteRate    float64       `mapstructure:"remote_rate"` // requests per second
}

// BatchConfig holds batch classification configuration
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Predictor kinds
const (
	PredictorLocal  = "local"
	PredictorRemote = "remote"
)

// Load loads configuration from the .env file, environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches
// the default locations.
func LoadFrom(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/compliancelens/")
	}

	// Environment variable settings
	v.SetEnvPrefix("COMPLIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from a .env file in the working directory if one exists.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default
// so that environment overrides are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Dataset defaults
	v.SetDefault("dataset.driver", "csv")
	v.SetDefault("dataset.path", "results.csv")
	v.SetDefault("dataset.dsn", "")
	v.SetDefault("dataset.table", "products")

	// Model defaults
	v.SetDefault("model.bundle_path", "compliance.db")
	v.SetDefault("model.bundle_version", "")
	v.SetDefault("model.predictor", PredictorLocal)
	v.SetDefault("model.remote_url", "")
	v.SetDefault("model.remote_timeout", "5s")
	v.SetDefault("model.remote_rate", 20)

	// Batch defaults
	v.SetDefault("batch.workers", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Dataset.Driver {
	case "csv", "sqlite":
		if config.Dataset.Path == "" && config.Dataset.DSN == "" {
			return fmt.Errorf("dataset path is required for driver %q", config.Dataset.Driver)
		}
	case "postgres":
		if config.Dataset.DSN == "" {
			return fmt.Errorf("dataset DSN is required for postgres (set COMPLIANCE_DATASET_DSN)")
		}
	default:
		return fmt.Errorf("dataset driver must be 'csv', 'sqlite' or 'postgres', got: %s", config.Dataset.Driver)
	}

	if config.Model.BundlePath == "" {
		return fmt.Errorf("model bundle path is required")
	}

	switch config.Model.Predictor {
	case PredictorLocal:
	case PredictorRemote:
		if config.Model.RemoteURL == "" {
			return fmt.Errorf("model remote URL is required for the remote predictor (set COMPLIANCE_MODEL_REMOTE_URL)")
		}
	default:
		return fmt.Errorf("model predictor must be 'local' or 'remote', got: %s", config.Model.Predictor)
	}

	if config.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive, got: %d", config.Batch.Workers)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	switch config.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging format must be 'console' or 'json', got: %s", config.Logging.Format)
	}

	return nil
}
