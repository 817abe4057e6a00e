// Package config provides configuration loading and validation for the
// temporal CLI and metrics server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidOperations   = errors.New("bench operations must be positive")
	ErrInvalidRingCapacity = errors.New("bench ring capacity must be positive")
	ErrInvalidPriorities   = errors.New("bench priority levels must be positive")
	ErrInvalidThreshold    = errors.New("hibernation threshold must not be negative")
)

// Default configuration values.
const (
	defaultPort         = 8080
	defaultHost         = "0.0.0.0"
	defaultOperations   = 100000
	defaultRingCapacity = 4096
	defaultPriorities   = 16
	defaultHibernation  = 10000
	maxPort             = 65535
)

// Config holds all configuration for the temporal binary.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Bench         BenchConfig         `mapstructure:"bench"`
	Hibernation   HibernationConfig   `mapstructure:"hibernation"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig holds the metrics/health endpoint configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	Enabled      bool          `mapstructure:"enabled"`
}

// BenchConfig holds the benchmark workload configuration.
type BenchConfig struct {
	// Containers selects which container kinds to exercise. Empty means all.
	Containers []string `mapstructure:"containers"`

	// Operations is the number of insertions per container.
	Operations int `mapstructure:"operations"`

	// RingCapacity is the capacity of the benchmarked ring buffer.
	RingCapacity int `mapstructure:"ring_capacity"`

	// Priorities is the number of distinct priority levels in the
	// priority-queue workload.
	Priorities int `mapstructure:"priorities"`

	// Timeout bounds a whole benchmark run.
	Timeout time.Duration `mapstructure:"timeout"`
}

// HibernationConfig controls interval-tree storage compression.
type HibernationConfig struct {
	// Threshold is the node count below which hibernation is skipped;
	// compressing tiny trees costs more than it saves.
	Threshold int `mapstructure:"threshold"`

	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig holds telemetry export configuration.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/temporal")
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix("TEMPORAL")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Server defaults.
	viperCfg.SetDefault("server.enabled", false)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")

	// Bench defaults.
	viperCfg.SetDefault("bench.containers", []string{})
	viperCfg.SetDefault("bench.operations", defaultOperations)
	viperCfg.SetDefault("bench.ring_capacity", defaultRingCapacity)
	viperCfg.SetDefault("bench.priorities", defaultPriorities)
	viperCfg.SetDefault("bench.timeout", "10m")

	// Hibernation defaults.
	viperCfg.SetDefault("hibernation.enabled", true)
	viperCfg.SetDefault("hibernation.threshold", defaultHibernation)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stderr")

	// Observability defaults.
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.debug_trace", false)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Bench.Operations <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOperations, config.Bench.Operations)
	}

	if config.Bench.RingCapacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRingCapacity, config.Bench.RingCapacity)
	}

	if config.Bench.Priorities <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPriorities, config.Bench.Priorities)
	}

	if config.Hibernation.Threshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, config.Hibernation.Threshold)
	}

	return nil
}
