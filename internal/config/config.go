package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort       = 8080
	DefaultDataPath       = "telemetry.json"
	DefaultLogLevel       = "info"
	DefaultThresholdMS    = 180.0
	DefaultStreamInterval = 5 * time.Second
)

// Config is the top-level configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the HTTP API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// DataPath is the newline-delimited JSON telemetry source, read once at
	// startup. Changing it requires a restart — the table is never hot-reloaded.
	DataPath string `yaml:"data_path"`

	// LogLevel is one of: debug | info | warn | error. Applied live on
	// config reload.
	LogLevel string `yaml:"log_level"`

	// DefaultThresholdMS is the breach threshold used by the dataset summary
	// endpoint and the WebSocket stream. Per-query thresholds on POST /api
	// are independent of this.
	DefaultThresholdMS float64 `yaml:"default_threshold_ms"`

	// Stream controls the WebSocket broadcast cadence.
	Stream StreamConfig `yaml:"stream"`
}

// StreamConfig controls the WebSocket summary stream.
type StreamConfig struct {
	// Interval is how often the hub broadcasts the dataset summary. Default: 5s.
	Interval time.Duration `yaml:"interval"`
}

// Level returns the slog level for the configured log_level string.
func (s ServerConfig) Level() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:           DefaultHTTPPort,
			DataPath:           DefaultDataPath,
			LogLevel:           DefaultLogLevel,
			DefaultThresholdMS: DefaultThresholdMS,
			Stream: StreamConfig{
				Interval: DefaultStreamInterval,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.DataPath == "" {
		return fmt.Errorf("server.data_path must not be empty")
	}
	switch cfg.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", cfg.Server.LogLevel)
	}
	if cfg.Server.DefaultThresholdMS <= 0 {
		return fmt.Errorf("server.default_threshold_ms must be greater than zero")
	}
	if cfg.Server.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be greater than zero")
	}
	return nil
}
