package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPort         = 9001
	DefaultFetchTimeout = 10 * time.Second
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
)

// Config is the top-level exporter configuration.
type Config struct {
	Exporter ExporterConfig `yaml:"exporter"`

	// Devices is the ordered list of smart plugs to poll. Order is kept
	// all the way through to the rendered output.
	Devices []Device `yaml:"devices"`
}

// ExporterConfig holds process-wide settings.
type ExporterConfig struct {
	// Port is the TCP port the /metrics endpoint listens on.
	Port int `yaml:"port"`

	// FetchTimeout bounds every device status request. It is the same for
	// all devices.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of: json | text.
	LogFormat string `yaml:"log_format"`
}

// Device is one configured smart plug.
type Device struct {
	// Address is the plug's IP or host, optionally with :port.
	Address string `yaml:"address"`

	// Alias is the hostname label rendered for this device. Empty means the
	// address itself is used.
	Alias string `yaml:"alias"`
}

// Level returns the slog level for LogLevel. Unknown values fall back to info;
// Load rejects them before this is reached.
func (e ExporterConfig) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values and no devices.
func Default() *Config {
	return &Config{
		Exporter: ExporterConfig{
			Port:         DefaultPort,
			FetchTimeout: DefaultFetchTimeout,
			LogLevel:     DefaultLogLevel,
			LogFormat:    DefaultLogFormat,
		},
	}
}

// Validate checks required fields and structural constraints. Duplicate
// addresses are left to the device registry.
func Validate(cfg *Config) error {
	if cfg.Exporter.Port <= 0 || cfg.Exporter.Port > 65535 {
		return fmt.Errorf("exporter.port %d out of range", cfg.Exporter.Port)
	}
	if cfg.Exporter.FetchTimeout <= 0 {
		return fmt.Errorf("exporter.fetch_timeout must be positive")
	}
	switch strings.ToLower(cfg.Exporter.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("exporter.log_level: unknown level %q", cfg.Exporter.LogLevel)
	}
	switch cfg.Exporter.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("exporter.log_format: unknown format %q", cfg.Exporter.LogFormat)
	}
	for i, d := range cfg.Devices {
		if strings.TrimSpace(d.Address) == "" {
			return fmt.Errorf("devices[%d]: address is required", i)
		}
	}
	return nil
}
