// Package config loads and validates the sitebuilder configuration from a
// YAML file plus environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Config is the root configuration document.
type Config struct {
	DatabasePath string `yaml:"database_path"`
	EventDBPath  string `yaml:"event_db_path"`
	OutputRoot   string `yaml:"output_root"`

	HTTP      HTTPConfig      `yaml:"http"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Render    RenderConfig    `yaml:"render"`
	Logging   LoggingConfig   `yaml:"logging"`
	NATS      NATSConfig      `yaml:"nats"`
}

// HTTPConfig configures the daemon's HTTP server.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// SchedulerConfig configures the autopost scheduler loop. TickInterval is a
// Go duration string ("1m", "30s").
type SchedulerConfig struct {
	TickInterval string `yaml:"tick_interval"`
	BatchSize    int    `yaml:"batch_size"`
}

// Interval returns the parsed tick interval; the default covers an
// unparseable value (Validate rejects those first).
func (c SchedulerConfig) Interval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// RenderConfig configures how publish invokes the build orchestrator.
// Timeout is a Go duration string.
type RenderConfig struct {
	Mode     string `yaml:"mode"` // inproc|http
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// TimeoutDuration returns the parsed render timeout.
func (c RenderConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NATSConfig configures the optional build-event emitter.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		DatabasePath: "sitebuilder.db",
		EventDBPath:  "sitebuilder-events.db",
		OutputRoot:   "dist",
		HTTP:         HTTPConfig{Listen: ":8080"},
		Scheduler:    SchedulerConfig{TickInterval: "1m", BatchSize: 5},
		Render:       RenderConfig{Mode: string(RenderModeInProc), Timeout: "60s"},
		Logging:      LoggingConfig{Level: string(LogLevelInfo), Format: string(LogFormatText)},
		NATS:         NATSConfig{Subject: "sitebuilder.builds"},
	}
}

// Load reads the configuration file at path, applies defaults and
// environment overrides, and validates the result. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	// .env values never override the process environment.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEBUILDER_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SITEBUILDER_EVENT_DB_PATH"); v != "" {
		cfg.EventDBPath = v
	}
	if v := os.Getenv("SITEBUILDER_OUTPUT_ROOT"); v != "" {
		cfg.OutputRoot = v
	}
	if v := os.Getenv("SITEBUILDER_HTTP_LISTEN"); v != "" {
		cfg.HTTP.Listen = v
	}
	if v := os.Getenv("SITEBUILDER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SITEBUILDER_NATS_URL"); v != "" {
		cfg.NATS.URL = v
		cfg.NATS.Enabled = true
	}
}

// applyDefaults fills zero values left by a sparse document.
func (c *Config) applyDefaults() {
	d := Default()
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.EventDBPath == "" {
		c.EventDBPath = d.EventDBPath
	}
	if c.OutputRoot == "" {
		c.OutputRoot = d.OutputRoot
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = d.HTTP.Listen
	}
	if c.Scheduler.TickInterval == "" {
		c.Scheduler.TickInterval = d.Scheduler.TickInterval
	}
	if c.Scheduler.BatchSize <= 0 {
		c.Scheduler.BatchSize = d.Scheduler.BatchSize
	}
	if c.Render.Mode == "" {
		c.Render.Mode = d.Render.Mode
	}
	if c.Render.Timeout == "" {
		c.Render.Timeout = d.Render.Timeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = d.NATS.Subject
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return sberrors.ConfigRequired("database_path")
	}
	if c.OutputRoot == "" {
		return sberrors.ConfigRequired("output_root")
	}
	if _, err := time.ParseDuration(c.Scheduler.TickInterval); err != nil {
		return sberrors.ValidationFailed("scheduler.tick_interval", err.Error())
	}
	if _, err := time.ParseDuration(c.Render.Timeout); err != nil {
		return sberrors.ValidationFailed("render.timeout", err.Error())
	}
	if mode := NormalizeRenderMode(c.Render.Mode); mode == RenderModeHTTP && c.Render.Endpoint == "" {
		return sberrors.ConfigRequired("render.endpoint")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return sberrors.ConfigRequired("nats.url")
	}
	return nil
}

// EffectiveRenderMode returns the normalized render mode.
func (c *Config) EffectiveRenderMode() RenderMode {
	return NormalizeRenderMode(c.Render.Mode)
}
