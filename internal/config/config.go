// Package config loads the taskflow process configuration from the
// environment, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
)

// Prefix is prepended to every variable name.
const Prefix = "TASKFLOW_"

// Config is the process configuration.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	Workers         int           `env:"WORKERS" envDefault:"4"`
	MailboxSize     int           `env:"MAILBOX_SIZE" envDefault:"10"`
	TimeZone        string        `env:"TIMEZONE" envDefault:"Local"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	DrainResults    bool          `env:"DRAIN_RESULTS" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the given .env files, or ./.env when none are named, and
// then parses the environment. Missing files are skipped; variables that
// are already set win over file contents.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, errors.Join(tferrors.ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot check by type alone.
func (c Config) Validate() error {
	if err := validation.ValidatePositive("config", "workers", c.Workers); err != nil {
		return err
	}
	if err := validation.ValidatePositive("config", "mailbox_size", c.MailboxSize); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("config", "http_addr", c.HTTPAddr); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return tferrors.NewValidationError("config", "shutdown_timeout", c.ShutdownTimeout, "must be positive")
	}
	if _, err := c.Location(); err != nil {
		return tferrors.NewValidationError("config", "timezone", c.TimeZone, err.Error()).
			WithHint("use an IANA name such as Europe/Berlin, or UTC")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return tferrors.NewValidationError("config", "log_format", c.LogFormat, "unknown format").
			WithHint("use console or json")
	}
	return nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}
