// Package config loads suite configuration from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultAnalyticsCommandPath is the analytics endpoint the console pings after
// each asynchronous screen update.
const DefaultAnalyticsCommandPath = "esp.aptrinsic.com/rte/v1/command"

// ErrInvalid is returned when the loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds everything the suite reads from the environment.
type Config struct {
	BaseURL         string `validate:"required,url"`
	Username        string `validate:"required"`
	Password        string `validate:"required"`
	DefaultPassword string

	Headless      bool
	SlowMo        time.Duration `validate:"gte=0"`
	Timeout       time.Duration `validate:"gt=0"`
	ScreenshotDir string

	AnalyticsCommandPath string `validate:"required"`
	DiagnosticsCapacity  uint64 `validate:"gt=0"`
	// DiagnosticsColor highlights JSON payloads in failure dumps.
	DiagnosticsColor bool
	LogLevel             slog.Level
}

// Load reads .env files (".env" if none given) without overriding variables
// that are already set, then builds and validates the configuration from the
// process environment.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from lookup, applying defaults. It does not
// validate.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		BaseURL:              get("URL", ""),
		Username:             get("EMAIL", ""),
		Password:             get("PASSWORD", ""),
		DefaultPassword:      get("REGISTERED_DEFAULT_PASSWORD", ""),
		Headless:             get("HEADLESS", "true") != "false",
		ScreenshotDir:        get("SCREENSHOT_DIR", "test-results/screenshots"),
		AnalyticsCommandPath: get("ANALYTICS_COMMAND_PATH", DefaultAnalyticsCommandPath),
	}

	var err error
	if cfg.SlowMo, err = parseDuration(get("SLOW_MO", "0")); err != nil {
		return nil, fmt.Errorf("SLOW_MO: %w", err)
	}
	if cfg.Timeout, err = parseDuration(get("TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("TIMEOUT: %w", err)
	}
	if cfg.DiagnosticsCapacity, err = strconv.ParseUint(get("DIAGNOSTICS_CAPACITY", "200"), 10, 64); err != nil {
		return nil, fmt.Errorf("DIAGNOSTICS_CAPACITY: %w", err)
	}
	if cfg.DiagnosticsColor, err = strconv.ParseBool(get("DIAGNOSTICS_COLOR", "false")); err != nil {
		return nil, fmt.Errorf("DIAGNOSTICS_COLOR: %w", err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// parseDuration accepts Go durations and bare integers as milliseconds, the
// unit playwright uses for SlowMo and timeouts.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Milliseconds converts d to the float milliseconds playwright options take.
func Milliseconds(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	return slog.New(c.LogHandler())
}

// LogHandler returns the stderr handler used by Logger.
func (c *Config) LogHandler() slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel})
}
