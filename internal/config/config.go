package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/nautilus-navigator/internal/gate"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
)

// #region config
// Config is the runtime configuration shared by the binaries.
type Config struct {
	DBPath         string        `yaml:"db_path"` // empty disables the session journal
	Problem        string        `yaml:"problem"`
	LogLevel       string        `yaml:"log_level"`  // debug | info | warn | error
	LogFormat      string        `yaml:"log_format"` // text | json
	UtopianEpsilon float64       `yaml:"utopian_epsilon"`
	Rho            float64       `yaml:"rho"`
	Workers        int           `yaml:"workers"` // 0 = one per objective
	SolveTimeout   time.Duration `yaml:"solve_timeout"`
	Solver         solver.Config `yaml:"solver"`
	Gate           gate.Config   `yaml:"gate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Problem:        "cylinder",
		LogLevel:       "info",
		LogFormat:      "text",
		UtopianEpsilon: 1e-6,
		Rho:            1e-6,
		SolveTimeout:   30 * time.Second,
		Solver:         solver.DefaultConfig(),
		Gate:           gate.DefaultConfig(),
	}
}
// #endregion config

// #region load
// Load reads an optional YAML file over the defaults and then applies
// NAUTILUS_* environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	c.DBPath = envOr(getenv, "NAUTILUS_DB", c.DBPath)
	c.Problem = envOr(getenv, "NAUTILUS_PROBLEM", c.Problem)
	c.LogLevel = envOr(getenv, "NAUTILUS_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr(getenv, "NAUTILUS_LOG_FORMAT", c.LogFormat)

	if v := getenv("NAUTILUS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NAUTILUS_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := getenv("NAUTILUS_SOLVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NAUTILUS_SOLVE_TIMEOUT: %w", err)
		}
		c.SolveTimeout = d
	}
	return nil
}
// #endregion load

// #region validate
// Validate rejects settings the navigator cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Problem == "" {
		errs = append(errs, errors.New("problem is required"))
	}
	if !(c.UtopianEpsilon > 0) {
		errs = append(errs, fmt.Errorf("utopian_epsilon must be positive, got %v", c.UtopianEpsilon))
	}
	if !(c.Rho > 0) {
		errs = append(errs, fmt.Errorf("rho must be positive, got %v", c.Rho))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Solver.Retries < 0 {
		errs = append(errs, fmt.Errorf("solver.retries must not be negative, got %d", c.Solver.Retries))
	}
	if c.SolveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("solve_timeout must be positive, got %v", c.SolveTimeout))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
// #endregion validate

// #region logger
// Logger builds the slog logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
// #endregion logger

// #region helpers
func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
