// Package config provides configuration management for the trading
// engine: YAML loading, environment-variable expansion, defaulting, and
// validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eddiefleurent/trdr/internal/pdt"
	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultCheckInterval is used when schedule.check_interval is unset.
	defaultCheckInterval = "15m"
	// defaultStalenessWindow is used when broker.staleness_window is unset.
	defaultStalenessWindow = 10 * time.Minute
	// defaultWiggleRoom is used when pdt.wiggle_room is unset for the wiggle policy.
	defaultWiggleRoom = 0
)

// Config is the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Broker      BrokerConfig      `yaml:"broker"`
	PDT         PDTConfig         `yaml:"pdt"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	Watchlist   []string          `yaml:"watchlist"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	Mode     string `yaml:"mode"`      // paper | live
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// BrokerConfig defines broker backend settings.
type BrokerConfig struct {
	Provider        string        `yaml:"provider"` // only "mock" is implemented
	StalenessWindow time.Duration `yaml:"staleness_window"`
	StartingCash    float64       `yaml:"starting_cash"`
}

// PDTConfig selects the Pattern-Day-Trading policy and its parameters.
type PDTConfig struct {
	Policy     string `yaml:"policy"` // nun | wiggle | yolo
	WiggleRoom int    `yaml:"wiggle_room"`
}

// Build constructs the pdt.Policy this config selects.
func (c PDTConfig) Build() (pdt.Policy, error) {
	switch strings.ToLower(c.Policy) {
	case "nun":
		return pdt.Nun{}, nil
	case "wiggle":
		return pdt.NewWiggle(c.WiggleRoom), nil
	case "yolo":
		return pdt.Yolo{}, nil
	default:
		return nil, fmt.Errorf("pdt.policy must be one of: nun, wiggle, yolo")
	}
}

// StrategyConfig points at the strategy DSL source file to run.
type StrategyConfig struct {
	Path string `yaml:"path"` // path to a *.trdr file
}

// ScheduleConfig controls how often the trading engine's cycle runs.
type ScheduleConfig struct {
	CheckInterval string `yaml:"check_interval"` // a time.ParseDuration string, e.g. "15m"
}

// DashboardConfig defines the read-only status dashboard's settings.
type DashboardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Address string `yaml:"address"` // accepted but not used; the dashboard listens on Port
}

// Load reads and parses the configuration file from configPath, expanding
// environment variables, rejecting unknown fields, then normalizing
// defaults and validating the result.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a caller-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", configPath, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", configPath, err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Normalize fills in default values for fields left unset.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Environment.Mode) == "" {
		c.Environment.Mode = "paper"
	}
	if strings.TrimSpace(c.Environment.LogLevel) == "" {
		c.Environment.LogLevel = "info"
	}
	if strings.TrimSpace(c.Broker.Provider) == "" {
		c.Broker.Provider = "mock"
	}
	if c.Broker.StalenessWindow == 0 {
		c.Broker.StalenessWindow = defaultStalenessWindow
	}
	if strings.TrimSpace(c.PDT.Policy) == "" {
		c.PDT.Policy = "nun"
	}
	if c.PDT.WiggleRoom == 0 {
		c.PDT.WiggleRoom = defaultWiggleRoom
	}
	if strings.TrimSpace(c.Schedule.CheckInterval) == "" {
		c.Schedule.CheckInterval = defaultCheckInterval
	}
}

// Validate checks that every configuration value is present and
// consistent.
func (c *Config) Validate() error {
	if c.Environment.Mode != "paper" && c.Environment.Mode != "live" {
		return fmt.Errorf("environment.mode must be 'paper' or 'live'")
	}
	switch strings.ToLower(c.Environment.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of: debug, info, warn, error")
	}

	if strings.ToLower(c.Broker.Provider) != "mock" {
		return fmt.Errorf("broker.provider must be 'mock'; no live brokerage client is implemented")
	}
	if c.Broker.StalenessWindow <= 0 {
		return fmt.Errorf("broker.staleness_window must be > 0")
	}

	switch strings.ToLower(c.PDT.Policy) {
	case "nun", "wiggle", "yolo":
	default:
		return fmt.Errorf("pdt.policy must be one of: nun, wiggle, yolo")
	}
	if c.PDT.WiggleRoom < 0 {
		return fmt.Errorf("pdt.wiggle_room must be >= 0")
	}

	if strings.TrimSpace(c.Strategy.Path) == "" {
		return fmt.Errorf("strategy.path is required")
	}

	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must contain at least one symbol")
	}
	for _, symbol := range c.Watchlist {
		if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("watchlist contains a blank symbol")
		}
	}

	if strings.TrimSpace(c.Schedule.CheckInterval) == "" {
		return fmt.Errorf("schedule.check_interval is required (set in Normalize)")
	}
	if d, err := time.ParseDuration(c.Schedule.CheckInterval); err != nil {
		return fmt.Errorf("schedule.check_interval invalid: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("schedule.check_interval must be > 0")
	}

	if c.Dashboard.Enabled {
		if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
			return fmt.Errorf("dashboard.port must be between 1 and 65535")
		}
	}

	return nil
}

// IsPaperTrading reports whether the engine is configured for paper
// trading.
func (c *Config) IsPaperTrading() bool {
	return c.Environment.Mode == "paper"
}

// GetCheckInterval returns the configured trading-cycle interval,
// falling back to the default if somehow unparsable.
func (c *Config) GetCheckInterval() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Schedule.CheckInterval))
	if err != nil || d <= 0 {
		fallback, _ := time.ParseDuration(defaultCheckInterval)
		return fallback
	}
	return d
}
