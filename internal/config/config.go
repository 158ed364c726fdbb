// Package config provides configuration management for the strategy
// analytics application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds the numeric conventions of the evaluation engine.
type EngineConfig struct {
	DaysInYear    float64 `mapstructure:"days_in_year"`   // calendar day convention
	GridStep      float64 `mapstructure:"grid_step"`      // price grid resolution
	BinomialSteps int     `mapstructure:"binomial_steps"` // lattice size for American Greeks
	Country       string  `mapstructure:"country"`        // default holiday calendar
	Workers       int     `mapstructure:"workers"`        // per-leg workers, 0 = NumCPU
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-strategist"
	}
	return filepath.Join(home, ".config", "options-strategist")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			DaysInYear:    365,
			GridStep:      0.01,
			BinomialSteps: 150,
			Country:       "US",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       false,
			FilePath:   filepath.Join(DefaultConfigDir(), "logs", "strategist.log"),
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
	}
}

// Load loads configuration from the specified directory. If configDir is
// empty the default config directory is used; a missing config file yields
// the defaults and a template is written for the next run.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		_ = writeTemplate(configDir) // best effort
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("engine.days_in_year", def.Engine.DaysInYear)
	v.SetDefault("engine.grid_step", def.Engine.GridStep)
	v.SetDefault("engine.binomial_steps", def.Engine.BinomialSteps)
	v.SetDefault("engine.country", def.Engine.Country)
	v.SetDefault("engine.workers", def.Engine.Workers)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.console", def.Logging.Console)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.file_path", def.Logging.FilePath)
	v.SetDefault("logging.max_size", def.Logging.MaxSize)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age", def.Logging.MaxAge)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Engine.DaysInYear <= 0 {
		return fmt.Errorf("engine.days_in_year must be positive, got %v", c.Engine.DaysInYear)
	}
	if c.Engine.GridStep <= 0 {
		return fmt.Errorf("engine.grid_step must be positive, got %v", c.Engine.GridStep)
	}
	if c.Engine.BinomialSteps < 1 {
		return fmt.Errorf("engine.binomial_steps must be at least 1, got %d", c.Engine.BinomialSteps)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

const templateConfig = `# options-strategist configuration

[engine]
# Calendar day convention used to annualize day counts.
days_in_year = 365
# Resolution of the stock price grid.
grid_step = 0.01
# Lattice size for American-model Greeks and put pricing.
binomial_steps = 150
# Default holiday calendar country code.
country = "US"
# Workers for per-leg computation; 0 uses all CPUs.
workers = 0

[logging]
level = "info"
console = true
file = false
`

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(templateConfig), 0644)
}
