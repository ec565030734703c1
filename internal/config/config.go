package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/stunsim/internal/stun"
)

// DefaultPath is the config file used when neither flag nor env sets one.
const DefaultPath = "config/stunsim.yaml"

// StunSim holds all configuration for the stun simulator.
type StunSim struct {
	// Logging: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Session replay
	Workers int    `yaml:"workers"` // targets simulated in parallel
	Seed    string `yaml:"seed"`    // empty = deterministic light stun verdicts

	// Game data
	CoefficientProfile string           `yaml:"coefficient_profile"` // profile name in the game-data DB
	Coefficients       CoefficientTable `yaml:"coefficients"`

	// Database (game-data layer, optional)
	Database DatabaseConfig `yaml:"database"`
}

// CoefficientTable overrides stun efficiencies by type name.
// Types not listed keep their default value.
type CoefficientTable struct {
	Damage map[string]float64 `yaml:"damage"`
	Attack map[string]float64 `yaml:"attack"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // full DSN, wins over the fields below
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultStunSim returns StunSim config with sensible defaults.
func DefaultStunSim() StunSim {
	return StunSim{
		LogLevel:           "info",
		Workers:            4,
		CoefficientProfile: "default",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "stunsim",
			Password: "stunsim",
			DBName:   "stunsim",
			SSLMode:  "disable",
		},
	}
}

// LoadStunSim loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadStunSim(path string) (StunSim, error) {
	cfg := DefaultStunSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Env holds environment overrides. Empty values leave the file config alone.
type Env struct {
	ConfigPath         string `env:"STUNSIM_CONFIG" envDefault:"config/stunsim.yaml"`
	LogLevel           string `env:"STUNSIM_LOG_LEVEL"`
	Seed               string `env:"STUNSIM_SEED"`
	DatabaseDSN        string `env:"STUNSIM_DATABASE_DSN"`
	CoefficientProfile string `env:"STUNSIM_COEFFICIENT_PROFILE"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply copies non-empty overrides into cfg. A DSN enables the database.
func (e Env) Apply(cfg *StunSim) {
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
	if e.Seed != "" {
		cfg.Seed = e.Seed
	}
	if e.CoefficientProfile != "" {
		cfg.CoefficientProfile = e.CoefficientProfile
	}
	if e.DatabaseDSN != "" {
		cfg.Database.URL = e.DatabaseDSN
		cfg.Database.Enabled = true
	}
}

// Load reads the file named by path (or the env/default path when empty)
// and applies environment overrides on top.
func Load(path string) (StunSim, error) {
	e, err := ParseEnv()
	if err != nil {
		return StunSim{}, err
	}
	if path == "" {
		path = e.ConfigPath
	}
	cfg, err := LoadStunSim(path)
	if err != nil {
		return cfg, err
	}
	e.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and the coefficient table.
func (c StunSim) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Database.Enabled && c.CoefficientProfile == "" {
		return fmt.Errorf("coefficient_profile is required when the database is enabled")
	}
	if _, err := c.StunCoefficients(); err != nil {
		return err
	}
	return nil
}

// StunCoefficients merges the configured overrides into the default table.
func (c StunSim) StunCoefficients() (stun.Coefficients, error) {
	coeffs := stun.DefaultCoefficients()
	for name, v := range c.Coefficients.Damage {
		dt, err := stun.ParseDamageType(name)
		if err != nil {
			return coeffs, fmt.Errorf("coefficients.damage: %w", err)
		}
		coeffs.Damage[dt] = v
	}
	for name, v := range c.Coefficients.Attack {
		at, err := stun.ParseAttackType(name)
		if err != nil {
			return coeffs, fmt.Errorf("coefficients.attack: %w", err)
		}
		coeffs.Attack[at] = v
	}
	if err := coeffs.Validate(); err != nil {
		return coeffs, fmt.Errorf("coefficients: %w", err)
	}
	return coeffs, nil
}
