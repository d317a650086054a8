// Package config loads the centavo.yaml configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level centavo.yaml configuration.
type Config struct {
	Database     DatabaseConfig    `yaml:"database"`
	Server       ServerConfig      `yaml:"server"`
	Installments InstallmentConfig `yaml:"installments"`
	Quotes       QuotesConfig      `yaml:"quotes"`
	Salary       SalaryConfig      `yaml:"salary"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen      string   `yaml:"listen"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// InstallmentConfig selects the installment delete policy:
// "preserve-history" keeps payment transactions when a schedule is
// deleted, "strict-cascade" deletes and reverses them.
type InstallmentConfig struct {
	DeletePolicy string `yaml:"delete_policy"`
}

// QuotesConfig controls the background investment price refresh.
type QuotesConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

// SalaryConfig controls automatic salary processing in serve mode.
type SalaryConfig struct {
	AutoProcess bool `yaml:"auto_process"`
}

// Load reads a centavo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "centavo.sqlite"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":5000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Installments.DeletePolicy == "" {
		c.Installments.DeletePolicy = "preserve-history"
	}
	if c.Quotes.IntervalMinutes <= 0 {
		c.Quotes.IntervalMinutes = 30
	}
}
