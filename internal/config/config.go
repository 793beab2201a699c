// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package config loads and validates Readergraph's layered configuration:
// built-in defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/readergraph/readergraph/internal/affinity"
)

// Config is the root configuration for the Readergraph service.
type Config struct {
	Server   ServerConfig    `koanf:"server"`
	Database DatabaseConfig  `koanf:"database"`
	Logging  LoggingConfig   `koanf:"logging"`
	API      APIConfig       `koanf:"api"`
	Affinity affinity.Config `koanf:"affinity"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8465
	Port int `koanf:"port"`

	// Timeout bounds request read/write. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig contains DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. Default: /data/readergraph.duckdb
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit. Default: 1GB
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// QueryTimeout bounds individual read queries. Default: 10s
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line in logs. Default: false
	Caller bool `koanf:"caller"`
}

// APIConfig contains HTTP API settings.
type APIConfig struct {
	// CORSOrigins lists allowed CORS origins. Default: * in development.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the per-IP request limit per window; 0 disables
	// rate limiting. Default: 100
	RateLimit int `koanf:"rate_limit"`

	// RateLimitWindow is the rate limit window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Default returns a Config with all default values applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8465,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/readergraph.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			QueryTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
		Affinity: *affinity.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if env := c.Server.Environment; env != "development" && env != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", env)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database.query_timeout must be positive, got %v", c.Database.QueryTimeout)
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must be non-negative, got %d", c.API.RateLimit)
	}
	if c.API.RateLimit > 0 && c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive when rate limiting is enabled, got %v", c.API.RateLimitWindow)
	}

	if err := c.Affinity.Validate(); err != nil {
		return fmt.Errorf("affinity: %w", err)
	}
	return nil
}
