package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPAddr string

	// Draw schedule timezone (the network operates on Philippine time)
	Timezone string

	// Agent commission rate applied to each ticket sale (fraction, e.g. 0.05)
	AgentCommissionRate decimal.Decimal

	// Default per-(draw, bet type) exposure cap applied when a draw is scheduled
	DefaultBetTypeLimit decimal.Decimal

	// Environment is "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		Timezone:    os.Getenv("TIMEZONE"),
		Environment: os.Getenv("ENVIRONMENT"),

		// Defaults
		AgentCommissionRate: decimal.NewFromFloat(0.05),
		DefaultBetTypeLimit: decimal.NewFromInt(50000),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.Timezone == "" {
		config.Timezone = "Asia/Manila"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if rate := os.Getenv("AGENT_COMMISSION_RATE"); rate != "" {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid AGENT_COMMISSION_RATE: %w", err)
		}
		config.AgentCommissionRate = parsed
	}
	if limit := os.Getenv("DEFAULT_BET_TYPE_LIMIT"); limit != "" {
		parsed, err := decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_BET_TYPE_LIMIT: %w", err)
		}
		config.DefaultBetTypeLimit = parsed
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
