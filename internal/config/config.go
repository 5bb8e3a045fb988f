// Package config loads the service configuration from environment
// variables, with sane defaults for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Receipts
	ReceiptDir string

	// AMQP. Empty URL disables change event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Live subscriptions
	PollInterval time.Duration

	// Alert thresholds, as decimal amounts.
	DailyAlertLimit    string
	CategoryAlertLimit string

	// Export
	CurrencySymbol string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/outlay.db"),
		ReceiptDir:   getEnv("RECEIPT_DIR", "./data/receipts"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "outlay"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_changes"),

		PollInterval: getEnvDuration("POLL_INTERVAL", 30*time.Second),

		DailyAlertLimit:    getEnv("DAILY_ALERT_LIMIT", "1000"),
		CategoryAlertLimit: getEnv("CATEGORY_ALERT_LIMIT", "5000"),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be 'sqlite' or 'memory'", c.DataBackend))
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.ReceiptDir == "" {
		errs = append(errs, "receipt directory cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PollInterval != 0 && c.PollInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid poll interval %v: must be 0 (disabled) or at least 1 second", c.PollInterval))
	} else if c.PollInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid poll interval %v: must be at most 24 hours", c.PollInterval))
	}

	if _, err := c.DailyAlertCents(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid daily alert limit '%s': %v", c.DailyAlertLimit, err))
	}
	if _, err := c.CategoryAlertCents(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid category alert limit '%s': %v", c.CategoryAlertLimit, err))
	}

	if c.CurrencySymbol == "" {
		errs = append(errs, "currency symbol cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// DailyAlertCents parses the daily alert threshold into minor units.
func (c *Config) DailyAlertCents() (int64, error) {
	return core.ParseDecimalToCents(c.DailyAlertLimit)
}

// CategoryAlertCents parses the category alert threshold into minor units.
func (c *Config) CategoryAlertCents() (int64, error) {
	return core.ParseDecimalToCents(c.CategoryAlertLimit)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
