// Package config provides configuration loading and validation utilities.
package config

import (
	"sync"
	"time"
)

// Config holds runtime configuration for the ledger bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Access    AccessConfig    `mapstructure:"access"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Sheets    SheetsConfig    `mapstructure:"sheets" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	WebhookURL    string        `mapstructure:"webhook_url"`
	WebhookListen string        `mapstructure:"webhook_listen"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the operational HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AccessConfig restricts who may talk to the bot. With Restrict off the bot
// answers nobody; the allow-list is only consulted when restriction is on.
type AccessConfig struct {
	Restrict bool    `mapstructure:"restrict"`
	Users    []int64 `mapstructure:"users"`
}

// LedgerConfig controls how transactions are rendered and dated.
type LedgerConfig struct {
	Currency string `mapstructure:"currency"`
	Timezone string `mapstructure:"timezone"`
}

// SheetsConfig carries the spreadsheet sink settings.
type SheetsConfig struct {
	SpreadsheetID      string `mapstructure:"spreadsheet_id" validate:"required"`
	SheetName          string `mapstructure:"sheet_name"`
	ServiceAccountPath string `mapstructure:"service_account_path"`
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	RefreshToken       string `mapstructure:"refresh_token"`
}

// RedisConfig configures the optional Redis backend for conversation state,
// drafts, deduplication, and rate limiting.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig caps updates handled per user.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// AccessList is the live, concurrency-safe view of AccessConfig. The config
// watcher swaps its contents when the YAML file changes, so users can be
// added without restarting the bot.
type AccessList struct {
	mu       sync.RWMutex
	restrict bool
	users    map[int64]struct{}
}

// NewAccessList builds an AccessList from the static config.
func NewAccessList(cfg AccessConfig) *AccessList {
	l := &AccessList{}
	l.Update(cfg)
	return l
}

// Allowed reports whether the user may interact with the bot.
func (l *AccessList) Allowed(userID int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.restrict {
		return false
	}

	_, ok := l.users[userID]
	return ok
}

// Update replaces the list contents atomically.
func (l *AccessList) Update(cfg AccessConfig) {
	users := make(map[int64]struct{}, len(cfg.Users))
	for _, id := range cfg.Users {
		users[id] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.restrict = cfg.Restrict
	l.users = users
}
