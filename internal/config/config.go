// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // schedule.timezone must resolve in minimal images

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// Dedup backends.
const (
	DedupMemory   = "memory"
	DedupPostgres = "postgres"
	DedupRedis    = "redis"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig          `yaml:"server"`
	Database      DatabaseConfig        `yaml:"database"`
	Redis         RedisConfig           `yaml:"redis"`
	Meta          MetaConfig            `yaml:"meta"`
	Rules         RulesConfig           `yaml:"rules"`
	Schedule      ScheduleConfig        `yaml:"schedule"`
	Dedup         DedupConfig           `yaml:"dedup"`
	History       HistoryConfig         `yaml:"history"`
	Notifications NotificationsConfig   `yaml:"notifications"`
	Users         []domain.UserSettings `yaml:"users"`
	Logging       LoggingConfig         `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings. An empty host
// selects the JSON file history instead.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether Postgres is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// RedisConfig defines the shared dedup cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MetaConfig defines Meta Graph API settings.
type MetaConfig struct {
	GraphURL     string          `yaml:"graph_url"`
	APIVersion   string          `yaml:"api_version"`
	Timeout      time.Duration   `yaml:"timeout"`
	LookbackDays int             `yaml:"lookback_days"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Graph API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"` // 0 = unlimited
}

// RulesConfig points at an optional goal table replacing the embedded one.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig defines the cron expressions and the calendar zone.
type ScheduleConfig struct {
	Timezone     string        `yaml:"timezone"`
	DailyAlerts  string        `yaml:"daily_alerts"`
	RepeatAlerts string        `yaml:"repeat_alerts"`
	Maintenance  string        `yaml:"maintenance"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

// Location resolves Timezone.
func (s *ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// DedupConfig defines notification suppression.
type DedupConfig struct {
	Backend   string        `yaml:"backend"` // memory, postgres, redis
	Mode      string        `yaml:"mode"`    // hourly, daily
	Window    time.Duration `yaml:"window"`
	Retention time.Duration `yaml:"retention"`
}

// HistoryConfig defines alert history retention. Path is used only when
// Postgres is not configured.
type HistoryConfig struct {
	Path       string        `yaml:"path"`
	MaxAge     time.Duration `yaml:"max_age"`
	MaxEntries int           `yaml:"max_entries"`
}

// NotificationsConfig defines chat delivery.
type NotificationsConfig struct {
	SendDelay    time.Duration  `yaml:"send_delay"`
	DashboardURL string         `yaml:"dashboard_url"`
	Chatwork     ChatworkConfig `yaml:"chatwork"`
	Discord      DiscordConfig  `yaml:"discord"`
	// TokenNoticeDays is how many days before expiry the Meta token
	// reminder starts going out with the daily report.
	TokenNoticeDays int `yaml:"token_notice_days"`
}

// ChatworkConfig defines Chatwork API settings. Tokens are per user.
type ChatworkConfig struct {
	BaseURL string `yaml:"base_url"`
}

// DiscordConfig defines the fallback Discord webhook.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, console
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyMetaDefaults(&cfg.Meta)
	applyScheduleDefaults(&cfg.Schedule)
	applyDedupDefaults(&cfg.Dedup)
	applyHistoryDefaults(&cfg.History)
	applyNotificationDefaults(&cfg.Notifications)
	applyLoggingDefaults(&cfg.Logging)

	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "aat:dedup:"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyMetaDefaults(m *MetaConfig) {
	if m.GraphURL == "" {
		m.GraphURL = "https://graph.facebook.com"
	}
	if m.APIVersion == "" {
		m.APIVersion = "v19.0"
	}
	if m.Timeout == 0 {
		m.Timeout = 30 * time.Second
	}
	if m.LookbackDays == 0 {
		m.LookbackDays = 7
	}
	if m.RateLimit.PerSecond == 0 {
		m.RateLimit.PerSecond = 2.0
	}
	if m.RateLimit.Burst == 0 {
		m.RateLimit.Burst = 4
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Timezone == "" {
		s.Timezone = "Asia/Tokyo"
	}
	if s.DailyAlerts == "" {
		s.DailyAlerts = "0 9 * * *"
	}
	if s.RepeatAlerts == "" {
		s.RepeatAlerts = "0 12,15,17,19 * * *"
	}
	if s.Maintenance == "" {
		s.Maintenance = "@every 1h"
	}
	if s.LockTTL == 0 {
		s.LockTTL = 30 * time.Minute
	}
}

func applyDedupDefaults(d *DedupConfig) {
	if d.Backend == "" {
		d.Backend = DedupMemory
	}
	if d.Mode == "" {
		d.Mode = "hourly"
	}
	if d.Window == 0 {
		d.Window = time.Hour
	}
	if d.Retention == 0 {
		d.Retention = 24 * time.Hour
	}
}

func applyHistoryDefaults(h *HistoryConfig) {
	if h.Path == "" {
		h.Path = "data/alert_history.json"
	}
	if h.MaxAge == 0 {
		h.MaxAge = 30 * 24 * time.Hour
	}
	if h.MaxEntries == 0 {
		h.MaxEntries = 1000
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if n.SendDelay == 0 {
		n.SendDelay = time.Second
	}
	if n.Chatwork.BaseURL == "" {
		n.Chatwork.BaseURL = "https://api.chatwork.com/v2"
	}
	if n.TokenNoticeDays == 0 {
		n.TokenNoticeDays = 7
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	}

	switch cfg.Dedup.Backend {
	case DedupMemory:
	case DedupPostgres:
		if !cfg.Database.Enabled() {
			errs = append(errs, fmt.Errorf("database.host is required when dedup.backend is postgres"))
		}
	case DedupRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis.addr is required when dedup.backend is redis"))
		}
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"dedup.backend must be one of: memory, postgres, redis (got %q)",
				cfg.Dedup.Backend,
			),
		)
	}

	if cfg.Notifications.TokenNoticeDays < 0 {
		errs = append(errs, fmt.Errorf("notifications.token_notice_days must not be negative"))
	}

	if cfg.Dedup.Mode != "hourly" && cfg.Dedup.Mode != "daily" {
		errs = append(errs, fmt.Errorf("dedup.mode must be hourly or daily (got %q)", cfg.Dedup.Mode))
	}

	if _, err := cfg.Schedule.Location(); err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
	}

	errs = append(errs, validateUsers(cfg.Users)...)

	return errors.Join(errs...)
}

func validateUsers(users []domain.UserSettings) []error {
	var errs []error
	seen := make(map[string]struct{}, len(users))

	for i := range users {
		u := &users[i]
		if u.UserID == "" {
			errs = append(errs, fmt.Errorf("users[%d].user_id is required", i))
			continue
		}
		if _, dup := seen[u.UserID]; dup {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate user_id %q", i, u.UserID))
		}
		seen[u.UserID] = struct{}{}

		if u.AlertsEnabled && u.MetaAccountID == "" {
			errs = append(errs, fmt.Errorf("users[%d].meta_account_id is required when alerts are enabled", i))
		}
		if u.DailyReportEnabled && u.MetaAccountID == "" {
			errs = append(errs, fmt.Errorf("users[%d].meta_account_id is required when daily reports are enabled", i))
		}
		for j := range u.AdditionalAccounts {
			if u.AdditionalAccounts[j].ID == "" {
				errs = append(errs, fmt.Errorf("users[%d].additional_accounts[%d].id is required", i, j))
			}
		}
	}

	return errs
}
