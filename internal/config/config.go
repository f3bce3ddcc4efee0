// Package config provides YAML-based configuration loading for Quatro.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Quatro configuration, loaded from quatro.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Notify    NotifyConfig    `yaml:"notify"`

	// NowLimit caps the Now section; overflow continues in Next.
	NowLimit int `yaml:"now_limit"`
	// UndoWindowSeconds bounds how long undo is offered after complete.
	UndoWindowSeconds int `yaml:"undo_window_seconds"`
}

// DatabaseConfig holds connection settings for the backing store.
// Driver "sqlite" uses Path; driver "mysql" uses Host/Port/Database/User.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DashboardConfig holds settings for the local web dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// JanitorConfig controls the trashed-task purge schedule.
type JanitorConfig struct {
	// Schedule is a 5-field cron expression.
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
}

// NotifyConfig holds optional chat-notification adapters. An adapter with
// an empty token is disabled.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack notifier credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord notifier credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// UndoWindow returns the undo window as a duration.
func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowSeconds) * time.Second
}

// Retention returns the janitor retention as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Janitor.RetentionDays) * 24 * time.Hour
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "quatro.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Database == "" {
		c.Database.Database = "quatro"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.NowLimit == 0 {
		c.NowLimit = 4
	}
	if c.UndoWindowSeconds == 0 {
		c.UndoWindowSeconds = 3
	}
	if c.Janitor.Schedule == "" {
		c.Janitor.Schedule = "0 3 * * *"
	}
	if c.Janitor.RetentionDays == 0 {
		c.Janitor.RetentionDays = 30
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.NowLimit < 1 {
		errs = append(errs, "now_limit must be at least 1")
	}
	if c.UndoWindowSeconds < 0 {
		errs = append(errs, "undo_window_seconds cannot be negative")
	}
	if c.Janitor.RetentionDays < 0 {
		errs = append(errs, "janitor.retention_days cannot be negative")
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when a bot token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when a bot token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
