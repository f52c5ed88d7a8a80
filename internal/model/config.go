package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StorageConfig locates the SQLite database holding the board.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ArchiveConfig controls automatic archival of completed tasks.
type ArchiveConfig struct {
	// RetentionDays is how long a completed task stays on the board
	// after its last update.
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// ReminderConfig controls reminder window detection.
type ReminderConfig struct {
	ToleranceMinutes int `mapstructure:"tolerance_minutes" yaml:"tolerance_minutes"`
}

// ScheduleConfig holds cron specs for the background sweeps.
type ScheduleConfig struct {
	Reminders  string `mapstructure:"reminders" yaml:"reminders"`
	Recurrence string `mapstructure:"recurrence" yaml:"recurrence"`
	Archive    string `mapstructure:"archive" yaml:"archive"`
}

// DisplayConfig holds presentation preferences.
type DisplayConfig struct {
	Theme  string `mapstructure:"theme" yaml:"theme"`
	Author string `mapstructure:"author" yaml:"author"`
}

// NotifyConfig selects where reminders are delivered.
type NotifyConfig struct {
	Console      bool   `mapstructure:"console" yaml:"console"`
	SlackEnabled bool   `mapstructure:"slack_enabled" yaml:"slack_enabled"`
	SlackChannel string `mapstructure:"slack_channel" yaml:"slack_channel"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// InboxConfig locates the IMAP mailbox captured as tasks. The password
// lives in the keyring.
type InboxConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	// Category receives captured tasks; empty selects the first one.
	Category string `mapstructure:"category" yaml:"category"`
	Limit    int    `mapstructure:"limit" yaml:"limit"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	File    string `mapstructure:"file" yaml:"file"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage   StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Archive   ArchiveConfig  `mapstructure:"archive" yaml:"archive"`
	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
	Schedule  ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Display   DisplayConfig  `mapstructure:"display" yaml:"display"`
	Notify    NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Server    ServerConfig   `mapstructure:"server" yaml:"server"`
	Inbox     InboxConfig    `mapstructure:"inbox" yaml:"inbox"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/taskboard, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// setDefaults registers a default for every known key so that missing keys
// resolve to sensible values and env overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	dir := configDir()
	v.SetDefault("storage.path", filepath.Join(dir, "taskboard.db"))
	v.SetDefault("archive.retention_days", 30)
	v.SetDefault("reminders.tolerance_minutes", 2)
	v.SetDefault("schedule.reminders", "@every 1m")
	v.SetDefault("schedule.recurrence", "@daily")
	v.SetDefault("schedule.archive", "@daily")
	v.SetDefault("display.theme", "light")
	v.SetDefault("display.author", "User")
	v.SetDefault("notify.console", true)
	v.SetDefault("notify.slack_enabled", false)
	v.SetDefault("notify.slack_channel", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("inbox.host", "")
	v.SetDefault("inbox.port", "993")
	v.SetDefault("inbox.username", "")
	v.SetDefault("inbox.tls", true)
	v.SetDefault("inbox.mailbox", "INBOX")
	v.SetDefault("inbox.category", "")
	v.SetDefault("inbox.limit", 20)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", filepath.Join(dir, "logs", "taskboard.log"))
	v.SetDefault("log.console", false)
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	v := viper.New()
	setDefaults(v)
	cfg := &AppConfig{}
	// Unmarshalling plain defaults cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TASKBOARD_ override file values.
// If the file does not exist, defaults (plus env overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, missing := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missing && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Archive.RetentionDays <= 0 {
		cfg.Archive.RetentionDays = 30
	}
	// A reminder window needs at least one minute on either side to be
	// caught by a once-a-minute sweep.
	if cfg.Reminders.ToleranceMinutes <= 0 {
		cfg.Reminders.ToleranceMinutes = 2
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("archive", cfg.Archive)
	v.Set("reminders", cfg.Reminders)
	v.Set("schedule", cfg.Schedule)
	v.Set("display", cfg.Display)
	v.Set("notify", cfg.Notify)
	v.Set("server", cfg.Server)
	v.Set("inbox", cfg.Inbox)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
