package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Archive.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30", cfg.Archive.RetentionDays)
	}
	if cfg.Reminders.ToleranceMinutes != 2 {
		t.Errorf("tolerance = %d, want 2", cfg.Reminders.ToleranceMinutes)
	}
	if cfg.Inbox.Port != "993" || !cfg.Inbox.TLS || cfg.Inbox.Mailbox != "INBOX" || cfg.Inbox.Limit != 20 {
		t.Errorf("inbox defaults = %+v", cfg.Inbox)
	}
	if cfg.Display.Theme != "light" {
		t.Errorf("theme = %q", cfg.Display.Theme)
	}
}

func TestSaveLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Display.Theme = "dark"
	cfg.Archive.RetentionDays = 45
	cfg.Inbox.Host = "imap.example.com"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Display.Theme != "dark" || got.Archive.RetentionDays != 45 || got.Inbox.Host != "imap.example.com" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_DISPLAY_THEME", "dark")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Display.Theme != "dark" {
		t.Errorf("theme = %q, want env override", cfg.Display.Theme)
	}
}

func TestLoadConfigClampsRetentionAndTolerance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "archive:\n  retention_days: 0\nreminders:\n  tolerance_minutes: 0\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Archive.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30", cfg.Archive.RetentionDays)
	}
	if cfg.Reminders.ToleranceMinutes != 2 {
		t.Errorf("tolerance = %d, want 2", cfg.Reminders.ToleranceMinutes)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("archive: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
