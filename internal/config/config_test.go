package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Database.Path != "quatro.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "quatro.db")
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080", cfg.Dashboard.Port)
	}
	if cfg.NowLimit != 4 {
		t.Errorf("NowLimit = %d, want 4", cfg.NowLimit)
	}
	if cfg.UndoWindow() != 3*time.Second {
		t.Errorf("UndoWindow() = %v, want 3s", cfg.UndoWindow())
	}
	if cfg.Janitor.Schedule != "0 3 * * *" {
		t.Errorf("Janitor.Schedule = %q, want %q", cfg.Janitor.Schedule, "0 3 * * *")
	}
	if cfg.Retention() != 30*24*time.Hour {
		t.Errorf("Retention() = %v, want 720h", cfg.Retention())
	}
}

func TestParse_Full(t *testing.T) {
	yaml := `
database:
  driver: mysql
  host: db.internal
  port: 3307
  database: quatro_prod
  user: quatro
dashboard:
  port: 9000
now_limit: 6
undo_window_seconds: 5
janitor:
  schedule: "30 2 * * *"
  retention_days: 14
notify:
  slack:
    bot_token: xoxb-test
    channel_id: C123
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 3307 {
		t.Errorf("database = %+v, want mysql db.internal:3307", cfg.Database)
	}
	if cfg.NowLimit != 6 {
		t.Errorf("NowLimit = %d, want 6", cfg.NowLimit)
	}
	if cfg.UndoWindow() != 5*time.Second {
		t.Errorf("UndoWindow() = %v, want 5s", cfg.UndoWindow())
	}
	if cfg.Notify.Slack.ChannelID != "C123" {
		t.Errorf("Notify.Slack.ChannelID = %q, want C123", cfg.Notify.Slack.ChannelID)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name, yaml, wantErr string
	}{
		{"bad driver", "database:\n  driver: postgres\n", "not supported"},
		{"negative undo", "undo_window_seconds: -1\n", "cannot be negative"},
		{"slack token without channel", "notify:\n  slack:\n    bot_token: xoxb-x\n", "channel_id is required"},
		{"discord token without channel", "notify:\n  discord:\n    bot_token: d-x\n", "channel_id is required"},
		{"not yaml", ":\n  - {", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse = nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quatro.yaml")
	if err := os.WriteFile(path, []byte("now_limit: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowLimit != 2 {
		t.Errorf("NowLimit = %d, want 2", cfg.NowLimit)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) = nil error, want error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Database.Driver != "sqlite" || cfg.NowLimit != 4 {
		t.Errorf("Default() = %+v, want sqlite driver and now_limit 4", cfg)
	}
}
