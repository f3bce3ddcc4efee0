package main

import (
	"fmt"
	"time"

	"github.com/quatroapp/quatro/internal/config"
	"github.com/quatroapp/quatro/internal/db"
	"github.com/quatroapp/quatro/internal/notify"
	"github.com/quatroapp/quatro/internal/notify/discord"
	"github.com/quatroapp/quatro/internal/notify/slack"
	"github.com/quatroapp/quatro/internal/persist"
	"github.com/quatroapp/quatro/internal/store"
)

// openStore loads the config, connects the database, and hydrates an
// in-memory store backed by the persister. Callers must Close the
// persister before exiting so queued writes drain.
func openStore(configPath string) (*config.Config, *store.Store, *persist.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, nil, err
	}

	tasks, configs, err := persist.LoadSnapshot(gormDB)
	if err != nil {
		return nil, nil, nil, err
	}

	p := persist.New(persist.Opts{DB: gormDB, Notifier: buildNotifier(cfg)})
	st := store.New(store.Opts{Persister: p})
	st.Hydrate(tasks, configs)
	return cfg, st, p, nil
}

// buildNotifier assembles the configured notification channels. With
// nothing configured, events go to the log.
func buildNotifier(cfg *config.Config) notify.Notifier {
	var channels notify.Fanout

	if cfg.Notify.Slack.BotToken != "" {
		n, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.ChannelID,
		})
		if err == nil {
			channels = append(channels, n)
		}
	}
	if cfg.Notify.Discord.BotToken != "" {
		n, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err == nil {
			channels = append(channels, n)
		}
	}

	if len(channels) == 0 {
		return notify.Log{}
	}
	return channels
}

// parseWhen accepts a date (2026-03-02), a datetime (2026-03-02 15:04 or
// RFC3339), or a relative duration (+36h) and returns the resolved time.
func parseWhen(s string) (time.Time, error) {
	if len(s) > 1 && s[0] == '+' {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse duration %q: %w", s, err)
		}
		return time.Now().Add(d), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want 2006-01-02, 2006-01-02 15:04, RFC3339, or +duration)", s)
}

// formatWhen renders a nullable timestamp for list output.
func formatWhen(t *time.Time) string {
	if t == nil {
		return "-"
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}
