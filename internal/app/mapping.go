package app

import (
	"strings"
	"time"

	"chorebot/internal/config"
	"chorebot/internal/notifier"
	"chorebot/internal/storage"
	"chorebot/internal/transport"
	"chorebot/internal/transport/telegram"
	"chorebot/pkg/logx"
)

const (
	defaultRefreshInterval = 15 * time.Minute
	defaultNotifyTime      = "08:00"
	defaultSaveDebounce    = 2 * time.Second
)

func mapStorageConfig(cfg *config.Config) (storage.Config, time.Duration, error) {
	sc := cfg.StorageOrDefault()
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
	if err != nil {
		return storage.Config{}, 0, err
	}
	debounce, err := config.ParseDurationOrDefault("storage.save_debounce", sc.SaveDebounce, defaultSaveDebounce)
	if err != nil {
		return storage.Config{}, 0, err
	}
	return storage.Config{
		Driver:      strings.ToLower(strings.TrimSpace(sc.Driver)),
		Path:        strings.TrimSpace(sc.Path),
		Format:      strings.ToLower(strings.TrimSpace(sc.Format)),
		BusyTimeout: busy,
	}, debounce, nil
}

func mapNotifierConfig(cfg *config.Config) (notifier.Config, error) {
	nc := cfg.NotifierOrDefault()
	base, err := config.ParseDurationField("notifier.retry_base", nc.RetryBase)
	if err != nil {
		return notifier.Config{}, err
	}
	maxDelay, err := config.ParseDurationField("notifier.retry_max_delay", nc.RetryMaxDelay)
	if err != nil {
		return notifier.Config{}, err
	}
	window, err := config.ParseDurationField("notifier.dedup_window", nc.DedupWindow)
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		Workers:         nc.Workers,
		QueueSize:       nc.QueueSize,
		RatePerSec:      nc.RatePerSec,
		RetryMax:        nc.RetryMax,
		RetryBase:       base,
		RetryMaxDelay:   maxDelay,
		DedupWindow:     window,
		DedupMaxEntries: nc.DedupMaxEntries,
		PersistDedup:    nc.PersistDedup,
	}, nil
}

func mapLogConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File:    logx.FileConfig{Enabled: lc.File.Enabled, Path: lc.File.Path},
		Chat: logx.ChatConfig{
			Enabled:    lc.Notify.Enabled,
			Target:     transport.ChatTarget{ChatID: lc.Notify.ChatID, ThreadID: lc.Notify.ThreadID},
			MinLevel:   lc.Notify.MinLevel,
			RatePerSec: lc.Notify.RatePerSec,
		},
	}
}

func mapTelegramConfig(cfg *config.Config) (telegram.Config, error) {
	poll, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{Token: strings.TrimSpace(cfg.Telegram.Token), PollTimeout: poll}, nil
}

func refreshInterval(cfg *config.Config) time.Duration {
	d, err := config.ParseDurationOrDefault("refresh.interval", cfg.Refresh.Interval, defaultRefreshInterval)
	if err != nil || d <= 0 {
		return defaultRefreshInterval
	}
	return d
}

func notifyTime(cfg *config.Config) string {
	if t := strings.TrimSpace(cfg.Notifications.Time); t != "" {
		return t
	}
	return defaultNotifyTime
}

func notifyTargets(cfg *config.Config) []transport.ChatTarget {
	out := make([]transport.ChatTarget, 0, len(cfg.Notifications.Targets))
	for _, t := range cfg.Notifications.Targets {
		out = append(out, transport.ChatTarget{ChatID: t.ChatID, ThreadID: t.ThreadID})
	}
	return out
}
