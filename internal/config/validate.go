package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNilConfig = errors.New("config is nil")

var allowedDaysBefore = map[int]bool{0: true, 1: true, 2: true, 3: true, 7: true}

// Validate checks cfg without side effects and reports every problem found.
// It is used on startup and as the ConfigManager validator on reload.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := LoadLocation(cfg.Timezone); err != nil {
		add(err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		add(fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add(errors.New("logging.file.path: required when file logging is enabled"))
	}
	if n := cfg.Logging.Notify; n.Enabled {
		if n.ChatID == 0 {
			add(errors.New("logging.notify.chat_id: required when enabled"))
		}
		if n.RatePerSec < 0 {
			add(errors.New("logging.notify.rate_per_sec: must be >= 0"))
		}
	}

	if cfg.Storage != nil {
		s := cfg.Storage
		driver := strings.ToLower(strings.TrimSpace(s.Driver))
		switch driver {
		case "", "none", "memory":
		case "file", "sqlite", "sqlite3":
			if strings.TrimSpace(s.Path) == "" {
				add(fmt.Errorf("storage.path: required for driver %q", driver))
			}
		default:
			add(fmt.Errorf("storage.driver: unknown driver %q", s.Driver))
		}
		switch strings.ToLower(strings.TrimSpace(s.Format)) {
		case "", "json", "cbor":
		default:
			add(fmt.Errorf("storage.format: want json or cbor, got %q", s.Format))
		}
		_, err := ParseDurationField("storage.busy_timeout", s.BusyTimeout)
		add(err)
		_, err = ParseDurationField("storage.save_debounce", s.SaveDebounce)
		add(err)
	}

	_, err := ParseDurationField("refresh.interval", cfg.Refresh.Interval)
	add(err)
	if cfg.Refresh.DueWindowDays < 0 {
		add(errors.New("refresh.due_window_days: must be >= 0"))
	}

	for _, d := range cfg.Notifications.DaysBefore {
		if !allowedDaysBefore[d] {
			add(fmt.Errorf("notifications.days_before: %d is not one of 0, 1, 2, 3, 7", d))
		}
	}
	for i, t := range cfg.Notifications.Targets {
		if t.ChatID == 0 {
			add(fmt.Errorf("notifications.targets[%d].chat_id: required", i))
		}
	}

	if n := cfg.Notifier; n != nil {
		if n.Workers < 0 || n.QueueSize < 0 || n.RatePerSec < 0 || n.RetryMax < 0 || n.DedupMaxEntries < 0 {
			add(errors.New("notifier: numeric settings must be >= 0"))
		}
		_, err := ParseDurationField("notifier.retry_base", n.RetryBase)
		add(err)
		_, err = ParseDurationField("notifier.retry_max_delay", n.RetryMaxDelay)
		add(err)
		_, err = ParseDurationField("notifier.dedup_window", n.DedupWindow)
		add(err)
	}

	if cfg.Telegram.Enabled && strings.TrimSpace(cfg.Telegram.Token) == "" {
		add(errors.New("telegram.token: required when telegram is enabled"))
	}
	_, err = ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	add(err)

	return errors.Join(errs...)
}
