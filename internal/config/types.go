package config

// Config is the chorebot configuration file (JSON or YAML).
//
// All durations are Go duration strings ("500ms", "10s", "15m").
type Config struct {
	// Timezone is an IANA zone name used to decide what "today" is.
	// Empty means the host's local zone.
	Timezone string `json:"timezone,omitempty"`

	Logging       LoggingConfig       `json:"logging"`
	Storage       *StorageConfig      `json:"storage,omitempty"`
	Refresh       RefreshConfig       `json:"refresh"`
	Notifications NotificationsConfig `json:"notifications"`
	Notifier      *NotifierConfig     `json:"notifier,omitempty"`
	Telegram      TelegramConfig      `json:"telegram"`
}

type LoggingConfig struct {
	Level   string        `json:"level"`
	Console bool          `json:"console"`
	File    LoggingFile   `json:"file"`
	Notify  LoggingNotify `json:"notify"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingNotify forwards warnings (or MinLevel and above) to a chat.
type LoggingNotify struct {
	Enabled    bool   `json:"enabled"`
	ChatID     int64  `json:"chat_id"`
	ThreadID   int    `json:"thread_id,omitempty"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig controls persistence.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./data/chores.db" }
type StorageConfig struct {
	Driver       string `json:"driver"`
	Path         string `json:"path"`
	Format       string `json:"format,omitempty"`       // file driver: json (default) or cbor
	BusyTimeout  string `json:"busy_timeout,omitempty"` // sqlite
	SaveDebounce string `json:"save_debounce,omitempty"`
}

// RefreshConfig controls the periodic snapshot rebuild.
//
// Defaults: interval 15m, due_window_days 7.
type RefreshConfig struct {
	Interval      string `json:"interval,omitempty"`
	DueWindowDays int    `json:"due_window_days,omitempty"`
}

// NotificationsConfig controls the daily "chores due" message.
type NotificationsConfig struct {
	Enabled bool `json:"enabled"`
	// Time is HH:MM in the configured timezone. Invalid values fall back to 08:00.
	Time string `json:"time,omitempty"`
	// DaysBefore lists offsets from today to report; each is one of 0, 1, 2, 3, 7.
	DaysBefore []int          `json:"days_before,omitempty"`
	Targets    []TargetConfig `json:"targets,omitempty"`
}

type TargetConfig struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`
}

// NotifierConfig controls the async notification pipeline. If the whole
// section is omitted the notifier runs with defaults.
type NotifierConfig struct {
	Workers         int    `json:"workers"`
	QueueSize       int    `json:"queue_size"`
	RatePerSec      int    `json:"rate_per_sec"`
	RetryMax        int    `json:"retry_max"`
	RetryBase       string `json:"retry_base"`
	RetryMaxDelay   string `json:"retry_max_delay"`
	DedupWindow     string `json:"dedup_window"`
	DedupMaxEntries int    `json:"dedup_max_entries"`
	PersistDedup    bool   `json:"persist_dedup,omitempty"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	// OwnerUserIDs may use chat commands and buttons. Empty means nobody.
	OwnerUserIDs []int64 `json:"owner_user_ids,omitempty"`
	PollTimeout  string  `json:"poll_timeout,omitempty"`
}

// DefaultNotifier is what an omitted notifier section means.
func DefaultNotifier() NotifierConfig {
	return NotifierConfig{
		Workers:         2,
		QueueSize:       256,
		RatePerSec:      3,
		RetryMax:        3,
		RetryBase:       "500ms",
		RetryMaxDelay:   "10s",
		DedupWindow:     "1h",
		DedupMaxEntries: 2000,
		PersistDedup:    true,
	}
}

// NotifierOrDefault returns the notifier section, or the defaults when omitted.
func (c *Config) NotifierOrDefault() NotifierConfig {
	if c == nil || c.Notifier == nil {
		return DefaultNotifier()
	}
	return *c.Notifier
}

// StorageOrDefault returns the storage section. Omitted means the json file
// driver at ./data/chores.json.
func (c *Config) StorageOrDefault() StorageConfig {
	if c == nil || c.Storage == nil {
		return StorageConfig{Driver: "file", Path: "./data/chores.json"}
	}
	return *c.Storage
}

// DueWindowDays returns refresh.due_window_days, defaulting to 7.
func (c *Config) DueWindowDays() int {
	if c == nil || c.Refresh.DueWindowDays <= 0 {
		return 7
	}
	return c.Refresh.DueWindowDays
}

// DaysBefore returns notifications.days_before, defaulting to [0].
func (c *Config) DaysBefore() []int {
	if c == nil || len(c.Notifications.DaysBefore) == 0 {
		return []int{0}
	}
	return append([]int(nil), c.Notifications.DaysBefore...)
}
