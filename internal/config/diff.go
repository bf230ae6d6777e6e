package config

import (
	"reflect"
	"sort"
	"strings"

	"chorebot/pkg/logx"
)

// Diff lists the top-level sections that differ between oldCfg and newCfg.
func Diff(oldCfg, newCfg *Config) []string {
	changed, _ := SummarizeConfigChange(oldCfg, newCfg)
	return changed
}

// SummarizeConfigChange returns the changed sections (sorted) and log fields
// describing the new values. Tokens are never included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 7)
	attrs := make([]logx.Field, 0, 16)

	if strings.TrimSpace(oldCfg.Timezone) != strings.TrimSpace(newCfg.Timezone) {
		changed = append(changed, "timezone")
		attrs = append(attrs, logx.String("timezone", strings.TrimSpace(newCfg.Timezone)))
	}

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logging.notify_enabled", newCfg.Logging.Notify.Enabled),
		)
	}

	oS, nS := oldCfg.StorageOrDefault(), newCfg.StorageOrDefault()
	if oS != nS {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(nS.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(nS.Path) != ""),
			logx.String("storage.format", nS.Format),
		)
	}

	if oldCfg.Refresh != newCfg.Refresh {
		changed = append(changed, "refresh")
		attrs = append(attrs,
			logx.String("refresh.interval", strings.TrimSpace(newCfg.Refresh.Interval)),
			logx.Int("refresh.due_window_days", newCfg.DueWindowDays()),
		)
	}

	if !reflect.DeepEqual(oldCfg.Notifications, newCfg.Notifications) {
		changed = append(changed, "notifications")
		attrs = append(attrs,
			logx.Bool("notifications.enabled", newCfg.Notifications.Enabled),
			logx.String("notifications.time", newCfg.Notifications.Time),
			logx.Int("notifications.targets", len(newCfg.Notifications.Targets)),
		)
	}

	oN, nN := oldCfg.NotifierOrDefault(), newCfg.NotifierOrDefault()
	if oN != nN {
		changed = append(changed, "notifier")
		attrs = append(attrs,
			logx.Int("notifier.workers", nN.Workers),
			logx.Int("notifier.queue_size", nN.QueueSize),
			logx.Int("notifier.rate_per_sec", nN.RatePerSec),
			logx.Int("notifier.retry_max", nN.RetryMax),
			logx.Bool("notifier.persist_dedup", nN.PersistDedup),
		)
	}

	oT, nT := oldCfg.Telegram, newCfg.Telegram
	if oT.Enabled != nT.Enabled || oT.Token != nT.Token ||
		strings.TrimSpace(oT.PollTimeout) != strings.TrimSpace(nT.PollTimeout) ||
		!reflect.DeepEqual(oT.OwnerUserIDs, nT.OwnerUserIDs) {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.enabled", nT.Enabled),
			logx.Bool("telegram.token_set", strings.TrimSpace(nT.Token) != ""),
			logx.Int("telegram.owner_count", len(nT.OwnerUserIDs)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
