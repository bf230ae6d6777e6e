package app

import (
	"context"
	"reflect"
	"slices"
	"strings"

	"chorebot/internal/config"
	"chorebot/pkg/logx"
)

func (a *App) startReload() {
	sub := a.cfgm.Subscribe(8)
	last := a.cfgm.Get()
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case cfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config.
			drain:
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							cfg = newer
						}
					default:
						break drain
					}
				}
				a.applyConfig(c, last, cfg)
				last = cfg
			}
		}
	})
}

// applyConfig pushes a reloaded config into the running components.
// Storage and transport changes only take effect after a restart.
func (a *App) applyConfig(ctx context.Context, old, cfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(old, cfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	changed := func(s string) bool { return slices.Contains(sections, s) }

	if changed("logging") && a.logs != nil {
		a.logs.Apply(mapLogConfig(cfg))
	}
	if changed("storage") {
		a.log.Warn("storage config changed; restart required for changes to take effect")
	}
	if changed("telegram") {
		a.router.SetOwners(cfg.Telegram.OwnerUserIDs)
		o, n := old.Telegram, cfg.Telegram
		o.OwnerUserIDs, n.OwnerUserIDs = nil, nil
		if !reflect.DeepEqual(o, n) {
			a.log.Warn("telegram transport changed; restart required for changes to take effect")
		}
	}
	if changed("timezone") {
		loc, err := config.LoadLocation(cfg.Timezone)
		if err != nil {
			a.log.Warn("invalid timezone, keeping previous", logx.Err(err))
		} else {
			if a.zone != nil {
				a.zone.SetLocation(loc)
			}
			a.sched.SetLocation(loc)
		}
	}
	if changed("refresh") {
		a.chores.SetDueWindow(cfg.DueWindowDays())
	}
	if changed("notifier") {
		if ncfg, err := mapNotifierConfig(cfg); err != nil {
			a.log.Warn("invalid notifier config, keeping previous", logx.Err(err))
		} else {
			a.notif.Apply(ncfg)
		}
	}
	if changed("timezone") || changed("refresh") || changed("notifications") {
		if err := a.registerJobs(cfg); err != nil {
			a.log.Warn("reschedule failed", logx.Err(err))
		}
		a.chores.Refresh(ctx)
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}
