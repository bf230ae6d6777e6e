package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chorebot/internal/chores"
	"chorebot/internal/config"
	"chorebot/internal/scheduler"
	"chorebot/internal/transport"
	"chorebot/internal/transport/console"
	"chorebot/pkg/logx"
)

const (
	jobRefresh  = "chores.refresh"
	jobMidnight = "chores.midnight"
	jobNotify   = "notify.due"

	jobTimeout = time.Minute
)

// registerJobs (re)installs the scheduled jobs for cfg. Schedules are
// upserted by name so it is safe to call again after a reload.
func (a *App) registerJobs(cfg *config.Config) error {
	refresh := func(ctx context.Context) error {
		a.chores.Refresh(ctx)
		return nil
	}
	if err := a.sched.AddInterval(jobRefresh, refreshInterval(cfg), jobTimeout, refresh); err != nil {
		return err
	}
	if err := a.sched.AddCron(jobMidnight, "@midnight", jobTimeout, refresh); err != nil {
		return err
	}

	if !cfg.Notifications.Enabled {
		a.sched.Remove(jobNotify)
		return nil
	}
	at := notifyTime(cfg)
	if _, _, err := scheduler.ParseHHMM(at); err != nil {
		a.log.Warn("invalid notifications.time, using default",
			logx.String("time", at), logx.String("default", defaultNotifyTime), logx.Err(err))
		at = defaultNotifyTime
	}
	return a.sched.AddDaily(jobNotify, at, jobTimeout, func(ctx context.Context) error {
		_, err := a.SendDue(ctx)
		return err
	})
}

// SendDue refreshes the snapshot and queues the daily due message to every
// configured target. It returns how many notifications were accepted by the
// notifier. A repeat for the same day within notifier.dedup_window is
// accepted but suppressed; once the window has passed it is sent again.
func (a *App) SendDue(ctx context.Context) (int, error) {
	cfg := a.cfgm.Get()
	snap := a.chores.Refresh(ctx)
	text, ok := chores.DueMessage(snap, cfg.DaysBefore())
	if !ok {
		a.log.Debug("nothing due, no notification sent", logx.Stringer("today", snap.Today))
		return 0, nil
	}

	targets := notifyTargets(cfg)
	if len(targets) == 0 {
		if _, ok := a.adapter.(*console.Adapter); !ok {
			a.log.Warn("due chores but no notification targets configured")
			return 0, nil
		}
		targets = []transport.ChatTarget{{}}
	}

	prio := 5
	if snap.HasOverdue() {
		prio = 7
	}
	opt := &transport.SendOptions{DisablePreview: true, Buttons: chores.DueButtons(snap.DueToday)}

	queued := 0
	var errs []error
	for _, t := range targets {
		err := a.notif.Notify(ctx, transport.Notification{
			Channel:  "due",
			Priority: prio,
			Target:   t,
			Text:     text,
			Options:  opt,
			DedupKey: fmt.Sprintf("due:%s:%d:%d", snap.Today, t.ChatID, t.ThreadID),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", t.ChatID, err))
			continue
		}
		queued++
	}
	a.log.Info("due notification queued",
		logx.Int("targets", queued),
		logx.Int("due_today", len(snap.DueToday)),
		logx.Int("overdue", len(snap.Overdue)),
	)
	return queued, errors.Join(errs...)
}
