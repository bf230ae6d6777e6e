package notifier

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"chorebot/internal/storage"
	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

type dedupWrite struct {
	key   string
	until time.Time
}

// dedupKey is n.DedupKey when set, else a hash of channel, target and text.
// Notifications without a channel are never deduplicated.
func dedupKey(n transport.Notification) string {
	if n.DedupKey != "" {
		return n.DedupKey
	}
	if n.Channel == "" {
		return ""
	}
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%d:%d|", n.Channel, n.Target.ChatID, n.Target.ThreadID)
	_, _ = h.Write([]byte(n.Text))
	return fmt.Sprintf("%s:%x", n.Channel, h.Sum64())
}

// dedupAllow reports whether key may be sent now and, if so, opens a new
// suppression window for it.
func (s *Service) dedupAllow(ctx context.Context, key string, cfg Config, st storage.Store, pch chan dedupWrite) bool {
	now := s.now()

	s.dmu.Lock()
	if until, ok := s.dedup[key]; ok && now.Before(until) {
		s.dmu.Unlock()
		return false
	}
	s.dmu.Unlock()

	if cfg.PersistDedup && st != nil {
		cctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		until, ok, err := st.GetDedup(cctx, key)
		cancel()
		if err == nil && ok && now.Before(until) {
			s.dmu.Lock()
			s.dedup[key] = until
			s.dmu.Unlock()
			return false
		}
	}

	until := now.Add(cfg.DedupWindow)
	s.dmu.Lock()
	s.dedup[key] = until
	pruneDedup(s.dedup, now, cfg.DedupMaxEntries)
	s.dmu.Unlock()

	if pch != nil {
		select {
		case pch <- dedupWrite{key: key, until: until}:
		default:
		}
	}
	return true
}

// dedupRelease reopens key after a notification was dropped or failed, so the
// next attempt is not suppressed by a window nothing was delivered in.
func (s *Service) dedupRelease(ctx context.Context, key string, cfg Config, st storage.Store) {
	if key == "" || cfg.DedupWindow <= 0 {
		return
	}
	s.pmu.Lock()
	defer s.pmu.Unlock()

	s.dmu.Lock()
	delete(s.dedup, key)
	s.dmu.Unlock()

	if cfg.PersistDedup && st != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := st.PutDedup(cctx, key, s.now()); err != nil {
			s.log.Debug("dedup release failed", logx.String("key", key), logx.Err(err))
		}
	}
}

// pruneDedup drops expired entries, then the soonest-expiring ones until at
// most max remain.
func pruneDedup(m map[string]time.Time, now time.Time, max int) {
	for k, until := range m {
		if !now.Before(until) {
			delete(m, k)
		}
	}
	for max > 0 && len(m) > max {
		var (
			minKey string
			minT   time.Time
		)
		for k, t := range m {
			if minKey == "" || t.Before(minT) {
				minKey, minT = k, t
			}
		}
		delete(m, minKey)
	}
}

func (s *Service) persistLoop(ctx context.Context, ch <-chan dedupWrite, st storage.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-ch:
			if !ok {
				return
			}
			s.persistOne(ctx, w, st)
		}
	}
}

// persistOne writes w unless the key was released or re-reserved since.
func (s *Service) persistOne(ctx context.Context, w dedupWrite, st storage.Store) {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	s.dmu.Lock()
	until, ok := s.dedup[w.key]
	s.dmu.Unlock()
	if !ok || !until.Equal(w.until) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := st.PutDedup(cctx, w.key, w.until); err != nil {
		s.log.Debug("dedup persist failed", logx.String("key", w.key), logx.Err(err))
	}
}
