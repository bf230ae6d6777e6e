package scheduler

import (
	"time"

	"chorebot/pkg/logx"
)

const failWarnThrottle = 5 * time.Second

func (s *Service) reportFailure(name string, err error) {
	now := time.Now()
	s.failMu.Lock()
	last := s.lastFailWarn[name]
	if !last.IsZero() && now.Sub(last) < failWarnThrottle {
		s.failMu.Unlock()
		return
	}
	s.lastFailWarn[name] = now
	s.failMu.Unlock()

	s.log.Warn("scheduled job failed", logx.String("schedule", name), logx.Err(err))
}

// cronLogger routes robfig/cron's internal logging into logx.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	// cron logs every wake-up at info; keep that at trace.
	l.log.Trace("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}
