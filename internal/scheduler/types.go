package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"chorebot/pkg/logx"
)

// Job is the unit of work a schedule triggers.
type Job func(ctx context.Context) error

type scheduleDef struct {
	name          string
	spec          string // cron spec or @every
	timeout       time.Duration
	job           Job
	entryID       cron.EntryID
	startupSpread time.Duration
}

// Service owns a robfig/cron instance and the schedule definitions
// registered on it.
type Service struct {
	mu sync.Mutex

	log    logx.Logger
	loc    *time.Location
	parser cron.Parser
	c      *cron.Cron
	defs   []scheduleDef

	// ctx is the parent of every job run; cancel fires on Stop.
	ctx    context.Context
	cancel context.CancelFunc

	failMu       sync.Mutex
	lastFailWarn map[string]time.Time
}

// ScheduleInfo describes one registered schedule.
type ScheduleInfo struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Next    time.Time
	Prev    time.Time
}
