// Package app wires configuration, storage, the chores service and the
// delivery stack into the long-running daemon and the one-shot CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"chorebot/internal/bot"
	"chorebot/internal/chores"
	"chorebot/internal/clock"
	"chorebot/internal/config"
	"chorebot/internal/eventbus"
	"chorebot/internal/notifier"
	"chorebot/internal/runtime/supervisor"
	"chorebot/internal/scheduler"
	"chorebot/internal/storage"
	"chorebot/internal/transport"
	"chorebot/internal/transport/console"
	"chorebot/internal/transport/telegram"
	"chorebot/pkg/logx"
)

// Options override pieces of the wiring. The zero value builds everything
// from config.
type Options struct {
	// Adapter replaces the transport chosen from config.
	Adapter transport.Adapter
	// Clock replaces the real clock in the configured timezone.
	Clock clock.Clock
	// Stdout receives console adapter output; nil means os.Stdout.
	Stdout io.Writer
	// Logger replaces the configured root logger (the CLI passes its own).
	Logger *logx.Logger
}

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	store  storage.Store
	saver  *storage.Saver
	clock  clock.Clock
	zone   *clock.Zoned
	chores *chores.Service

	adapter transport.Adapter
	notif   *notifier.Service
	sched   *scheduler.Service
	router  *bot.Router

	updates chan transport.Update
}

// NewApp loads and validates the config file at path and builds the app.
func NewApp(path string, opts Options) (*App, error) {
	cfgm := config.NewConfigManager(path)
	if _, err := cfgm.Load(); err != nil {
		return nil, err
	}
	return New(cfgm, opts)
}

// New builds the app from the manager's current config. Nothing is started
// and no state is loaded.
func New(cfgm *config.ConfigManager, opts Options) (*App, error) {
	cfg := cfgm.Get()
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	loc, err := config.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	ad := opts.Adapter
	if ad == nil {
		if cfg.Telegram.Enabled {
			tc, err := mapTelegramConfig(cfg)
			if err != nil {
				return nil, err
			}
			tg, err := telegram.New(tc, logx.NewConsole(cfg.Logging.Level))
			if err != nil {
				return nil, err
			}
			ad = tg
		} else {
			ad = console.New(opts.Stdout, logx.Nop())
		}
	}

	var (
		logSvc *logx.Service
		log    logx.Logger
	)
	if opts.Logger != nil {
		log = *opts.Logger
	} else {
		logSvc, log = logx.New(mapLogConfig(cfg), ad)
	}
	if tg, ok := ad.(*telegram.Adapter); ok {
		tg.SetLogger(log)
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	sc, debounce, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	saver := storage.NewSaver(store, debounce, log.With(logx.String("comp", "storage")))

	bus := eventbus.New()

	clk := opts.Clock
	var zone *clock.Zoned
	if clk == nil {
		zone = clock.NewZoned(loc)
		clk = zone
	}

	choreSvc := chores.New(chores.Options{
		Store:         store,
		Saver:         saver,
		Bus:           bus,
		Clock:         clk,
		Log:           log,
		DueWindowDays: cfg.DueWindowDays(),
	})

	ncfg, err := mapNotifierConfig(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	notif := notifier.New(ncfg, ad, log.With(logx.String("comp", "notifier")), bus, store)

	router := bot.NewRouter(ad, log, cfg.Telegram.OwnerUserIDs)
	router.SetRegistry(bot.ChoreCommands(choreSvc))

	return &App{
		cfgm:    cfgm,
		log:     log.With(logx.String("comp", "app")),
		logs:    logSvc,
		bus:     bus,
		store:   store,
		saver:   saver,
		clock:   clk,
		zone:    zone,
		chores:  choreSvc,
		adapter: ad,
		notif:   notif,
		sched:   scheduler.New(loc, log.With(logx.String("comp", "scheduler"))),
		router:  router,
		updates: make(chan transport.Update, 256),
	}, nil
}

func (a *App) Chores() *chores.Service          { return a.chores }
func (a *App) Config() *config.Config           { return a.cfgm.Get() }
func (a *App) Logger() logx.Logger              { return a.log }
func (a *App) Bus() eventbus.Bus                { return a.bus }
func (a *App) Notifier() *notifier.Service      { return a.notif }
func (a *App) Scheduler() *scheduler.Service    { return a.sched }
func (a *App) Adapter() transport.Adapter       { return a.adapter }
func (a *App) Now() time.Time                   { return a.clock.Now() }
func (a *App) Updates() chan<- transport.Update { return a.updates }

// Load reads persisted state into the chores service.
func (a *App) Load(ctx context.Context) error {
	if err := a.chores.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	return nil
}

// Done is closed when the app supervisor is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error seen by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Start loads state and starts every daemon component: adapter, notifier,
// scheduler, command router, config watch and reload fan-out.
func (a *App) Start(ctx context.Context) error {
	if err := a.Load(ctx); err != nil {
		return err
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		if _, err := mapNotifierConfig(cfg); err != nil {
			return err
		}
		_, err := mapTelegramConfig(cfg)
		return err
	})

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}
	a.notif.Start(a.sup.Context())
	if err := a.registerJobs(a.cfgm.Get()); err != nil {
		return err
	}
	a.sched.Start(a.sup.Context())

	a.sup.Go("commands.dispatch", func(c context.Context) error {
		return a.router.DispatchLoop(c, a.updates)
	})
	a.sup.Go0("commands.menu", func(context.Context) {
		if err := a.router.PublishMenu(); err != nil {
			a.log.Warn("command menu update failed", logx.Err(err))
		}
	})

	// chores.refreshed is left out
	events, unsub := a.bus.Subscribe(128, "chore", "room", "user", "notifier")
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	a.startReload()
	a.sup.Go("config.watch", func(c context.Context) error {
		if a.cfgm.Path() == "" {
			return nil
		}
		return a.cfgm.Watch(c)
	})
	a.startWatchdog()

	sdNotify(a.log, sdReady)
	a.log.Info("app started", logx.String("tz", a.sched.Location().String()))
	return nil
}

// Stop shuts components down in reverse start order, each step bounded so
// one slow component cannot stall the rest. The debounced save is flushed
// before storage closes.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	sdNotify(a.log, sdStopping)
	a.log.Info("stopping", logx.String("reason", string(reason)))
	if a.sup != nil {
		a.sup.Cancel()
	}

	_ = a.step(ctx, "scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	_ = a.step(ctx, "notifier", 3*time.Second, func(c context.Context) error { a.notif.Stop(c); return nil })
	_ = a.step(ctx, "adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	if a.sup != nil {
		_ = a.step(ctx, "supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	}
	err := a.Close(ctx)
	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}

// Close flushes pending saves and closes storage. The CLI calls it directly;
// Stop calls it last.
func (a *App) Close(ctx context.Context) error {
	return a.step(ctx, "storage", 3*time.Second, func(c context.Context) error {
		return errors.Join(a.chores.Flush(c), a.store.Close())
	})
}

// step runs fn with an upper bound that never extends the caller's deadline.
func (a *App) step(ctx context.Context, name string, max time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in stop step %s: %v", name, r)
			}
		}()
		done <- fn(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		return err
	case <-stepCtx.Done():
		a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name), logx.Duration("elapsed", time.Since(start)))
		return stepCtx.Err()
	}
}
