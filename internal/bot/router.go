package bot

import (
	"context"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"chorebot/internal/runtime/supervisor"
	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

type Access int

const (
	AccessEveryone Access = iota
	AccessOwnerOnly
)

type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Access      Access
	Timeout     time.Duration
	Handle      HandlerFunc
}

// CallbackRoute handles button presses whose data is "<action>:<payload>".
type CallbackRoute struct {
	Action  string
	Access  Access
	Timeout time.Duration
	Handle  func(ctx context.Context, req *Request, payload string) error
}

type Request struct {
	Update   transport.Update
	Chat     transport.ChatTarget
	FromID   int64
	FromName string
	Command  string
	Args     []string
	ReqID    string

	Adapter transport.Adapter
	Logger  logx.Logger

	// Toast is shown to the presser of a callback button once the handler
	// returns.
	Toast string
}

// Reply sends text to the chat the request came from.
func (r *Request) Reply(ctx context.Context, text string) error {
	_, err := r.Adapter.SendText(ctx, r.Chat, text, &transport.SendOptions{DisablePreview: true})
	return err
}

// ReplyWith sends text with options, typically inline buttons.
func (r *Request) ReplyWith(ctx context.Context, text string, opt *transport.SendOptions) error {
	_, err := r.Adapter.SendText(ctx, r.Chat, text, opt)
	return err
}

// Router parses chat commands and button presses and runs their handlers on
// a bounded worker pool.
type Router struct {
	mu        sync.RWMutex
	cmds      map[string]*Command
	order     []string
	alias     map[string]string
	callbacks map[string]CallbackRoute
	owners    []int64

	log     logx.Logger
	adapter transport.Adapter
	workers int

	runMu   sync.Mutex
	running bool
	jobs    chan func()
}

func NewRouter(adapter transport.Adapter, log logx.Logger, owners []int64) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		cmds:      map[string]*Command{},
		alias:     map[string]string{},
		callbacks: map[string]CallbackRoute{},
		owners:    append([]int64(nil), owners...),
		log:       log.With(logx.String("comp", "router")),
		adapter:   adapter,
		workers:   2,
		jobs:      make(chan func(), 64),
	}
}

// SetOwners replaces the user ids allowed to run owner-only commands.
func (r *Router) SetOwners(owners []int64) {
	cp := append([]int64(nil), owners...)
	r.mu.Lock()
	r.owners = cp
	r.mu.Unlock()
}

func (r *Router) isOwner(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.owners, id)
}

// SetRegistry installs the command and callback tables. A /help command is
// always added.
func (r *Router) SetRegistry(cmds []Command, cbs []CallbackRoute) {
	cmds = append(cmds, Command{
		Name:        "help",
		Aliases:     []string{"start"},
		Description: "list commands",
		Usage:       "/help",
		Handle: func(ctx context.Context, req *Request) error {
			return req.ReplyWith(ctx, r.helpText(), &transport.SendOptions{ParseMode: "HTML", DisablePreview: true})
		},
	})

	byName := make(map[string]*Command, len(cmds))
	alias := map[string]string{}
	order := make([]string, 0, len(cmds))
	for _, c := range cmds {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || c.Handle == nil {
			continue
		}
		cc := c
		cc.Name = name
		byName[name] = &cc
		order = append(order, name)
		for _, a := range c.Aliases {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				alias[a] = name
			}
		}
	}
	cb := make(map[string]CallbackRoute, len(cbs))
	for _, route := range cbs {
		if route.Action != "" && route.Handle != nil {
			cb[route.Action] = route
		}
	}

	r.mu.Lock()
	r.cmds, r.alias, r.order, r.callbacks = byName, alias, order, cb
	r.mu.Unlock()
}

func (r *Router) lookup(word string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.cmds[word]; ok {
		return *c, true
	}
	if name, ok := r.alias[word]; ok {
		return *r.cmds[name], true
	}
	return Command{}, false
}

// MenuCommands returns the registered commands in registration order, for
// clients that show a command menu.
func (r *Router) MenuCommands() []transport.MenuCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]transport.MenuCommand, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, transport.MenuCommand{Command: name, Description: r.cmds[name].Description})
	}
	return out
}

// PublishMenu pushes MenuCommands to the adapter when it supports a menu.
func (r *Router) PublishMenu() error {
	m, ok := r.adapter.(transport.CommandMenu)
	if !ok {
		return nil
	}
	return m.SetCommands(r.MenuCommands())
}

func (r *Router) tryEnqueue(fn func()) bool {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if !r.running {
		return false
	}
	select {
	case r.jobs <- fn:
		return true
	default:
		return false
	}
}

// DispatchLoop consumes updates until ctx is done or updates is closed.
func (r *Router) DispatchLoop(ctx context.Context, updates <-chan transport.Update) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(r.log), supervisor.WithCancelOnError(false))

	r.runMu.Lock()
	r.running = true
	jobs := r.jobs
	r.runMu.Unlock()

	for i := 0; i < r.workers; i++ {
		idx := i
		sup.GoRestart("command.worker."+strconv.Itoa(idx), func(c context.Context) error {
			for {
				select {
				case <-c.Done():
					return nil
				case job, ok := <-jobs:
					if !ok {
						return nil
					}
					func() {
						defer func() {
							if p := recover(); p != nil {
								r.log.Error("panic in command job", logx.Int("worker", idx), logx.Any("panic", p), logx.String("stack", string(debug.Stack())))
							}
						}()
						job()
					}()
				}
			}
		},
			supervisor.WithRestartBackoff(200*time.Millisecond, 5*time.Second),
			supervisor.WithPublishFirstError(true),
			supervisor.WithStopOnCleanExit(true),
		)
	}
	r.log.Info("command dispatcher started", logx.Int("workers", r.workers))

	defer func() {
		r.runMu.Lock()
		r.running = false
		close(jobs)
		r.jobs = make(chan func(), cap(jobs))
		r.runMu.Unlock()

		wctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = sup.Wait(wctx)
		cancel()
		r.log.Info("command dispatcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.route(ctx, up)
		}
	}
}

func (r *Router) route(ctx context.Context, up transport.Update) {
	switch up.Kind {
	case transport.UpdateMessage:
		r.routeMessage(ctx, up)
	case transport.UpdateCallback:
		r.routeCallback(ctx, up)
	}
}

func (r *Router) routeMessage(ctx context.Context, up transport.Update) {
	msg := up.Message
	if msg == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	parts := tokenizeCommandLine(text)
	if len(parts) == 0 {
		return
	}
	chat := transport.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID}

	cmd, ok := r.lookup(commandWord(parts[0]))
	if !ok {
		_, _ = r.adapter.SendText(ctx, chat, "Unknown command. Try /help", nil)
		return
	}
	if cmd.Access == AccessOwnerOnly && !r.isOwner(msg.FromID) {
		_, _ = r.adapter.SendText(ctx, chat, "unauthorized", nil)
		return
	}

	req := r.newRequest(up, chat, msg.FromID, msg.FromName, cmd.Name)
	req.Args = parts[1:]
	final := Chain(cmd.Handle, MWPanicRecover(), MWRequestLog(), MWTimeout(cmd.Timeout))
	if !r.tryEnqueue(func() { _ = final(ctx, req) }) {
		_, _ = r.adapter.SendText(ctx, chat, "busy, try again", nil)
	}
}

func (r *Router) routeCallback(ctx context.Context, up transport.Update) {
	cb := up.Callback
	if cb == nil {
		return
	}
	action, payload, _ := strings.Cut(strings.TrimSpace(cb.Data), ":")

	r.mu.RLock()
	route, ok := r.callbacks[action]
	r.mu.RUnlock()
	if !ok {
		_ = r.adapter.AnswerCallback(ctx, cb.ID, "")
		return
	}
	if route.Access == AccessOwnerOnly && !r.isOwner(cb.FromID) {
		_ = r.adapter.AnswerCallback(ctx, cb.ID, "forbidden")
		return
	}

	chat := transport.ChatTarget{ChatID: cb.ChatID, ThreadID: cb.ThreadID}
	req := r.newRequest(up, chat, cb.FromID, cb.FromName, "cb:"+action)
	h := func(ctx context.Context, req *Request) error { return route.Handle(ctx, req, payload) }
	final := Chain(h, MWPanicRecover(), MWRequestLog(), MWTimeout(route.Timeout))

	if !r.tryEnqueue(func() {
		if err := final(ctx, req); err != nil && req.Toast == "" {
			req.Toast = replyText(req, err)
		}
		_ = r.adapter.AnswerCallback(ctx, cb.ID, req.Toast)
	}) {
		_ = r.adapter.AnswerCallback(ctx, cb.ID, "busy")
	}
}

func (r *Router) newRequest(up transport.Update, chat transport.ChatTarget, fromID int64, fromName, command string) *Request {
	rid := newReqID()
	return &Request{
		Update:   up,
		Chat:     chat,
		FromID:   fromID,
		FromName: fromName,
		Command:  command,
		ReqID:    rid,
		Adapter:  r.adapter,
		Logger: r.log.With(
			logx.String("rid", rid),
			logx.Int64("chat_id", chat.ChatID),
			logx.Int("thread_id", chat.ThreadID),
			logx.Int64("from_id", fromID),
			logx.String("cmd", command),
		),
	}
}
