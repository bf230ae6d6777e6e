// Package console is a send-only adapter that prints notifications to a
// writer. It backs the CLI and daemons running without a chat transport.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

type Adapter struct {
	mu  sync.Mutex
	w   io.Writer
	log logx.Logger
	seq int
}

// New prints to w; a nil w uses stdout.
func New(w io.Writer, log logx.Logger) *Adapter {
	if w == nil {
		w = logx.Stdout()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{w: w, log: log.With(logx.String("comp", "console"))}
}

func (a *Adapter) Start(context.Context, chan<- transport.Update) error { return nil }
func (a *Adapter) Stop(context.Context) error                           { return nil }

func (a *Adapter) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return transport.MessageRef{}, err
	}
	var b strings.Builder
	if !to.IsZero() {
		fmt.Fprintf(&b, "[chat %d", to.ChatID)
		if to.ThreadID != 0 {
			fmt.Fprintf(&b, "/%d", to.ThreadID)
		}
		b.WriteString("] ")
	}
	b.WriteString(text)
	if opt != nil {
		for _, row := range opt.Buttons {
			labels := make([]string, 0, len(row))
			for _, btn := range row {
				labels = append(labels, "["+btn.Text+"]")
			}
			b.WriteString("\n" + strings.Join(labels, " "))
		}
	}
	b.WriteString("\n")

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := io.WriteString(a.w, b.String()); err != nil {
		return transport.MessageRef{}, err
	}
	a.seq++
	a.log.Debug("message printed", logx.Int64("chat_id", to.ChatID), logx.Int("len", len(text)))
	return transport.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: a.seq}, nil
}

func (a *Adapter) AnswerCallback(context.Context, string, string) error { return nil }
