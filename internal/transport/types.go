// Package transport defines the messaging surface chorebot talks through.
//
// An Adapter delivers outgoing notifications and, when it supports inbound
// traffic, feeds chat commands and button presses back as Updates.
package transport

import "context"

type UpdateKind string

const (
	UpdateMessage  UpdateKind = "message"
	UpdateCallback UpdateKind = "callback"
)

type Update struct {
	Kind     UpdateKind
	Message  *Message
	Callback *Callback
}

type Message struct {
	ID           int
	ChatID       int64
	ThreadID     int // forum topic (0 if none)
	FromID       int64
	FromUsername string
	FromName     string
	Text         string
}

// Callback is an inline button press.
type Callback struct {
	ID        string
	FromID    int64
	FromName  string
	ChatID    int64
	ThreadID  int
	MessageID int
	Data      string
}

type ChatTarget struct {
	ChatID   int64
	ThreadID int
}

func (t ChatTarget) IsZero() bool { return t.ChatID == 0 }

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

// Button is an inline action attached to a message. Data is routed back as a
// Callback when pressed.
type Button struct {
	Text string
	Data string
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
	// Buttons are laid out row by row under the first chunk of the message.
	Buttons [][]Button
}

// Notification is one outgoing message queued on the notifier.
type Notification struct {
	Channel  string // "due", "log", "manual"
	Priority int    // 0 low .. 10 high
	Target   ChatTarget
	Text     string
	Options  *SendOptions
	// DedupKey overrides the content hash used for duplicate suppression.
	DedupKey string
}

type Adapter interface {
	// Start begins receiving inbound traffic into out. Send-only adapters
	// may ignore out.
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}

// MenuCommand is one entry of a client-side command menu.
type MenuCommand struct {
	Command     string
	Description string
}

// CommandMenu is implemented by adapters whose clients show a command menu.
type CommandMenu interface {
	SetCommands(cmds []MenuCommand) error
}
