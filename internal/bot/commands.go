package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chorebot/internal/chores"
	"chorebot/internal/storage"
	"chorebot/internal/transport"
)

// ChoreService is the part of chores.Service the chat commands use.
type ChoreService interface {
	Snapshot() chores.Snapshot
	Chores() []storage.Chore
	Users() []storage.User
	UserStats() []chores.UserStat
	CompleteChore(ctx context.Context, id, userID string) (storage.Chore, error)
	SkipChore(ctx context.Context, id string) (storage.Chore, error)
	SnoozeChore(ctx context.Context, id string) (storage.Chore, error)
}

const commandTimeout = 10 * time.Second

// ChoreCommands returns the chat commands and button routes over svc.
// Commands that change state are owner-only.
func ChoreCommands(svc ChoreService) ([]Command, []CallbackRoute) {
	h := handlers{svc: svc}
	cmds := []Command{
		{Name: "due", Description: "chores due today", Usage: "/due", Timeout: commandTimeout, Handle: h.due},
		{Name: "upcoming", Aliases: []string{"soon"}, Description: "chores due in the next days", Usage: "/upcoming", Timeout: commandTimeout, Handle: h.upcoming},
		{Name: "chores", Aliases: []string{"list"}, Description: "all active chores", Usage: "/chores", Timeout: commandTimeout, Handle: h.list},
		{Name: "stats", Description: "completions per person", Usage: "/stats", Timeout: commandTimeout, Handle: h.stats},
		{Name: "done", Description: "mark a chore complete", Usage: "/done <chore> [user]", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.done},
		{Name: "skip", Description: "skip to the next occurrence", Usage: "/skip <chore>", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.skip},
		{Name: "snooze", Description: "push a chore back one day", Usage: "/snooze <chore>", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.snooze},
	}
	cbs := []CallbackRoute{
		{Action: "done", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.doneButton},
		{Action: "skip", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.skipButton},
		{Action: "snooze", Access: AccessOwnerOnly, Timeout: commandTimeout, Handle: h.snoozeButton},
	}
	return cmds, cbs
}

type handlers struct {
	svc ChoreService
}

func (h handlers) due(ctx context.Context, req *Request) error {
	snap := h.svc.Snapshot()
	text, ok := chores.DueMessage(snap, []int{0})
	if !ok {
		return req.Reply(ctx, "Nothing due today 🎉")
	}
	return req.ReplyWith(ctx, text, &transport.SendOptions{Buttons: chores.DueButtons(snap.DueToday)})
}

func (h handlers) upcoming(ctx context.Context, req *Request) error {
	snap := h.svc.Snapshot()
	if len(snap.DueSoon) == 0 {
		return req.Reply(ctx, fmt.Sprintf("Nothing due before %s.", snap.WindowEnd))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Due by %s:", snap.WindowEnd)
	for _, c := range snap.DueSoon {
		fmt.Fprintf(&b, "\n• %s %s (%s)", c.NextDue, c.Name, c.RoomName)
	}
	return req.Reply(ctx, b.String())
}

func (h handlers) list(ctx context.Context, req *Request) error {
	snap := h.svc.Snapshot()
	if len(snap.Active) == 0 {
		return req.Reply(ctx, "No chores yet.")
	}
	var b strings.Builder
	for i, c := range snap.Active {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "• %s (%s) next %s, %s [%s]", c.Name, c.RoomName, c.NextDue, describe(c.Chore), c.ID)
	}
	return req.Reply(ctx, b.String())
}

func (h handlers) stats(ctx context.Context, req *Request) error {
	stats := h.svc.UserStats()
	if len(stats) == 0 {
		return req.Reply(ctx, "No completions recorded yet.")
	}
	var b strings.Builder
	b.WriteString("Completed chores:")
	for _, s := range stats {
		fmt.Fprintf(&b, "\n• %s: %d (last %s)", s.UserName, s.TotalCompleted, s.LastCompleted.Format("2006-01-02"))
	}
	return req.Reply(ctx, b.String())
}

func (h handlers) done(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return userErrorf("usage: /done <chore> [user]")
	}
	c, err := h.resolveChore(req.Args[0])
	if err != nil {
		return err
	}
	who := req.FromName
	if len(req.Args) > 1 {
		who = strings.Join(req.Args[1:], " ")
	}
	out, err := h.svc.CompleteChore(ctx, c.ID, h.resolveUser(who))
	if err != nil {
		return err
	}
	return req.Reply(ctx, completedText(out))
}

func (h handlers) skip(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return userErrorf("usage: /skip <chore>")
	}
	c, err := h.resolveChore(strings.Join(req.Args, " "))
	if err != nil {
		return err
	}
	out, err := h.svc.SkipChore(ctx, c.ID)
	if err != nil {
		return err
	}
	return req.Reply(ctx, fmt.Sprintf("⏭ %s skipped, next due %s", out.Name, out.NextDue))
}

func (h handlers) snooze(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return userErrorf("usage: /snooze <chore>")
	}
	c, err := h.resolveChore(strings.Join(req.Args, " "))
	if err != nil {
		return err
	}
	out, err := h.svc.SnoozeChore(ctx, c.ID)
	if err != nil {
		return err
	}
	return req.Reply(ctx, fmt.Sprintf("💤 %s snoozed to %s", out.Name, out.NextDue))
}

func (h handlers) doneButton(ctx context.Context, req *Request, id string) error {
	out, err := h.svc.CompleteChore(ctx, id, h.resolveUser(req.FromName))
	if err != nil {
		return err
	}
	req.Toast = completedText(out)
	return nil
}

func (h handlers) skipButton(ctx context.Context, req *Request, id string) error {
	out, err := h.svc.SkipChore(ctx, id)
	if err != nil {
		return err
	}
	req.Toast = fmt.Sprintf("⏭ next due %s", out.NextDue)
	return nil
}

func (h handlers) snoozeButton(ctx context.Context, req *Request, id string) error {
	out, err := h.svc.SnoozeChore(ctx, id)
	if err != nil {
		return err
	}
	req.Toast = fmt.Sprintf("💤 snoozed to %s", out.NextDue)
	return nil
}

func completedText(c storage.Chore) string {
	if c.IsCompleted {
		return fmt.Sprintf("✅ %s done", c.Name)
	}
	return fmt.Sprintf("✅ %s done, next due %s", c.Name, c.NextDue)
}

// resolveChore matches an active chore by id, then by case-insensitive name.
func (h handlers) resolveChore(arg string) (storage.Chore, error) {
	arg = strings.TrimSpace(arg)
	var matches []storage.Chore
	for _, c := range h.svc.Chores() {
		if c.IsCompleted {
			continue
		}
		if c.ID == arg {
			return c, nil
		}
		if strings.EqualFold(c.Name, arg) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return storage.Chore{}, userErrorf("no chore matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return storage.Chore{}, userErrorf("%d chores are named %q, use the id", len(matches), arg)
	}
}

// resolveUser maps a chat name or user id to a household user id; "" when
// nobody matches.
func (h handlers) resolveUser(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, u := range h.svc.Users() {
		if u.ID == name || strings.EqualFold(u.Name, name) {
			return u.ID
		}
	}
	return ""
}

func describe(c storage.Chore) string {
	rule, err := c.Config.Rule()
	if err != nil {
		return string(c.Frequency)
	}
	return rule.String()
}
