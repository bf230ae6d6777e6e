package console

import (
	"bytes"
	"context"
	"testing"

	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

func TestSendText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	a := New(&buf, logx.Nop())
	ctx := context.Background()

	ref, err := a.SendText(ctx, transport.ChatTarget{ChatID: 7, ThreadID: 2}, "You have 1 chore due today:\n• Dishes (Kitchen)",
		&transport.SendOptions{Buttons: [][]transport.Button{{{Text: "Done", Data: "done:c1"}, {Text: "Snooze", Data: "snooze:c1"}}}})
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if ref.MessageID != 1 || ref.ChatID != 7 {
		t.Fatalf("ref = %+v", ref)
	}
	want := "[chat 7/2] You have 1 chore due today:\n• Dishes (Kitchen)\n[Done] [Snooze]\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if _, err := a.SendText(ctx, transport.ChatTarget{}, "plain", nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
