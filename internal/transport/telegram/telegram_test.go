package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"chorebot/internal/transport"
)

func TestSplitText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		in     string
		limit  int
		mode   string
		chunks []string
	}{
		{name: "short", in: "hello", limit: 10, chunks: []string{"hello"}},
		{name: "hard cut", in: "abcdefghij", limit: 4, chunks: []string{"abcd", "efgh", "ij"}},
		{name: "newline preferred", in: "aaaa\nbbbbbb", limit: 8, chunks: []string{"aaaa", "bbbbbb"}},
		{name: "tiny newline ignored", in: "a\nbcdefghij", limit: 6, chunks: []string{"a\nbcde", "fghij"}},
		{name: "html tag kept whole", in: "abcdef <b>x</b>", limit: 9, mode: "HTML", chunks: []string{"abcdef ", "<b>x</b>"}},
		{name: "runes not bytes", in: "ééééé", limit: 2, chunks: []string{"éé", "éé", "é"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitText(tt.in, tt.limit, tt.mode)
			if strings.Join(got, "|") != strings.Join(tt.chunks, "|") {
				t.Fatalf("splitText(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.chunks)
			}
		})
	}
}

func TestSplitTextRespectsLimit(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("• Vacuum the living room (Living Room)\n")
	}
	for _, c := range splitText(b.String(), textLimit, "") {
		if n := utf8.RuneCountInString(c); n > textLimit || n == 0 {
			t.Fatalf("chunk of %d runes", n)
		}
	}
}

func TestInlineMarkup(t *testing.T) {
	t.Parallel()
	if inlineMarkup(nil) != nil {
		t.Fatal("empty rows should give nil markup")
	}
	rm := inlineMarkup([][]transport.Button{
		{{Text: "Done", Data: "done:c1"}, {Text: "Snooze", Data: "snooze:c1"}},
		{{Text: ""}},
		{{Text: "Skip", Data: "skip:c1"}},
	})
	if rm == nil || len(rm.InlineKeyboard) != 2 {
		t.Fatalf("markup = %+v", rm)
	}
	if b := rm.InlineKeyboard[0][1]; b.Text != "Snooze" || b.Data != "snooze:c1" {
		t.Fatalf("button = %+v", b)
	}
}
