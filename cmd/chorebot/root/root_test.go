package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// runCLI executes args against a fresh command tree. It mutates the package
// flag globals, so tests using it do not run in parallel.
func runCLI(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	cfgPath, logLevel = config, "error"

	cmd := &cobra.Command{Use: "chorebot", SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(newRoomCmd(), newUserCmd(), newChoreCmd(), newCalendarCmd(), newStatsCmd(), newNextCmd(), newDueCmd())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, config string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, config, args...)
	if err != nil {
		t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "timezone: UTC\n" +
		"storage:\n" +
		"  driver: file\n" +
		"  path: " + filepath.Join(dir, "chores.json") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIChoreLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	mustRun(t, cfg, "room", "add", "Kitchen")
	mustRun(t, cfg, "user", "add", "Sam")

	out := mustRun(t, cfg, "chore", "add", "Water plants", "--room", "kitchen",
		"-f", "weekly", "--type", "anchored", "--days", "mon,thu", "--start", "2099-06-11", "--assign", "sam")
	if !strings.Contains(out, "due 2099-06-11") {
		t.Fatalf("add output: %q", out)
	}

	out = mustRun(t, cfg, "chore", "list")
	for _, want := range []string{"Water plants", "Kitchen", "Sam", "every week on Mon, Thu"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, cfg, "chore", "update", "water plants", "--name", "Water ferns")
	if !strings.Contains(out, "Water ferns") {
		t.Fatalf("update output: %q", out)
	}

	out = mustRun(t, cfg, "chore", "complete", "Water ferns", "--by", "Sam")
	if !strings.Contains(out, "done, next due") {
		t.Fatalf("complete output: %q", out)
	}
	out = mustRun(t, cfg, "stats")
	if !strings.Contains(out, "Sam") {
		t.Fatalf("stats output: %q", out)
	}
	out = mustRun(t, cfg, "chore", "history")
	if !strings.Contains(out, "Water ferns") {
		t.Fatalf("history output: %q", out)
	}

	out = mustRun(t, cfg, "room", "remove", "Kitchen")
	if !strings.Contains(out, "1 chore(s)") {
		t.Fatalf("room remove output: %q", out)
	}
	if _, err := runCLI(t, cfg, "chore", "skip", "Water ferns"); err == nil {
		t.Fatal("skip after room removal: expected not found")
	}
}

func TestCLIRejectsUnknownRoom(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := runCLI(t, cfg, "chore", "add", "Dust", "--room", "attic"); err == nil {
		t.Fatal("expected error for unknown room")
	}
}

func TestCLICalendarICS(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "room", "add", "Bath")
	mustRun(t, cfg, "chore", "add", "Scrub tub", "--room", "Bath", "-f", "daily", "--start", "2099-01-01")

	out := mustRun(t, cfg, "calendar", "--from", "2099-01-01", "--to", "2099-01-03", "--ics")
	if strings.Count(out, "BEGIN:VEVENT") != 3 {
		t.Fatalf("want 3 events:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20990102") {
		t.Fatalf("missing second occurrence:\n%s", out)
	}
}

func TestCLIDue(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "room", "add", "Hall")
	mustRun(t, cfg, "chore", "add", "Sweep", "--room", "Hall", "-f", "daily", "--start", "2099-01-01")

	out := mustRun(t, cfg, "due")
	if !strings.Contains(out, "Sweep (Hall) on 2099-01-01") {
		t.Fatalf("due output:\n%s", out)
	}
	out = mustRun(t, cfg, "due", "--by-room")
	if !strings.Contains(out, "Hall (1)") || !strings.Contains(out, "Sweep") {
		t.Fatalf("due --by-room output:\n%s", out)
	}
}

func TestCLINext(t *testing.T) {
	out := mustRun(t, "", "next", "-f", "monthly", "--type", "anchored", "--anchor", "day_of_month", "--day", "31", "--from", "2024-01-31", "-n", "2")
	if !strings.Contains(out, "2024-02-29") || !strings.Contains(out, "2024-03-31") {
		t.Fatalf("next output:\n%s", out)
	}
}
