package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/rulemine/internal/store"
	"github.com/blackwell-systems/rulemine/internal/watcher"
)

func TestWatchCommandFlags(t *testing.T) {
	for _, name := range []string{"min-support", "max-level", "workers", "debounce", "format", "no-save"} {
		if watchCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected watch --%s flag to be registered", name)
		}
	}
	if got := watchCmd.Flags().Lookup("debounce").DefValue; got != watcher.DefaultDebounce.String() {
		t.Errorf("--debounce default = %s, want %s", got, watcher.DefaultDebounce)
	}
	if err := watchCmd.Args(watchCmd, []string{"only-input.txt"}); err == nil {
		t.Error("watch should require both input and report")
	}
}

func TestRunWatch_RemineOnChange(t *testing.T) {
	dir := isolate(t)
	input := writeBaskets(t, dir)
	report := filepath.Join(dir, "rules.txt")

	oldDebounce := watchDebounce
	watchDebounce = 50 * time.Millisecond
	defer func() { watchDebounce = oldDebounce }()

	settings = nil
	if _, err := currentSettings(); err != nil {
		t.Fatal(err)
	}
	settings.Mining.MinSupport = 2

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	watchCmd.SetContext(ctx)
	defer watchCmd.SetContext(context.Background())

	go func() {
		time.Sleep(500 * time.Millisecond)
		// A fifth basket makes {a b c} frequent.
		os.WriteFile(input, []byte(baskets+"a b c\n"), 0644)
		time.Sleep(500 * time.Millisecond)
		cancel()
	}()

	var err error
	out := captureStdout(t, func() {
		err = runWatch(watchCmd, []string{input, report})
	})
	if err != nil {
		t.Fatalf("runWatch() error: %v", err)
	}
	if !strings.Contains(out, "Watching ") {
		t.Errorf("expected watching banner, got: %s", out)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "Found 1 frequent triples:\na b c: 2\n") {
		t.Errorf("report was not refreshed after the change:\n%s", data)
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()
	runs, err := st.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) < 2 {
		t.Errorf("expected a stored run for the initial pass and one after the change, got %d", len(runs))
	}
}
