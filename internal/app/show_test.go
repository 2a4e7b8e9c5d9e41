package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/rulemine/internal/store"
)

// mineBasketsRun mines the basket log into the isolated database and
// returns the stored run id.
func mineBasketsRun(t *testing.T) string {
	t.Helper()
	dir := isolate(t)
	input := writeBaskets(t, dir)
	if _, err := executeMine(t, input, filepath.Join(dir, "rules.txt"), "--min-support", "2", "--quiet"); err != nil {
		t.Fatalf("mine failed: %v", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()
	run, err := st.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	return run.ID
}

func resetShowFlags() {
	showLevel, showMinConfidence, showLimit, showItemsets, showFormat = 0, 0, 0, false, ""
}

func TestRunShow_LatestRun(t *testing.T) {
	id := mineBasketsRun(t)
	defer resetShowFlags()

	var err error
	out := captureStdout(t, func() {
		err = runShow(showCmd, nil)
	})
	if err != nil {
		t.Fatalf("runShow() error: %v", err)
	}
	for _, want := range []string{id[:8], "4 transactions", "{c}", "{a}", "0.6667"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q\nGot:\n%s", want, out)
		}
	}
}

func TestRunShow_FiltersAndItemsets(t *testing.T) {
	id := mineBasketsRun(t)
	defer resetShowFlags()

	showLimit = 2
	out := captureStdout(t, func() {
		if err := runShow(showCmd, []string{id[:8]}); err != nil {
			t.Errorf("runShow() error: %v", err)
		}
	})
	if strings.Count(out, "0.6667") != 2 {
		t.Errorf("--limit 2 should show 2 rules, got:\n%s", out)
	}

	resetShowFlags()
	showMinConfidence = 0.9
	out = captureStdout(t, func() {
		if err := runShow(showCmd, nil); err != nil {
			t.Errorf("runShow() error: %v", err)
		}
	})
	if !strings.Contains(out, "No rules found") {
		t.Errorf("--min-confidence 0.9 should hide every rule, got:\n%s", out)
	}

	resetShowFlags()
	showItemsets = true
	showLevel = 2
	out = captureStdout(t, func() {
		if err := runShow(showCmd, nil); err != nil {
			t.Errorf("runShow() error: %v", err)
		}
	})
	for _, want := range []string{"a b", "a c", "b c", "50.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("itemset output missing %q\nGot:\n%s", want, out)
		}
	}
}

func TestRunShow_FormatReexportsReport(t *testing.T) {
	mineBasketsRun(t)
	defer resetShowFlags()

	showFormat = "text"
	out := captureStdout(t, func() {
		if err := runShow(showCmd, nil); err != nil {
			t.Errorf("runShow() error: %v", err)
		}
	})
	if !strings.Contains(out, "Found 6 pair rules from 3 frequent pairs:\n{c} -> {a}") {
		t.Errorf("re-exported report differs from mined one:\n%s", out)
	}
}

func TestRunShow_InvalidFlags(t *testing.T) {
	defer resetShowFlags()

	showMinConfidence = 1.5
	if err := runShow(showCmd, nil); err == nil {
		t.Error("expected an error for --min-confidence 1.5")
	}

	resetShowFlags()
	showLevel = -1
	if err := runShow(showCmd, nil); err == nil {
		t.Error("expected an error for --level -1")
	}
}

func TestRunShow_EmptyDatabase(t *testing.T) {
	isolate(t)

	err := runShow(showCmd, nil)
	if !errors.Is(err, store.ErrNotInitialized) {
		t.Errorf("runShow() on an empty database error = %v, want ErrNotInitialized", err)
	}
}

func TestFilterRules(t *testing.T) {
	rules := []*store.RuleRecord{
		{Confidence: 1},
		{Confidence: 0.9},
		{Confidence: 0.4},
		{Confidence: 0.8},
	}

	tests := []struct {
		name    string
		min     float64
		limit   int
		wantLen int
	}{
		{"no filter", 0, 0, 4},
		{"min confidence", 0.8, 0, 3},
		{"limit", 0, 2, 2},
		{"both", 0.5, 2, 2},
		{"nothing passes", 1.1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterRules(rules, tt.min, tt.limit)
			if len(got) != tt.wantLen {
				t.Errorf("filterRules() kept %d rules, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestRunRuns_ListAndDelete(t *testing.T) {
	id := mineBasketsRun(t)
	defer func() { runsDelete = "" }()

	out := captureStdout(t, func() {
		if err := runRuns(runsCmd, nil); err != nil {
			t.Errorf("runRuns() error: %v", err)
		}
	})
	if !strings.Contains(out, id[:8]) || !strings.Contains(out, "1 runs stored") {
		t.Errorf("runs output missing run %s:\n%s", id[:8], out)
	}

	runsDelete = id[:8]
	out = captureStdout(t, func() {
		if err := runRuns(runsCmd, nil); err != nil {
			t.Errorf("runRuns(--delete) error: %v", err)
		}
	})
	if !strings.Contains(out, "Deleted run "+id[:8]) {
		t.Errorf("unexpected delete output: %s", out)
	}

	runsDelete = ""
	out = captureStdout(t, func() {
		if err := runRuns(runsCmd, nil); err != nil {
			t.Errorf("runRuns() error: %v", err)
		}
	})
	if !strings.Contains(out, "No runs found") {
		t.Errorf("expected no runs after delete, got: %s", out)
	}
}

func TestRunRuns_DeleteUnknown(t *testing.T) {
	mineBasketsRun(t)
	defer func() { runsDelete = "" }()

	runsDelete = "zzzzzzzz"
	err := runRuns(runsCmd, nil)
	if !errors.Is(err, store.ErrRunNotFound) {
		t.Errorf("runRuns(--delete unknown) error = %v, want ErrRunNotFound", err)
	}
}

func TestRunExplain(t *testing.T) {
	mineBasketsRun(t)
	defer func() { explainRun = "" }()

	out := captureStdout(t, func() {
		if err := runExplain(explainCmd, []string{"b"}); err != nil {
			t.Errorf("runExplain() error: %v", err)
		}
	})
	if !strings.Contains(out, "{b} appears in 3 of 4 transactions") {
		t.Errorf("missing support line:\n%s", out)
	}
	if !strings.Contains(out, "{a}") || !strings.Contains(out, "{c}") {
		t.Errorf("expected rules b->a and b->c:\n%s", out)
	}

	// Item order does not matter.
	out = captureStdout(t, func() {
		if err := runExplain(explainCmd, []string{"c", "a"}); err != nil {
			t.Errorf("runExplain() error: %v", err)
		}
	})
	if !strings.Contains(out, "{a c} appears in 2 of 4 transactions") {
		t.Errorf("missing support line for {a c}:\n%s", out)
	}
	if !strings.Contains(out, "No rules start from {a c}") {
		t.Errorf("expected no rules from {a c} without frequent triples:\n%s", out)
	}

	out = captureStdout(t, func() {
		if err := runExplain(explainCmd, []string{"zebra"}); err != nil {
			t.Errorf("runExplain() error: %v", err)
		}
	})
	if !strings.Contains(out, "{zebra} is not frequent") {
		t.Errorf("unexpected output for an unknown item:\n%s", out)
	}
}

func TestExplainCmd_RequiresItems(t *testing.T) {
	err := explainCmd.Args(explainCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "missing item") {
		t.Errorf("Args(nil) = %v, want a missing item error", err)
	}
}
