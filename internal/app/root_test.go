package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/rulemine/internal/config"
)

// captureStdout replaces os.Stdout with a pipe during f(), then restores it
// and returns all bytes written to stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	f()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

// isolate points config, aliases and the database at a temp directory and
// resets per-invocation state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, key := range []string{"RULEMINE_MINING_MIN_SUPPORT", "RULEMINE_MINING_MAX_LEVEL", "RULEMINE_MINING_WORKERS", "RULEMINE_DATABASE_PATH"} {
		t.Setenv(key, "")
	}

	oldDBPath, oldCfg, oldSettings := dbPath, cfgFile, settings
	dbPath = filepath.Join(dir, "rulemine.db")
	cfgFile = ""
	settings = nil
	t.Cleanup(func() {
		dbPath, cfgFile, settings = oldDBPath, oldCfg, oldSettings
	})
	return dir
}

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "rulemine" {
		t.Errorf("expected Use to be 'rulemine', got '%s'", RootCmd.Use)
	}

	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	expectedCommands := []string{"mine", "runs", "show", "explain", "watch"}
	foundCommands := make(map[string]bool)

	for _, cmd := range RootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("expected command '%s' to be registered", expected)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"db", "config", "log-level", "log-format"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestMineCommandFlags(t *testing.T) {
	for _, name := range []string{"min-support", "max-level", "workers", "format", "no-save", "quiet", "comments"} {
		if mineCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected mine --%s flag to be registered", name)
		}
	}
	if got := mineCmd.Flags().Lookup("min-support").DefValue; got != "100" {
		t.Errorf("--min-support default = %s, want 100", got)
	}
}

func TestGetDBPath(t *testing.T) {
	tests := []struct {
		name       string
		dbPathFlag string
		configured string
		want       func(home string) string
	}{
		{
			name: "default path",
			want: func(home string) string { return filepath.Join(home, ".rulemine", "rulemine.db") },
		},
		{
			name:       "flag wins",
			dbPathFlag: "/tmp/test.db",
			configured: "/srv/rulemine.db",
			want:       func(string) string { return "/tmp/test.db" },
		},
		{
			name:       "configured path",
			configured: "/srv/rulemine.db",
			want:       func(string) string { return "/srv/rulemine.db" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)

			oldDBPath, oldSettings := dbPath, settings
			defer func() { dbPath, settings = oldDBPath, oldSettings }()

			dbPath = tt.dbPathFlag
			settings = &config.Settings{Database: config.DatabaseSettings{Path: tt.configured}}

			path, err := getDBPath()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := tt.want(home); path != want {
				t.Errorf("getDBPath() = %q, want %q", path, want)
			}
		})
	}
}

func TestInitConfig_FlagsOverrideConfigFile(t *testing.T) {
	dir := isolate(t)

	cfg := filepath.Join(dir, "rulemine.yaml")
	content := "mining:\n  min_support: 7\n  max_level: 2\n"
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfgFile = cfg

	if err := mineCmd.Flags().Set("min-support", "3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	defer func() {
		mineCmd.Flags().Set("min-support", "100")
		mineCmd.Flags().Lookup("min-support").Changed = false
	}()

	if err := initConfig(mineCmd, nil); err != nil {
		t.Fatalf("initConfig() error: %v", err)
	}
	if settings.Mining.MinSupport != 3 {
		t.Errorf("MinSupport = %d, want 3 from flag", settings.Mining.MinSupport)
	}
	if settings.Mining.MaxLevel != 2 {
		t.Errorf("MaxLevel = %d, want 2 from config file", settings.Mining.MaxLevel)
	}
}

func TestInitConfig_InvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("RULEMINE_LOGGING_LEVEL", "loud")

	if err := initConfig(runsCmd, nil); err == nil {
		t.Error("initConfig() with an invalid log level expected error, got nil")
	}
}

func TestRootCmd_BareInvocation(t *testing.T) {
	if RootCmd.RunE == nil {
		t.Fatal("expected RootCmd.RunE to be set for bare invocation")
	}
	if RootCmd.SuggestionsMinimumDistance != 2 {
		t.Errorf("SuggestionsMinimumDistance = %d, want 2", RootCmd.SuggestionsMinimumDistance)
	}
	if !RootCmd.SilenceUsage || !RootCmd.SilenceErrors {
		t.Error("expected SilenceUsage and SilenceErrors to be true")
	}

	out := captureStdout(t, func() {
		if err := RootCmd.RunE(RootCmd, []string{}); err != nil {
			t.Errorf("RootCmd.RunE() returned unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "rulemine mine") {
		t.Errorf("expected bare invocation to point at 'rulemine mine', got: %s", out)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	isolate(t)

	RootCmd.SetErr(bytes.NewBuffer(nil))
	RootCmd.SetOut(bytes.NewBuffer(nil))
	defer RootCmd.SetErr(nil)
	defer RootCmd.SetOut(nil)

	RootCmd.SetArgs([]string{"blorp"})
	defer RootCmd.SetArgs(nil)

	err := Execute()
	if err == nil {
		t.Fatal("expected Execute() to return an error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected error to contain 'unknown command', got: %v", err)
	}
}

func TestHelpExitsZero(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	defer RootCmd.SetOut(nil)

	RootCmd.SetArgs([]string{"--help"})
	defer RootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Errorf("expected Execute() with --help to succeed, got error: %v", err)
	}
	if !strings.Contains(buf.String(), "Usage:") {
		t.Errorf("expected help output to contain 'Usage:', got: %s", buf.String())
	}
}
