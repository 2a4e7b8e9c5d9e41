package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Mining.MinSupport != DefaultMinSupport {
		t.Errorf("MinSupport = %d, want %d", s.Mining.MinSupport, DefaultMinSupport)
	}
	if s.Mining.MaxLevel != DefaultMaxLevel {
		t.Errorf("MaxLevel = %d, want %d", s.Mining.MaxLevel, DefaultMaxLevel)
	}
	if s.Mining.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", s.Mining.Workers, DefaultWorkers)
	}
	if s.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", s.Logging.Format)
	}
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `mining:
  min_support: 7
  max_level: 4
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("RULEMINE_MINING_WORKERS", "3")

	v := viper.New()
	SetDefaults(v)
	if err := ReadFile(v, cfgFile); err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Mining.MinSupport != 7 || s.Mining.MaxLevel != 4 {
		t.Errorf("Mining = %+v, want min_support 7, max_level 4", s.Mining)
	}
	if s.Mining.Workers != 3 {
		t.Errorf("Workers = %d, want 3 from environment", s.Mining.Workers)
	}
	level, err := s.Logging.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, %v; want debug", level, err)
	}
}

func TestReadFile_MissingDefaultIsNotAnError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := viper.New()
	if err := ReadFile(v, ""); err != nil {
		t.Errorf("ReadFile() with no config present should succeed, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Settings{
		Mining:  MiningSettings{MinSupport: 1, MaxLevel: 3, Workers: 1},
		Logging: LoggingSettings{Level: "info", Format: "console"},
	}

	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"zero support", func(s *Settings) { s.Mining.MinSupport = 0 }},
		{"zero level", func(s *Settings) { s.Mining.MaxLevel = 0 }},
		{"zero workers", func(s *Settings) { s.Mining.Workers = 0 }},
		{"bad level", func(s *Settings) { s.Logging.Level = "loud" }},
		{"bad format", func(s *Settings) { s.Logging.Format = "xml" }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
