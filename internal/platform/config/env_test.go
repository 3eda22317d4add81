package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"PORT" envDefault:"123"`
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want 123", cfg.Port)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("debounce = %v, want 500ms", cfg.Debounce)
	}
}

func TestParseEnvWithPrefixReadsPrefixedNames(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PITCHSIDE_TEST_PORT", "9000")
	t.Setenv("PORT", "1")

	if err := ParseEnvWithPrefix("PITCHSIDE_TEST_", &cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PITCHSIDE_TEST_PORT", "not-an-int")

	err := ParseEnvWithPrefix("PITCHSIDE_TEST_", &cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvRejectsNilTarget(t *testing.T) {
	if err := ParseEnv(nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}
