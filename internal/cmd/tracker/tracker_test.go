package tracker

import (
	"flag"
	"io"
	"testing"
	"time"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPPort != 8095 || cfg.HealthPort != 8096 {
		t.Fatalf("ports = %d/%d, want 8095/8096", cfg.HTTPPort, cfg.HealthPort)
	}
	if cfg.DBPath != "data/tracker.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/tracker.db")
	}
	if cfg.Remote != "none" {
		t.Fatalf("remote = %q, want none", cfg.Remote)
	}
	if cfg.TeamTitle != "My Team" {
		t.Fatalf("team title = %q, want %q", cfg.TeamTitle, "My Team")
	}
	if cfg.SaveDebounce != 500*time.Millisecond {
		t.Fatalf("save debounce = %v, want 500ms", cfg.SaveDebounce)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("allowed origins = %v, want none", cfg.AllowedOrigins)
	}
}

func TestParseConfig_EnvAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	t.Setenv("PITCHSIDE_TRACKER_HTTP_PORT", "9095")
	t.Setenv("PITCHSIDE_TRACKER_REMOTE", "redis")
	t.Setenv("PITCHSIDE_TRACKER_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("PITCHSIDE_TRACKER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := ParseConfig(fs, []string{"-team-title", "Rovers", "-tick-interval", "100ms"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPPort != 9095 {
		t.Fatalf("http port = %d, want 9095", cfg.HTTPPort)
	}
	if cfg.Remote != "redis" || cfg.RedisURL != "redis://cache:6379/0" {
		t.Fatalf("remote = %q %q, want redis at redis://cache:6379/0", cfg.Remote, cfg.RedisURL)
	}
	if cfg.TeamTitle != "Rovers" {
		t.Fatalf("team title = %q, want Rovers", cfg.TeamTitle)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Fatalf("tick interval = %v, want 100ms", cfg.TickInterval)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("allowed origins = %v, want two origins", cfg.AllowedOrigins)
	}
}

func TestParseConfig_FlagOverridesOrigins(t *testing.T) {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	t.Setenv("PITCHSIDE_TRACKER_ALLOWED_ORIGINS", "http://a.test")

	cfg, err := ParseConfig(fs, []string{"-allowed-origins", " http://c.test , "})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://c.test" {
		t.Fatalf("allowed origins = %v, want [http://c.test]", cfg.AllowedOrigins)
	}
}

func TestParseConfig_BadFlag(t *testing.T) {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-http-port", "nope"}); err == nil {
		t.Fatal("expected error for invalid port flag")
	}
}
