package config

import (
	"testing"
	"time"
)

func TestEnvStrFallback(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	if v := envStr("TEST_STR", "default"); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := envStr("TEST_STR_MISSING", "default"); v != "default" {
		t.Fatalf("expected default, got %s", v)
	}
}

func TestEnvIntParsing(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if v := envInt("TEST_INT", 0); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if v := envInt("TEST_INT_MISSING", 99); v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
	// Malformed values fall back to the default rather than failing startup.
	t.Setenv("TEST_INT_BAD", "abc")
	if v := envInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}

func TestEnvDurationParsing(t *testing.T) {
	t.Setenv("TEST_DUR", "5s")
	if v := envDuration("TEST_DUR", 0); v != 5*time.Second {
		t.Fatalf("expected 5s, got %s", v)
	}
	t.Setenv("TEST_DUR_BAD", "five-seconds")
	if v := envDuration("TEST_DUR_BAD", time.Minute); v != time.Minute {
		t.Fatalf("expected fallback 1m, got %s", v)
	}
}

func TestLoadRequiresASource(t *testing.T) {
	t.Setenv("COURIERLENS_UPSTREAM_URL", "")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected Load() to fail with no review source configured")
	}
}

func TestLoadWithUpstream(t *testing.T) {
	t.Setenv("COURIERLENS_UPSTREAM_URL", "http://reviews.internal:9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed, got: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("expected default page size 10, got %d", cfg.PageSize)
	}
	if cfg.DebounceInterval != 500*time.Millisecond {
		t.Fatalf("expected default debounce 500ms, got %s", cfg.DebounceInterval)
	}
}

func TestValidateRejectsBadPageSize(t *testing.T) {
	cfg := Config{UpstreamURL: "http://x", PageSize: 0, MaxRequestBodyBytes: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for page size 0")
	}
}
