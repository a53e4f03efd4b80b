package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TWITCH_USER_LOGIN", "TWITCH_CLIENT_ID", "TWITCH_CLIENT_SECRET",
		"DB_DSN", "HTTP_ADDR", "RATE_LIMIT_ENABLED", "RATE_LIMIT_MAX",
		"RATE_LIMIT_WINDOW_SECONDS", "CHAT_HIGHLIGHTS", "CHAT_RETENTION_ROWS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %s, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBDsn == "" {
		t.Error("DBDsn empty, want local default")
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = false, want enabled by default")
	}
	if cfg.RateLimitMax != 10 {
		t.Errorf("RateLimitMax = %d, want 10", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.ChatEnabled {
		t.Error("ChatEnabled = true, want disabled by default")
	}
	if cfg.ChatRetention != 500 {
		t.Errorf("ChatRetention = %d, want 500", cfg.ChatRetention)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "0")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "30")
	t.Setenv("CHAT_HIGHLIGHTS", "1")
	t.Setenv("CHAT_RETENTION_ROWS", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = true, want disabled")
	}
	if cfg.RateLimitMax != 3 {
		t.Errorf("RateLimitMax = %d, want 3", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v, want 30s", cfg.RateLimitWindow)
	}
	if !cfg.ChatEnabled {
		t.Error("ChatEnabled = false, want enabled")
	}
}

func TestLoadRejectsBadLimits(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for negative RATE_LIMIT_MAX")
	}

	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for zero window")
	}
}

func TestValidateTwitchReady(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateTwitchReady(); err == nil {
		t.Error("expected error when nothing configured")
	}
	cfg.TwitchUserLogin = "somestreamer"
	if err := cfg.ValidateTwitchReady(); err == nil {
		t.Error("expected error when credentials missing")
	}
	cfg.TwitchClientID = "id"
	cfg.TwitchClientSecret = "secret"
	if err := cfg.ValidateTwitchReady(); err != nil {
		t.Errorf("ValidateTwitchReady() error = %v, want nil", err)
	}
}
