package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CALENDAR_ID", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CalendarID != "primary" {
		t.Fatalf("expected primary calendar by default, got %s", cfg.CalendarID)
	}
	if cfg.ToolCallTTL != 15*time.Minute {
		t.Fatalf("expected default tool call ttl, got %s", cfg.ToolCallTTL)
	}
	if cfg.VenueTimezone != "America/New_York" {
		t.Fatalf("expected Eastern venue timezone default, got %s", cfg.VenueTimezone)
	}
	if cfg.StripeDryRun {
		t.Fatalf("expected stripe dry run disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "10000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CALENDAR_ID", "bookings@natashamaes.com")
	t.Setenv("STRIPE_DRY_RUN", "true")
	t.Setenv("TOOL_CALL_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://natashamaes.com, https://www.natashamaes.com")
	cfg := Load()
	if cfg.Port != "10000" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.CalendarID != "bookings@natashamaes.com" {
		t.Fatalf("expected calendar override, got %s", cfg.CalendarID)
	}
	if !cfg.StripeDryRun {
		t.Fatalf("expected stripe dry run enabled")
	}
	if cfg.ToolCallTTL != 30*time.Minute {
		t.Fatalf("expected ttl override, got %s", cfg.ToolCallTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.natashamaes.com" {
		t.Fatalf("expected two trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
}
