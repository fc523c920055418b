package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if !cfg.TwilioValidateSignature {
		t.Error("expected signature validation enabled by default")
	}
	if cfg.WebhookDedupeTTL != 24*time.Hour {
		t.Errorf("expected default dedupe TTL 24h, got %s", cfg.WebhookDedupeTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected two default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://reviews.example.com, https://admin.example.com")
	t.Setenv("WEBHOOK_DEDUPE_TTL", "1h")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.TwilioValidateSignature {
		t.Error("expected signature validation disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://reviews.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.WebhookDedupeTTL != time.Hour {
		t.Errorf("expected dedupe TTL 1h, got %s", cfg.WebhookDedupeTTL)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "maybe")
	t.Setenv("WEBHOOK_DEDUPE_TTL", "not-a-duration")

	cfg := Load()

	if !cfg.TwilioValidateSignature {
		t.Error("expected invalid bool to fall back to default true")
	}
	if cfg.WebhookDedupeTTL != 24*time.Hour {
		t.Errorf("expected invalid duration to fall back to 24h, got %s", cfg.WebhookDedupeTTL)
	}
}
