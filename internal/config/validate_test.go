// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a valid config quickly
func valid() *Config {
	cfg := &Config{
		Session: SessionConfig{
			Username: "alice",
			Password: "secret",
			ProbeURL: "https://example.test/ping",
		},
	}
	hydrateDefaults(cfg)
	return cfg
}

func expectErr(t *testing.T, cfg *Config, contains string) {
	t.Helper()
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Fatalf("expected error containing %q, got %v", contains, err)
	}
}

// ---- tests ----

func TestValidate_OK(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestValidate_Interval(t *testing.T) {
	cfg := valid()
	cfg.Keeper.IntervalSeconds = -5
	expectErr(t, cfg, "interval_seconds")
}

func TestValidate_ProbeURLRequired(t *testing.T) {
	cfg := valid()
	cfg.Session.ProbeURL = ""
	expectErr(t, cfg, "probe_url is required")
}

func TestValidate_ProbeURLScheme(t *testing.T) {
	cfg := valid()
	cfg.Session.ProbeURL = "ftp://example.test/"
	expectErr(t, cfg, "http(s)")
}

func TestValidate_CredentialsPaired(t *testing.T) {
	cfg := valid()
	cfg.Session.Password = ""
	expectErr(t, cfg, "set together")
}

func TestValidate_NoCredentialsIsFine(t *testing.T) {
	// cookies-only mode
	cfg := valid()
	cfg.Session.Username, cfg.Session.Password = "", ""
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Desktop(t *testing.T) {
	cfg := valid()
	cfg.Notify.Desktop = "growl"
	expectErr(t, cfg, "notify.desktop")

	cfg.Notify.Desktop = "Notify-Send"
	if err := Validate(cfg); err != nil {
		t.Fatalf("case-insensitive desktop kind rejected: %v", err)
	}
}

func TestValidate_Email(t *testing.T) {
	cfg := valid()
	cfg.Notify.Email.Enabled = true
	expectErr(t, cfg, "email.to")

	cfg.Notify.Email.To = "ops@example.test"
	expectErr(t, cfg, "email.server")

	cfg.Notify.Email.Server = "smtp.example.test"
	cfg.Notify.Email.User = "bot"
	expectErr(t, cfg, "user and notify.email.pass")

	cfg.Notify.Email.Pass = "pw"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_TimeoutTest(t *testing.T) {
	cfg := valid()
	cfg.TimeoutTest.StartSeconds = 600
	cfg.TimeoutTest.MaxSeconds = 300
	expectErr(t, cfg, "exceeds")

	cfg = valid()
	cfg.TimeoutTest.Multiplier = 1
	expectErr(t, cfg, "multiplier")

	cfg.TimeoutTest.Adaptive = true
	if err := Validate(cfg); err != nil {
		t.Fatalf("adaptive ignores multiplier: %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	cfg.Notify.Desktop = "  OSASCRIPT "
	cfg.Session.LoginURL = ""

	_ = Validate(cfg)

	if cfg.Notify.Desktop != "  OSASCRIPT " || cfg.Session.LoginURL != "" {
		t.Fatalf("Validate mutated config: %+v", cfg)
	}
}

func TestNormalize(t *testing.T) {
	cfg := valid()
	cfg.Notify.Desktop = "  OSASCRIPT "
	cfg.Session.ProbeURL = " https://example.test/ping "
	cfg.Notify.Email.Enabled = true
	cfg.Notify.Email.User = "bot@example.test"

	Normalize(cfg)

	if cfg.Notify.Desktop != "osascript" {
		t.Fatalf("desktop: got %q", cfg.Notify.Desktop)
	}
	if cfg.Session.LoginURL != "https://example.test/ping" {
		t.Fatalf("login url should default to probe url, got %q", cfg.Session.LoginURL)
	}
	if cfg.Notify.Email.From != "bot@example.test" {
		t.Fatalf("from should default to user, got %q", cfg.Notify.Email.From)
	}
	if !cfg.Keeper.MonitorCookies {
		t.Fatalf("email must force cookie monitoring")
	}
}
