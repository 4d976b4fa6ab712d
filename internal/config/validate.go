// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// KEEPER
	// ------------------------------------------------------------

	if cfg.Keeper.IntervalSeconds <= 0 {
		return fmt.Errorf("config: keeper.interval_seconds must be > 0, got %d", cfg.Keeper.IntervalSeconds)
	}
	if cfg.Keeper.StopWaitMs < 0 {
		return fmt.Errorf("config: keeper.stop_wait_ms must be >= 0, got %d", cfg.Keeper.StopWaitMs)
	}
	if strings.TrimSpace(cfg.Keeper.StatusFile) == "" {
		return fmt.Errorf("config: keeper.status_file must not be empty")
	}

	// ------------------------------------------------------------
	// SESSION
	// ------------------------------------------------------------

	s := cfg.Session
	if strings.TrimSpace(s.ProbeURL) == "" {
		return fmt.Errorf("config: session.probe_url is required (or SESSION_PROBE_URL)")
	}
	if err := checkURL("session.probe_url", s.ProbeURL); err != nil {
		return err
	}
	if strings.TrimSpace(s.LoginURL) != "" {
		if err := checkURL("session.login_url", s.LoginURL); err != nil {
			return err
		}
	}
	if (s.Username == "") != (s.Password == "") {
		return fmt.Errorf("config: session.username and session.password must be set together")
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("config: session.timeout_ms must be >= 0, got %d", s.TimeoutMs)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 {
		return fmt.Errorf("config: log.max_size_mb and log.max_backups must be >= 0")
	}

	// ------------------------------------------------------------
	// NOTIFY
	// ------------------------------------------------------------

	switch strings.ToLower(strings.TrimSpace(cfg.Notify.Desktop)) {
	case "", "notify-send", "osascript":
	default:
		return fmt.Errorf("config: notify.desktop must be \"notify-send\" or \"osascript\", got %q", cfg.Notify.Desktop)
	}

	if e := cfg.Notify.Email; e.Enabled {
		if strings.TrimSpace(e.To) == "" {
			return fmt.Errorf("config: notify.email.to is required when email is enabled")
		}
		if strings.TrimSpace(e.Server) == "" {
			return fmt.Errorf("config: notify.email.server is required when email is enabled (or SMTP_SERVER)")
		}
		if e.Port <= 0 || e.Port > 65535 {
			return fmt.Errorf("config: notify.email.port out of range: %d", e.Port)
		}
		if (e.User == "") != (e.Pass == "") {
			return fmt.Errorf("config: notify.email.user and notify.email.pass must be set together")
		}
		if e.PerHour < 0 || e.Burst < 0 {
			return fmt.Errorf("config: notify.email.per_hour and notify.email.burst must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// TIMEOUT TEST
	// ------------------------------------------------------------

	tt := cfg.TimeoutTest
	if tt.StartSeconds <= 0 || tt.MaxSeconds <= 0 {
		return fmt.Errorf("config: timeout_test.start_seconds and timeout_test.max_seconds must be > 0")
	}
	if tt.StartSeconds > tt.MaxSeconds {
		return fmt.Errorf("config: timeout_test.start_seconds (%d) exceeds max_seconds (%d)", tt.StartSeconds, tt.MaxSeconds)
	}
	if !tt.Adaptive && tt.Multiplier <= 1 {
		return fmt.Errorf("config: timeout_test.multiplier must be > 1, got %v", tt.Multiplier)
	}

	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: %s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("config: %s has no host: %q", field, raw)
	}
	return nil
}
