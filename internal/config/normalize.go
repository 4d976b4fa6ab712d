// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Session
	s.Username = strings.TrimSpace(s.Username)
	s.ProbeURL = strings.TrimSpace(s.ProbeURL)
	s.LoginURL = strings.TrimSpace(s.LoginURL)
	if s.LoginURL == "" {
		s.LoginURL = s.ProbeURL
	}
	s.UsernameField = strings.TrimSpace(s.UsernameField)
	s.PasswordField = strings.TrimSpace(s.PasswordField)
	s.CookiesFile = strings.TrimSpace(s.CookiesFile)

	cfg.Keeper.StatusFile = strings.TrimSpace(cfg.Keeper.StatusFile)
	cfg.Keeper.HistoryDB = strings.TrimSpace(cfg.Keeper.HistoryDB)
	cfg.Log.File = strings.TrimSpace(cfg.Log.File)

	n := &cfg.Notify
	n.Desktop = strings.ToLower(strings.TrimSpace(n.Desktop))
	n.File = strings.TrimSpace(n.File)
	n.Email.To = strings.TrimSpace(n.Email.To)
	n.Email.Server = strings.TrimSpace(n.Email.Server)
	n.Email.From = strings.TrimSpace(n.Email.From)
	if n.Email.From == "" {
		n.Email.From = n.Email.User
	}

	// Email forces cookie monitoring on.
	if n.Email.Enabled && !n.Disabled {
		cfg.Keeper.MonitorCookies = true
	}
}
