// cmd/sessionkeeper/wiring.go
package main

import (
	"fmt"
	"time"

	"github.com/tamzrod/session-keeper/internal/config"
	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/notify"
	"github.com/tamzrod/session-keeper/internal/session"
	"github.com/tamzrod/session-keeper/internal/session/httpclient"
)

func httpConfig(s config.SessionConfig) httpclient.Config {
	return httpclient.Config{
		LoginURL:      s.LoginURL,
		ProbeURL:      s.ProbeURL,
		UsernameField: s.UsernameField,
		PasswordField: s.PasswordField,
		ExtraFields:   s.ExtraFields,
		Timeout:       time.Duration(s.TimeoutMs) * time.Millisecond,
	}
}

// buildNotifier returns nil when notifications are disabled.
func buildNotifier(cfg *config.Config, log *logger.Logger) (notify.Notifier, error) {
	n := cfg.Notify
	if n.Disabled {
		log.Infof("Notifications disabled")
		return nil, nil
	}

	sinks := []notify.Sink{notify.LogSink{Log: log}}

	if n.Desktop != "" {
		ds, err := notify.NewDesktopSink(n.Desktop)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, ds)
	}

	if n.File != "" {
		sinks = append(sinks, notify.NewFileSink(n.File))
	}

	if e := n.Email; e.Enabled {
		es, err := notify.NewEmailSink(notify.SMTPConfig{
			Server:  e.Server,
			Port:    e.Port,
			User:    e.User,
			Pass:    e.Pass,
			From:    e.From,
			To:      e.To,
			PerHour: float64(e.PerHour),
			Burst:   e.Burst,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, es)
		log.Infof("Email notifications will be sent to %s", e.To)
	}

	d := notify.NewDispatcher(log, sinks...)
	log.Debugf("Notification sinks: %v", d.Sinks())
	return d, nil
}

// loadCookies reads the cookies file when one is configured.
func loadCookies(path string, log *logger.Logger) (session.Credential, error) {
	if path == "" {
		return nil, nil
	}
	cred, err := session.LoadCredential(path)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}
	log.Infof("Loaded %d cookies from %s", len(cred), path)
	return cred, nil
}
