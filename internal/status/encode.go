// internal/status/encode.go
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/session-keeper/internal/keeper"
)

// FromReport converts a keeper report into a snapshot.
// No IO. No side effects.
func FromReport(r keeper.Report) Snapshot {
	runtime, lastActivity := UnknownText, UnknownText
	if !r.StartedAt.IsZero() {
		runtime = keeper.FormatDuration(r.Runtime)
	}
	if !r.LastActivityAt.IsZero() {
		lastActivity = keeper.FormatDuration(r.SinceLastActivity) + " ago"
	}

	return Snapshot{
		Running:          r.Running,
		SuccessfulChecks: r.SuccessfulChecks,
		FailedChecks:     r.FailedChecks,
		Relogins:         r.Relogins,
		Runtime:          runtime,
		LastActivity:     lastActivity,
		CheckInterval:    int64(r.CheckInterval / time.Second),
		HasCookies:       r.HasCredential,

		RunID:          r.RunID,
		StartedAt:      r.StartedAt.UTC(),
		LastActivityAt: r.LastActivityAt.UTC(),
		UpdatedAt:      r.At.UTC(),
	}
}

// InactiveFor returns how long ago the last activity was, as of now.
// It prefers the absolute timestamp and falls back to the relative text.
func (s Snapshot) InactiveFor(now time.Time) (time.Duration, bool) {
	if !s.LastActivityAt.IsZero() {
		return now.Sub(s.LastActivityAt), true
	}
	d, err := parseHMS(strings.TrimSuffix(s.LastActivity, " ago"))
	if err != nil {
		return 0, false
	}
	return d, true
}

// parseHMS is the inverse of keeper.FormatDuration.
func parseHMS(s string) (time.Duration, error) {
	var h, m, sec int64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%dh %dm %ds", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("status: bad duration %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
