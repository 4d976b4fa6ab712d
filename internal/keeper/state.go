// internal/keeper/state.go
package keeper

import (
	"fmt"
	"time"

	"github.com/tamzrod/session-keeper/internal/session"
)

// State is the keeper's live statistics.
// Single writer: only the loop goroutine (and Start, before launching it)
// mutates it. Everyone else sees published copies.
type State struct {
	RunID            string
	Running          bool
	SuccessfulChecks uint64
	FailedChecks     uint64
	Relogins         uint64
	StartedAt        time.Time
	LastActivityAt   time.Time
	CheckInterval    time.Duration
	LastCredential   session.Credential
}

// Checks is the number of completed iterations.
func (s State) Checks() uint64 {
	return s.SuccessfulChecks + s.FailedChecks
}

// Report is a point-in-time view of State for status output.
type Report struct {
	RunID             string
	At                time.Time
	Running           bool
	SuccessfulChecks  uint64
	FailedChecks      uint64
	Checks            uint64
	Relogins          uint64
	StartedAt         time.Time
	LastActivityAt    time.Time
	Runtime           time.Duration
	SinceLastActivity time.Duration
	CheckInterval     time.Duration
	HasCredential     bool
	LastCredential    session.Credential // private copy; callers may modify it
}

func newReport(s State, running bool, now time.Time) Report {
	r := Report{
		RunID:            s.RunID,
		At:               now,
		Running:          running,
		SuccessfulChecks: s.SuccessfulChecks,
		FailedChecks:     s.FailedChecks,
		Checks:           s.Checks(),
		Relogins:         s.Relogins,
		StartedAt:        s.StartedAt,
		LastActivityAt:   s.LastActivityAt,
		CheckInterval:    s.CheckInterval,
		HasCredential:    !s.LastCredential.Empty(),
		LastCredential:   s.LastCredential.Clone(),
	}
	if !s.StartedAt.IsZero() {
		r.Runtime = now.Sub(s.StartedAt)
	}
	if !s.LastActivityAt.IsZero() {
		r.SinceLastActivity = now.Sub(s.LastActivityAt)
	}
	return r
}

// Summary is the one-line statistics text used in logs and the stop notice.
func (r Report) Summary() string {
	return fmt.Sprintf("Session statistics: %d successful checks, %d failed checks, %d relogins, runtime: %s",
		r.SuccessfulChecks, r.FailedChecks, r.Relogins, FormatDuration(r.Runtime))
}

// FormatDuration renders d as "Hh Mm Ss", truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, sec)
}
