// internal/status/render.go
package status

import (
	"fmt"
	"io"
	"time"
)

// Render prints snap as a human-readable block.
// A running keeper whose last activity is older than StaleAfter gets a warning.
func Render(w io.Writer, snap Snapshot, now time.Time) {
	fmt.Fprintln(w, "Session Keeper Status:")
	fmt.Fprintf(w, "  Running: %s\n", yesNo(snap.Running))
	if snap.RunID != "" {
		fmt.Fprintf(w, "  Run ID: %s\n", snap.RunID)
	}
	fmt.Fprintf(w, "  Runtime: %s\n", snap.Runtime)
	fmt.Fprintf(w, "  Last activity: %s\n", snap.LastActivity)
	fmt.Fprintf(w, "  Successful checks: %d\n", snap.SuccessfulChecks)
	fmt.Fprintf(w, "  Failed checks: %d\n", snap.FailedChecks)
	fmt.Fprintf(w, "  Relogins: %d\n", snap.Relogins)
	fmt.Fprintf(w, "  Check interval: %d seconds\n", snap.CheckInterval)
	fmt.Fprintf(w, "  Has cookies: %s\n", yesNo(snap.HasCookies))
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "  Updated: %s\n", snap.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if Stale(snap, now) {
		fmt.Fprintf(w, "\nWARNING: Last activity was more than %d minutes ago. Session keeper may be inactive.\n",
			int(StaleAfter/time.Minute))
	}
}

// Stale reports whether a running keeper has shown no activity for StaleAfter.
func Stale(snap Snapshot, now time.Time) bool {
	if !snap.Running {
		return false
	}
	d, ok := snap.InactiveFor(now)
	return ok && d > StaleAfter
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
