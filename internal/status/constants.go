// internal/status/constants.go
package status

import "time"

// ---- FILE ----

// DefaultFile is the status file name used when none is configured.
const DefaultFile = "session_keeper_status.json"

// ---- STALENESS ----

// StaleAfter is how old the last activity may get before a
// running keeper is reported as possibly inactive.
const StaleAfter = 10 * time.Minute

// ---- TEXT ----

// UnknownText stands in for durations whose starting timestamp was never set.
const UnknownText = "unknown"

// NotRunningText is printed when no status file exists.
const NotRunningText = "Session keeper not running / never started"
