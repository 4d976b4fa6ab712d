// internal/status/snapshot.go
package status

import "time"

// Snapshot is exactly what lands in the status file.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Running          bool   `json:"running"`
	SuccessfulChecks uint64 `json:"successful_checks"`
	FailedChecks     uint64 `json:"failed_checks"`
	Relogins         uint64 `json:"relogins"`
	Runtime          string `json:"runtime"`
	LastActivity     string `json:"last_activity"`
	CheckInterval    int64  `json:"check_interval"`
	HasCookies       bool   `json:"has_cookies"`

	RunID          string    `json:"run_id,omitempty"`
	StartedAt      time.Time `json:"started_at,omitzero"`
	LastActivityAt time.Time `json:"last_activity_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}
