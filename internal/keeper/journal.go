// internal/keeper/journal.go
package keeper

import "time"

// EventKind names one keeper event in the journal.
type EventKind string

const (
	EventStarted           EventKind = "started"
	EventCheckOK           EventKind = "check_ok"
	EventCheckFailed       EventKind = "check_failed"
	EventReloginOK         EventKind = "relogin_ok"
	EventReloginFailed     EventKind = "relogin_failed"
	EventCredentialChanged EventKind = "credential_changed"
	EventStopped           EventKind = "stopped"
)

// Event is one journal record. Counters are the values after the event.
type Event struct {
	RunID      string
	At         time.Time
	Kind       EventKind
	Successful uint64
	Failed     uint64
	Relogins   uint64
	Detail     string
}

// Journal records keeper events. Optional.
type Journal interface {
	Record(e Event) error
}

// StatusSink receives a report after every iteration.
// Delivery only: no logic, no interpretation.
type StatusSink interface {
	WriteStatus(r Report) error
}
