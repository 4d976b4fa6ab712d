// internal/keeper/errors.go
package keeper

import "fmt"

// ConfigurationError: no valid initialization mode. Fatal, returned by New.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keeper: configuration: %s: %v", e.Reason, e.Err)
	}
	return "keeper: configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StartupError: the initial probe/login failed. Fatal, returned by Start.
type StartupError struct {
	Reason string
	Err    error
}

func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keeper: startup: %s: %v", e.Reason, e.Err)
	}
	return "keeper: startup: " + e.Reason
}

func (e *StartupError) Unwrap() error { return e.Err }

// The remaining errors never leave the loop; they drive counters,
// notifications and the journal.

// ProbeFailure: one session check failed.
type ProbeFailure struct{ Err error }

func (e *ProbeFailure) Error() string { return "session check failed: " + errText(e.Err) }
func (e *ProbeFailure) Unwrap() error { return e.Err }

// ReloginFailure: re-authentication after a failed check failed.
type ReloginFailure struct{ Err error }

func (e *ReloginFailure) Error() string { return "re-login failed: " + errText(e.Err) }
func (e *ReloginFailure) Unwrap() error { return e.Err }

// PersistenceFailure: the status snapshot could not be written.
type PersistenceFailure struct{ Err error }

func (e *PersistenceFailure) Error() string { return "failed to write status: " + errText(e.Err) }
func (e *PersistenceFailure) Unwrap() error { return e.Err }

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
