// internal/keeper/runner.go
package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/session-keeper/internal/session"
)

// failureNotifyEvery throttles failure notices to failure counts 1, 4, 7, ...
const failureNotifyEvery = 3

var errSessionInvalid = errors.New("session is no longer valid")

// run is the loop goroutine. One iteration per interval, no overlap.
// It exits when ctx is cancelled; the wait is interruptible.
func (k *Keeper) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(k.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !k.running.Load() {
			return
		}
		if !k.iterate(ctx) {
			return
		}
		timer.Reset(k.interval)
	}
}

// iterate performs one probe cycle and persists the result.
// It returns false when the cycle was abandoned because ctx was cancelled;
// abandoned cycles change no counters.
func (k *Keeper) iterate(ctx context.Context) bool {
	k.log.Debugf("Performing session check...")

	ok, err := k.client.Probe(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err == nil && !ok {
		err = errSessionInvalid
	}

	if err == nil {
		k.onCheckOK(ctx)
	} else {
		k.onCheckFailed(ctx, &ProbeFailure{Err: err})
	}

	k.publish()
	k.persist()
	return true
}

func (k *Keeper) onCheckOK(ctx context.Context) {
	k.state.SuccessfulChecks++
	k.state.LastActivityAt = k.now()
	k.record(EventCheckOK, "")

	if k.monitor {
		current := k.client.Credential()
		if !current.Equal(k.state.LastCredential) {
			d := session.Diff(k.state.LastCredential, current)
			k.log.Infof("Cookies have changed")
			k.log.Debugf("Cookie changes: changed=%v added=%v removed=%v", d.Changed, d.OnlyInB, d.OnlyInA)

			k.state.LastCredential = current.Clone()
			k.record(EventCredentialChanged, fmt.Sprintf("changed=%v added=%v removed=%v", d.Changed, d.OnlyInB, d.OnlyInA))
			k.notify(ctx, "Cookie Change Detected",
				fmt.Sprintf("Cookies have changed after %d successful checks", k.state.SuccessfulChecks))
		} else {
			k.log.Debugf("No cookie changes detected")
		}
	}

	k.log.Infof("Session check successful (total: %d)", k.state.SuccessfulChecks)
}

func (k *Keeper) onCheckFailed(ctx context.Context, pf *ProbeFailure) {
	k.state.FailedChecks++
	failures := k.state.FailedChecks

	k.log.Errorf("%v", pf)
	k.record(EventCheckFailed, pf.Error())

	if failures%failureNotifyEvery == 1 {
		k.notify(ctx, "Session Check Failed",
			fmt.Sprintf("Session check failed: %v. This is failure #%d.", pf.Err, failures))
	}

	if !k.hasPassword() {
		k.log.Warnf("Cannot re-login: No username/password provided")
		return
	}

	k.log.Infof("Attempting to re-login...")
	cred, err := k.client.Login(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		rf := &ReloginFailure{Err: err}
		k.log.Errorf("%v", rf)
		k.record(EventReloginFailed, rf.Error())
		k.notify(ctx, "Re-login Failed",
			fmt.Sprintf("Failed to re-login: %v. This is critical!", err))
		return
	}
	if cred.Empty() {
		cred = k.client.Credential()
	}

	k.state.Relogins++
	k.state.LastCredential = cred.Clone()
	k.state.LastActivityAt = k.now()

	k.log.Infof("Re-login successful (total relogins: %d)", k.state.Relogins)
	if k.monitor {
		k.log.Debugf("New cookies after re-login: %v", cred.Names())
	}
	k.record(EventReloginOK, "")
	k.notify(ctx, "Re-login Successful",
		fmt.Sprintf("Successfully re-logged in after %d failed checks.", failures))
}
