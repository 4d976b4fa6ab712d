// internal/timeout/tester.go
package timeout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/session-keeper/internal/interval"
	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/notify"
)

// Defaults.
const (
	DefaultStart = 300 * time.Second
	DefaultMax   = 86400 * time.Second
)

// ErrInitialValidation is returned by Run when the session is already invalid.
var ErrInitialValidation = errors.New("timeout: initial validation failed")

// Prober is the slice of a session client the tester needs.
// It never re-authenticates.
type Prober interface {
	Probe(ctx context.Context) (bool, error)
}

// Outcome is why a run ended.
type Outcome string

const (
	OutcomeExpired    Outcome = "expired"
	OutcomeError      Outcome = "error"
	OutcomeMaxReached Outcome = "max_reached"
	OutcomeCancelled  Outcome = "cancelled"
)

// Probe is one waited-then-checked step.
type Probe struct {
	Number     int
	Interval   time.Duration
	Inactivity time.Duration
	Valid      bool
	Err        error
}

// Result summarises a run.
type Result struct {
	Outcome                Outcome
	Probes                 []Probe
	LastSuccessfulInterval time.Duration // zero when no waited probe succeeded
	InactivityAtExpiry     time.Duration // set for Expired and Error
	TotalElapsed           time.Duration
	Err                    error // probe error for OutcomeError
}

// Options configures a Tester.
type Options struct {
	Prober   Prober
	Policy   interval.Policy
	Start    time.Duration // <= 0 means DefaultStart
	Max      time.Duration // <= 0 means DefaultMax
	Notifier notify.Notifier
	Log      *logger.Logger
	Now      func() time.Time
}

// Tester measures how long a session survives without activity by
// waiting ever longer between probes.
type Tester struct {
	prober   Prober
	policy   interval.Policy
	start    time.Duration
	max      time.Duration
	notifier notify.Notifier
	log      *logger.Logger
	now      func() time.Time
}

// New validates opts.
func New(opts Options) (*Tester, error) {
	if opts.Prober == nil {
		return nil, errors.New("timeout: prober is required")
	}

	t := &Tester{
		prober:   opts.Prober,
		policy:   opts.Policy,
		start:    opts.Start,
		max:      opts.Max,
		notifier: opts.Notifier,
		log:      opts.Log,
		now:      opts.Now,
	}
	if t.start <= 0 {
		t.start = DefaultStart
	}
	if t.max <= 0 {
		t.max = DefaultMax
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.start > t.max {
		return nil, fmt.Errorf("timeout: start interval %s exceeds max interval %s", t.start, t.max)
	}
	if !t.policy.Adaptive && t.policy.Multiplier != 0 && t.policy.Multiplier <= 1 {
		return nil, fmt.Errorf("timeout: multiplier must be > 1, got %v", t.policy.Multiplier)
	}
	if t.policy.Max <= 0 || t.policy.Max > t.max {
		t.policy.Max = t.max
	}
	return t, nil
}

// Run executes the test until the session expires, a probe errors,
// the max interval has been survived, or ctx is cancelled.
func (t *Tester) Run(ctx context.Context) (Result, error) {
	ok, err := t.prober.Probe(ctx)
	if err != nil {
		t.log.Errorf("Initial cookie validation failed: %v", err)
		return Result{}, fmt.Errorf("%w: %v", ErrInitialValidation, err)
	}
	if !ok {
		t.log.Errorf("Initial cookie validation failed. Cookies may already be expired.")
		return Result{}, ErrInitialValidation
	}

	t.banner("Starting session timeout test")
	t.log.Infof("Adaptive intervals: %v", t.policy.Adaptive)
	t.log.Infof("Maximum interval: %s", Human(t.max))

	started := t.now()
	lastSuccess := started
	current := t.start

	var res Result
	for n := 1; current <= t.max; n++ {
		t.log.Infof("Test #%d: Waiting for %s", n, Human(current))
		t.log.Infof("Next check scheduled at: %s", t.now().Add(current).Format("2006-01-02 15:04:05"))

		if !wait(ctx, current) {
			res.Outcome = OutcomeCancelled
			break
		}

		ok, err := t.prober.Probe(ctx)
		at := t.now()
		inactive := at.Sub(lastSuccess)
		res.TotalElapsed = at.Sub(started)

		if ctx.Err() != nil {
			res.Outcome = OutcomeCancelled
			break
		}

		p := Probe{Number: n, Interval: current, Inactivity: inactive, Valid: err == nil && ok, Err: err}
		res.Probes = append(res.Probes, p)

		if err != nil {
			t.log.Errorf("Error during validation: %v", err)
			t.log.Infof("ERROR: Session check failed after %s of inactivity", Human(inactive))
			res.Outcome = OutcomeError
			res.Err = err
			res.InactivityAtExpiry = inactive
			break
		}
		if !ok {
			t.log.Infof("EXPIRED: Session expired after %s of inactivity", Human(inactive))
			t.log.Infof("Last successful interval: %s", Human(res.LastSuccessfulInterval))
			t.log.Infof("Total test duration: %s", Human(res.TotalElapsed))
			res.Outcome = OutcomeExpired
			res.InactivityAtExpiry = inactive
			break
		}

		t.log.Infof("SUCCESS: Session still valid after %s of inactivity", Human(inactive))
		t.log.Infof("Total test duration so far: %s", Human(res.TotalElapsed))
		lastSuccess = at
		res.LastSuccessfulInterval = current

		if current >= t.max {
			t.log.Infof("Session survived the maximum interval of %s", Human(t.max))
			res.Outcome = OutcomeMaxReached
			break
		}

		next := t.policy.Next(current, res.TotalElapsed)
		if next <= current {
			// Only a cap can stall growth; move straight to the max.
			next = t.max
		}
		if t.policy.Adaptive {
			t.log.Infof("Using adaptive strategy: %s -> %s", Human(current), Human(next))
		} else {
			t.log.Infof("Increasing by factor of %v: %s -> %s", t.factor(), Human(current), Human(next))
		}
		current = next
	}
	if res.Outcome == "" {
		res.Outcome = OutcomeMaxReached
	}

	t.banner("Session timeout test completed")
	t.log.Infof("%s", res.Summary())
	if t.notifier != nil {
		t.notifier.Notify(context.Background(), "Session Timeout Test Completed", res.Summary())
	}
	return res, nil
}

func (t *Tester) factor() float64 {
	if t.policy.Multiplier > 0 {
		return t.policy.Multiplier
	}
	return interval.DefaultMultiplier
}

func (t *Tester) banner(title string) {
	line := strings.Repeat("=", 60)
	t.log.Infof("%s", line)
	t.log.Infof("%s", title)
	t.log.Infof("%s", line)
}

// Summary is the one-paragraph text used in the log and the notification.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s after %d probes.", r.Outcome, len(r.Probes))
	if r.Outcome == OutcomeExpired || r.Outcome == OutcomeError {
		fmt.Fprintf(&b, " Inactivity at expiry: %s.", Human(r.InactivityAtExpiry))
	}
	if r.Err != nil {
		fmt.Fprintf(&b, " Error: %v.", r.Err)
	}
	fmt.Fprintf(&b, " Last successful interval: %s. Total duration: %s.",
		Human(r.LastSuccessfulInterval), Human(r.TotalElapsed))
	return b.String()
}

// wait sleeps for d. It returns false when ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Human renders d as "1h 2m 3s", "2m 3s" or "3s".
func Human(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
