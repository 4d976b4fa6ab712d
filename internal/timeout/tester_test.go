// internal/timeout/tester_test.go
package timeout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/session-keeper/internal/interval"
	"github.com/tamzrod/session-keeper/internal/logger"
)

type scriptedProber struct {
	mu      sync.Mutex
	results []probeResult
	calls   int
}

type probeResult struct {
	ok  bool
	err error
}

func (s *scriptedProber) Probe(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return true, nil
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.ok, r.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, subject, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	r.messages = append(r.messages, message)
}

func newTester(t *testing.T, p Prober, mutate func(*Options)) *Tester {
	t.Helper()
	opts := Options{
		Prober: p,
		Policy: interval.Policy{Multiplier: 2},
		Start:  time.Millisecond,
		Max:    8 * time.Millisecond,
		Log:    logger.Discard(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	tt, err := New(opts)
	require.NoError(t, err)
	return tt
}

func TestRun_SurvivesMax(t *testing.T) {
	p := &scriptedProber{}
	n := &recordingNotifier{}
	tt := newTester(t, p, func(o *Options) { o.Notifier = n })

	res, err := tt.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeMaxReached, res.Outcome)
	require.Len(t, res.Probes, 4)
	var got []time.Duration
	for _, pr := range res.Probes {
		require.True(t, pr.Valid)
		require.GreaterOrEqual(t, pr.Inactivity, pr.Interval)
		got = append(got, pr.Interval)
	}
	require.Equal(t, []time.Duration{
		time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond,
	}, got)
	require.Equal(t, 8*time.Millisecond, res.LastSuccessfulInterval)
	require.Equal(t, 5, p.calls, "initial validation plus one probe per step")

	require.Equal(t, []string{"Session Timeout Test Completed"}, n.subjects)
	require.Contains(t, n.messages[0], "max_reached")
}

func TestRun_CapsFinalStep(t *testing.T) {
	p := &scriptedProber{}
	tt := newTester(t, p, func(o *Options) { o.Max = 5 * time.Millisecond })

	res, err := tt.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeMaxReached, res.Outcome)
	last := res.Probes[len(res.Probes)-1]
	require.Equal(t, 5*time.Millisecond, last.Interval)
}

func TestRun_Expired(t *testing.T) {
	p := &scriptedProber{results: []probeResult{{ok: true}, {ok: true}, {ok: false}}}
	tt := newTester(t, p, nil)

	res, err := tt.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeExpired, res.Outcome)
	require.Len(t, res.Probes, 2)
	require.Equal(t, time.Millisecond, res.LastSuccessfulInterval)
	require.GreaterOrEqual(t, res.InactivityAtExpiry, 2*time.Millisecond)
	require.False(t, res.Probes[1].Valid)
}

func TestRun_ProbeError(t *testing.T) {
	boom := errors.New("connection reset")
	p := &scriptedProber{results: []probeResult{{ok: true}, {err: boom}}}
	tt := newTester(t, p, nil)

	res, err := tt.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeError, res.Outcome)
	require.ErrorIs(t, res.Err, boom)
	require.Zero(t, res.LastSuccessfulInterval)
	require.Len(t, res.Probes, 1)
}

func TestRun_InitialValidation(t *testing.T) {
	boom := errors.New("down")
	for name, r := range map[string]probeResult{
		"invalid": {ok: false},
		"error":   {err: boom},
	} {
		t.Run(name, func(t *testing.T) {
			p := &scriptedProber{results: []probeResult{r}}
			n := &recordingNotifier{}
			tt := newTester(t, p, func(o *Options) { o.Notifier = n })

			_, err := tt.Run(context.Background())
			require.ErrorIs(t, err, ErrInitialValidation)
			require.Equal(t, 1, p.calls)
			require.Empty(t, n.subjects)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	p := &scriptedProber{}
	tt := newTester(t, p, func(o *Options) {
		o.Start = time.Hour
		o.Max = 2 * time.Hour
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	began := time.Now()
	res, err := tt.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeCancelled, res.Outcome)
	require.Less(t, time.Since(began), time.Second)
	require.Empty(t, res.Probes)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Prober: &scriptedProber{}, Start: time.Hour, Max: time.Minute})
	require.Error(t, err)

	_, err = New(Options{Prober: &scriptedProber{}, Policy: interval.Policy{Multiplier: 1}})
	require.Error(t, err)

	tt, err := New(Options{Prober: &scriptedProber{}})
	require.NoError(t, err)
	require.Equal(t, DefaultStart, tt.start)
	require.Equal(t, DefaultMax, tt.max)
	require.Equal(t, DefaultMax, tt.policy.Max)
}

func TestHuman(t *testing.T) {
	require.Equal(t, "5s", Human(5*time.Second))
	require.Equal(t, "7m 30s", Human(450*time.Second))
	require.Equal(t, "2h 0m 0s", Human(2*time.Hour))
	require.Equal(t, "0s", Human(-time.Second))
}
