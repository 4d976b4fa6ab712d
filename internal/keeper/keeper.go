// internal/keeper/keeper.go
package keeper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/notify"
	"github.com/tamzrod/session-keeper/internal/session"
)

// Defaults.
const (
	DefaultInterval = 300 * time.Second
	DefaultStopWait = time.Second
)

// Options configures a Keeper. Exactly one client source is used, in order:
// Client, then Credential (via Factory), then Username/Password (via Factory).
// Username/Password are also what re-login uses.
type Options struct {
	Client     session.Client
	Factory    session.Factory
	Username   string
	Password   string
	Credential session.Credential

	Interval          time.Duration // <= 0 means DefaultInterval
	MonitorCredential bool

	Notifier notify.Notifier // nil disables notifications
	Sink     StatusSink      // nil disables status snapshots
	Journal  Journal         // nil disables the event journal
	Log      *logger.Logger

	StopWait time.Duration // how long Stop waits for the loop; <= 0 means DefaultStopWait
	Now      func() time.Time
}

// Keeper holds a session alive by probing it on a fixed interval
// and re-authenticating when a probe fails.
type Keeper struct {
	client   session.Client
	username string
	password string
	interval time.Duration
	monitor  bool
	notifier notify.Notifier
	sink     StatusSink
	journal  Journal
	log      *logger.Logger
	stopWait time.Duration
	now      func() time.Time

	lifecycle sync.Mutex // serializes Start/Stop
	running   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}

	// state is owned by the loop goroutine.
	state     State
	published atomic.Pointer[State]
}

// New validates opts and builds the session client.
// It returns a *ConfigurationError when no initialization mode is satisfiable.
func New(opts Options) (*Keeper, error) {
	if opts.Interval < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("check interval must be > 0, got %s", opts.Interval)}
	}

	k := &Keeper{
		username: opts.Username,
		password: opts.Password,
		interval: opts.Interval,
		monitor:  opts.MonitorCredential,
		notifier: opts.Notifier,
		sink:     opts.Sink,
		journal:  opts.Journal,
		log:      opts.Log,
		stopWait: opts.StopWait,
		now:      opts.Now,
	}
	if k.interval == 0 {
		k.interval = DefaultInterval
	}
	if k.stopWait <= 0 {
		k.stopWait = DefaultStopWait
	}
	if k.now == nil {
		k.now = time.Now
	}

	client, err := k.buildClient(opts)
	if err != nil {
		return nil, err
	}
	k.client = client

	k.state = State{CheckInterval: k.interval}
	k.publish()
	return k, nil
}

func (k *Keeper) buildClient(opts Options) (session.Client, error) {
	settings := session.Settings{
		Username:   opts.Username,
		Password:   opts.Password,
		Credential: opts.Credential.Clone(),
	}

	switch {
	case opts.Client != nil:
		k.log.Infof("Using pre-authenticated client")
		return opts.Client, nil

	case !settings.Credential.Empty() || settings.HasPassword():
		if opts.Factory == nil {
			return nil, &ConfigurationError{Reason: "a client factory is required to build a client from cookies or username/password"}
		}
		c, err := opts.Factory.NewClient(settings)
		if err != nil {
			return nil, &ConfigurationError{Reason: "building session client", Err: err}
		}
		if c == nil {
			return nil, &ConfigurationError{Reason: "client factory returned no client"}
		}
		if settings.Credential.Empty() {
			k.log.Infof("Created new client with username/password")
		} else {
			k.log.Infof("Created new client from existing cookies")
		}
		return c, nil

	default:
		return nil, &ConfigurationError{Reason: "either a client, cookies or username/password must be provided"}
	}
}

// Client returns the session client.
func (k *Keeper) Client() session.Client {
	return k.client
}

// Running reports whether the keeper loop is active.
func (k *Keeper) Running() bool {
	return k.running.Load()
}

// Start validates or creates the session, then launches the loop.
// Starting a running keeper logs a warning and returns nil.
// Failures are returned as *StartupError.
func (k *Keeper) Start(ctx context.Context) error {
	k.lifecycle.Lock()
	defer k.lifecycle.Unlock()

	if k.running.Load() {
		k.log.Warnf("Session keeper is already running")
		return nil
	}
	if k.done != nil {
		select {
		case <-k.done:
		default:
			return &StartupError{Reason: "previous loop has not exited yet"}
		}
	}

	cred, how, err := k.establish(ctx)
	if err != nil {
		k.log.Errorf("Initial setup failed: %v", err)
		k.notify(ctx, "Session Keeper Failed", fmt.Sprintf("Failed to start session keeper: %v", err))
		return err
	}

	now := k.now()
	k.state = State{
		RunID:          uuid.NewString(),
		Running:        true,
		StartedAt:      now,
		LastActivityAt: now,
		CheckInterval:  k.interval,
		LastCredential: cred.Clone(),
	}
	k.running.Store(true)
	k.publish()
	k.persist()
	k.record(EventStarted, "with "+how)

	loopCtx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	k.done = make(chan struct{})
	go k.run(loopCtx, k.done)

	secs := int64(k.interval / time.Second)
	k.log.Infof("Session keeper started (check interval: %ds)", secs)
	k.notify(ctx, "Session Keeper Started",
		fmt.Sprintf("Session keeper started with %s. Check interval: %ds", how, secs))
	return nil
}

// establish returns the credential to start with and how it was obtained.
func (k *Keeper) establish(ctx context.Context) (session.Credential, string, error) {
	if cred := k.client.Credential(); !cred.Empty() {
		k.log.Infof("Client already has cookies, checking if they're valid...")
		ok, err := k.client.Probe(ctx)
		if err == nil && ok {
			k.log.Infof("Existing cookies are valid")
			if k.monitor {
				k.log.Debugf("Initial cookies: %v", cred.Names())
			}
			return cred, "existing cookies", nil
		}
		k.log.Warnf("Existing cookies are invalid, performing login...")
	}

	if !k.hasPassword() {
		return nil, "", &StartupError{Reason: "cannot login: no username/password provided and existing cookies are invalid"}
	}

	k.log.Infof("Performing initial login...")
	cred, err := k.client.Login(ctx)
	if err != nil {
		return nil, "", &StartupError{Reason: "initial login failed", Err: err}
	}
	if cred.Empty() {
		cred = k.client.Credential()
	}
	k.log.Infof("Initial login successful")
	if k.monitor {
		k.log.Debugf("Initial cookies: %v", cred.Names())
	}
	return cred, "new login", nil
}

// Stop ends the loop, waits briefly for it to exit and reports final statistics.
// Stopping a keeper that is not running logs a warning.
func (k *Keeper) Stop() {
	k.lifecycle.Lock()
	defer k.lifecycle.Unlock()

	if !k.running.Load() {
		k.log.Warnf("Session keeper is not running")
		return
	}

	k.running.Store(false)
	k.cancel()

	acknowledged := false
	select {
	case <-k.done:
		acknowledged = true
	case <-time.After(k.stopWait):
		k.log.Warnf("Session keeper loop did not exit within %s", k.stopWait)
	}
	k.log.Infof("Session keeper stopped")

	// The loop is gone only when acknowledged; otherwise it may still touch
	// state and the sink.
	if acknowledged {
		k.state.Running = false
		k.publish()
		k.persist()
		k.record(EventStopped, "")
	}

	summary := k.Status().Summary()
	k.log.Infof("%s", summary)
	k.notify(context.Background(), "Session Keeper Stopped", summary)
}

// Status returns a point-in-time copy of the keeper statistics.
// Safe to call from any goroutine.
func (k *Keeper) Status() Report {
	var s State
	if p := k.published.Load(); p != nil {
		s = *p
	}
	return newReport(s, k.running.Load(), k.now())
}

// ---- helpers ----

func (k *Keeper) hasPassword() bool {
	return k.username != "" && k.password != ""
}

func (k *Keeper) publish() {
	s := k.state
	s.LastCredential = s.LastCredential.Clone()
	k.published.Store(&s)
}

func (k *Keeper) persist() {
	if k.sink == nil {
		return
	}
	if err := k.sink.WriteStatus(k.Status()); err != nil {
		k.log.Errorf("%v", &PersistenceFailure{Err: err})
	}
}

func (k *Keeper) record(kind EventKind, detail string) {
	if k.journal == nil {
		return
	}
	e := Event{
		RunID:      k.state.RunID,
		At:         k.now(),
		Kind:       kind,
		Successful: k.state.SuccessfulChecks,
		Failed:     k.state.FailedChecks,
		Relogins:   k.state.Relogins,
		Detail:     detail,
	}
	if err := k.journal.Record(e); err != nil {
		k.log.Errorf("Failed to record %s event: %v", kind, err)
	}
}

func (k *Keeper) notify(ctx context.Context, subject, message string) {
	if k.notifier == nil {
		return
	}
	k.notifier.Notify(ctx, subject, message)
}
