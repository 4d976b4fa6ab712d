// internal/notify/notifier.go
package notify

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/session-keeper/internal/logger"
)

// DefaultTimeout bounds one fan-out to all sinks.
const DefaultTimeout = 15 * time.Second

// Notifier delivers a (subject, message) pair. Fire-and-forget:
// delivery problems are logged by the implementation, never returned.
type Notifier interface {
	Notify(ctx context.Context, subject, message string)
}

// Message is what sinks receive.
type Message struct {
	Subject string    `json:"subject"`
	Body    string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// Dispatcher fans a message out to every sink concurrently.
type Dispatcher struct {
	sinks   []Sink
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewDispatcher builds a dispatcher over sinks. A dispatcher with no sinks is a no-op.
func NewDispatcher(log *logger.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		log:     log,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
}

// Sinks returns the configured sink names.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Notify implements Notifier. It returns once every sink has finished or
// ctx is done, whichever comes first. ctx is bounded by the dispatcher timeout.
func (d *Dispatcher) Notify(ctx context.Context, subject, message string) {
	if d == nil || len(d.sinks) == 0 {
		return
	}

	m := Message{Subject: subject, Body: message, At: d.now()}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var g errgroup.Group
	for _, s := range d.sinks {
		s := s
		g.Go(func() error {
			err := s.Send(ctx, m)
			if err != nil {
				d.log.Errorf("Failed to send %s notification: %v", s.Name(), err)
			}
			return err
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	// Sinks that ignore ctx keep running in the background; the caller does not wait.
	select {
	case <-done:
	case <-ctx.Done():
		d.log.Warnf("Notification %q not fully delivered: %v", subject, ctx.Err())
	}
}

var _ Notifier = (*Dispatcher)(nil)
