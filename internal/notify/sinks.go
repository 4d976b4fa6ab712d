// internal/notify/sinks.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tamzrod/session-keeper/internal/logger"
)

// ---- log ----

// LogSink writes every notification to the log.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Send(_ context.Context, m Message) error {
	s.Log.Infof("NOTIFICATION: %s - %s", m.Subject, m.Body)
	return nil
}

// ---- desktop ----

// Desktop notification commands.
const (
	DesktopNotifySend = "notify-send"
	DesktopOsascript  = "osascript"
)

// DesktopSink shows a desktop notice by running an OS command.
// The command kind is configured, not detected.
type DesktopSink struct {
	kind string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewDesktopSink returns a sink for kind (DesktopNotifySend or DesktopOsascript).
func NewDesktopSink(kind string) (*DesktopSink, error) {
	switch kind {
	case DesktopNotifySend, DesktopOsascript:
	default:
		return nil, fmt.Errorf("notify: unsupported desktop command %q", kind)
	}
	return &DesktopSink{kind: kind, run: runCommand}, nil
}

func (s *DesktopSink) Name() string { return "desktop" }

func (s *DesktopSink) Send(ctx context.Context, m Message) error {
	name, args := s.command(m)
	return s.run(ctx, name, args...)
}

func (s *DesktopSink) command(m Message) (string, []string) {
	if s.kind == DesktopOsascript {
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(m.Body), appleScriptString(m.Subject))
		return DesktopOsascript, []string{"-e", script}
	}
	return DesktopNotifySend, []string{m.Subject, m.Body}
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ---- file ----

// FileSink appends one JSON line per notification.
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Send(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
