// internal/status/file.go
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/tamzrod/session-keeper/internal/fsutil"
	"github.com/tamzrod/session-keeper/internal/keeper"
)

// FileSink is the status file writer used by the keeper.
// It receives a report and writes it verbatim.
// Every write replaces the whole file atomically.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink writing to path (DefaultFile when empty).
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultFile
	}
	return &FileSink{path: path}
}

// Path returns the status file location.
func (s *FileSink) Path() string { return s.path }

// WriteStatus implements keeper.StatusSink.
func (s *FileSink) WriteStatus(r keeper.Report) error {
	return s.Write(FromReport(r))
}

// Write stores snap at the sink path.
func (s *FileSink) Write(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("status: encode: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644, 0o755); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return nil
}

// Read loads the snapshot at path.
// A missing file is reported as found=false, not as an error.
func Read(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("status: read %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("status: decode %s: %w", path, err)
	}
	return snap, true, nil
}
