// internal/status/status_test.go
package status

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/session-keeper/internal/keeper"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleReport() keeper.Report {
	return keeper.Report{
		RunID:             "run-1",
		At:                t0.Add(3723 * time.Second),
		Running:           true,
		SuccessfulChecks:  12,
		FailedChecks:      2,
		Relogins:          1,
		StartedAt:         t0,
		LastActivityAt:    t0.Add(3663 * time.Second),
		Runtime:           3723 * time.Second,
		SinceLastActivity: 60 * time.Second,
		CheckInterval:     300 * time.Second,
		HasCredential:     true,
	}
}

func TestFromReport(t *testing.T) {
	s := FromReport(sampleReport())

	if s.Runtime != "1h 2m 3s" {
		t.Fatalf("runtime: got %q", s.Runtime)
	}
	if s.LastActivity != "0h 1m 0s ago" {
		t.Fatalf("last activity: got %q", s.LastActivity)
	}
	if s.CheckInterval != 300 {
		t.Fatalf("check interval: got %d", s.CheckInterval)
	}
	if !s.Running || !s.HasCookies || s.SuccessfulChecks != 12 || s.FailedChecks != 2 || s.Relogins != 1 {
		t.Fatalf("counters not copied: %+v", s)
	}
	if !s.UpdatedAt.Equal(t0.Add(3723 * time.Second)) {
		t.Fatalf("updated_at: got %s", s.UpdatedAt)
	}
}

func TestFromReport_ZeroTimesAreUnknown(t *testing.T) {
	s := FromReport(keeper.Report{RunID: "run-0", At: t0, Running: true})

	if s.Runtime != UnknownText {
		t.Fatalf("runtime: got %q want %q", s.Runtime, UnknownText)
	}
	if s.LastActivity != UnknownText {
		t.Fatalf("last activity: got %q want %q", s.LastActivity, UnknownText)
	}
	if _, ok := s.InactiveFor(t0); ok {
		t.Fatal("inactivity should be unknown without a last activity")
	}
	if Stale(s, t0.Add(time.Hour)) {
		t.Fatal("unknown last activity must not be reported stale")
	}
}

func TestFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	sink := NewFileSink(path)

	if err := sink.WriteStatus(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, found, err := Read(path)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	want := FromReport(sampleReport())
	if !got.UpdatedAt.Equal(want.UpdatedAt) || !got.StartedAt.Equal(want.StartedAt) ||
		!got.LastActivityAt.Equal(want.LastActivityAt) {
		t.Fatalf("timestamps mismatch:\n got  %+v\n want %+v", got, want)
	}
	got.UpdatedAt, got.StartedAt, got.LastActivityAt = time.Time{}, time.Time{}, time.Time{}
	want.UpdatedAt, want.StartedAt, want.LastActivityAt = time.Time{}, time.Time{}, time.Time{}
	if got != want {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFileSink_JSONKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := NewFileSink(path).WriteStatus(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, key := range []string{
		`"running"`, `"successful_checks"`, `"failed_checks"`, `"relogins"`,
		`"runtime"`, `"last_activity"`, `"check_interval"`, `"has_cookies"`,
		`"run_id"`, `"started_at"`, `"last_activity_at"`, `"updated_at"`,
	} {
		if !bytes.Contains(data, []byte(key)) {
			t.Fatalf("missing key %s in %s", key, data)
		}
	}
}

func TestFileSink_OverwritesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	sink := NewFileSink(path)

	r := sampleReport()
	if err := sink.WriteStatus(r); err != nil {
		t.Fatalf("write: %v", err)
	}
	r.Running = false
	r.SuccessfulChecks = 13
	if err := sink.WriteStatus(r); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, _, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Running || got.SuccessfulChecks != 13 {
		t.Fatalf("stale content: %+v", got)
	}
}

func TestRead_Missing(t *testing.T) {
	_, found, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := Read(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRender(t *testing.T) {
	snap := FromReport(sampleReport())

	var buf bytes.Buffer
	Render(&buf, snap, snap.LastActivityAt.Add(time.Minute))
	out := buf.String()

	for _, want := range []string{
		"Running: Yes",
		"Runtime: 1h 2m 3s",
		"Successful checks: 12",
		"Check interval: 300 seconds",
		"Has cookies: Yes",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Fatalf("fresh snapshot must not warn:\n%s", out)
	}
}

func TestRender_StaleWarning(t *testing.T) {
	snap := FromReport(sampleReport())

	var buf bytes.Buffer
	Render(&buf, snap, snap.LastActivityAt.Add(11*time.Minute))

	if !strings.Contains(buf.String(), "may be inactive") {
		t.Fatalf("expected stale warning:\n%s", buf.String())
	}
}

func TestStale(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"relative text only, old", Snapshot{Running: true, LastActivity: "0h 11m 0s ago"}, true},
		{"relative text only, fresh", Snapshot{Running: true, LastActivity: "0h 9m 59s ago"}, false},
		{"stopped keeper never stale", Snapshot{Running: false, LastActivity: "5h 0m 0s ago"}, false},
		{"unparseable text", Snapshot{Running: true, LastActivity: "yesterday"}, false},
	}
	for _, tc := range cases {
		if got := Stale(tc.snap, t0); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestWatch_SeesReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	sink := NewFileSink(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(chan Snapshot, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, path, func(s Snapshot, found bool) {
			if found {
				seen <- s
			}
		})
	}()

	// Keep writing until the watcher reports the new value; the first
	// write may land before the watch is registered.
	r := sampleReport()
	r.SuccessfulChecks = 99
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case s := <-seen:
			if s.SuccessfulChecks == 99 {
				cancel()
				if err := <-errc; err != nil {
					t.Fatalf("watch: %v", err)
				}
				return
			}
		case <-tick.C:
			if err := sink.WriteStatus(r); err != nil {
				t.Fatalf("write: %v", err)
			}
		case <-ctx.Done():
			t.Fatalf("watcher never reported the update")
		}
	}
}
