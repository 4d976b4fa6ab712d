// internal/history/store_test.go
package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/session-keeper/internal/keeper"
)

var _ keeper.Journal = (*Store)(nil)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestRecordAndRecent(t *testing.T) {
	s, _ := openTemp(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	events := []keeper.Event{
		{RunID: "r1", At: base, Kind: keeper.EventStarted, Detail: "with new login"},
		{RunID: "r1", At: base.Add(time.Minute), Kind: keeper.EventCheckOK, Successful: 1},
		{RunID: "r1", At: base.Add(2 * time.Minute), Kind: keeper.EventCheckFailed, Successful: 1, Failed: 1, Detail: "session check failed: boom"},
		{RunID: "r1", At: base.Add(2 * time.Minute), Kind: keeper.EventReloginOK, Successful: 1, Failed: 1, Relogins: 1},
	}
	for _, e := range events {
		require.NoError(t, s.Record(e))
	}

	got, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, keeper.EventReloginOK, got[0].Kind, "newest first")
	require.Equal(t, uint64(1), got[0].Relogins)
	require.Equal(t, "session check failed: boom", got[1].Detail)
	require.True(t, got[3].At.Equal(base))

	limited, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, keeper.EventCheckFailed, limited[1].Kind)
}

func TestReopenKeepsEvents(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Record(keeper.Event{RunID: "r1", At: time.Now(), Kind: keeper.EventStopped}))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	got, err := again.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, keeper.EventStopped, got[0].Kind)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
