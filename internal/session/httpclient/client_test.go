// internal/session/httpclient/client_test.go
package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/session-keeper/internal/session"
)

// fakeSite issues a "sid" cookie on login and accepts it on /ping
// until expire() is called.
type fakeSite struct {
	mu    sync.Mutex
	valid map[string]bool
	next  int
}

func newFakeSite() *fakeSite {
	return &fakeSite{valid: map[string]bool{}}
}

func (f *fakeSite) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = map[string]bool{}
}

func (f *fakeSite) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.FormValue("user") != "alice" || r.FormValue("pass") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.next++
		sid := "sid-" + string(rune('a'+f.next))
		f.valid[sid] = true
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "sid", Value: sid, Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("sid")
		f.mu.Lock()
		ok := err == nil && f.valid[ck.Value]
		f.mu.Unlock()
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return mux
}

func testConfig(base string) Config {
	return Config{
		LoginURL:      base + "/login",
		ProbeURL:      base + "/ping",
		UsernameField: "user",
		PasswordField: "pass",
	}
}

func TestLoginThenProbe(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site.handler())
	defer srv.Close()

	c, err := New(testConfig(srv.URL), session.Settings{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := c.Probe(ctx)
	require.NoError(t, err)
	require.False(t, ok, "probe before login should report invalid session")

	cred, err := c.Login(ctx)
	require.NoError(t, err)
	require.Contains(t, cred, "sid")

	ok, err = c.Probe(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	site.expire()

	ok, err = c.Probe(ctx)
	require.NoError(t, err)
	require.False(t, ok, "probe after expiry should report invalid session")
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(newFakeSite().handler())
	defer srv.Close()

	c, err := New(testConfig(srv.URL), session.Settings{Username: "alice", Password: "wrong"})
	require.NoError(t, err)

	_, err = c.Login(context.Background())
	require.Error(t, err)
}

func TestLoginWithoutPassword(t *testing.T) {
	c, err := New(testConfig("http://127.0.0.1:1"), session.Settings{})
	require.NoError(t, err)

	_, err = c.Login(context.Background())
	require.Error(t, err)
}

func TestSeededCredentialIsSent(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site.handler())
	defer srv.Close()

	first, err := New(testConfig(srv.URL), session.Settings{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	cred, err := first.Login(context.Background())
	require.NoError(t, err)

	// A second client built only from the captured cookies shares the session.
	second, err := New(testConfig(srv.URL), session.Settings{Credential: cred})
	require.NoError(t, err)
	require.True(t, second.Credential().Equal(cred))

	ok, err := second.Probe(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProbeServerError(t *testing.T) {
	srv := httptest.NewServer(newFakeSite().handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ProbeURL = srv.URL + "/broken"

	c, err := New(cfg, session.Settings{})
	require.NoError(t, err)

	_, err = c.Probe(context.Background())
	require.Error(t, err)
}

func TestNewRequiresProbeURL(t *testing.T) {
	_, err := New(Config{}, session.Settings{})
	require.Error(t, err)
}

func TestFactory(t *testing.T) {
	f := NewFactory(testConfig("http://127.0.0.1:1"))
	c, err := f.NewClient(session.Settings{Username: "u", Password: "p"})
	require.NoError(t, err)
	require.NotNil(t, c)
}
