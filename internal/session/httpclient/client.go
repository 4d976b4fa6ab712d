// internal/session/httpclient/client.go
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/tamzrod/session-keeper/internal/session"
)

// Config describes a cookie-based web login.
type Config struct {
	LoginURL      string
	ProbeURL      string
	UsernameField string
	PasswordField string
	ExtraFields   map[string]string // posted with every login
	Timeout       time.Duration
}

// Client implements session.Client over net/http with a cookie jar.
// Redirects are never followed: a redirect on probe means "logged out".
type Client struct {
	cfg      Config
	login    *url.URL
	probe    *url.URL
	http     *http.Client
	jar      *cookiejar.Jar
	username string
	password string
}

// New creates a client. s.Credential, when set, seeds the jar.
func New(cfg Config, s session.Settings) (*Client, error) {
	if cfg.ProbeURL == "" {
		return nil, errors.New("httpclient: probe url required")
	}
	probe, err := url.Parse(cfg.ProbeURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: probe url: %w", err)
	}

	loginRaw := cfg.LoginURL
	if loginRaw == "" {
		loginRaw = cfg.ProbeURL
	}
	login, err := url.Parse(loginRaw)
	if err != nil {
		return nil, fmt.Errorf("httpclient: login url: %w", err)
	}

	if cfg.UsernameField == "" {
		cfg.UsernameField = "username"
	}
	if cfg.PasswordField == "" {
		cfg.PasswordField = "password"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:   cfg,
		login: login,
		probe: probe,
		jar:   jar,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		username: s.Username,
		password: s.Password,
	}

	if !s.Credential.Empty() {
		c.seed(s.Credential)
	}
	return c, nil
}

// NewFactory returns a session.Factory building clients for cfg.
func NewFactory(cfg Config) session.Factory {
	return session.FactoryFunc(func(s session.Settings) (session.Client, error) {
		return New(cfg, s)
	})
}

// ---- session.Client ----

func (c *Client) Login(ctx context.Context) (session.Credential, error) {
	if c.username == "" || c.password == "" {
		return nil, errors.New("httpclient: login requires username and password")
	}

	form := url.Values{}
	for k, v := range c.cfg.ExtraFields {
		form.Set(k, v)
	}
	form.Set(c.cfg.UsernameField, c.username)
	form.Set(c.cfg.PasswordField, c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.login.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("httpclient: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: login request: %w", err)
	}
	drain(resp)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpclient: login rejected: status %d", resp.StatusCode)
	}

	cred := c.Credential()
	if cred.Empty() {
		return nil, errors.New("httpclient: login returned no session cookies")
	}
	return cred, nil
}

func (c *Client) Probe(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probe.String(), nil)
	if err != nil {
		return false, fmt.Errorf("httpclient: build probe request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("httpclient: probe request: %w", err)
	}
	drain(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode >= 300 && resp.StatusCode < 400,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("httpclient: probe status %d", resp.StatusCode)
	}
}

func (c *Client) Credential() session.Credential {
	cred := session.Credential{}
	for _, u := range []*url.URL{c.login, c.probe} {
		for _, ck := range c.jar.Cookies(u) {
			cred[ck.Name] = ck.Value
		}
	}
	if cred.Empty() {
		return nil
	}
	return cred
}

// ---- helpers ----

func (c *Client) seed(cred session.Credential) {
	cookies := make([]*http.Cookie, 0, len(cred))
	for _, name := range cred.Names() {
		cookies = append(cookies, &http.Cookie{Name: name, Value: cred[name], Path: "/"})
	}
	c.jar.SetCookies(c.login, cookies)
	if c.probe.Host != c.login.Host {
		c.jar.SetCookies(c.probe, cookies)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

var _ session.Client = (*Client)(nil)
