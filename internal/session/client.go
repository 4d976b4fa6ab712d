// internal/session/client.go
package session

import "context"

// Client abstracts the remote service the keeper holds a session against.
// Only the keeper loop calls into a Client once keeping has started.
type Client interface {
	// Login authenticates and returns the resulting credential.
	Login(ctx context.Context) (Credential, error)

	// Probe performs a lightweight authenticated call.
	// false means the session is no longer valid.
	Probe(ctx context.Context) (bool, error)

	// Credential returns the credential the client currently holds.
	Credential() Credential
}

// Settings is everything a Factory may use to build a client.
// Either the username/password pair or Credential (or both) are set.
type Settings struct {
	Username   string
	Password   string
	Credential Credential
}

// HasPassword reports whether a login is possible.
func (s Settings) HasPassword() bool {
	return s.Username != "" && s.Password != ""
}

// Factory builds clients from settings.
type Factory interface {
	NewClient(s Settings) (Client, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(s Settings) (Client, error)

func (f FactoryFunc) NewClient(s Settings) (Client, error) {
	return f(s)
}
