// Package session persists the opaque session token between runs and
// exposes it to the rest of the client as an explicit Session value.
package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Key is the fixed name the token is persisted under.
const Key = "sessionToken"

// Store persists a single session token.
type Store interface {
	// Load returns the persisted token, or ok=false when none is stored.
	Load() (token string, ok bool, err error)
	Save(token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
}

// ErrEmptyToken is returned when saving an empty token.
var ErrEmptyToken = errors.New("session token is empty")

// Session is an immutable snapshot of the authentication state.
// Views receive it at construction and never read the Store themselves.
type Session struct {
	token string
}

// New returns a session for token. An empty token is anonymous.
func New(token string) Session {
	return Session{token: strings.TrimSpace(token)}
}

// Anonymous is the session of a logged-out user.
func Anonymous() Session { return Session{} }

// Token returns the opaque token.
func (s Session) Token() string { return s.token }

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.token != "" }

// Current loads the store into a Session.
func Current(store Store) (Session, error) {
	token, ok, err := store.Load()
	if err != nil {
		return Anonymous(), err
	}
	if !ok {
		return Anonymous(), nil
	}
	return New(token), nil
}

// Open returns the store for a configured backend.
// The caller closes the result when it implements io.Closer.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "file", "":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// Close closes the store if it holds resources.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
