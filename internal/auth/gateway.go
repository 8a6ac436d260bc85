// Package auth drives the login flow against the external identity provider:
// redirect, session identifier in the URL fragment, exchange for a profile.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"lacsverts/internal/logging"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	"go.uber.org/zap"
)

// ErrNoSessionID is returned when a callback URL carries no session_id.
var ErrNoSessionID = errors.New("no session_id in callback")

// ProfileExchanger validates a session identifier with the backend.
type ProfileExchanger interface {
	Profile(ctx context.Context, sessionID string) (*types.Profile, error)
}

// Gateway ties the identity provider, the backend exchange and the session
// store together.
type Gateway struct {
	providerURL string
	exchanger   ProfileExchanger
	store       session.Store
}

// NewGateway creates a gateway for the provider at providerURL.
func NewGateway(providerURL string, exchanger ProfileExchanger, store session.Store) *Gateway {
	return &Gateway{
		providerURL: providerURL,
		exchanger:   exchanger,
		store:       store,
	}
}

// LoginURL returns the provider URL that redirects back to callbackURL:
// https://<provider>/?redirect=<urlencoded callbackURL>.
func (g *Gateway) LoginURL(callbackURL string) (string, error) {
	u, err := url.Parse(g.providerURL)
	if err != nil {
		return "", fmt.Errorf("invalid provider URL: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	q.Set("redirect", callbackURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseFragment extracts session_id from a callback URL fragment. It accepts
// a full URL, "#session_id=...", or "session_id=...".
func ParseFragment(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	var fragment string
	switch {
	case strings.Contains(raw, "#"):
		fragment = raw[strings.Index(raw, "#")+1:]
	case strings.Contains(raw, "://"):
		return "", ErrNoSessionID
	default:
		fragment = raw
	}

	values, err := url.ParseQuery(fragment)
	if err != nil {
		return "", fmt.Errorf("invalid callback fragment: %w", err)
	}
	id := strings.TrimSpace(values.Get("session_id"))
	if id == "" {
		return "", ErrNoSessionID
	}
	return id, nil
}

// Complete exchanges sessionID for a profile (exactly one backend call) and,
// only on success, commits it to the store.
func (g *Gateway) Complete(ctx context.Context, sessionID string) (*types.Profile, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSessionID
	}

	profile, err := g.exchanger.Profile(ctx, sessionID)
	if err != nil {
		logging.AuthError("profile exchange failed", zap.Error(err))
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := g.store.Save(sessionID); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	logging.Auth("login completed", zap.String("user_id", profile.ID))
	return profile, nil
}

// CompleteURL parses the callback URL and completes the login.
func (g *Gateway) CompleteURL(ctx context.Context, callbackURL string) (*types.Profile, error) {
	id, err := ParseFragment(callbackURL)
	if err != nil {
		return nil, err
	}
	return g.Complete(ctx, id)
}

// Logout clears the persisted session.
func (g *Gateway) Logout() error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logging.Auth("logged out")
	return nil
}

// Login runs the whole interactive flow: start the callback server, hand the
// provider URL to open, wait for the redirect, exchange the identifier.
func (g *Gateway) Login(ctx context.Context, srv *CallbackServer, open func(string) error) (*types.Profile, error) {
	if err := srv.Start(); err != nil {
		return nil, err
	}

	loginURL, err := g.LoginURL(srv.CallbackURL())
	if err != nil {
		srv.Close()
		return nil, err
	}
	logging.Auth("waiting for identity provider", zap.String("callback", srv.CallbackURL()))

	if err := open(loginURL); err != nil {
		// Not fatal: the user can still paste the URL.
		logging.Get(logging.CategoryAuth).Warn("could not open browser", zap.Error(err))
	}

	sessionID, err := srv.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return g.Complete(ctx, sessionID)
}
