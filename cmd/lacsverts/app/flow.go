package app

import (
	"context"
	"fmt"
	"time"

	"lacsverts/internal/auth"
	"lacsverts/internal/browser"
	"lacsverts/internal/types"
)

// AuthFlow runs the identity provider login for both the TUI and the CLI.
type AuthFlow struct {
	Gateway      *auth.Gateway
	CallbackAddr string
	// LoginTimeout bounds the wait for the redirect; zero waits until the
	// context is cancelled.
	LoginTimeout time.Duration
	// Browser, when set, drives a controlled browser and reads the fragment
	// from its network events instead of serving the relay page.
	Browser *browser.Login
	// Open hands the provider URL to the user. Defaults to the system browser.
	Open func(string) error
}

// Login implements ui.Authenticator.
func (f *AuthFlow) Login(ctx context.Context) (*types.Profile, error) {
	if f.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.LoginTimeout)
		defer cancel()
	}

	if f.Browser != nil {
		callback := "http://" + f.CallbackAddr + "/profile"
		loginURL, err := f.Gateway.LoginURL(callback)
		if err != nil {
			return nil, err
		}
		sessionID, err := f.Browser.Capture(ctx, loginURL, callback)
		if err != nil {
			return nil, fmt.Errorf("browser login: %w", err)
		}
		return f.Gateway.Complete(ctx, sessionID)
	}

	open := f.Open
	if open == nil {
		open = auth.OpenBrowser
	}
	return f.Gateway.Login(ctx, auth.NewCallbackServer(f.CallbackAddr), open)
}

// CompleteURL implements ui.Authenticator.
func (f *AuthFlow) CompleteURL(ctx context.Context, callbackURL string) (*types.Profile, error) {
	return f.Gateway.CompleteURL(ctx, callbackURL)
}
