// Package browser drives a real browser through the identity provider and
// captures the session identifier from the redirect's URL fragment.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"lacsverts/internal/auth"
	"lacsverts/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config controls the launched browser.
type Config struct {
	// Bin is the browser executable; empty lets rod find or fetch one.
	Bin      string
	Headless bool
	// DebuggerURL connects to an already running browser instead.
	DebuggerURL string
}

// Login watches the browser's network requests for the redirect to the
// callback URL. The fragment is never sent to a server, but the DevTools
// protocol reports it alongside the request.
type Login struct {
	cfg Config
}

// NewLogin creates a browser login driver.
func NewLogin(cfg Config) *Login {
	return &Login{cfg: cfg}
}

// Capture opens loginURL and blocks until the browser requests callbackURL
// with a session_id fragment, or ctx is done.
func (l *Login) Capture(ctx context.Context, loginURL, callbackURL string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controlURL := l.cfg.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(l.cfg.Headless)
		if l.cfg.Bin != "" {
			launch = launch.Bin(l.cfg.Bin)
		}
		u, err := launch.Launch()
		if err != nil {
			return "", fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return "", fmt.Errorf("connect to browser: %w", err)
	}
	defer b.Close()

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}

	found := make(chan string, 1)
	wait := page.Context(ctx).EachEvent(func(ev *proto.NetworkRequestWillBeSent) bool {
		id, ok := MatchCallback(ev.Request.URL, ev.Request.URLFragment, callbackURL)
		if !ok {
			return false
		}
		found <- id
		return true
	})
	go wait()

	logging.Get(logging.CategoryBrowser).Info("navigating to identity provider",
		zap.String("callback", callbackURL))
	if err := page.Navigate(loginURL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	select {
	case id := <-found:
		logging.Get(logging.CategoryBrowser).Info("captured session id from redirect")
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// MatchCallback reports whether a request targets callbackURL (same scheme,
// host and path) and, if so, returns the session_id carried by fragment.
func MatchCallback(requestURL, fragment, callbackURL string) (string, bool) {
	req, err := url.Parse(requestURL)
	if err != nil {
		return "", false
	}
	cb, err := url.Parse(callbackURL)
	if err != nil {
		return "", false
	}
	if req.Scheme != cb.Scheme || req.Host != cb.Host ||
		strings.TrimRight(req.Path, "/") != strings.TrimRight(cb.Path, "/") {
		return "", false
	}

	if fragment == "" {
		fragment = req.Fragment
	}
	if fragment == "" {
		return "", false
	}
	id, err := auth.ParseFragment("#" + strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return "", false
	}
	return id, true
}
