package ui

import (
	"context"

	"lacsverts/internal/api"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Page is one routable view. A page is built fresh for every mount.
type Page interface {
	// Init starts the page's fetches. ctx is cancelled when the page unmounts.
	Init(ctx context.Context) tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Capturing reports whether the page consumes plain keystrokes (text
	// entry, file picking), in which case global shortcuts are suspended.
	Capturing() bool
}

// Backend is the subset of the API client the pages use.
type Backend interface {
	Lakes(ctx context.Context) ([]types.Lake, error)
	LakeReports(ctx context.Context, lakeID string) ([]types.Report, error)
	LoadReportsBoard(ctx context.Context, token string) (api.ReportsBoard, error)
	CreateReport(ctx context.Context, token string, report types.NewReport) (*types.Report, error)
	Awareness(ctx context.Context) ([]types.AwarenessPost, error)
}

// Authenticator runs the login flow for the profile page.
type Authenticator interface {
	// Login drives the identity provider redirect and waits for the callback.
	Login(ctx context.Context) (*types.Profile, error)
	// CompleteURL finishes a login from a pasted callback URL.
	CompleteURL(ctx context.Context, callbackURL string) (*types.Profile, error)
}

// Deps is everything a page is constructed with. The session is an explicit
// snapshot; pages are rebuilt when it changes.
type Deps struct {
	Styles  Styles
	Backend Backend
	Auth    Authenticator
	Session session.Session
}

// NavigateMsg asks the router to mount another route.
type NavigateMsg struct {
	Path string
}

// LoggedInMsg reports a committed login.
type LoggedInMsg struct {
	Profile *types.Profile
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}
