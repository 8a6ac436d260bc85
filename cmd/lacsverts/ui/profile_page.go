package ui

import (
	"context"
	"errors"
	"strings"

	"lacsverts/internal/logging"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// AuthFailed is the alert shown when the profile exchange fails.
const AuthFailed = "Erreur d'authentification"

type authResultMsg struct {
	profile *types.Profile
	err     error
}

// ProfilePage is the auth callback view. On mount it opens the identity
// provider and waits for the redirect; a callback URL can also be pasted.
type ProfilePage struct {
	deps    Deps
	ctx     context.Context
	spinner spinner.Model
	input   textinput.Model

	waiting bool
	failed  bool
	profile *types.Profile

	width  int
	height int
}

// NewProfilePage creates the callback page.
func NewProfilePage(deps Deps) *ProfilePage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	ti := textinput.New()
	ti.Placeholder = "http://127.0.0.1:51123/profile#session_id=..."
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &ProfilePage{
		deps:    deps,
		ctx:     context.Background(),
		spinner: sp,
		input:   ti,
	}
}

func (p *ProfilePage) Init(ctx context.Context) tea.Cmd {
	p.ctx = ctx
	if p.deps.Auth == nil {
		return nil
	}
	p.waiting = true
	auth := p.deps.Auth
	return tea.Batch(p.spinner.Tick, p.input.Focus(), func() tea.Msg {
		profile, err := auth.Login(ctx)
		return authResultMsg{profile: profile, err: err}
	})
}

func (p *ProfilePage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.input.Width = max(w-8, 20)
}

// Capturing is true while the paste field has focus.
func (p *ProfilePage) Capturing() bool { return p.input.Focused() }

// CompleteURL finishes the login with a pasted callback URL.
func (p *ProfilePage) CompleteURL(raw string) tea.Cmd {
	raw = strings.TrimSpace(raw)
	if raw == "" || p.deps.Auth == nil {
		return nil
	}
	p.waiting = true
	p.failed = false
	ctx, auth := p.ctx, p.deps.Auth
	return func() tea.Msg {
		profile, err := auth.CompleteURL(ctx, raw)
		return authResultMsg{profile: profile, err: err}
	}
}

func (p *ProfilePage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return p, nil
			}
			// A pasted URL may have already succeeded while the browser
			// flow was still pending.
			if p.profile != nil {
				return p, nil
			}
			p.waiting = false
			p.failed = true
			logging.AuthError("profile exchange failed", zap.Error(msg.err))
			return p, ShowAlert(AlertError, AuthFailed, msg.err.Error())
		}
		if p.profile != nil {
			return p, nil
		}
		if msg.profile == nil {
			msg.profile = &types.Profile{}
		}
		p.waiting = false
		p.profile = msg.profile
		p.input.Blur()
		logging.Auth("login committed", zap.String("email", msg.profile.Email))
		profile := msg.profile
		return p, func() tea.Msg { return LoggedInMsg{Profile: profile} }

	case spinner.TickMsg:
		if !p.waiting {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			cmd := p.CompleteURL(p.input.Value())
			p.input.SetValue("")
			return p, cmd
		case tea.KeyEsc:
			if p.input.Focused() {
				p.input.Blur()
				return p, nil
			}
		}
		if !p.input.Focused() {
			if msg.String() == "i" {
				return p, p.input.Focus()
			}
			return p, nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *ProfilePage) View() string {
	s := p.deps.Styles
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Connexion"))
	sb.WriteString("\n")

	switch {
	case p.profile != nil:
		sb.WriteString(s.Success.Render("Connecté en tant que " + p.profile.Name))
		return sb.String()
	case p.deps.Auth == nil:
		sb.WriteString(s.Muted.Render("Authentification indisponible."))
		return sb.String()
	case p.waiting:
		sb.WriteString(p.spinner.View() + " Authentification en cours...")
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Terminez la connexion dans votre navigateur."))
	case p.failed:
		sb.WriteString(s.Error.Render(AuthFailed))
	}

	sb.WriteString("\n\n")
	sb.WriteString(s.Body.Render("Ou collez l'adresse de retour du navigateur :"))
	sb.WriteString("\n")
	sb.WriteString(s.Card.Render(p.input.View()))
	sb.WriteString("\n")
	sb.WriteString(s.Muted.Render("entrée: valider · esc: quitter le champ · i: saisir"))
	return sb.String()
}
