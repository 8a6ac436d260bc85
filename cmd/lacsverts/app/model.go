// Package app holds the root bubbletea model: the route table, page
// mounting, the alert overlay and the session lifecycle.
package app

import (
	"context"
	"errors"
	"strings"

	"lacsverts/cmd/lacsverts/ui"
	"lacsverts/internal/logging"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// mountMsg tags a page message with the mount that produced it. Messages
// from an earlier mount are dropped, so a page torn down mid-fetch never
// sees its stale result.
type mountMsg struct {
	gen uint64
	msg tea.Msg
}

// sessionChangedMsg reports a change to the persisted session made outside
// this process (for example `lacsverts logout` in another terminal).
type sessionChangedMsg struct{}

// Options configures the root model.
type Options struct {
	Styles  ui.Styles
	Backend ui.Backend
	Auth    ui.Authenticator
	Store   session.Store
	// Logout clears the persisted session. Defaults to Store.Clear.
	Logout func() error
	// SessionEvents, when set, signals external session changes.
	SessionEvents <-chan struct{}
	// StartPath is the first route mounted.
	StartPath string
}

// Model is the root model. It owns exactly one mounted page at a time.
type Model struct {
	opts    Options
	baseCtx context.Context
	sess    session.Session

	route  Route
	page   ui.Page
	gen    uint64
	cancel context.CancelFunc

	alert *ui.Alert

	width    int
	height   int
	quitting bool
}

// New creates the root model. ctx bounds every page fetch.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logout == nil && opts.Store != nil {
		opts.Logout = opts.Store.Clear
	}
	m := &Model{opts: opts, baseCtx: ctx}
	m.reloadSession()

	route, err := Resolve(opts.StartPath)
	if err != nil && opts.StartPath != "" {
		logging.Get(logging.CategoryUI).Warn("unknown start route", zap.String("path", opts.StartPath))
	}
	m.route = route
	return m
}

// Session returns the session snapshot pages are built with.
func (m *Model) Session() session.Session { return m.sess }

// Route returns the mounted route.
func (m *Model) Route() Route { return m.route }

// Page returns the mounted page.
func (m *Model) Page() ui.Page { return m.page }

// Alert returns the alert being shown, if any.
func (m *Model) Alert() *ui.Alert { return m.alert }

func (m *Model) deps() ui.Deps {
	return ui.Deps{
		Styles:  m.opts.Styles,
		Backend: m.opts.Backend,
		Auth:    m.opts.Auth,
		Session: m.sess,
	}
}

func (m *Model) reloadSession() bool {
	if m.opts.Store == nil {
		return false
	}
	sess, err := session.Current(m.opts.Store)
	if err != nil {
		logging.Get(logging.CategorySession).Warn("failed to load session", zap.Error(err))
		sess = session.Anonymous()
	}
	changed := sess != m.sess
	m.sess = sess
	return changed
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.mount(m.route), m.waitForSession())
}

// mount cancels the current page's context and builds a fresh page.
func (m *Model) mount(r Route) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.cancel = cancel
	m.gen++
	m.route = r
	m.page = r.build(m.deps())
	if m.width > 0 {
		m.page.SetSize(m.contentSize())
	}
	logging.UIDebug("mount", zap.String("path", r.Path), zap.Uint64("gen", m.gen))
	return tag(m.gen, m.page.Init(ctx))
}

func (m *Model) navigate(path string) tea.Cmd {
	r, err := Resolve(path)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("navigation to unknown route", zap.String("path", path))
	}
	return m.mount(r)
}

// tag wraps every message cmd produces with gen. Batches are unwrapped so
// each inner command is tagged too.
func tag(gen uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			cmds := make([]tea.Cmd, len(msg))
			for i, c := range msg {
				cmds[i] = tag(gen, c)
			}
			return tea.BatchMsg(cmds)
		default:
			return mountMsg{gen: gen, msg: msg}
		}
	}
}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.opts.SessionEvents
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.page != nil {
			m.page.SetSize(m.contentSize())
		}
		return m, nil

	case mountMsg:
		if msg.gen != m.gen {
			logging.UIDebug("dropped stale page message", zap.Uint64("gen", msg.gen), zap.Uint64("current", m.gen))
			return m, nil
		}
		return m.handlePageMsg(msg.msg)

	case sessionChangedMsg:
		if !m.reloadSession() {
			return m, m.waitForSession()
		}
		logging.Session("session changed on disk", zap.Bool("authenticated", m.sess.Authenticated()))
		if m.route.Path == ProfilePath && m.sess.Authenticated() {
			// The login completed, here or elsewhere. Remounting the profile
			// page would start another login.
			m.alert = welcomeAlert(nil, m.opts.Styles)
			return m, tea.Batch(m.navigate(HomePath), m.waitForSession())
		}
		return m, tea.Batch(m.mount(m.route), m.waitForSession())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// handlePageMsg handles a current-mount message: app-level requests are
// served here, everything else goes back to the page.
func (m *Model) handlePageMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.AlertMsg:
		m.alert = ui.NewAlert(msg, m.opts.Styles)
		return m, nil
	case ui.NavigateMsg:
		return m, m.navigate(msg.Path)
	case ui.LoggedInMsg:
		m.reloadSession()
		if !m.sess.Authenticated() {
			logging.Get(logging.CategorySession).Warn("login reported but no session persisted")
		}
		m.alert = welcomeAlert(msg.Profile, m.opts.Styles)
		return m, m.navigate(HomePath)
	}
	return m.forward(msg)
}

func welcomeAlert(profile *types.Profile, styles ui.Styles) *ui.Alert {
	message := "Bienvenue !"
	if profile != nil && profile.Name != "" {
		message = "Bienvenue, " + profile.Name + " !"
	}
	return ui.NewAlert(ui.AlertMsg{Kind: ui.AlertSuccess, Message: message}, styles)
}

func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.page == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, tag(m.gen, cmd)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}

	if m.alert != nil {
		if m.alert.HandleKey(msg) {
			m.alert = nil
		}
		return m, nil
	}

	if m.page != nil && m.page.Capturing() {
		return m.forward(msg)
	}

	key := msg.String()
	switch key {
	case "q":
		return m, m.quit()
	case "tab", "shift+tab":
		if m.route.Path == "/reports" && m.sess.Authenticated() {
			// The report form uses tab to move between fields.
			return m.forward(msg)
		}
		return m, m.cycle(key == "tab")
	case "r":
		return m, m.mount(m.route)
	case "O":
		return m, m.logout()
	}
	if r, ok := ByKey(key); ok {
		if r.Path == ProfilePath && m.sess.Authenticated() {
			return m, nil
		}
		return m, m.mount(r)
	}
	return m.forward(msg)
}

func (m *Model) cycle(forward bool) tea.Cmd {
	nav := NavRoutes(m.sess)
	idx := -1
	for i, r := range nav {
		if r.Path == m.route.Path {
			idx = i
		}
	}
	switch {
	case forward:
		idx = (idx + 1) % len(nav)
	case idx <= 0:
		idx = len(nav) - 1
	default:
		idx--
	}
	return m.mount(nav[idx])
}

func (m *Model) logout() tea.Cmd {
	if !m.sess.Authenticated() {
		return nil
	}
	if m.opts.Logout != nil {
		if err := m.opts.Logout(); err != nil {
			m.alert = ui.NewAlert(ui.AlertMsg{Kind: ui.AlertError, Message: "Erreur lors de la déconnexion", Detail: err.Error()}, m.opts.Styles)
			return nil
		}
	}
	m.sess = session.Anonymous()
	logging.Session("logged out from the terminal UI")
	m.alert = ui.NewAlert(ui.AlertMsg{Kind: ui.AlertInfo, Message: "Vous êtes déconnecté."}, m.opts.Styles)
	return m.mount(m.route)
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

func (m *Model) contentSize() (int, int) {
	l := ui.NewLayoutConfig(m.width, m.height)
	return l.PageWidth(), l.PageHeight()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.opts.Styles

	var body string
	if m.alert != nil {
		w, h := m.contentSize()
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			m.alert.View(min(max(w-10, 30), 70)))
	} else if m.page != nil {
		body = m.page.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.navBar(),
		s.RenderDivider(max(m.width, 20)),
		s.Content.Render(body),
		m.footer(),
	)
}

func (m *Model) navBar() string {
	s := m.opts.Styles
	items := []string{s.Bold.Render("🌿 Lacs Verts")}
	for _, r := range NavRoutes(m.sess) {
		label := r.Key + " " + r.Title
		if r.Path == m.route.Path {
			items = append(items, s.NavActive.Render(label))
		} else {
			items = append(items, s.NavItem.Render(label))
		}
	}
	if m.sess.Authenticated() {
		items = append(items, s.Muted.Render("O Déconnexion"))
	} else {
		items = append(items, s.NavItem.Render("L Connexion"))
	}
	return s.Header.Render(lipgloss.JoinHorizontal(lipgloss.Center, items...))
}

func (m *Model) footer() string {
	hints := []string{"tab: page suivante", "r: actualiser", "q: quitter"}
	if m.alert != nil {
		hints = []string{"entrée: fermer"}
	} else if m.page != nil && m.page.Capturing() {
		hints = []string{"esc: terminer la saisie", "ctrl+c: quitter"}
	}
	return m.opts.Styles.Footer.Render(strings.Join(hints, " · "))
}

// ErrNoBackend is returned when the model is run without an API client.
var ErrNoBackend = errors.New("no backend configured")

// Run starts the terminal UI and blocks until it exits.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Backend == nil {
		return ErrNoBackend
	}
	m := New(ctx, opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
