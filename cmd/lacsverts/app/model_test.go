package app

import (
	"context"
	"sync"
	"testing"

	"lacsverts/cmd/lacsverts/ui"
	"lacsverts/internal/api"
	"lacsverts/internal/api/apitest"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ctxBackend answers lake reads with the error of its context, so a fetch
// from a torn-down page fails the way a cancelled HTTP request does.
type ctxBackend struct {
	mu    sync.Mutex
	lakes []types.Lake
	calls int
}

func (b *ctxBackend) Lakes(ctx context.Context) ([]types.Lake, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.lakes, nil
}

func (b *ctxBackend) LakeReports(context.Context, string) ([]types.Report, error) { return nil, nil }

func (b *ctxBackend) LoadReportsBoard(context.Context, string) (api.ReportsBoard, error) {
	return api.ReportsBoard{Lakes: b.lakes}, nil
}

func (b *ctxBackend) CreateReport(context.Context, string, types.NewReport) (*types.Report, error) {
	return &types.Report{ID: "r1"}, nil
}

func (b *ctxBackend) Awareness(context.Context) ([]types.AwarenessPost, error) { return nil, nil }

func newTestModel(t *testing.T, store session.Store, start string) (*Model, *ctxBackend) {
	t.Helper()
	b := &ctxBackend{lakes: apitest.SampleLakes()}
	m := New(context.Background(), Options{
		Styles:    ui.NewStyles(ui.LightTheme()),
		Backend:   b,
		Store:     store,
		StartPath: start,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return m, b
}

// collect runs cmd and returns the leaf messages, skipping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case mountMsg:
		if _, ok := msg.msg.(spinner.TickMsg); ok {
			return nil
		}
		return []tea.Msg{msg}
	default:
		return []tea.Msg{msg}
	}
}

// deliver feeds msgs to m, running follow-up commands to completion.
func deliver(m *Model, msgs []tea.Msg) {
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		deliver(m, collect(cmd))
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, s string) {
	_, cmd := m.Update(key(s))
	deliver(m, collect(cmd))
}

func TestResolve(t *testing.T) {
	r, err := Resolve("/lakes/")
	require.NoError(t, err)
	assert.Equal(t, "/lakes", r.Path)

	r, err = Resolve("/profile#session_id=xyz")
	require.NoError(t, err)
	assert.Equal(t, "/profile", r.Path)

	r, err = Resolve("/admin")
	assert.ErrorIs(t, err, ErrUnknownRoute)
	assert.Equal(t, HomePath, r.Path)
}

func TestNavRoutes_HidesReportsWhenSignedOut(t *testing.T) {
	paths := func(rs []Route) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Path)
		}
		return out
	}
	assert.Equal(t, []string{"/", "/lakes", "/map", "/awareness"}, paths(NavRoutes(session.Anonymous())))
	assert.Equal(t, []string{"/", "/lakes", "/reports", "/map", "/awareness"}, paths(NavRoutes(session.New("tok"))))
}

func TestModel_InitMountsStartRoute(t *testing.T) {
	m, b := newTestModel(t, session.NewMemoryStore(), "/lakes")
	deliver(m, collect(m.Init()))

	assert.Equal(t, "/lakes", m.Route().Path)
	lakes, ok := m.Page().(*ui.LakesPage)
	require.True(t, ok)
	assert.Equal(t, 3, lakes.Entries())
	assert.Equal(t, 1, b.calls)
}

func TestModel_StaleResultIsDropped(t *testing.T) {
	m, b := newTestModel(t, session.NewMemoryStore(), "/lakes")
	pending := m.Init() // lakes fetch, not yet run

	press(m, "5")
	require.Equal(t, "/awareness", m.Route().Path)

	msgs := collect(pending)
	require.NotEmpty(t, msgs)
	for _, msg := range msgs {
		mm, ok := msg.(mountMsg)
		require.True(t, ok)
		assert.Less(t, mm.gen, m.gen)
	}
	deliver(m, msgs)

	assert.Equal(t, 1, b.calls)
	assert.Equal(t, "/awareness", m.Route().Path)
	assert.IsType(t, &ui.AwarenessPage{}, m.Page())
	assert.Nil(t, m.Alert())
}

func TestModel_ReportsGateIsRenderTime(t *testing.T) {
	m, _ := newTestModel(t, session.NewMemoryStore(), "/")
	deliver(m, collect(m.Init()))

	press(m, "3")
	assert.Equal(t, "/reports", m.Route().Path, "navigation always succeeds")
	assert.Contains(t, m.View(), ui.ReportLoginPrompt)
	assert.NotContains(t, m.navBar(), "Signalements")
}

func TestModel_LoggedInReloadsSessionAndGoesHome(t *testing.T) {
	store := session.NewMemoryStore()
	m, _ := newTestModel(t, store, "/profile")
	m.Init()
	require.False(t, m.Session().Authenticated())

	require.NoError(t, store.Save("xyz"))
	deliver(m, []tea.Msg{mountMsg{gen: m.gen, msg: ui.LoggedInMsg{Profile: &types.Profile{Name: "Awa"}}}})

	assert.Equal(t, "xyz", m.Session().Token())
	assert.Equal(t, HomePath, m.Route().Path)
	require.NotNil(t, m.Alert())
	assert.Equal(t, ui.AlertSuccess, m.Alert().Kind())
	assert.Contains(t, m.navBar(), "Signalements")
}

func TestModel_AlertBlocksNavigation(t *testing.T) {
	m, _ := newTestModel(t, session.NewMemoryStore(), "/")
	m.Init()

	deliver(m, []tea.Msg{mountMsg{gen: m.gen, msg: ui.AlertMsg{Kind: ui.AlertError, Message: "boom"}}})
	require.NotNil(t, m.Alert())

	press(m, "2")
	assert.Equal(t, HomePath, m.Route().Path)
	assert.NotNil(t, m.Alert())

	press(m, "enter")
	assert.Nil(t, m.Alert())

	press(m, "2")
	assert.Equal(t, "/lakes", m.Route().Path)
}

func TestModel_StaleAlertIsDropped(t *testing.T) {
	m, _ := newTestModel(t, session.NewMemoryStore(), "/")
	m.Init()
	old := m.gen
	press(m, "2")

	deliver(m, []tea.Msg{mountMsg{gen: old, msg: ui.AlertMsg{Kind: ui.AlertError, Message: "late"}}})
	assert.Nil(t, m.Alert())
}

func TestModel_Logout(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save("tok"))
	m, _ := newTestModel(t, store, "/reports")
	m.Init()
	require.True(t, m.Session().Authenticated())

	press(m, "O")

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.Session().Authenticated())
	assert.Equal(t, "/reports", m.Route().Path)
	assert.Contains(t, m.page.View(), ui.ReportLoginPrompt)
}

func TestModel_TabCyclesNavRoutes(t *testing.T) {
	m, _ := newTestModel(t, session.NewMemoryStore(), "/")
	m.Init()

	press(m, "tab")
	assert.Equal(t, "/lakes", m.Route().Path)
	press(m, "tab")
	assert.Equal(t, "/map", m.Route().Path, "reports is skipped while signed out")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	deliver(m, collect(cmd))
	assert.Equal(t, "/lakes", m.Route().Path)
}

func TestModel_ExternalSessionChange(t *testing.T) {
	store := session.NewMemoryStore()
	events := make(chan struct{}, 1)
	m := New(context.Background(), Options{
		Styles:        ui.DefaultStyles(),
		Backend:       &ctxBackend{},
		Store:         store,
		SessionEvents: events,
	})
	m.mount(m.route)

	require.NoError(t, store.Save("tok"))
	events <- struct{}{}
	_, cmd := m.Update(collect(m.waitForSession())[0])
	require.NotNil(t, cmd)

	assert.True(t, m.Session().Authenticated())
}

// newWatchedModel builds a model whose session watcher has already stopped,
// so waitForSession resolves at once instead of blocking the test.
func newWatchedModel(t *testing.T, store session.Store, start string) *Model {
	t.Helper()
	events := make(chan struct{})
	close(events)
	m := New(context.Background(), Options{
		Styles:        ui.DefaultStyles(),
		Backend:       &ctxBackend{lakes: apitest.SampleLakes()},
		Store:         store,
		StartPath:     start,
		SessionEvents: events,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return m
}

func TestModel_OwnLoginWhileWatching(t *testing.T) {
	t.Run("file event before login result", func(t *testing.T) {
		store := session.NewMemoryStore()
		m := newWatchedModel(t, store, ProfilePath)
		m.Init()
		loginGen := m.gen

		require.NoError(t, store.Save("xyz"))
		deliver(m, []tea.Msg{sessionChangedMsg{}})

		assert.True(t, m.Session().Authenticated())
		assert.Equal(t, HomePath, m.Route().Path)
		assert.IsType(t, &ui.HomePage{}, m.page)
		require.NotNil(t, m.Alert())
		assert.Equal(t, ui.AlertSuccess, m.Alert().Kind())

		// The login page was unmounted, so its result is stale.
		gen := m.gen
		deliver(m, []tea.Msg{mountMsg{gen: loginGen, msg: ui.LoggedInMsg{Profile: &types.Profile{Name: "Awa"}}}})
		assert.Equal(t, gen, m.gen)
		assert.Equal(t, HomePath, m.Route().Path)
	})

	t.Run("login result before file event", func(t *testing.T) {
		store := session.NewMemoryStore()
		m := newWatchedModel(t, store, ProfilePath)
		m.Init()

		require.NoError(t, store.Save("xyz"))
		deliver(m, []tea.Msg{mountMsg{gen: m.gen, msg: ui.LoggedInMsg{Profile: &types.Profile{Name: "Awa"}}}})
		require.Equal(t, HomePath, m.Route().Path)
		gen := m.gen

		deliver(m, []tea.Msg{sessionChangedMsg{}})
		assert.Equal(t, gen, m.gen, "an unchanged session does not remount")
		assert.Equal(t, HomePath, m.Route().Path)
		require.NotNil(t, m.Alert())
		assert.Equal(t, ui.AlertSuccess, m.Alert().Kind())
	})
}

func TestModel_ProfileKeyIgnoredWhenSignedIn(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save("tok"))
	m, _ := newTestModel(t, store, "/lakes")
	m.Init()
	gen := m.gen

	press(m, "L")
	assert.Equal(t, "/lakes", m.Route().Path)
	assert.Equal(t, gen, m.gen)

	require.NoError(t, store.Clear())
	m.reloadSession()
	press(m, "L")
	assert.Equal(t, ProfilePath, m.Route().Path)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, session.NewMemoryStore(), "/")
	m.Init()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
