package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lacsverts/internal/api"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var errBackendDown = errors.New("backend down")

// fakeBackend serves canned data and counts calls.
type fakeBackend struct {
	mu          sync.Mutex
	lakes       []types.Lake
	posts       []types.AwarenessPost
	lakeReports map[string][]types.Report
	err         error
	calls       map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		lakeReports: make(map[string][]types.Report),
		calls:       make(map[string]int),
	}
}

func (f *fakeBackend) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Lakes(context.Context) ([]types.Lake, error) {
	if err := f.record("lakes"); err != nil {
		return nil, err
	}
	return f.lakes, nil
}

func (f *fakeBackend) LakeReports(_ context.Context, lakeID string) ([]types.Report, error) {
	if err := f.record("lake_reports"); err != nil {
		return nil, err
	}
	return f.lakeReports[lakeID], nil
}

func (f *fakeBackend) LoadReportsBoard(context.Context, string) (api.ReportsBoard, error) {
	if err := f.record("board"); err != nil {
		return api.ReportsBoard{}, err
	}
	return api.ReportsBoard{Lakes: f.lakes}, nil
}

func (f *fakeBackend) CreateReport(_ context.Context, _ string, r types.NewReport) (*types.Report, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	return &types.Report{ID: "r1", LakeID: r.LakeID, Description: r.Description}, nil
}

func (f *fakeBackend) Awareness(context.Context) ([]types.AwarenessPost, error) {
	if err := f.record("awareness"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

// fakeAuth returns a fixed outcome for both login paths.
type fakeAuth struct {
	profile *types.Profile
	err     error
	pasted  []string
}

func (a *fakeAuth) Login(ctx context.Context) (*types.Profile, error) {
	return a.profile, a.err
}

func (a *fakeAuth) CompleteURL(_ context.Context, callbackURL string) (*types.Profile, error) {
	a.pasted = append(a.pasted, callbackURL)
	return a.profile, a.err
}

func testDeps(b Backend, sess session.Session) Deps {
	return Deps{
		Styles:  NewStyles(LightTheme()),
		Backend: b,
		Session: sess,
	}
}

// drive runs cmd to completion the way the bubbletea runtime would, feeding
// every produced message back into p. Spinner ticks are dropped so the loop
// terminates. It returns the messages the page produced.
func drive(t *testing.T, p Page, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	var run func(cmd tea.Cmd, depth int)
	run = func(cmd tea.Cmd, depth int) {
		if cmd == nil || depth > 10 {
			return
		}
		switch msg := cmd().(type) {
		case nil:
		case spinner.TickMsg:
		case tea.BatchMsg:
			for _, c := range msg {
				run(c, depth+1)
			}
		default:
			out = append(out, msg)
			_, next := p.Update(msg)
			run(next, depth+1)
		}
	}
	run(cmd, 0)
	return out
}

func alertsIn(msgs []tea.Msg) []AlertMsg {
	var alerts []AlertMsg
	for _, m := range msgs {
		if a, ok := m.(AlertMsg); ok {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
