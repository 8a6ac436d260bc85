package ui

import (
	"context"
	"fmt"
	"strings"

	"lacsverts/internal/logging"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type lakesLoadedMsg struct {
	lakes []types.Lake
	err   error
}

// fetchLakes loads the lake list. Failures degrade to an empty list.
func fetchLakes(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		lakes, err := b.Lakes(ctx)
		if err != nil {
			logging.APIWarn("failed to fetch lakes", zap.Error(err))
			return lakesLoadedMsg{err: err}
		}
		return lakesLoadedMsg{lakes: lakes}
	}
}

// LakesPage lists every lake with its status.
type LakesPage struct {
	deps     Deps
	viewport viewport.Model
	spinner  spinner.Model
	lakes    []types.Lake
	loading  bool
	width    int
	height   int
}

// NewLakesPage creates the lake status page.
func NewLakesPage(deps Deps) *LakesPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner
	return &LakesPage{
		deps:     deps,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

func (p *LakesPage) Init(ctx context.Context) tea.Cmd {
	p.loading = true
	return tea.Batch(p.spinner.Tick, fetchLakes(ctx, p.deps.Backend))
}

func (p *LakesPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.viewport.Width = w
	p.viewport.Height = max(h-2, 1) // title line
	p.refresh()
}

func (p *LakesPage) Capturing() bool { return false }

// Entries returns the number of lakes rendered.
func (p *LakesPage) Entries() int { return len(p.lakes) }

func (p *LakesPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case lakesLoadedMsg:
		p.loading = false
		p.lakes = msg.lakes
		p.refresh()
		return p, nil
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LakesPage) refresh() {
	s := p.deps.Styles
	if len(p.lakes) == 0 {
		p.viewport.SetContent(s.Muted.Render("Aucun lac à afficher."))
		return
	}

	width := max(p.width-2, 20)
	var sb strings.Builder
	for _, l := range p.lakes {
		var card strings.Builder
		card.WriteString(fmt.Sprintf("%s %s", l.Status.Icon(), s.Bold.Render(l.Name)))
		if l.Region != "" {
			card.WriteString(s.Muted.Render("  " + l.Region))
		}
		card.WriteString("\n")
		card.WriteString("Statut : " + s.StatusStyle(l.Status).Render(l.Status.Label()))
		if l.Description != "" {
			card.WriteString("\n" + s.Body.Render(l.Description))
		}
		card.WriteString("\n" + s.Muted.Render(fmt.Sprintf("Coordonnées : %s · Mis à jour : %s",
			FormatCoordinates(l.Latitude, l.Longitude), l.UpdatedAt.Display())))

		sb.WriteString(s.Card.Width(width).Render(card.String()))
		sb.WriteString("\n")
	}
	p.viewport.SetContent(sb.String())
}

func (p *LakesPage) View() string {
	s := p.deps.Styles
	header := s.Title.MarginBottom(0).Render("État des lacs")
	if p.loading {
		return header + "\n" + p.spinner.View() + " Chargement des lacs..."
	}
	return header + "\n" + p.viewport.View()
}
