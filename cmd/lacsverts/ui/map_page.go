package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lacsverts/internal/logging"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const selectionSettleDelay = 300 * time.Millisecond

// MapHint announces the real map.
const MapHint = "Prochaine mise à jour : carte interactive OpenStreetMap"

type selectionSettledMsg struct {
	lakeID string
}

type lakeReportsMsg struct {
	lakeID  string
	reports []types.Report
	err     error
}

// MapPage is a lake picker with a details panel, standing in for a map.
type MapPage struct {
	deps     Deps
	ctx      context.Context
	list     list.Model
	spinner  spinner.Model
	loading  bool
	lakes    []types.Lake
	selected string

	// Report counts per lake, fetched once the selection settles.
	reportCounts map[string]int
	countsFailed map[string]bool

	width  int
	height int
}

// NewMapPage creates the map page.
func NewMapPage(deps Deps) *MapPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner
	return &MapPage{
		deps:         deps,
		ctx:          context.Background(),
		list:         newLakeList(nil, "Lacs", 40, 20),
		spinner:      sp,
		reportCounts: make(map[string]int),
		countsFailed: make(map[string]bool),
	}
}

func (p *MapPage) Init(ctx context.Context) tea.Cmd {
	p.ctx = ctx
	p.loading = true
	return tea.Batch(p.spinner.Tick, fetchLakes(ctx, p.deps.Backend))
}

func (p *MapPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	left, _ := SplitPaneWidths(w)
	p.list.SetSize(left, max(h-2, 5))
}

func (p *MapPage) Capturing() bool {
	return p.list.FilterState() == list.Filtering
}

// Selected returns the lake shown in the details panel.
func (p *MapPage) Selected() (types.Lake, bool) {
	return selectedLake(p.list)
}

func (p *MapPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case lakesLoadedMsg:
		p.loading = false
		p.lakes = msg.lakes
		p.list.SetItems(lakeItems(msg.lakes))
		return p, p.selectionChanged()

	case selectionSettledMsg:
		if msg.lakeID != p.selected {
			return p, nil
		}
		return p, p.fetchLakeReports(msg.lakeID)

	case lakeReportsMsg:
		if msg.err != nil {
			p.countsFailed[msg.lakeID] = true
			return p, nil
		}
		p.reportCounts[msg.lakeID] = len(msg.reports)
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
	p.list, cmd = p.list.Update(msg)
	return p, tea.Batch(cmd, p.selectionChanged())
}

// selectionChanged schedules a report count fetch once the cursor rests.
func (p *MapPage) selectionChanged() tea.Cmd {
	lake, ok := p.Selected()
	if !ok || lake.ID == p.selected {
		return nil
	}
	p.selected = lake.ID
	if _, known := p.reportCounts[lake.ID]; known {
		return nil
	}
	id := lake.ID
	return tea.Tick(selectionSettleDelay, func(time.Time) tea.Msg {
		return selectionSettledMsg{lakeID: id}
	})
}

func (p *MapPage) fetchLakeReports(lakeID string) tea.Cmd {
	ctx, backend := p.ctx, p.deps.Backend
	return func() tea.Msg {
		reports, err := backend.LakeReports(ctx, lakeID)
		if err != nil {
			logging.APIWarn("failed to fetch lake reports", zap.String("lake_id", lakeID), zap.Error(err))
		}
		return lakeReportsMsg{lakeID: lakeID, reports: reports, err: err}
	}
}

func (p *MapPage) details() string {
	s := p.deps.Styles
	lake, ok := p.Selected()
	if !ok {
		return s.Muted.Render("Sélectionnez un lac pour voir ses détails.")
	}

	var sb strings.Builder
	sb.WriteString(s.Title.MarginBottom(0).Render(lake.Name))
	sb.WriteString("\n\n")
	sb.WriteString("Statut : " + s.StatusBadge(lake.Status) + "\n")
	sb.WriteString("Région : " + lake.Region + "\n")
	sb.WriteString("Coordonnées : " + FormatCoordinates(lake.Latitude, lake.Longitude) + "\n")
	if lake.Description != "" {
		sb.WriteString("\n" + s.Body.Render(lake.Description) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case p.countsFailed[lake.ID]:
		sb.WriteString(s.Muted.Render("Signalements : indisponible"))
	default:
		if n, ok := p.reportCounts[lake.ID]; ok {
			sb.WriteString(fmt.Sprintf("Signalements : %d", n))
		} else {
			sb.WriteString(s.Muted.Render("Signalements : ..."))
		}
	}
	return sb.String()
}

func (p *MapPage) View() string {
	s := p.deps.Styles
	header := s.Title.MarginBottom(0).Render("Carte des lacs")
	if p.loading {
		return header + "\n" + p.spinner.View() + " Chargement des lacs..."
	}
	if len(p.lakes) == 0 {
		return header + "\n" + s.Muted.Render("Aucun lac à afficher.") + "\n\n" + s.Info.Render(MapHint)
	}

	_, right := SplitPaneWidths(p.width)
	panel := s.Card.Width(max(right-2, 20)).Render(p.details())
	body := lipgloss.JoinHorizontal(lipgloss.Top, p.list.View(), " ", panel)
	return header + "\n" + body + "\n" + s.Info.Render(MapHint)
}
