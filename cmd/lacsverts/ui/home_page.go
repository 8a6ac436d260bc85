package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type homeStat struct {
	value string
	label string
}

var homeStats = []homeStat{
	{"50+", "Lacs surveillés"},
	{"85%", "En bon état"},
	{"120+", "Signalements"},
	{"24/7", "Surveillance"},
}

// HomePage is the static landing page.
type HomePage struct {
	deps   Deps
	width  int
	height int
}

// NewHomePage creates the landing page.
func NewHomePage(deps Deps) *HomePage {
	return &HomePage{deps: deps}
}

func (p *HomePage) Init(context.Context) tea.Cmd { return nil }

func (p *HomePage) Update(tea.Msg) (Page, tea.Cmd) { return p, nil }

func (p *HomePage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *HomePage) Capturing() bool { return false }

func (p *HomePage) View() string {
	s := p.deps.Styles
	var sb strings.Builder

	sb.WriteString(Logo(s))
	sb.WriteString("\n")
	sb.WriteString(s.Title.Render("Protégeons nos lacs ensemble"))
	sb.WriteString("\n")
	sb.WriteString(s.Body.Render("Surveillez l'état des lacs de Côte d'Ivoire, signalez les pollutions\net informez-vous sur la préservation de nos ressources en eau."))
	sb.WriteString("\n\n")

	cards := make([]string, 0, len(homeStats))
	for _, st := range homeStats {
		cards = append(cards, s.Card.Width(18).Align(lipgloss.Center).Render(
			s.Title.MarginBottom(0).Render(st.value)+"\n"+s.Muted.Render(st.label)))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	sb.WriteString("\n\n")

	if p.deps.Session.Authenticated() {
		sb.WriteString(s.Success.Render("✓ Connecté"))
		sb.WriteString(s.Muted.Render("  [3] faire un signalement"))
	} else {
		sb.WriteString(s.Muted.Render("[L] se connecter pour signaler une pollution"))
	}
	return sb.String()
}
