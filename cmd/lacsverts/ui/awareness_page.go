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
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// NoAwarenessContent is shown when the feed is empty.
const NoAwarenessContent = "Aucun contenu de sensibilisation pour le moment."

type postsLoadedMsg struct {
	posts []types.AwarenessPost
	err   error
}

func fetchPosts(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		posts, err := b.Awareness(ctx)
		if err != nil {
			logging.APIWarn("failed to fetch awareness posts", zap.Error(err))
			return postsLoadedMsg{err: err}
		}
		return postsLoadedMsg{posts: posts}
	}
}

// AwarenessPage renders the article feed as markdown.
type AwarenessPage struct {
	deps     Deps
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	posts    []types.AwarenessPost
	loading  bool
	width    int
	height   int
}

// NewAwarenessPage creates the awareness feed page.
func NewAwarenessPage(deps Deps) *AwarenessPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner
	p := &AwarenessPage{
		deps:     deps,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	p.renderer = p.newRenderer(80)
	return p
}

func (p *AwarenessPage) newRenderer(width int) *glamour.TermRenderer {
	style := "light"
	if p.deps.Styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return r
}

func (p *AwarenessPage) Init(ctx context.Context) tea.Cmd {
	p.loading = true
	return tea.Batch(p.spinner.Tick, fetchPosts(ctx, p.deps.Backend))
}

func (p *AwarenessPage) SetSize(w, h int) {
	if w != p.width {
		p.renderer = p.newRenderer(w)
	}
	p.width = w
	p.height = h
	p.viewport.Width = w
	p.viewport.Height = max(h-2, 1)
	p.refresh()
}

func (p *AwarenessPage) Capturing() bool { return false }

func (p *AwarenessPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		p.loading = false
		p.posts = msg.posts
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

// Markdown builds the feed document.
func (p *AwarenessPage) Markdown() string {
	var sb strings.Builder
	for i, post := range p.posts {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString("## " + post.Title + "\n\n")
		sb.WriteString(fmt.Sprintf("*Par %s · %s*\n\n", post.AuthorName, post.CreatedAt.Display()))
		for _, para := range post.Paragraphs() {
			sb.WriteString(para + "\n\n")
		}
		if post.ImageBase64 != "" || post.VideoBase64 != "" {
			sb.WriteString("> média joint disponible sur le site\n\n")
		}
	}
	return sb.String()
}

func (p *AwarenessPage) refresh() {
	if len(p.posts) == 0 {
		p.viewport.SetContent(p.deps.Styles.Muted.Render(NoAwarenessContent))
		return
	}
	p.viewport.SetContent(p.safeRenderMarkdown(p.Markdown()))
}

// safeRenderMarkdown renders markdown with panic recovery
func (p *AwarenessPage) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if p.renderer != nil && content != "" {
		rendered, err := p.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (p *AwarenessPage) View() string {
	s := p.deps.Styles
	header := s.Title.MarginBottom(0).Render("Sensibilisation")
	if p.loading {
		return header + "\n" + p.spinner.View() + " Chargement des articles..."
	}
	return header + "\n" + p.viewport.View()
}
