package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lacsverts/internal/api"
	"lacsverts/internal/logging"
	"lacsverts/internal/media"
	"lacsverts/internal/types"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// User-facing messages of the report form.
const (
	ReportLoginPrompt    = "Connectez-vous pour accéder aux signalements."
	ReportSubmitted      = "Signalement envoyé avec succès!"
	ReportSubmitFailed   = "Erreur lors de l'envoi du signalement"
	ReportNoLakeSelected = "Veuillez sélectionner un lac."
	ReportNoDescription  = "Veuillez décrire la situation."
)

type formFocus int

const (
	focusLake formFocus = iota
	focusDescription
	focusImage
	focusVideo
	focusSubmit
	focusCount
)

type mediaSlot int

const (
	slotNone mediaSlot = iota
	slotImage
	slotVideo
)

type boardLoadedMsg struct {
	board api.ReportsBoard
	err   error
}

type reportSubmittedMsg struct {
	report *types.Report
	err    error
}

// ReportsPage lists the session's reports and hosts the submission form.
// Without a session it renders only a login prompt.
type ReportsPage struct {
	deps    Deps
	ctx     context.Context
	spinner spinner.Model

	loading bool
	reports []types.Report
	lakes   []types.Lake

	// Form
	focus       formFocus
	lakeList    list.Model
	lakeID      string
	description textarea.Model
	imagePath   string
	videoPath   string
	picker      filepicker.Model
	picking     mediaSlot
	formError   string
	submitting  bool

	width  int
	height int
}

// NewReportsPage creates the reports page for the session in deps.
func NewReportsPage(deps Deps) *ReportsPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	ta := textarea.New()
	ta.Placeholder = "Décrivez la pollution observée..."
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(50)
	ta.Cursor.SetMode(cursor.CursorStatic)

	fp := filepicker.New()
	fp.ShowHidden = false
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	return &ReportsPage{
		deps:        deps,
		ctx:         context.Background(),
		spinner:     sp,
		lakeList:    newLakeList(nil, "Lac concerné", 40, 8),
		description: ta,
		picker:      fp,
	}
}

func (p *ReportsPage) Init(ctx context.Context) tea.Cmd {
	p.ctx = ctx
	if !p.deps.Session.Authenticated() {
		return nil
	}
	p.loading = true
	return tea.Batch(p.spinner.Tick, p.fetchBoard())
}

func (p *ReportsPage) fetchBoard() tea.Cmd {
	ctx, backend, token := p.ctx, p.deps.Backend, p.deps.Session.Token()
	return func() tea.Msg {
		board, err := backend.LoadReportsBoard(ctx, token)
		if err != nil {
			logging.APIWarn("failed to fetch reports", zap.Error(err))
		}
		return boardLoadedMsg{board: board, err: err}
	}
}

func (p *ReportsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	formWidth := w
	if w >= CompactModeWidth {
		formWidth, _ = SplitPaneWidths(w)
	}
	p.lakeList.SetSize(max(formWidth-4, 20), 8)
	p.description.SetWidth(max(formWidth-4, 20))
	p.picker.Height = max(h-6, 5)
}

func (p *ReportsPage) Capturing() bool {
	return p.picking != slotNone ||
		p.focus == focusDescription ||
		p.lakeList.FilterState() == list.Filtering
}

// Reports returns the reports currently listed.
func (p *ReportsPage) Reports() []types.Report { return p.reports }

func (p *ReportsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		p.loading = false
		p.reports = msg.board.Reports
		p.lakes = msg.board.Lakes
		p.lakeList.SetItems(lakeItems(p.lakes))
		return p, nil

	case reportSubmittedMsg:
		p.submitting = false
		if msg.err != nil {
			logging.Get(logging.CategoryAPI).Error("report submission failed", zap.Error(msg.err))
			return p, ShowAlert(AlertError, ReportSubmitFailed, msg.err.Error())
		}
		p.resetForm()
		return p, tea.Batch(
			ShowAlert(AlertSuccess, ReportSubmitted, ""),
			p.fetchBoard(),
		)

	case spinner.TickMsg:
		if !p.loading && !p.submitting {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if !p.deps.Session.Authenticated() {
			return p, nil
		}
		return p.handleKey(msg)
	}

	if p.picking != slotNone {
		return p.updatePicker(msg)
	}
	return p, nil
}

func (p *ReportsPage) handleKey(msg tea.KeyMsg) (Page, tea.Cmd) {
	if p.picking != slotNone {
		if msg.Type == tea.KeyEsc {
			p.picking = slotNone
			return p, nil
		}
		return p.updatePicker(msg)
	}

	switch msg.String() {
	case "tab":
		return p, p.setFocus((p.focus + 1) % focusCount)
	case "shift+tab":
		return p, p.setFocus((p.focus + focusCount - 1) % focusCount)
	case "ctrl+s":
		return p, p.Submit()
	}

	switch p.focus {
	case focusLake:
		if msg.Type == tea.KeyEnter && p.lakeList.FilterState() != list.Filtering {
			if lake, ok := selectedLake(p.lakeList); ok {
				p.lakeID = lake.ID
				p.formError = ""
			}
			return p, nil
		}
		var cmd tea.Cmd
		p.lakeList, cmd = p.lakeList.Update(msg)
		return p, cmd

	case focusDescription:
		if msg.Type == tea.KeyEsc {
			return p, p.setFocus(focusSubmit)
		}
		var cmd tea.Cmd
		p.description, cmd = p.description.Update(msg)
		return p, cmd

	case focusImage, focusVideo:
		slot := slotImage
		if p.focus == focusVideo {
			slot = slotVideo
		}
		switch msg.String() {
		case "enter":
			return p, p.openPicker(slot)
		case "x", "backspace", "delete":
			p.setAttachment(slot, "")
		}
		return p, nil

	case focusSubmit:
		if msg.Type == tea.KeyEnter {
			return p, p.Submit()
		}
	}
	return p, nil
}

func (p *ReportsPage) setFocus(f formFocus) tea.Cmd {
	p.focus = f
	if f == focusDescription {
		return p.description.Focus()
	}
	p.description.Blur()
	return nil
}

func (p *ReportsPage) openPicker(slot mediaSlot) tea.Cmd {
	p.picking = slot
	if slot == slotImage {
		p.picker.AllowedTypes = media.ImageExtensions
	} else {
		p.picker.AllowedTypes = media.VideoExtensions
	}
	return p.picker.Init()
}

func (p *ReportsPage) updatePicker(msg tea.Msg) (Page, tea.Cmd) {
	var cmd tea.Cmd
	p.picker, cmd = p.picker.Update(msg)
	if didSelect, path := p.picker.DidSelectFile(msg); didSelect {
		p.setAttachment(p.picking, path)
		p.picking = slotNone
	}
	return p, cmd
}

func (p *ReportsPage) setAttachment(slot mediaSlot, path string) {
	switch slot {
	case slotImage:
		p.imagePath = path
	case slotVideo:
		p.videoPath = path
	}
}

// SetForm fills the form fields, as a user would.
func (p *ReportsPage) SetForm(lakeID, description, imagePath, videoPath string) {
	p.lakeID = lakeID
	p.description.SetValue(description)
	p.imagePath = imagePath
	p.videoPath = videoPath
}

// FormValues returns the current form fields.
func (p *ReportsPage) FormValues() (lakeID, description, imagePath, videoPath string) {
	return p.lakeID, p.description.Value(), p.imagePath, p.videoPath
}

func (p *ReportsPage) resetForm() {
	p.lakeID = ""
	p.description.Reset()
	p.imagePath = ""
	p.videoPath = ""
	p.formError = ""
}

// Submit validates the form and sends it. Without a session nothing is sent
// and the login prompt is shown instead.
func (p *ReportsPage) Submit() tea.Cmd {
	if !p.deps.Session.Authenticated() {
		return nil
	}
	if p.submitting {
		return nil
	}

	report := types.NewReport{
		LakeID:      p.lakeID,
		Description: strings.TrimSpace(p.description.Value()),
	}
	if err := report.Validate(); err != nil {
		switch {
		case errors.Is(err, types.ErrNoLakeSelected):
			p.formError = ReportNoLakeSelected
		default:
			p.formError = ReportNoDescription
		}
		return nil
	}
	p.formError = ""
	p.submitting = true

	ctx, backend, token := p.ctx, p.deps.Backend, p.deps.Session.Token()
	imagePath, videoPath := p.imagePath, p.videoPath
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		if imagePath != "" {
			uri, err := media.EncodeFile(imagePath)
			if err != nil {
				return reportSubmittedMsg{err: fmt.Errorf("image: %w", err)}
			}
			report.ImageBase64 = uri
		}
		if videoPath != "" {
			uri, err := media.EncodeFile(videoPath)
			if err != nil {
				return reportSubmittedMsg{err: fmt.Errorf("vidéo: %w", err)}
			}
			report.VideoBase64 = uri
		}
		created, err := backend.CreateReport(ctx, token, report)
		return reportSubmittedMsg{report: created, err: err}
	})
}

func (p *ReportsPage) View() string {
	s := p.deps.Styles
	header := s.Title.MarginBottom(0).Render("Signalements")

	if !p.deps.Session.Authenticated() {
		prompt := s.Card.Render(s.Bold.Render(ReportLoginPrompt) + "\n\n" +
			s.Muted.Render("[L] Se connecter"))
		return header + "\n" + prompt
	}

	if p.picking != slotNone {
		label := "une image"
		if p.picking == slotVideo {
			label = "une vidéo"
		}
		return header + "\n" + s.Subtitle.Render("Choisissez "+label+" (esc pour annuler)") +
			"\n" + p.picker.View()
	}

	form := p.formView()
	board := p.listView()
	if p.width >= CompactModeWidth {
		left, right := SplitPaneWidths(p.width)
		return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(left).Render(form), " ",
			lipgloss.NewStyle().Width(right).Render(board))
	}
	return header + "\n" + form + "\n" + board
}

func (p *ReportsPage) section(f formFocus, body string) string {
	if p.focus == f {
		return p.deps.Styles.CardFocused.Render(body)
	}
	return p.deps.Styles.Card.Render(body)
}

func (p *ReportsPage) formView() string {
	s := p.deps.Styles
	var sb strings.Builder

	sb.WriteString(s.Bold.Render("Nouveau signalement"))
	sb.WriteString("\n")

	chosen := s.Muted.Render("Sélectionner un lac (entrée)")
	if p.lakeID != "" {
		chosen = s.Success.Render("✓ " + lakeName(p.lakes, p.lakeID))
	}
	sb.WriteString(p.section(focusLake, p.lakeList.View()+"\n"+chosen))
	sb.WriteString("\n")
	sb.WriteString(p.section(focusDescription, "Description\n"+p.description.View()))
	sb.WriteString("\n")
	sb.WriteString(p.section(focusImage, "Image : "+attachmentLabel(s, p.imagePath)))
	sb.WriteString("\n")
	sb.WriteString(p.section(focusVideo, "Vidéo : "+attachmentLabel(s, p.videoPath)))
	sb.WriteString("\n")

	button := s.Button.Render("Envoyer le signalement")
	if p.focus == focusSubmit {
		button = s.ButtonFocus.Render("Envoyer le signalement")
	}
	if p.submitting {
		button = p.spinner.View() + " Envoi..."
	}
	sb.WriteString(button)

	if p.formError != "" {
		sb.WriteString("\n" + s.Error.Render(p.formError))
	}
	sb.WriteString("\n" + s.Muted.Render("tab: champ suivant · ctrl+s: envoyer"))
	return sb.String()
}

func (p *ReportsPage) listView() string {
	s := p.deps.Styles
	var sb strings.Builder
	sb.WriteString(s.Bold.Render("Mes signalements"))
	sb.WriteString("\n")

	if p.loading {
		sb.WriteString(p.spinner.View() + " Chargement...")
		return sb.String()
	}
	if len(p.reports) == 0 {
		sb.WriteString(s.Muted.Render("Aucun signalement pour le moment."))
		return sb.String()
	}

	for _, r := range p.reports {
		var card strings.Builder
		card.WriteString(s.Bold.Render(lakeName(p.lakes, r.LakeID)))
		card.WriteString(s.Muted.Render("  " + r.CreatedAt.Display() + " · " + string(r.Status)))
		card.WriteString("\n" + r.Description)
		if r.HasMedia() {
			card.WriteString("\n" + s.Info.Render("📎 média joint"))
		}
		sb.WriteString(s.Card.Render(card.String()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func lakeName(lakes []types.Lake, id string) string {
	for _, l := range lakes {
		if l.ID == id {
			return l.Name
		}
	}
	return "Lac inconnu"
}

func attachmentLabel(s Styles, path string) string {
	if path == "" {
		return s.Muted.Render("aucune (entrée pour choisir)")
	}
	return filepath.Base(path) + s.Muted.Render("  (x pour retirer)")
}
