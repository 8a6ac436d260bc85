package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AlertKind selects the alert color.
type AlertKind int

const (
	AlertInfo AlertKind = iota
	AlertSuccess
	AlertError
)

// AlertMsg asks the app to show a blocking alert.
type AlertMsg struct {
	Kind    AlertKind
	Message string
	Detail  string
}

// ShowAlert returns a command emitting AlertMsg.
func ShowAlert(kind AlertKind, message, detail string) tea.Cmd {
	return func() tea.Msg { return AlertMsg{Kind: kind, Message: message, Detail: detail} }
}

// Alert is a modal box that swallows input until dismissed.
type Alert struct {
	msg    AlertMsg
	styles Styles
}

// NewAlert creates an alert for msg.
func NewAlert(msg AlertMsg, styles Styles) *Alert {
	return &Alert{msg: msg, styles: styles}
}

// Message returns the alert text.
func (a *Alert) Message() string { return a.msg.Message }

// Kind returns the alert kind.
func (a *Alert) Kind() AlertKind { return a.msg.Kind }

// HandleKey reports whether the key dismisses the alert.
func (a *Alert) HandleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		return true
	}
	return false
}

// View renders the alert box centered in width.
func (a *Alert) View(width int) string {
	color := Info
	title := "Information"
	switch a.msg.Kind {
	case AlertSuccess:
		color = Success
		title = "Succès"
	case AlertError:
		color = Destructive
		title = "Erreur"
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(a.styles.Body.Render(a.msg.Message))
	if a.msg.Detail != "" {
		sb.WriteString("\n")
		sb.WriteString(a.styles.Muted.Render(a.msg.Detail))
	}
	sb.WriteString("\n\n")
	sb.WriteString(a.styles.Muted.Render("[entrée] OK"))

	box := a.styles.Alert.BorderForeground(color).Render(sb.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
