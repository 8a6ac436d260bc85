package ui

import (
	"fmt"

	"lacsverts/internal/types"

	"github.com/charmbracelet/lipgloss"
)

// StatusStyle colors a lake status.
func (s Styles) StatusStyle(status types.LakeStatus) lipgloss.Style {
	switch status {
	case types.StatusClean:
		return s.Success
	case types.StatusToWatch:
		return s.Warning
	case types.StatusPolluted:
		return s.Error
	default:
		return s.Muted
	}
}

// StatusBadge renders "<icon> <label>" in the status color.
func (s Styles) StatusBadge(status types.LakeStatus) string {
	return fmt.Sprintf("%s %s", status.Icon(), s.StatusStyle(status).Render(status.Label()))
}

// FormatCoordinates renders a latitude/longitude pair.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}
