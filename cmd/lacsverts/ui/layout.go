package ui

// Layout constants for page sizing
const (
	// Chrome around the active page: header, nav bar, footer
	HeaderHeight = 1
	NavHeight    = 2
	FooterHeight = 1

	ContentPaddingH = 2
	ContentPaddingV = 1

	// Split pane dimensions
	SplitPaneLeftRatio = 0.45
	SplitPaneDivider   = 1

	// Responsive breakpoints
	CompactModeWidth = 90
	DetailPaneWidth  = 40
	MinContentWidth  = 40
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// PageWidth is the width handed to the active page
func (l LayoutConfig) PageWidth() int {
	return max(l.TerminalWidth-ContentPaddingH*2, MinContentWidth)
}

// PageHeight is the height handed to the active page
func (l LayoutConfig) PageHeight() int {
	return max(l.TerminalHeight-HeaderHeight-NavHeight-FooterHeight-ContentPaddingV*2, 5)
}

// SplitPaneWidths calculates left and right pane widths for a split view
func SplitPaneWidths(totalWidth int) (leftWidth, rightWidth int) {
	leftWidth = int(float64(totalWidth) * SplitPaneLeftRatio)
	rightWidth = totalWidth - leftWidth - SplitPaneDivider
	return
}
