package setup

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the terminal styles for status lines. Colors are dropped
// automatically when the writer is not a terminal.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns styles rendered for w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
