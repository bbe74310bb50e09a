// Package tui is the interactive front end of the capsule store.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#8a94a6")
	destructive = lipgloss.Color("#e53935")
	warning     = lipgloss.Color("#FFC107")
)

// Styles holds the styled components of the capsule screen.
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Button   lipgloss.Style
	Muted    lipgloss.Style
	Empty    lipgloss.Style
	Locked   lipgloss.Style
	Unlocked lipgloss.Style
	Selected lipgloss.Style
	Card     lipgloss.Style
	Alert    lipgloss.Style
	Notice   lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1),
		Heading:  lipgloss.NewStyle().Bold(true).MarginTop(1),
		Label:    lipgloss.NewStyle().Foreground(muted),
		Button:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Empty:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		Locked:   lipgloss.NewStyle().Foreground(muted),
		Unlocked: lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Foreground(accent),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Alert: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(destructive).
			Padding(1, 3).
			Bold(true),
		Notice: lipgloss.NewStyle().Foreground(warning),
		Help:   lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
