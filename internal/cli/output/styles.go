package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Favorite lipgloss.Style
	Sent     lipgloss.Style
	Received lipgloss.Style
	Missed   lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header1:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Underline(true),
		Header2:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:     lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Sent:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Received: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Missed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header1:  plain,
		Header2:  plain,
		Bold:     plain,
		Muted:    plain,
		Success:  plain,
		Warning:  plain,
		Error:    plain,
		Info:     plain,
		Favorite: plain,
		Sent:     plain,
		Received: plain,
		Missed:   plain,
	}
}
