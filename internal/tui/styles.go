package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary     = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#6b7785")
	Destructive = lipgloss.Color("#e53935")
	Info        = lipgloss.Color("#2196F3")
)

// Styles groups the lipgloss styles used by the shell.
type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Label     lipgloss.Style
	FieldErr  lipgloss.Style
	Failure   lipgloss.Style
	Success   lipgloss.Style
	Help      lipgloss.Style
	Disabled  lipgloss.Style
}

// DefaultStyles returns the stock style set.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1),
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(Muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(Primary),
		Label:     lipgloss.NewStyle().Bold(true),
		FieldErr:  lipgloss.NewStyle().Foreground(Destructive).PaddingLeft(2),
		Failure:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(Primary).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(Muted),
		Disabled:  lipgloss.NewStyle().Foreground(Muted).Italic(true),
	}
}
