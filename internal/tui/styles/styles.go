// Package styles defines shared lipgloss styles for the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#D7875F") // Ember orange
	secondaryColor = lipgloss.Color("#767676")
	successColor   = lipgloss.Color("#87AF87")
	errorColor     = lipgloss.Color("#AF5F5F")
	warningColor   = lipgloss.Color("#D7AF5F")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SectionStyle for step titles and list group headers
	SectionStyle = lipgloss.NewStyle().
			Bold(true)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(1, 2)

	// ModalStyle frames outcome dialogs.
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 3)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// LockedStyle marks read-only review content.
	LockedStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Italic(true)
)
