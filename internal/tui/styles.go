package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("99")
	accentColor  = lipgloss.Color("212")
	warningColor = lipgloss.Color("214")
	mutedColor   = lipgloss.Color("241")
	goodColor    = lipgloss.Color("42")
	badColor     = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	goodStyle  = lipgloss.NewStyle().Foreground(goodColor)
	badStyle   = lipgloss.NewStyle().Foreground(badColor)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	interceptStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true)

	statusStyle = lipgloss.NewStyle().Foreground(mutedColor)

	userMsgStyle      = lipgloss.NewStyle().Foreground(accentColor)
	assistantMsgStyle = lipgloss.NewStyle().Foreground(primaryColor)
)
