package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
)

// Pool palette
var (
	primaryColor   = lipgloss.Color("#0EA5E9") // Pool blue
	secondaryColor = lipgloss.Color("#14B8A6") // Teal
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#64748B")
	textColor      = lipgloss.Color("#F8FAFC")
	laneColor      = lipgloss.Color("#334155")
)

// styleColors gives each stroke its own bar colour
var styleColors = map[strokestyle.Style]lipgloss.Color{
	strokestyle.Backstroke:   lipgloss.Color("#3B82F6"),
	strokestyle.Breaststroke: lipgloss.Color("#10B981"),
	strokestyle.Butterfly:    lipgloss.Color("#A855F7"),
	strokestyle.Freestyle:    lipgloss.Color("#F59E0B"),
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(textColor).
				Padding(0, 1)

	fastestLapStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	progressFullStyle  = lipgloss.NewStyle().Foreground(primaryColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(laneColor)
)

// RenderMetric renders a label and its value on one line
func RenderMetric(label, value string) string {
	return metricLabelStyle.Render(label) + metricValueStyle.Render(value)
}

// RenderProgressBar renders a bar filled to fraction (0 to 1) of width
func RenderProgressBar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)), 0), width)
	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderStyleBar renders a horizontal bar for one stroke's share in percent
func RenderStyleBar(s strokestyle.Style, pct float64, width int) string {
	n := int(pct / 100 * float64(width))
	if n < 1 && pct > 0 {
		n = 1
	}
	return lipgloss.NewStyle().Foreground(styleColors[s]).Render(strings.Repeat("█", n))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
