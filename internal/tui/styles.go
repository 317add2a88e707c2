package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/ui"
)

// Style variables for the TUI dashboard.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	versionStyle     lipgloss.Style
	tabStyle         lipgloss.Style
	activeTabStyle   lipgloss.Style
	bannerStyle      lipgloss.Style
	dimStyle         lipgloss.Style
	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style
	errorStyle       lipgloss.Style
	warningStyle     lipgloss.Style
	successStyle     lipgloss.Style
	noticeStyle      lipgloss.Style
	channelStyles    [orchestration.NumChannels]lipgloss.Style
	channelBorders   [orchestration.NumChannels]lipgloss.TerminalColor
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	tabStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	successStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Padding(0, 1)

	channelBorders[orchestration.ChannelRAG] = t.RAG
	channelBorders[orchestration.ChannelGraphRAG] = t.Graph
	for ch, c := range channelBorders {
		channelStyles[ch] = lipgloss.NewStyle().Foreground(c).Bold(true)
	}
}
