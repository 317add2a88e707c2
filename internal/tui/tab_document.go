package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/agbru/ragcompare/internal/document"
)

// renderViewer renders the document viewer tab. info is nil before the
// first upload.
func renderViewer(info *document.Info, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Document Viewer"))
	b.WriteString("\n\n")
	if info == nil {
		b.WriteString(metricValueStyle.Render("No Document Uploaded"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Please upload a PDF document in the first tab to view it here."))
		return b.String()
	}

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", metricLabelStyle.Render(fmt.Sprintf("%-8s", label)), value)
	}
	row("File:", info.Name)
	row("Size:", info.SizeMB())
	if info.Pages > 0 {
		row("Pages:", fmt.Sprintf("%d", info.Pages))
	}
	b.WriteString("\n")
	if !info.Readable || info.Excerpt == "" {
		b.WriteString(dimStyle.Render("Preview unavailable for this file."))
		return b.String()
	}
	text := info.Excerpt
	if width > 8 {
		text = wordwrap.String(text, width-6)
	}
	b.WriteString(panelStyle.Padding(0, 1).Render(text))
	return b.String()
}

// renderGraph renders the knowledge graph tab.
func renderGraph(stats document.GraphStats, width int) string {
	cards := make([]string, 0, 3)
	cardWidth := max(min((width-6)/3, 24), 12)
	for _, c := range stats.Cards() {
		cards = append(cards, panelStyle.Width(cardWidth).Align(lipgloss.Center).Render(
			metricValueStyle.Render(c[1])+"\n"+metricLabelStyle.Render(c[0]),
		))
	}
	placeholder := panelStyle.Padding(1, 2).Align(lipgloss.Center).Render(
		bannerStyle.Render(document.GraphLoadingNotice) + "\n" +
			document.GraphLoadingDetail + "\n" +
			dimStyle.Render(document.GraphProcessingNote),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(document.GraphTitle),
		dimStyle.Render(document.GraphSubtitle),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
		placeholder,
	)
}
