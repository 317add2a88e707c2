package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab identifies a dashboard tab.
type Tab int

const (
	TabUpload Tab = iota
	TabGraph
	TabViewer
	TabQA
	numTabs
)

var tabNames = [numTabs]string{
	"Upload Documents",
	"Knowledge Graph",
	"Document Viewer",
	"Q&A Interface",
}

// String returns the tab label.
func (t Tab) String() string {
	if t < 0 || t >= numTabs {
		return "unknown"
	}
	return tabNames[t]
}

// next returns the following tab, wrapping around. step may be negative.
func (t Tab) next(step int) Tab {
	n := (int(t) + step) % int(numTabs)
	if n < 0 {
		n += int(numTabs)
	}
	return Tab(n)
}

// HeaderModel renders the top bar: title, version and the tab bar.
type HeaderModel struct {
	version string
	width   int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header with active highlighted.
func (h HeaderModel) View(active Tab, docID string) string {
	titleText := "RAG vs Graph RAG"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	left := titleStyle.Render(titleText) + versionStyle.Render(" | document: "+docID)

	tabs := make([]string, 0, numTabs)
	for t := Tab(0); t < numTabs; t++ {
		label := string(rune('1'+t)) + " " + t.String()
		if t == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return headerStyle.Width(h.width).Render(left) + "\n" + bar + "\n" + dimStyle.Render(strings.Repeat("─", max(h.width, 0)))
}
