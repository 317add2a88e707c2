package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ragcompare/internal/notify"
)

// WaitingBanner is shown while no answer is complete yet.
const WaitingBanner = "Generating responses from both systems..."

// renderNotice renders n as a toast.
func renderNotice(n notify.Notice, width int) string {
	title := errorStyle.Render("⚠ " + n.Title())
	style := noticeStyle
	if n.Level == notify.LevelInfo {
		title = successStyle.Render(n.Title())
		style = style.BorderForeground(successStyle.GetForeground())
	}
	body := lipgloss.JoinVertical(lipgloss.Left, title, n.Message, dimStyle.Render("esc to dismiss"))
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(body)
}

// overlayNotice places toast at the bottom right of view.
func overlayNotice(view, toast string, width int) string {
	lines := strings.Split(view, "\n")
	toastLines := strings.Split(toast, "\n")
	if len(toastLines) >= len(lines) {
		return lipgloss.JoinVertical(lipgloss.Left, view, lipgloss.PlaceHorizontal(width, lipgloss.Right, toast))
	}
	start := len(lines) - len(toastLines)
	for i, tl := range toastLines {
		lines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, tl)
	}
	return strings.Join(lines, "\n")
}
