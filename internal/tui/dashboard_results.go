package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
)

// streamingCursor is appended to the text of a channel that is still
// revealing its answer.
const streamingCursor = "▌"

// AnswerPane shows the answer of one channel.
type AnswerPane struct {
	channel   orchestration.ChannelID
	state     stream.State
	failedGen uint64
	viewport  viewport.Model
	width     int
	height    int
}

// NewAnswerPane creates the pane of ch.
func NewAnswerPane(ch orchestration.ChannelID) AnswerPane {
	return AnswerPane{channel: ch, viewport: viewport.New(0, 0)}
}

// SetSize updates the outer dimensions of the pane.
func (p *AnswerPane) SetSize(w, h int) {
	p.width, p.height = w, h
	p.viewport.Width = max(w-4, 0)
	p.viewport.Height = max(h-3, 0)
	p.refresh()
}

// Apply shows st. States from an older generation are dropped and Apply
// returns false.
func (p *AnswerPane) Apply(st stream.State) bool {
	if st.Generation < p.state.Generation {
		return false
	}
	p.state = st
	p.refresh()
	return true
}

// MarkFailed records that the network call of generation gen failed. A
// failure older than the state on display is dropped.
func (p *AnswerPane) MarkFailed(gen uint64) {
	if gen < p.state.Generation {
		return
	}
	p.failedGen = gen
}

// Failed reports whether the current answer is a demo response.
func (p AnswerPane) Failed() bool {
	return p.failedGen != 0 && p.failedGen == p.state.Generation
}

// State returns the state on display.
func (p AnswerPane) State() stream.State { return p.state }

// Words returns the number of words on display.
func (p AnswerPane) Words() int { return len(strings.Fields(p.state.Text)) }

// ScrollUp scrolls one page up.
func (p *AnswerPane) ScrollUp() { p.viewport.PageUp() }

// ScrollDown scrolls one page down.
func (p *AnswerPane) ScrollDown() { p.viewport.PageDown() }

func (p *AnswerPane) refresh() {
	text := p.state.Text
	if p.state.IsStreaming {
		text += streamingCursor
	}
	if p.viewport.Width > 0 {
		text = wordwrap.String(text, p.viewport.Width)
	}
	atBottom := p.viewport.AtBottom()
	p.viewport.SetContent(text)
	if p.state.IsStreaming || atBottom {
		p.viewport.GotoBottom()
	}
}

// View renders the pane with the channel's colour.
func (p AnswerPane) View() string {
	title := channelStyles[p.channel].Render(p.channel.String())
	switch {
	case p.state.IsStreaming:
		title += dimStyle.Render("  streaming…")
	case p.Failed():
		title += warningStyle.Render("  demo response")
	}
	style := panelStyle.
		BorderForeground(channelBorders[p.channel]).
		Padding(0, 1)
	if p.width > 2 {
		style = style.Width(p.width - 2)
	}
	if p.height > 2 {
		style = style.Height(p.height - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, p.viewport.View()))
}
