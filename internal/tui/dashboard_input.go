package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/ragcompare/internal/orchestration"
)

// QuestionPlaceholder is shown in the empty question box.
const QuestionPlaceholder = "Ask any question about your uploaded document..."

// PathPlaceholder is shown in the empty upload path box.
const PathPlaceholder = "Path to a PDF document, e.g. ./report.pdf"

// QuestionInput is the question box of the Q&A tab.
type QuestionInput struct {
	area textarea.Model
}

// NewQuestionInput creates an unfocused question box.
func NewQuestionInput() QuestionInput {
	ta := textarea.New()
	ta.Placeholder = QuestionPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)
	// Enter submits; the parent model intercepts it before the textarea.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	return QuestionInput{area: ta}
}

// SetWidth updates the width of the box.
func (q *QuestionInput) SetWidth(w int) { q.area.SetWidth(max(w-2, 10)) }

// Focus starts accepting keys.
func (q *QuestionInput) Focus() tea.Cmd { return q.area.Focus() }

// Blur stops accepting keys.
func (q *QuestionInput) Blur() { q.area.Blur() }

// Focused reports whether the box accepts keys.
func (q QuestionInput) Focused() bool { return q.area.Focused() }

// Value returns the question typed so far.
func (q QuestionInput) Value() string { return q.area.Value() }

// SetValue replaces the question.
func (q *QuestionInput) SetValue(s string) { q.area.SetValue(s) }

// Update forwards a message to the textarea.
func (q QuestionInput) Update(msg tea.Msg) (QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.area, cmd = q.area.Update(msg)
	return q, cmd
}

// View renders the box.
func (q QuestionInput) View() string {
	return panelStyle.Render(q.area.View())
}

// renderSampleQuestions lists the questions bound to F1..F4.
func renderSampleQuestions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sample questions"))
	for i, s := range orchestration.SampleQuestions {
		fmt.Fprintf(&b, "\n %s %s", metricValueStyle.Render(fmt.Sprintf("F%d", i+1)), s)
	}
	return b.String()
}

// newPathInput creates the path box of the upload tab.
func newPathInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = PathPlaceholder
	ti.Prompt = "File: "
	ti.CharLimit = 4096
	ti.Width = 60
	return ti
}
