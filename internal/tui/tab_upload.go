package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/ragcompare/internal/upload"
)

// demoModeSuffix follows the failure message of a masked upload.
const demoModeSuffix = "Using demo mode - all features will work with sample data."

// UploadPane is the content of the upload tab.
type UploadPane struct {
	path     textinput.Model
	bar      progress.Model
	gen      uint64
	active   bool
	progress upload.Progress
	result   *upload.Result
	err      error
}

// NewUploadPane creates an idle upload pane.
func NewUploadPane() UploadPane {
	return UploadPane{
		path: newPathInput(),
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// SetWidth updates the width of the path box and the progress bar.
func (u *UploadPane) SetWidth(w int) {
	u.path.Width = max(w-12, 10)
	u.bar.Width = max(min(w-4, 60), 10)
}

// Begin starts a new upload and returns its generation.
func (u *UploadPane) Begin() uint64 {
	u.gen++
	u.active = true
	u.progress = upload.Progress{}
	u.result = nil
	u.err = nil
	return u.gen
}

// Uploading reports whether an upload is in progress.
func (u UploadPane) Uploading() bool { return u.active }

// ApplyProgress shows p when it belongs to the current upload.
func (u *UploadPane) ApplyProgress(msg UploadProgressMsg) bool {
	if msg.Generation != u.gen || !u.active {
		return false
	}
	u.progress = msg.Progress
	return true
}

// Finish ends the current upload. It returns false for a stale message.
func (u *UploadPane) Finish(msg UploadDoneMsg) bool {
	if msg.Generation != u.gen {
		return false
	}
	u.active = false
	if msg.Err != nil {
		u.err = msg.Err
		return true
	}
	res := msg.Result
	u.result = &res
	u.progress = upload.Progress{Percent: upload.CompletedPercent, Phase: upload.PhaseDone}
	return true
}

// View renders the tab.
func (u UploadPane) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upload Documents"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Upload a PDF to build its vector index and knowledge graph."))
	b.WriteString("\n\n")
	b.WriteString(u.path.View())
	b.WriteString("\n\n")

	if u.active || u.result != nil {
		b.WriteString(u.bar.ViewAs(u.progress.Percent / 100))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(u.progress.Phase.String()))
		b.WriteString("\n")
	}
	switch {
	case u.err != nil:
		b.WriteString(errorStyle.Render("Error: " + u.err.Error()))
	case u.result != nil && u.result.Masked():
		b.WriteString(warningStyle.Render(upload.FailureNotice + " " + demoModeSuffix))
	case u.result != nil:
		b.WriteString(successStyle.Render(fmt.Sprintf("✓ %s uploaded as %s", u.result.Document.Name, u.result.DocumentID)))
	case !u.active:
		b.WriteString(dimStyle.Render("Press enter to upload. Only PDF files are accepted."))
	}
	return b.String()
}

// Focus starts accepting keys in the path box.
func (u *UploadPane) Focus() tea.Cmd { return u.path.Focus() }

// Blur stops accepting keys.
func (u *UploadPane) Blur() { u.path.Blur() }

// Path returns the trimmed path typed so far.
func (u UploadPane) Path() string { return strings.TrimSpace(u.path.Value()) }

// SetPath replaces the path.
func (u *UploadPane) SetPath(p string) { u.path.SetValue(p) }

// Update forwards a message to the path box.
func (u UploadPane) Update(msg tea.Msg) (UploadPane, tea.Cmd) {
	var cmd tea.Cmd
	u.path, cmd = u.path.Update(msg)
	return u, cmd
}
