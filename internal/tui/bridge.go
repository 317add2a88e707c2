package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/ragcompare/internal/notify"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
)

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
//
// Send blocks until the program's event loop receives the message, so it
// must never be called from Update itself.
type programRef struct {
	mu      sync.RWMutex
	program sender
}

// SetProgram sets the program reference (thread-safe).
func (r *programRef) SetProgram(p sender) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the program (thread-safe). It is a no-op until a
// program is set.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIReporter implements orchestration.Reporter by forwarding channel events
// as bubbletea messages. Failures also raise a notice.
type TUIReporter struct {
	ref     *programRef
	notices *notify.Center
}

// Verify interface compliance.
var _ orchestration.Reporter = (*TUIReporter)(nil)

// ChannelUpdated forwards the state.
func (t *TUIReporter) ChannelUpdated(ch orchestration.ChannelID, st stream.State) {
	t.ref.Send(ChannelStateMsg{Channel: ch, State: st})
}

// ChannelFailed forwards the failure and shows the channel's notice.
func (t *TUIReporter) ChannelFailed(ch orchestration.ChannelID, gen uint64, err error) {
	t.ref.Send(ChannelFailedMsg{Channel: ch, Generation: gen, Err: err})
	if t.notices != nil {
		t.notices.Error(ch.FailureNotice())
	}
}

// RoundAnswered forwards the finished comparison.
func (t *TUIReporter) RoundAnswered(cmp orchestration.Comparison) {
	t.ref.Send(RoundAnsweredMsg{Comparison: cmp})
}

// noticeSink returns a notify.ChangeFunc that forwards notices to the program.
func noticeSink(ref *programRef) notify.ChangeFunc {
	return func(n notify.Notice, visible bool) {
		ref.Send(NoticeMsg{Notice: n, Visible: visible})
	}
}
