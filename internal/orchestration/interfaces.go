package orchestration

import (
	"io"
	"time"

	"github.com/agbru/ragcompare/internal/stream"
)

// ChannelResult is the outcome of one channel for one question.
// It serves as the shared domain type between orchestration and presentation layers.
type ChannelResult struct {
	// Channel identifies the backend that produced the answer.
	Channel ChannelID
	// Name is the display name of the channel (e.g., "Graph RAG").
	Name string
	// Outcome is the terminal state of the channel's controller.
	Outcome stream.Outcome
	// Duration is the time from submission to the terminal state.
	Duration time.Duration
}

// Comparison gathers both answers to one question.
type Comparison struct {
	Question   string
	DocumentID string
	Round      uint64
	StartedAt  time.Time
	Results    []ChannelResult
}

// Reporter receives channel events as they happen.
// This interface decouples the orchestration layer from the presentation layer:
// implementations render states (spinners, panes, toasts) while the
// orchestrator only coordinates the channels.
//
// Methods are called from the goroutines driving the channels and must not
// call back into the Orchestrator synchronously.
type Reporter interface {
	// ChannelUpdated is called for every state change of a channel, in order.
	ChannelUpdated(ch ChannelID, st stream.State)
	// ChannelFailed is called once when the network call of generation gen
	// fails, before any fallback reveal starts.
	ChannelFailed(ch ChannelID, gen uint64, err error)
	// RoundAnswered is called once both channels of a round are terminal.
	RoundAnswered(cmp Comparison)
}

// NullReporter is a no-op implementation of Reporter.
// Useful for quiet mode or testing.
type NullReporter struct{}

// Verify interface compliance.
var _ Reporter = NullReporter{}

// ChannelUpdated does nothing.
func (NullReporter) ChannelUpdated(ChannelID, stream.State) {}

// ChannelFailed does nothing.
func (NullReporter) ChannelFailed(ChannelID, uint64, error) {}

// RoundAnswered does nothing.
func (NullReporter) RoundAnswered(Comparison) {}

// ComparisonPresenter defines the interface for presenting a finished comparison.
// This interface allows different output formats (terminal, markdown, xlsx)
// without modifying the orchestration logic.
type ComparisonPresenter interface {
	PresentComparison(cmp Comparison, out io.Writer) error
}
