package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/ragcompare/internal/format"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
	"github.com/agbru/ragcompare/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner frame interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the upload progress bar.
	ProgressBarWidth = 40
	// WaitingBanner is shown while both backends are answering.
	WaitingBanner = "Generating responses from both systems..."
)

// Spinner abstracts the terminal spinner so that the reporter can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// SpinnerReporter implements orchestration.Reporter for line-mode output.
// Between Begin and End it shows a spinner whose suffix counts the words
// revealed on each channel; failure notices are printed on their own line.
type SpinnerReporter struct {
	out     io.Writer
	tracker *orchestration.ProgressTracker

	mu      sync.Mutex
	spinner Spinner
	active  bool
}

// Verify interface compliance.
var _ orchestration.Reporter = (*SpinnerReporter)(nil)

// NewSpinnerReporter creates a reporter writing to out.
func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	return &SpinnerReporter{out: out, tracker: orchestration.NewProgressTracker()}
}

// Begin starts the spinner for a new question.
func (r *SpinnerReporter) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return
	}
	r.tracker.Restart()
	r.spinner = newSpinner(spinner.WithWriter(r.out))
	r.spinner.UpdateSuffix(" " + WaitingBanner)
	r.spinner.Start()
	r.active = true
}

// End stops the spinner.
func (r *SpinnerReporter) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.spinner.Stop()
	r.active = false
}

// Tracker returns the progress tracker fed by this reporter.
func (r *SpinnerReporter) Tracker() *orchestration.ProgressTracker { return r.tracker }

// ChannelUpdated refreshes the spinner suffix.
func (r *SpinnerReporter) ChannelUpdated(ch orchestration.ChannelID, st stream.State) {
	if !r.tracker.Update(ch, st) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		r.spinner.UpdateSuffix(" " + FormatChannelProgress(r.tracker))
	}
}

// ChannelFailed prints the failure notice of ch.
func (r *SpinnerReporter) ChannelFailed(ch orchestration.ChannelID, gen uint64, err error) {
	if !r.tracker.MarkFailed(ch, gen) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		r.spinner.Stop()
	}
	DisplayNotice(r.out, "API Error", ch.FailureNotice())
	if r.active {
		r.spinner.Start()
	}
}

// RoundAnswered does nothing; callers stop the spinner with End.
func (r *SpinnerReporter) RoundAnswered(orchestration.Comparison) {}

// FormatChannelProgress returns a one-line summary of both channels, e.g.
// "Traditional RAG 12 words | Graph RAG 8 words… (1.20s)".
func FormatChannelProgress(p *orchestration.ProgressTracker) string {
	parts := make([]string, 0, orchestration.NumChannels)
	for _, ch := range orchestration.AllChannels {
		cp := p.Channel(ch)
		word := "words"
		if cp.Words == 1 {
			word = "word"
		}
		s := fmt.Sprintf("%s %d %s", ch, cp.Words, word)
		switch {
		case cp.Streaming:
			s += "…"
		case cp.Failed:
			s += " (demo)"
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " | "), format.FormatExecutionDuration(p.Elapsed()))
}

// DisplayNotice prints a titled notice on its own line.
func DisplayNotice(out io.Writer, title, msg string) {
	th := ui.GetCurrentTheme()
	fmt.Fprintf(out, "\n%s %s\n", th.Paint(th.Error, "⚠ "+title+":"), msg)
}

// progressBar renders progress in [0,1] as a bar of length characters.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
