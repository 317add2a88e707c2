package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
	"github.com/agbru/ragcompare/internal/ui"
)

// MockSpinner records calls for testing.
type MockSpinner struct {
	mu      sync.Mutex
	starts  int
	stops   int
	suffix  string
	history []string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	m.starts++
	m.mu.Unlock()
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	m.suffix = suffix
	m.history = append(m.history, suffix)
	m.mu.Unlock()
}

func (m *MockSpinner) counts() (starts, stops int, suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts, m.stops, m.suffix
}

// useMockSpinner swaps newSpinner for the duration of the test. Tests using
// it must not run in parallel.
func useMockSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	original := newSpinner
	mock := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = original })
	return mock
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q", s.Suffix)
	}
}

func TestSpinnerReporter_Lifecycle(t *testing.T) {
	mock := useMockSpinner(t)
	var out bytes.Buffer
	r := NewSpinnerReporter(&out)

	r.Begin()
	r.Begin() // no second spinner
	if starts, _, suffix := mock.counts(); starts != 1 || !strings.Contains(suffix, WaitingBanner) {
		t.Fatalf("after Begin: starts=%d suffix=%q", starts, suffix)
	}

	r.ChannelUpdated(orchestration.ChannelRAG, stream.State{IsStreaming: true, Text: "alpha beta", Generation: 1})
	r.ChannelUpdated(orchestration.ChannelGraphRAG, stream.State{IsStreaming: true, Text: "gamma", Generation: 1})
	_, _, suffix := mock.counts()
	if !strings.Contains(suffix, "Traditional RAG 2 words…") || !strings.Contains(suffix, "Graph RAG 1 word…") {
		t.Errorf("suffix = %q", suffix)
	}

	r.End()
	r.End()
	if _, stops, _ := mock.counts(); stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}

	// Updates after End do not touch the spinner.
	r.ChannelUpdated(orchestration.ChannelRAG, stream.State{Text: "late", Generation: 1})
	if _, _, s := mock.counts(); s != suffix {
		t.Errorf("suffix changed after End: %q", s)
	}
}

func TestSpinnerReporter_ChannelFailed(t *testing.T) {
	mock := useMockSpinner(t)
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.InitTheme(true)

	var out bytes.Buffer
	r := NewSpinnerReporter(&out)
	r.Begin()
	r.ChannelFailed(orchestration.ChannelGraphRAG, 0, errors.New("HTTP error! status: 502"))
	r.End()

	if !strings.Contains(out.String(), "⚠ API Error: Graph RAG API failed. Using demo response.") {
		t.Errorf("output = %q", out.String())
	}
	starts, stops, _ := mock.counts()
	if starts != 2 || stops != 2 {
		t.Errorf("spinner should pause around the notice: starts=%d stops=%d", starts, stops)
	}
	if !r.Tracker().Channel(orchestration.ChannelGraphRAG).Failed {
		t.Error("tracker should mark the channel failed")
	}
}

func TestSpinnerReporter_StaleFailure(t *testing.T) {
	useMockSpinner(t)
	var out bytes.Buffer
	r := NewSpinnerReporter(&out)
	r.Begin()
	defer r.End()

	r.ChannelUpdated(orchestration.ChannelRAG, stream.State{IsStreaming: true, Generation: 2})
	r.ChannelFailed(orchestration.ChannelRAG, 1, errors.New("connection refused"))
	if out.Len() != 0 {
		t.Errorf("stale failure printed a notice: %q", out.String())
	}
	if r.Tracker().Channel(orchestration.ChannelRAG).Failed {
		t.Error("stale failure marked the channel failed")
	}
}

func TestSpinnerReporter_StaleUpdate(t *testing.T) {
	mock := useMockSpinner(t)
	r := NewSpinnerReporter(&bytes.Buffer{})
	r.Begin()
	defer r.End()

	r.ChannelUpdated(orchestration.ChannelRAG, stream.State{IsStreaming: true, Text: "one two three", Generation: 2})
	_, _, before := mock.counts()
	r.ChannelUpdated(orchestration.ChannelRAG, stream.State{IsStreaming: true, Text: "old", Generation: 1})
	if _, _, after := mock.counts(); after != before {
		t.Errorf("stale update changed suffix from %q to %q", before, after)
	}
}

func TestFormatChannelProgress(t *testing.T) {
	t.Parallel()
	p := orchestration.NewProgressTracker()
	p.Update(orchestration.ChannelRAG, stream.State{Text: "a b c", Generation: 1})
	p.Update(orchestration.ChannelGraphRAG, stream.State{Text: "demo", Generation: 1})
	p.MarkFailed(orchestration.ChannelGraphRAG, 1)

	got := FormatChannelProgress(p)
	for _, want := range []string{"Traditional RAG 3 words", "Graph RAG 1 word (demo)", " | "} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatChannelProgress() = %q, missing %q", got, want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.7, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}
