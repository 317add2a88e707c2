package orchestration

import (
	"testing"
	"time"

	"github.com/agbru/ragcompare/internal/stream"
)

func TestProgressTracker_Update(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()

	if !p.Update(ChannelRAG, stream.State{IsStreaming: true, Text: "alpha beta", Generation: 2}) {
		t.Fatal("first update should be accepted")
	}
	got := p.Channel(ChannelRAG)
	if got.Words != 2 || got.Bytes != 10 || !got.Streaming || got.Generation != 2 {
		t.Errorf("progress = %+v", got)
	}
	if !p.Streaming() {
		t.Error("tracker should report streaming")
	}
}

func TestProgressTracker_RejectsStaleGeneration(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()
	p.Update(ChannelGraphRAG, stream.State{IsStreaming: true, Text: "new answer", Generation: 4})

	if p.Update(ChannelGraphRAG, stream.State{IsStreaming: true, Text: "old answer that is longer", Generation: 3}) {
		t.Error("stale update should be rejected")
	}
	if got := p.Channel(ChannelGraphRAG); got.Words != 2 {
		t.Errorf("stale update changed words to %d", got.Words)
	}
}

func TestProgressTracker_InvalidChannel(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()
	if p.Update(ChannelID(7), stream.State{Generation: 1}) {
		t.Error("unknown channel should be rejected")
	}
	if p.MarkFailed(ChannelID(-1), 1) {
		t.Error("unknown channel failure should be rejected")
	}
}

func TestProgressTracker_FailedResetsOnNewGeneration(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()
	p.Update(ChannelRAG, stream.State{IsStreaming: true, Generation: 1})
	p.MarkFailed(ChannelRAG, 1)
	if !p.Channel(ChannelRAG).Failed {
		t.Fatal("channel should be marked failed")
	}
	p.Update(ChannelRAG, stream.State{IsStreaming: true, Generation: 1, Text: "demo"})
	if !p.Channel(ChannelRAG).Failed {
		t.Error("failure should survive updates of the same generation")
	}
	p.Update(ChannelRAG, stream.State{Generation: 2})
	if p.Channel(ChannelRAG).Failed {
		t.Error("failure should be cleared by a new generation")
	}
}

func TestProgressTracker_MarkFailedGenerations(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()
	p.Update(ChannelGraphRAG, stream.State{IsStreaming: true, Text: "fresh words", Generation: 2})

	if p.MarkFailed(ChannelGraphRAG, 1) {
		t.Error("failure of an older generation should be rejected")
	}
	if got := p.Channel(ChannelGraphRAG); got.Failed || got.Words != 2 {
		t.Errorf("stale failure changed progress: %+v", got)
	}

	if !p.MarkFailed(ChannelGraphRAG, 3) {
		t.Fatal("failure of a newer generation should be accepted")
	}
	if got := p.Channel(ChannelGraphRAG); !got.Failed || got.Generation != 3 || got.Words != 0 {
		t.Errorf("progress after newer failure: %+v", got)
	}
	if p.Update(ChannelGraphRAG, stream.State{Generation: 2}) {
		t.Error("state older than the failure should be rejected")
	}
}

func TestProgressTracker_TotalsAndRestart(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker()
	p.Update(ChannelRAG, stream.State{Text: "one two three", Generation: 1})
	p.Update(ChannelGraphRAG, stream.State{Text: "four", Generation: 1})
	if got := p.TotalWords(); got != 4 {
		t.Errorf("TotalWords = %d, want 4", got)
	}

	time.Sleep(5 * time.Millisecond)
	before := p.Elapsed()
	p.Restart()
	if p.TotalWords() != 0 {
		t.Error("Restart should clear counters")
	}
	if p.Elapsed() >= before {
		t.Error("Restart should reset the elapsed clock")
	}
	if p.Update(ChannelRAG, stream.State{Text: "stale", Generation: 0}) {
		t.Error("Restart should keep generations")
	}
}
