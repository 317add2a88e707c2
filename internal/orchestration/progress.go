package orchestration

import (
	"strings"
	"sync"
	"time"

	"github.com/agbru/ragcompare/internal/stream"
)

// ProgressTracker aggregates the reveal progress of both channels.
// It drops states from generations older than the newest one seen, so a
// late update from a superseded reveal cannot move the counters backwards.
// Both the CLI spinner and the REPL status line use it.
type ProgressTracker struct {
	mu       sync.Mutex
	started  time.Time
	channels [NumChannels]ChannelProgress
}

// ChannelProgress is the tracked progress of one channel.
type ChannelProgress struct {
	Generation uint64
	Words      int
	Bytes      int
	Streaming  bool
	Failed     bool
}

// NewProgressTracker creates a tracker whose elapsed time starts now.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{started: time.Now()}
}

// Update records st for ch. It returns false when st is stale.
func (p *ProgressTracker) Update(ch ChannelID, st stream.State) bool {
	if ch < 0 || int(ch) >= NumChannels {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := &p.channels[ch]
	if st.Generation < cur.Generation {
		return false
	}
	if st.Generation > cur.Generation {
		cur.Failed = false
	}
	cur.Generation = st.Generation
	cur.Words = len(strings.Fields(st.Text))
	cur.Bytes = len(st.Text)
	cur.Streaming = st.IsStreaming
	return true
}

// MarkFailed records that ch's network call failed in generation gen. It
// returns false when gen is older than the newest generation seen.
func (p *ProgressTracker) MarkFailed(ch ChannelID, gen uint64) bool {
	if ch < 0 || int(ch) >= NumChannels {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := &p.channels[ch]
	if gen < cur.Generation {
		return false
	}
	if gen > cur.Generation {
		*cur = ChannelProgress{Generation: gen}
	}
	cur.Failed = true
	return true
}

// Channel returns the progress of ch.
func (p *ProgressTracker) Channel(ch ChannelID) ChannelProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels[ch]
}

// TotalWords returns the number of words revealed across both channels.
func (p *ProgressTracker) TotalWords() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, c := range p.channels {
		total += c.Words
	}
	return total
}

// Streaming reports whether any channel is still streaming.
func (p *ProgressTracker) Streaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.channels {
		if c.Streaming {
			return true
		}
	}
	return false
}

// Elapsed returns the time since the tracker was created or restarted.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.started)
}

// Restart clears the counters and restarts the elapsed clock. Generations are
// kept so that stale updates are still rejected.
func (p *ProgressTracker) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = time.Now()
	for i := range p.channels {
		gen := p.channels[i].Generation
		p.channels[i] = ChannelProgress{Generation: gen}
	}
}
