// Package notify keeps the single transient notice shown to the user.
//
// A newer notice replaces the current one. Each notice carries an id, and a
// dismissal for an id that is no longer current is ignored, so the timer of a
// replaced notice cannot hide its successor.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notice stays visible.
const DefaultDuration = 5 * time.Second

// Level is the severity of a notice.
type Level int

const (
	LevelError Level = iota
	LevelInfo
)

// String returns the level name.
func (l Level) String() string {
	if l == LevelInfo {
		return "info"
	}
	return "error"
}

// Notice is a transient message.
type Notice struct {
	ID        uint64
	Message   string
	Level     Level
	CreatedAt time.Time
}

// Title is the heading rendered above the message.
func (n Notice) Title() string {
	if n.Level == LevelInfo {
		return "Notice"
	}
	return "API Error"
}

// ChangeFunc is called after a notice is shown (visible=true) or dismissed.
type ChangeFunc func(n Notice, visible bool)

// Center holds the current notice and auto-dismisses it.
type Center struct {
	duration time.Duration
	onChange ChangeFunc

	mu      sync.Mutex
	seq     uint64
	current *Notice
	timer   *time.Timer
}

// NewCenter creates a Center. A zero duration disables auto-dismissal.
func NewCenter(duration time.Duration, onChange ChangeFunc) *Center {
	return &Center{duration: duration, onChange: onChange}
}

// Duration returns the auto-dismiss delay.
func (c *Center) Duration() time.Duration { return c.duration }

// Error shows an error notice.
func (c *Center) Error(msg string) Notice { return c.show(msg, LevelError) }

// Info shows an informational notice.
func (c *Center) Info(msg string) Notice { return c.show(msg, LevelInfo) }

func (c *Center) show(msg string, level Level) Notice {
	c.mu.Lock()
	c.seq++
	n := Notice{ID: c.seq, Message: msg, Level: level, CreatedAt: time.Now()}
	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.duration > 0 {
		id := n.ID
		c.timer = time.AfterFunc(c.duration, func() { c.Dismiss(id) })
	}
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(n, true)
	}
	return n
}

// Dismiss hides the notice with the given id. It returns false when that
// notice is not the current one.
func (c *Center) Dismiss(id uint64) bool {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return false
	}
	n := *c.current
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(n, false)
	}
	return true
}

// Current returns the visible notice, if any.
func (c *Center) Current() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notice{}, false
	}
	return *c.current, true
}

// Close stops the pending auto-dismiss timer.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
