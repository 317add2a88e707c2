package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Default timings.
const (
	DefaultInterval    = 50 * time.Millisecond
	DefaultSettleDelay = 500 * time.Millisecond
)

// readBufferSize is the size of a single network stream read.
const readBufferSize = 4096

// FetchFunc performs the network call for one generation.
type FetchFunc func(ctx context.Context) (Source, error)

// Config holds the per-controller settings.
type Config struct {
	// Interval is the pause between two revealed tokens.
	Interval time.Duration
	// SettleDelay is the pause before a fallback reveal starts.
	SettleDelay time.Duration
	// OnUpdate, if set, receives every state change in order. It is called
	// from the goroutine driving the reveal, without the controller lock held.
	OnUpdate func(State)
}

// Options configures a single Start call.
type Options struct {
	// Fallback is revealed when the fetch fails. Empty disables the fallback.
	Fallback string
	// OnError is called once with the fetch or stream error and the
	// generation it belongs to. It is not called for a superseded generation.
	OnError func(gen uint64, err error)
	// OnComplete receives the final text when a reveal finishes.
	OnComplete func(string)
	// Simulate enables token-by-token reveal of complete and fallback text.
	// When false a complete answer is shown at once and no fallback is used.
	Simulate bool
}

// DefaultOptions returns options with simulation enabled.
func DefaultOptions() Options {
	return Options{Simulate: true}
}

// Controller reveals one answer at a time.
//
// At most one reveal is active: Start and Reset cancel the previous
// generation before anything else happens.
type Controller struct {
	interval time.Duration
	settle   time.Duration
	onUpdate func(State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewController creates an idle controller. A zero Interval falls back to
// DefaultInterval.
func NewController(cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Controller{
		interval: cfg.Interval,
		settle:   cfg.SettleDelay,
		onUpdate: cfg.OnUpdate,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsStreaming reports whether a reveal is in progress.
func (c *Controller) IsStreaming() bool {
	return c.Snapshot().IsStreaming
}

// Text returns the text revealed so far.
func (c *Controller) Text() string {
	return c.Snapshot().Text
}

// Generation returns the current generation number.
func (c *Controller) Generation() uint64 {
	return c.Snapshot().Generation
}

// Reset cancels any in-flight reveal and returns the controller to idle with
// empty text. It is safe to call at any time.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = State{Generation: c.state.Generation + 1}
	st := c.state
	c.mu.Unlock()
	c.emit(st)
}

// Start resets the controller, runs fetch and reveals its result. It blocks
// until this generation reaches a terminal state and returns its outcome.
//
// The fetch runs with ctx, not with the generation context: a later Start or
// Reset does not abort the call itself, but its result is dropped.
func (c *Controller) Start(ctx context.Context, fetch FetchFunc, opts Options) Outcome {
	runCtx, gen := c.begin(ctx)
	defer c.release(gen)

	type fetchResult struct {
		src Source
		err error
	}
	results := make(chan fetchResult, 1)
	go func() {
		src, err := fetch(ctx)
		results <- fetchResult{src: src, err: err}
	}()

	var res fetchResult
	select {
	case <-runCtx.Done():
		go func() {
			r := <-results
			r.src.close()
		}()
		return Outcome{Canceled: true}
	case res = <-results:
	}
	if runCtx.Err() != nil {
		res.src.close()
		return Outcome{Canceled: true}
	}

	if res.err != nil {
		return c.fail(runCtx, gen, res.err, opts)
	}

	switch res.src.Kind {
	case KindNetworkStream:
		return c.consume(runCtx, gen, res.src.Body, opts)
	case KindFallbackText:
		return c.revealFallback(runCtx, gen, res.src.Text, nil, opts)
	default:
		if !opts.Simulate {
			if !c.apply(gen, res.src.Text, false) {
				return Outcome{Canceled: true}
			}
			complete(opts, res.src.Text)
			return Outcome{Text: res.src.Text}
		}
		if !c.reveal(runCtx, gen, res.src.Text) {
			return Outcome{Canceled: true}
		}
		complete(opts, res.src.Text)
		return Outcome{Text: res.src.Text}
	}
}

// begin starts a new generation in the streaming state.
func (c *Controller) begin(parent context.Context) (context.Context, uint64) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.state = State{IsStreaming: true, Generation: c.state.Generation + 1}
	st := c.state
	c.mu.Unlock()
	c.emit(st)
	return ctx, st.Generation
}

// release ends generation gen. If the caller's context was cancelled before a
// terminal state was reached, the controller stops streaming but keeps the
// partial text.
func (c *Controller) release(gen uint64) {
	c.mu.Lock()
	if c.state.Generation != gen {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	changed := c.state.IsStreaming
	c.state.IsStreaming = false
	st := c.state
	c.mu.Unlock()
	if changed {
		c.emit(st)
	}
}

// apply sets the state of generation gen. It returns false when gen is stale.
func (c *Controller) apply(gen uint64, text string, streaming bool) bool {
	c.mu.Lock()
	if c.state.Generation != gen {
		c.mu.Unlock()
		return false
	}
	c.state.Text = text
	c.state.IsStreaming = streaming
	st := c.state
	c.mu.Unlock()
	c.emit(st)
	return true
}

// current reports whether gen is still the newest generation.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Generation == gen
}

func (c *Controller) emit(st State) {
	if c.onUpdate != nil {
		c.onUpdate(st)
	}
}

// fail reports err and either reveals the fallback or goes quietly idle.
func (c *Controller) fail(ctx context.Context, gen uint64, err error, opts Options) Outcome {
	if !c.current(gen) {
		return Outcome{Canceled: true}
	}
	if opts.OnError != nil {
		opts.OnError(gen, err)
	}
	if opts.Fallback == "" || !opts.Simulate {
		if !c.apply(gen, "", false) {
			return Outcome{Canceled: true}
		}
		return Outcome{Err: err}
	}
	return c.revealFallback(ctx, gen, opts.Fallback, err, opts)
}

// revealFallback discards any partial text, waits for the settle delay and
// reveals text token by token.
func (c *Controller) revealFallback(ctx context.Context, gen uint64, text string, cause error, opts Options) Outcome {
	if !c.apply(gen, "", true) {
		return Outcome{Canceled: true}
	}
	if c.settle > 0 {
		timer := time.NewTimer(c.settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Outcome{Canceled: true}
		case <-timer.C:
		}
	}
	if !c.reveal(ctx, gen, text) {
		return Outcome{Canceled: true}
	}
	complete(opts, text)
	return Outcome{Text: text, Err: cause, UsedFallback: true}
}

// reveal shows text one space-delimited token per interval. Tokens are
// rejoined with a single space, so the final text equals the input.
func (c *Controller) reveal(ctx context.Context, gen uint64, text string) bool {
	if text == "" {
		return c.apply(gen, "", false)
	}
	tokens := strings.Split(text, " ")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var b strings.Builder
	b.Grow(len(text))
	for i, tok := range tokens {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		if !c.apply(gen, b.String(), i < len(tokens)-1) {
			return false
		}
	}
	return true
}

// consume appends chunks from body as they arrive. A read error other than
// EOF is handled like a failed fetch.
func (c *Controller) consume(ctx context.Context, gen uint64, body io.ReadCloser, opts Options) Outcome {
	defer body.Close()
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer stop()

	var (
		b       strings.Builder
		pending []byte
		buf     = make([]byte, readBufferSize)
	)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			valid, rest := splitValidUTF8(pending)
			if len(valid) > 0 {
				b.Write(valid)
				if !c.apply(gen, b.String(), true) {
					return Outcome{Canceled: true}
				}
			}
			pending = append(pending[:0], rest...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{Canceled: true}
			}
			return c.fail(ctx, gen, err, opts)
		}
	}

	// A truncated sequence at EOF is kept as is.
	b.Write(pending)
	text := b.String()
	if !c.apply(gen, text, false) {
		return Outcome{Canceled: true}
	}
	complete(opts, text)
	return Outcome{Text: text}
}

func complete(opts Options, text string) {
	if opts.OnComplete != nil {
		opts.OnComplete(text)
	}
}

// splitValidUTF8 splits b before a multi-byte sequence left incomplete at its
// end.
func splitValidUTF8(b []byte) (valid, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b, nil
		}
		return b[:i], b[i:]
	}
	return b, nil
}
