package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/config"
	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/stream"
)

// Errors returned by Ask and Wait.
var (
	ErrEmptyQuestion = apperrors.ValidationError{Field: "question", Message: "must not be empty"}
	ErrBusy          = errors.New("a question is already being answered")
	ErrNoRound       = errors.New("no question has been submitted")
)

// Settings configures an Orchestrator.
type Settings struct {
	Interval    time.Duration
	SettleDelay time.Duration
	Simulate    bool
	DocumentID  string
}

// SettingsFromConfig extracts the orchestrator settings from the application
// configuration.
func SettingsFromConfig(cfg config.AppConfig) Settings {
	return Settings{
		Interval:    cfg.RevealInterval,
		SettleDelay: cfg.SettleDelay,
		Simulate:    cfg.Simulate,
		DocumentID:  cfg.DocumentID,
	}
}

// round is one submitted question. done is closed once cmp is final.
type round struct {
	done chan struct{}
	cmp  Comparison
}

// Orchestrator owns one streaming controller per channel and runs both for
// each submitted question.
type Orchestrator struct {
	querier     api.Querier
	reporter    Reporter
	logger      logging.Logger
	simulate    bool
	controllers [NumChannels]*stream.Controller

	mu       sync.Mutex
	docID    string
	seq      uint64
	running  bool
	answered bool
	current  *round
}

// New creates an orchestrator. A nil reporter or logger is replaced by a
// no-op implementation.
func New(q api.Querier, s Settings, reporter Reporter, logger logging.Logger) *Orchestrator {
	if reporter == nil {
		reporter = NullReporter{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	docID := s.DocumentID
	if docID == "" {
		docID = config.DefaultDocumentID
	}
	o := &Orchestrator{
		querier:  q,
		reporter: reporter,
		logger:   logger,
		simulate: s.Simulate,
		docID:    docID,
	}
	for _, ch := range AllChannels {
		channel := ch
		o.controllers[ch] = stream.NewController(stream.Config{
			Interval:    s.Interval,
			SettleDelay: s.SettleDelay,
			OnUpdate: func(st stream.State) {
				o.reporter.ChannelUpdated(channel, st)
			},
		})
	}
	return o
}

// Submit starts answering question on both channels and returns immediately.
// It is a no-op returning false when question is blank or a previous
// question is still being answered.
func (o *Orchestrator) Submit(ctx context.Context, question string) bool {
	if strings.TrimSpace(question) == "" {
		return false
	}

	o.mu.Lock()
	if o.running || o.anyStreaming() {
		o.mu.Unlock()
		return false
	}
	o.seq++
	r := &round{
		done: make(chan struct{}),
		cmp: Comparison{
			Question:   question,
			DocumentID: o.docID,
			Round:      o.seq,
			StartedAt:  time.Now(),
		},
	}
	o.current = r
	o.running = true
	o.answered = false
	o.mu.Unlock()

	for _, c := range o.controllers {
		c.Reset()
	}
	o.logger.Info("question submitted",
		logging.Uint64("round", r.cmp.Round),
		logging.String("document_id", r.cmp.DocumentID),
		logging.Int("question_length", len(question)),
	)

	go o.run(ctx, r)
	return true
}

// run starts both channels concurrently and waits for the slower one.
func (o *Orchestrator) run(ctx context.Context, r *round) {
	results := make([]ChannelResult, NumChannels)
	g, gctx := errgroup.WithContext(ctx)

	for i, ch := range AllChannels {
		idx, channel := i, ch
		g.Go(func() error {
			start := time.Now()
			fetch := channel.fetcher(o.querier, r.cmp.Question, r.cmp.DocumentID)
			out := o.controllers[idx].Start(gctx, fetch, o.options(channel, r.cmp.Question))
			results[idx] = ChannelResult{
				Channel: channel, Name: channel.String(), Outcome: out, Duration: time.Since(start),
			}
			return nil
		})
	}
	_ = g.Wait()
	r.cmp.Results = results

	o.mu.Lock()
	current := o.current == r
	o.running = false
	if current {
		o.answered = true
	}
	o.mu.Unlock()
	close(r.done)

	if !current {
		return
	}
	for _, res := range results {
		o.logger.Debug("channel settled",
			logging.String("channel", res.Name),
			logging.Bool("fallback", res.Outcome.UsedFallback),
			logging.Bool("canceled", res.Outcome.Canceled),
			logging.Duration("duration", res.Duration),
		)
	}
	o.reporter.RoundAnswered(r.cmp)
}

func (o *Orchestrator) options(ch ChannelID, question string) stream.Options {
	return stream.Options{
		Fallback: FallbackAnswer(ch, question),
		Simulate: o.simulate,
		OnError: func(gen uint64, err error) {
			qe := apperrors.QueryError{Channel: ch.String(), Cause: err}
			o.logger.Warn("channel failed, using demo response",
				logging.String("channel", ch.String()),
				logging.Err(err),
			)
			o.reporter.ChannelFailed(ch, gen, qe)
		},
	}
}

// anyStreaming must be called with o.mu held.
func (o *Orchestrator) anyStreaming() bool {
	for _, c := range o.controllers {
		if c.IsStreaming() {
			return true
		}
	}
	return false
}

// Wait blocks until the most recent round settles and returns its
// comparison.
func (o *Orchestrator) Wait(ctx context.Context) (Comparison, error) {
	o.mu.Lock()
	r := o.current
	o.mu.Unlock()
	if r == nil {
		return Comparison{}, ErrNoRound
	}
	select {
	case <-ctx.Done():
		return Comparison{}, ctx.Err()
	case <-r.done:
		return r.cmp, nil
	}
}

// Ask submits question and waits for both answers.
func (o *Orchestrator) Ask(ctx context.Context, question string) (Comparison, error) {
	if strings.TrimSpace(question) == "" {
		return Comparison{}, ErrEmptyQuestion
	}
	if !o.Submit(ctx, question) {
		return Comparison{}, ErrBusy
	}
	return o.Wait(ctx)
}

// Reset cancels the current round and clears both channels.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.current = nil
	o.answered = false
	o.mu.Unlock()
	for _, c := range o.controllers {
		c.Reset()
	}
}

// Answered reports whether both channels of the current round are terminal.
func (o *Orchestrator) Answered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.answered
}

// IsBusy reports whether at least one channel is still streaming.
func (o *Orchestrator) IsBusy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running || o.anyStreaming()
}

// Round returns the number of the most recently submitted question.
func (o *Orchestrator) Round() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq
}

// Snapshot returns the current state of channel ch.
func (o *Orchestrator) Snapshot(ch ChannelID) stream.State {
	return o.controllers[ch].Snapshot()
}

// DocumentID returns the identifier sent with every question.
func (o *Orchestrator) DocumentID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docID
}

// SetDocumentID replaces the identifier sent with the next questions.
func (o *Orchestrator) SetDocumentID(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	o.mu.Lock()
	o.docID = id
	o.mu.Unlock()
}

// AnalyzeComparison presents a finished comparison and returns the exit code
// it maps to.
//
// Returns:
//   - ExitSuccess when at least one channel answered from its backend.
//   - ExitErrorDegraded when every channel fell back to its demo answer.
//   - ExitErrorCanceled when the round was interrupted.
func AnalyzeComparison(cmp Comparison, presenter ComparisonPresenter, out io.Writer) int {
	if err := presenter.PresentComparison(cmp, out); err != nil {
		fmt.Fprintf(out, "\nError presenting results: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	canceled, failed := 0, 0
	for _, res := range cmp.Results {
		switch {
		case res.Outcome.Canceled:
			canceled++
		case res.Outcome.Err != nil:
			failed++
		}
	}

	switch {
	case canceled > 0:
		fmt.Fprintf(out, "\nGlobal Status: Interrupted.\n")
		return apperrors.ExitErrorCanceled
	case len(cmp.Results) > 0 && failed == len(cmp.Results):
		fmt.Fprintf(out, "\nGlobal Status: Degraded. No backend could answer; demo responses shown.\n")
		return apperrors.ExitErrorDegraded
	case failed > 0:
		fmt.Fprintf(out, "\nGlobal Status: Partial. %d of %d backends answered.\n", len(cmp.Results)-failed, len(cmp.Results))
	default:
		fmt.Fprintf(out, "\nGlobal Status: Success. Both backends answered.\n")
	}
	return apperrors.ExitSuccess
}
