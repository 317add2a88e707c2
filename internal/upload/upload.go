// Package upload sends a PDF to the backend while showing simulated progress.
//
// Progress advances on a fixed tick by a random step, capped at 90% while the
// request is in flight. A failed upload does not block the user: a notice is
// raised, progress keeps advancing with larger steps up to 100% and the
// upload is treated as done with the default document id.
package upload

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/config"
	"github.com/agbru/ragcompare/internal/document"
	"github.com/agbru/ragcompare/internal/logging"
)

// FailureNotice is shown when the upload request fails.
const FailureNotice = "Upload failed. Please try again."

// Progress simulation constants.
const (
	DefaultTick      = 200 * time.Millisecond
	InFlightStep     = 10.0
	InFlightCeiling  = 90.0
	RecoveryStep     = 15.0
	CompletedPercent = 100.0
)

// Phase is the stage of an upload.
type Phase int

const (
	// PhaseUploading means the request is in flight.
	PhaseUploading Phase = iota
	// PhaseRecovering means the request failed and progress is being completed.
	PhaseRecovering
	// PhaseDone means the document can be queried.
	PhaseDone
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUploading:
		return "uploading"
	case PhaseRecovering:
		return "recovering"
	default:
		return "done"
	}
}

// Progress is one progress report.
type Progress struct {
	Percent float64
	Phase   Phase
}

// Result describes a finished upload.
type Result struct {
	Document   document.Info
	DocumentID string
	Ack        api.UploadAck
	// Err is the request error that was masked, if any.
	Err error
}

// Masked reports whether the upload failed and was treated as done.
func (r Result) Masked() bool { return r.Err != nil }

// Handlers receive progress and the failure notice. Both are optional.
type Handlers struct {
	OnProgress func(Progress)
	OnNotice   func(msg string)
}

// Flow runs uploads.
type Flow struct {
	uploader     api.Uploader
	tick         time.Duration
	defaultDocID string
	logger       logging.Logger
	random       func() float64
}

// NewFlow creates an upload flow. A zero tick uses DefaultTick.
func NewFlow(u api.Uploader, tick time.Duration, defaultDocID string, logger logging.Logger) *Flow {
	if tick <= 0 {
		tick = DefaultTick
	}
	if defaultDocID == "" {
		defaultDocID = config.DefaultDocumentID
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Flow{
		uploader:     u,
		tick:         tick,
		defaultDocID: defaultDocID,
		logger:       logger,
		random:       rand.Float64,
	}
}

// Run validates path, uploads it and reports simulated progress until done.
// Only validation errors and context cancellation are returned; a failed
// request is reported through h.OnNotice and Result.Err.
func (f *Flow) Run(ctx context.Context, path string, h Handlers) (Result, error) {
	info, err := document.Inspect(path)
	if err != nil {
		return Result{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer file.Close()

	report := func(p Progress) {
		if h.OnProgress != nil {
			h.OnProgress(p)
		}
	}

	type ackResult struct {
		ack api.UploadAck
		err error
	}
	acks := make(chan ackResult, 1)
	go func() {
		ack, err := f.uploader.Upload(ctx, filepath.Base(path), file)
		acks <- ackResult{ack: ack, err: err}
	}()

	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()

	percent := 0.0
	report(Progress{Percent: percent, Phase: PhaseUploading})

	var res ackResult
wait:
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case res = <-acks:
			break wait
		case <-ticker.C:
			if percent < InFlightCeiling {
				percent = min(percent+f.random()*InFlightStep, InFlightCeiling)
				report(Progress{Percent: percent, Phase: PhaseUploading})
			}
		}
	}

	result := Result{Document: info, DocumentID: f.defaultDocID, Ack: res.ack}
	if res.err == nil {
		if res.ack.DocumentID != "" {
			result.DocumentID = res.ack.DocumentID
		}
		f.logger.Info("document uploaded",
			logging.String("file", info.Name),
			logging.String("document_id", result.DocumentID),
		)
		report(Progress{Percent: CompletedPercent, Phase: PhaseDone})
		return result, nil
	}

	result.Err = res.err
	f.logger.Warn("upload failed, continuing with simulated upload",
		logging.String("file", info.Name),
		logging.Err(res.err),
	)
	if h.OnNotice != nil {
		h.OnNotice(FailureNotice)
	}
	for percent < CompletedPercent {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
			percent = min(percent+f.random()*RecoveryStep, CompletedPercent)
			phase := PhaseRecovering
			if percent >= CompletedPercent {
				phase = PhaseDone
			}
			report(Progress{Percent: percent, Phase: phase})
		}
	}
	return result, nil
}
