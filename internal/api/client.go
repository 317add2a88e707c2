//go:generate mockgen -source=types.go -destination=mocks/mock_api.go -package=mocks

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/stream"
)

// tracerName identifies the spans emitted by this package.
const tracerName = "github.com/agbru/ragcompare/internal/api"

// Client talks to the comparison backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	tracer  trace.Tracer
	logger  logging.Logger
	newID   func() string
}

// Verify interface compliance.
var _ Backend = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a client for baseURL. Each call is bounded by timeout
// until its response is available.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		tracer:  otel.Tracer(tracerName),
		logger:  logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// QueryRAG asks the traditional RAG backend.
func (c *Client) QueryRAG(ctx context.Context, question, documentID string) (stream.Source, error) {
	return c.query(ctx, EndpointRAGQuery, question, documentID)
}

// QueryGraphRAG asks the graph RAG backend.
func (c *Client) QueryGraphRAG(ctx context.Context, question, documentID string) (stream.Source, error) {
	return c.query(ctx, EndpointGraphRAGQuery, question, documentID)
}

func (c *Client) query(ctx context.Context, endpoint, question, documentID string) (stream.Source, error) {
	ctx, span := c.tracer.Start(ctx, "api.query", trace.WithAttributes(
		attribute.String("ragcompare.endpoint", endpoint),
		attribute.String("ragcompare.document_id", documentID),
		attribute.Int("ragcompare.question_length", len(question)),
	))
	defer span.End()

	payload, err := json.Marshal(QueryRequest{Question: question, DocumentID: documentID})
	if err != nil {
		return stream.Source{}, fail(span, err)
	}

	call, err := c.send(ctx, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return stream.Source{}, fail(span, err)
	}

	if IsStreamContentType(call.resp.Header.Get("Content-Type")) {
		span.SetAttributes(attribute.String("ragcompare.response", stream.KindNetworkStream.String()))
		// The deadline covers the wait for the response, not the stream itself.
		call.disarm()
		return stream.NetworkStream(call.body()), nil
	}

	defer call.close()
	data, err := io.ReadAll(call.resp.Body)
	if err != nil {
		return stream.Source{}, fail(span, call.classify(err))
	}
	span.SetAttributes(
		attribute.String("ragcompare.response", stream.KindCompleteText.String()),
		attribute.Int("ragcompare.response_bytes", len(data)),
	)
	return stream.CompleteText(string(data)), nil
}

// Upload sends a document as multipart form data and decodes the JSON
// acknowledgment.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadAck, error) {
	ctx, span := c.tracer.Start(ctx, "api.upload", trace.WithAttributes(
		attribute.String("ragcompare.endpoint", EndpointUpload),
		attribute.String("ragcompare.filename", filename),
	))
	defer span.End()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return UploadAck{}, fail(span, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadAck{}, fail(span, fmt.Errorf("reading %s: %w", filename, err))
	}
	if err := mw.WriteField("filename", filename); err != nil {
		return UploadAck{}, fail(span, err)
	}
	if err := mw.Close(); err != nil {
		return UploadAck{}, fail(span, err)
	}

	call, err := c.send(ctx, EndpointUpload, mw.FormDataContentType(), &buf)
	if err != nil {
		return UploadAck{}, fail(span, err)
	}
	defer call.close()

	var ack UploadAck
	if err := json.NewDecoder(call.resp.Body).Decode(&ack); err != nil {
		return UploadAck{}, fail(span, call.classify(fmt.Errorf("decoding upload acknowledgment: %w", err)))
	}
	span.SetAttributes(attribute.String("ragcompare.document_id", ack.DocumentID))
	return ack, nil
}

// call is an in-flight response guarded by the request timeout.
type call struct {
	resp   *http.Response
	ctx    context.Context
	cancel context.CancelCauseFunc
	timer  *time.Timer
}

// disarm stops the timeout. The request context stays alive until the body
// is closed.
func (c *call) disarm() {
	c.timer.Stop()
}

// close releases the response and its context.
func (c *call) close() {
	c.timer.Stop()
	_ = c.resp.Body.Close()
	c.cancel(nil)
}

// body wraps the response body so that closing it also releases the context.
func (c *call) body() io.ReadCloser {
	return &responseBody{ReadCloser: c.resp.Body, release: func() { c.cancel(nil) }}
}

// classify turns a read error caused by the timeout into a TimeoutError.
func (c *call) classify(err error) error {
	var te apperrors.TimeoutError
	if cause := context.Cause(c.ctx); errors.As(cause, &te) {
		return te
	}
	return err
}

type responseBody struct {
	io.ReadCloser
	release func()
}

func (b *responseBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

// send issues a POST to endpoint. Non-2xx responses are returned as
// HTTPStatusError with the body already closed.
func (c *Client) send(ctx context.Context, endpoint, contentType string, body io.Reader) (*call, error) {
	reqID := c.newID()
	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(c.timeout, func() {
		cancel(apperrors.TimeoutError{Operation: "POST " + endpoint, Limit: c.timeout})
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(RequestIDHeader, reqID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("ragcompare.request_id", reqID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		timer.Stop()
		var te apperrors.TimeoutError
		if cause := context.Cause(ctx); errors.As(cause, &te) {
			err = te
		}
		cancel(nil)
		c.logger.Debug("request failed",
			logging.String("endpoint", endpoint),
			logging.String("request_id", reqID),
			logging.Err(err),
		)
		return nil, err
	}

	c.logger.Debug("response received",
		logging.String("endpoint", endpoint),
		logging.String("request_id", reqID),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	cl := &call{resp: resp, ctx: ctx, cancel: cancel, timer: timer}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cl.close()
		return nil, apperrors.HTTPStatusError{StatusCode: resp.StatusCode}
	}
	return cl, nil
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
