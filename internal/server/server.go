// Package server is a local demo backend implementing the upload and query
// endpoints, so the front-ends can be exercised without the real RAG
// services.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/config"
	"github.com/agbru/ragcompare/internal/logging"
	runtimemetrics "github.com/agbru/ragcompare/internal/metrics"
	"github.com/agbru/ragcompare/internal/orchestration"
)

// Route prefix under which the API is mounted, matching the default base URL.
const apiPrefix = "/api"

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// DefaultChunkDelay is the pause between two chunks of a streamed answer.
const DefaultChunkDelay = 40 * time.Millisecond

// Options configures a Server.
type Options struct {
	Addr string
	// Stream makes query endpoints answer with a chunked text/stream body.
	Stream     bool
	ChunkDelay time.Duration
	Security   SecurityConfig
}

// OptionsFromConfig extracts the server options from the application
// configuration.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{
		Addr:       cfg.ServeAddr,
		Stream:     cfg.ServeStream,
		ChunkDelay: DefaultChunkDelay,
		Security:   DefaultSecurityConfig(),
	}
}

// storedDocument is an uploaded document kept in memory.
type storedDocument struct {
	Name       string
	Size       int64
	UploadedAt time.Time
}

// Server is the demo backend HTTP server.
type Server struct {
	opts       Options
	httpServer *http.Server
	router     chi.Router
	metrics    *Metrics
	memory     *runtimemetrics.MemoryCollector
	logger     logging.Logger
	newID      func() string

	mu   sync.RWMutex
	docs map[string]storedDocument
}

// NewServer creates a demo backend. A nil logger discards output.
func NewServer(opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.ChunkDelay < 0 {
		opts.ChunkDelay = 0
	}
	s := &Server{
		opts:    opts,
		metrics: NewMetrics(),
		memory:  runtimemetrics.NewMemoryCollector(),
		logger:  logger,
		newID:   uuid.NewString,
		docs:    make(map[string]storedDocument),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.chain)

	r.Get("/metrics", s.handleMetrics)
	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post(api.EndpointUpload, s.handleUpload)
		r.Post(api.EndpointRAGQuery, s.handleQuery(orchestration.ChannelRAG))
		r.Post(api.EndpointGraphRAGQuery, s.handleQuery(orchestration.ChannelGraphRAG))
	})
	s.router = r

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// chain applies the security and metrics middlewares to every route.
func (s *Server) chain(next http.Handler) http.Handler {
	return SecurityMiddleware(s.opts.Security, s.metricsMiddleware(next.ServeHTTP))
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("demo backend listening",
		logging.String("addr", ln.Addr().String()),
		logging.Bool("stream", s.opts.Stream),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down demo backend: %w", err)
	}
	s.logger.Info("demo backend stopped")
	return nil
}

// metricsMiddleware tracks active requests, counts and durations.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.metrics.ObserveRequest(routeLabel(r), code, time.Since(start))
	}
}

// routeLabel returns the matched route pattern, so unknown paths do not
// create new series.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("metrics: method not allowed", logging.String("method", r.Method))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// healthReport is the body of the health endpoint.
type healthReport struct {
	Status    string                        `json:"status"`
	Documents int                           `json:"documents"`
	Stream    bool                          `json:"stream"`
	Runtime   runtimemetrics.MemorySnapshot `json:"runtime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	n := len(s.docs)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, healthReport{
		Status:    "ok",
		Documents: n,
		Stream:    s.opts.Stream,
		Runtime:   s.memory.Snapshot(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Security.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.Security.MaxUploadBytes)
	}
	file, hdr, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "missing document: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		http.Error(w, "reading document: "+err.Error(), http.StatusBadRequest)
		return
	}
	if http.DetectContentType(head[:n]) != "application/pdf" {
		http.Error(w, "only PDF documents are accepted", http.StatusUnsupportedMediaType)
		return
	}
	rest, err := io.Copy(io.Discard, file)
	if err != nil {
		http.Error(w, "reading document: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("filename")
	if name == "" {
		name = hdr.Filename
	}
	id := s.newID()
	s.mu.Lock()
	s.docs[id] = storedDocument{Name: name, Size: int64(n) + rest, UploadedAt: time.Now()}
	s.mu.Unlock()
	s.metrics.ObserveUpload()
	s.logger.Info("document uploaded",
		logging.String("document_id", id),
		logging.String("filename", name),
		logging.Int("bytes", n+int(rest)),
	)

	writeJSON(w, http.StatusOK, api.UploadAck{DocumentID: id, Status: "indexed"})
}

func (s *Server) handleQuery(ch orchestration.ChannelID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			http.Error(w, "question must not be empty", http.StatusBadRequest)
			return
		}

		docName := req.DocumentID
		s.mu.RLock()
		if d, ok := s.docs[req.DocumentID]; ok {
			docName = d.Name
		}
		s.mu.RUnlock()

		answer := composeAnswer(ch, req.Question, docName)
		s.metrics.ObserveQuery(ch.Short(), s.opts.Stream)
		s.logger.Debug("answering question",
			logging.String("channel", ch.Short()),
			logging.String("document_id", req.DocumentID),
			logging.String("request_id", r.Header.Get(api.RequestIDHeader)),
		)

		if !s.opts.Stream {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, answer)
			return
		}
		s.streamAnswer(w, r, answer)
	}
}

// streamAnswer writes answer in small chunks, flushing after each one.
func (s *Server) streamAnswer(w http.ResponseWriter, r *http.Request, answer string) {
	w.Header().Set("Content-Type", api.StreamContentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for _, chunk := range chunkText(answer, 12) {
		if _, err := io.WriteString(w, chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		s.metrics.ObserveChunk()
		if s.opts.ChunkDelay == 0 {
			continue
		}
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.opts.ChunkDelay):
		}
	}
}

// chunkText splits s into pieces of about size bytes without splitting a
// UTF-8 sequence.
func chunkText(s string, size int) []string {
	var chunks []string
	for len(s) > 0 {
		n := min(size, len(s))
		for n < len(s) && !utf8.RuneStart(s[n]) {
			n++
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
