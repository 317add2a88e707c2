package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/logging"
	"github.com/agbru/ragcompare/internal/stream"
)

func TestClient_QueryCompleteText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		call     func(*Client, context.Context) (stream.Source, error)
		wantPath string
	}{
		{"rag", func(c *Client, ctx context.Context) (stream.Source, error) {
			return c.QueryRAG(ctx, "What is X?", "doc-1")
		}, EndpointRAGQuery},
		{"graph rag", func(c *Client, ctx context.Context) (stream.Source, error) {
			return c.QueryGraphRAG(ctx, "What is X?", "doc-1")
		}, EndpointGraphRAGQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api"+tt.wantPath {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				if r.Header.Get(RequestIDHeader) == "" {
					t.Error("missing request id")
				}
				var req QueryRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decoding body: %v", err)
				}
				if req.Question != "What is X?" || req.DocumentID != "doc-1" {
					t.Errorf("request = %+v", req)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"answer":"X is a thing"}`)
			}))
			defer srv.Close()

			c := NewClient(srv.URL+"/api/", time.Second)
			src, err := tt.call(c, context.Background())
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if src.Kind != stream.KindCompleteText {
				t.Errorf("Kind = %v", src.Kind)
			}
			if src.Text != `{"answer":"X is a thing"}` {
				t.Errorf("Text = %q, body should be kept verbatim", src.Text)
			}
		})
	}
}

func TestClient_QueryNetworkStream(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/stream; charset=utf-8")
		flusher, _ := w.(http.Flusher)
		for _, chunk := range []string{"Hel", "lo ", "world"} {
			_, _ = io.WriteString(w, chunk)
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(150 * time.Millisecond)
		}
	}))
	defer srv.Close()

	// The stream outlives the timeout: the deadline only covers the wait for
	// the response headers.
	c := NewClient(srv.URL, 200*time.Millisecond)
	src, err := c.QueryRAG(context.Background(), "q", "doc")
	if err != nil {
		t.Fatalf("QueryRAG: %v", err)
	}
	if src.Kind != stream.KindNetworkStream || src.Body == nil {
		t.Fatalf("source = %+v", src)
	}
	defer src.Body.Close()
	data, err := io.ReadAll(src.Body)
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if string(data) != "Hello world" {
		t.Errorf("stream = %q", data)
	}
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.QueryGraphRAG(context.Background(), "q", "doc")
	var he apperrors.HTTPStatusError
	if !errors.As(err, &he) || he.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTPStatusError 500, got %v", err)
	}
	if err.Error() != "HTTP error! status: 500" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()
	unblock := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-unblock:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(unblock)

	c := NewClient(srv.URL, 30*time.Millisecond)
	start := time.Now()
	_, err := c.QueryRAG(context.Background(), "q", "doc")
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout was not enforced")
	}
	var te apperrors.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if te.Limit != 30*time.Millisecond || !strings.Contains(te.Operation, EndpointRAGQuery) {
		t.Errorf("TimeoutError = %+v", te)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout should match context.DeadlineExceeded")
	}
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	if _, err := c.QueryRAG(context.Background(), "q", "doc"); err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointUpload {
			t.Errorf("path = %q", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("filename"); got != "report.pdf" {
			t.Errorf("filename = %q", got)
		}
		f, hdr, err := r.FormFile("document")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "report.pdf" || string(data) != "%PDF-1.4 body" {
			t.Errorf("document = %q (%q)", hdr.Filename, data)
		}
		_, _ = io.WriteString(w, `{"document_id":"doc-42","status":"indexed"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ack, err := c.Upload(context.Background(), "report.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ack.DocumentID != "doc-42" || ack.Status != "indexed" {
		t.Errorf("ack = %+v", ack)
	}
}

func TestClient_UploadInvalidAck(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Upload(context.Background(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected a decoding error")
	}
}

func TestClient_RequestIDs(t *testing.T) {
	t.Parallel()
	ids := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	n := 0
	c := NewClient(srv.URL, time.Second)
	c.newID = func() string {
		n++
		return []string{"", "id-1", "id-2"}[n]
	}
	_, _ = c.QueryRAG(context.Background(), "q", "d")
	_, _ = c.QueryGraphRAG(context.Background(), "q", "d")
	if a, b := <-ids, <-ids; a != "id-1" || b != "id-2" {
		t.Errorf("request ids = %q, %q", a, b)
	}
}

func TestIsStreamContentType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ct   string
		want bool
	}{
		{"text/stream", true},
		{"text/stream; charset=utf-8", true},
		{"Text/Stream", true},
		{"application/json", false},
		{"text/plain", false},
		{"text/event-stream", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsStreamContentType(tt.ct); got != tt.want {
			t.Errorf("IsStreamContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_Options(t *testing.T) {
	t.Parallel()
	var seen []string
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.String())
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(strings.NewReader("offline answer")),
			Request:    r,
		}, nil
	})

	c := NewClient("http://backend.invalid/api", time.Second,
		WithHTTPClient(&http.Client{Transport: transport}),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
		WithLogger(logging.Discard()),
	)
	src, err := c.QueryGraphRAG(context.Background(), "q", "d")
	if err != nil {
		t.Fatalf("QueryGraphRAG: %v", err)
	}
	if src.Text != "offline answer" {
		t.Errorf("Text = %q", src.Text)
	}
	if len(seen) != 1 || seen[0] != "http://backend.invalid/api"+EndpointGraphRAGQuery {
		t.Errorf("requests = %v", seen)
	}
	if c.BaseURL() != "http://backend.invalid/api" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}
