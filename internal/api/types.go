package api

import (
	"context"
	"io"
	"strings"

	"github.com/agbru/ragcompare/internal/stream"
)

// Endpoint paths, appended verbatim to the base URL.
const (
	EndpointUpload        = "/documents/upload"
	EndpointRAGQuery      = "/rag/query"
	EndpointGraphRAGQuery = "/graph-rag/query"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// StreamContentType is the media type marker of a chunked answer.
const StreamContentType = "text/stream"

// QueryRequest is the JSON body of both query endpoints.
type QueryRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"document_id"`
}

// UploadAck is the JSON acknowledgment of the upload endpoint. Fields other
// than document_id are ignored.
type UploadAck struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status,omitempty"`
	Pages      int    `json:"pages,omitempty"`
}

// Querier sends a question to one of the two backends.
type Querier interface {
	QueryRAG(ctx context.Context, question, documentID string) (stream.Source, error)
	QueryGraphRAG(ctx context.Context, question, documentID string) (stream.Source, error)
}

// Uploader sends a document to the backend.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (UploadAck, error)
}

// Backend is the full client surface.
type Backend interface {
	Querier
	Uploader
}

// IsStreamContentType reports whether a Content-Type header announces a
// chunked text answer.
func IsStreamContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), StreamContentType)
}
