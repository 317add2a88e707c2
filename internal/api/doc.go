// Package api is the HTTP client for the comparison backend.
//
// It knows three endpoints, all relative to a configurable base URL:
//
//	POST /documents/upload   multipart: document (file), filename
//	POST /rag/query          JSON: {"question": ..., "document_id": ...}
//	POST /graph-rag/query    same contract as /rag/query
//
// Query responses are classified once, when they arrive: a Content-Type
// containing "text/stream" yields a stream.NetworkStream, anything else is read
// fully and returned as stream.CompleteText.
package api
