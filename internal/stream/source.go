package stream

import (
	"fmt"
	"io"
)

// Kind identifies how a response must be revealed.
type Kind int

const (
	// KindCompleteText is a fully received payload.
	KindCompleteText Kind = iota
	// KindNetworkStream is a body that yields text chunks until EOF.
	KindNetworkStream
	// KindFallbackText is a locally supplied answer used only on failure.
	KindFallbackText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCompleteText:
		return "complete"
	case KindNetworkStream:
		return "stream"
	case KindFallbackText:
		return "fallback"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is a tagged response: Body is set for KindNetworkStream, Text for
// the other kinds.
type Source struct {
	Kind Kind
	Text string
	Body io.ReadCloser
}

// NetworkStream wraps an open body.
func NetworkStream(body io.ReadCloser) Source {
	return Source{Kind: KindNetworkStream, Body: body}
}

// CompleteText wraps a fully received answer.
func CompleteText(text string) Source {
	return Source{Kind: KindCompleteText, Text: text}
}

// FallbackText wraps a local replacement answer.
func FallbackText(text string) Source {
	return Source{Kind: KindFallbackText, Text: text}
}

// close releases the body of a stream source, if any.
func (s Source) close() {
	if s.Body != nil {
		_ = s.Body.Close()
	}
}
