package orchestration

import (
	"context"
	"fmt"

	"github.com/agbru/ragcompare/internal/api"
	"github.com/agbru/ragcompare/internal/stream"
)

// ChannelID identifies one of the two compared backends.
type ChannelID int

const (
	// ChannelRAG is the traditional, vector-similarity RAG backend.
	ChannelRAG ChannelID = iota
	// ChannelGraphRAG is the knowledge-graph RAG backend.
	ChannelGraphRAG
)

// NumChannels is the number of compared backends.
const NumChannels = 2

// AllChannels lists the channels in display order.
var AllChannels = [NumChannels]ChannelID{ChannelRAG, ChannelGraphRAG}

// String returns the display name of the channel.
func (c ChannelID) String() string {
	switch c {
	case ChannelRAG:
		return "Traditional RAG"
	case ChannelGraphRAG:
		return "Graph RAG"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Short returns a compact label for narrow layouts.
func (c ChannelID) Short() string {
	switch c {
	case ChannelRAG:
		return "rag"
	case ChannelGraphRAG:
		return "graph-rag"
	default:
		return c.String()
	}
}

// Endpoint returns the API path of the channel.
func (c ChannelID) Endpoint() string {
	if c == ChannelGraphRAG {
		return api.EndpointGraphRAGQuery
	}
	return api.EndpointRAGQuery
}

// FailureNotice is the transient message shown when the channel's call fails.
func (c ChannelID) FailureNotice() string {
	return c.String() + " API failed. Using demo response."
}

// fetcher binds a channel to its query method.
func (c ChannelID) fetcher(q api.Querier, question, documentID string) stream.FetchFunc {
	if c == ChannelGraphRAG {
		return func(ctx context.Context) (stream.Source, error) {
			return q.QueryGraphRAG(ctx, question, documentID)
		}
	}
	return func(ctx context.Context) (stream.Source, error) {
		return q.QueryRAG(ctx, question, documentID)
	}
}

// ParseChannel resolves a channel from its short name or display name.
func ParseChannel(name string) (ChannelID, bool) {
	for _, ch := range AllChannels {
		if name == ch.Short() || name == ch.String() {
			return ch, true
		}
	}
	return 0, false
}
