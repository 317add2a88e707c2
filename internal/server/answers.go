package server

import (
	"fmt"
	"strings"

	"github.com/agbru/ragcompare/internal/orchestration"
)

// composeAnswer builds the demo backend's answer of ch to question about the
// document docName. Both channels answer differently so the comparison shows
// the contrast between passage retrieval and graph traversal.
func composeAnswer(ch orchestration.ChannelID, question, docName string) string {
	q := strings.TrimSpace(question)
	if docName == "" {
		docName = "the uploaded document"
	}
	if ch == orchestration.ChannelGraphRAG {
		return fmt.Sprintf(`Answer to "%s" from the knowledge graph of %s:

The question maps to a cluster of connected entities. Following their relationships over two hops links the concepts it mentions to the sections that define them and to the results that depend on them.

Entities visited: %d
Relationships traversed: %d

The answer combines facts from several sections that never appear in the same passage.`, q, docName, 3+len(q)%7, 5+len(q)%11)
	}
	return fmt.Sprintf(`Answer to "%s" from the vector index of %s:

The closest passages by embedding similarity were retrieved and summarized. They address the question directly where the document states it in a single place.

Passages retrieved: %d

Relationships spread across distant sections are not taken into account.`, q, docName, 2+len(q)%4)
}
