package orchestration

import "fmt"

const ragFallbackTemplate = `Traditional RAG Response for "%s":

Based on the vector similarity search through the document chunks, here's what I found:

This approach uses dense vector representations to find semantically similar passages from your uploaded document. The retrieval is based on cosine similarity between the question embedding and document chunk embeddings.

Key findings:
• Direct text matches from relevant document sections
• Context is limited to the most similar chunks
• Good for straightforward factual questions
• May miss complex relationships between entities

The traditional RAG approach excels at finding direct textual evidence but may struggle with queries requiring understanding of complex relationships or multi-hop reasoning across different parts of the document.`

const graphRAGFallbackTemplate = `Graph RAG Response for "%s":

Using the knowledge graph representation, here's a more comprehensive analysis:

This approach leverages the entity-relationship structure extracted from your document, allowing for more sophisticated reasoning about connections between concepts.

Graph-based insights:
• Identified relevant entities and their relationships
• Multi-hop reasoning across connected concepts
• Context from relationship traversal
• Enhanced understanding of entity dependencies
• Cross-referenced information from multiple document sections

Advantages of Graph RAG:
✓ Better handling of complex, multi-part questions
✓ Understanding of implicit relationships
✓ More contextually aware responses
✓ Ability to synthesize information from disconnected text segments

The graph-based approach provides richer context by understanding how different pieces of information relate to each other, leading to more nuanced and comprehensive answers.`

// FallbackAnswer returns the demo answer revealed when ch's backend fails.
func FallbackAnswer(ch ChannelID, question string) string {
	if ch == ChannelGraphRAG {
		return fmt.Sprintf(graphRAGFallbackTemplate, question)
	}
	return fmt.Sprintf(ragFallbackTemplate, question)
}

// SampleQuestions are suggested to the user before the first answer.
var SampleQuestions = [...]string{
	"What are the main concepts discussed in the document?",
	"How are different entities related to each other?",
	"Summarize the key findings from the research?",
	"What methodology was used in this study?",
}
