package document

import "github.com/agbru/ragcompare/internal/format"

// GraphStats summarizes the knowledge graph built from a document.
type GraphStats struct {
	Nodes         int
	Relationships int
	// Accuracy is a ratio in [0,1].
	Accuracy float64
}

// PlaceholderGraphStats returns the figures shown until a backend supplies
// real ones.
func PlaceholderGraphStats() GraphStats {
	return GraphStats{Nodes: 247, Relationships: 1432, Accuracy: 0.89}
}

// Cards returns the stat cards in display order as label/value pairs.
func (g GraphStats) Cards() [][2]string {
	return [][2]string{
		{"Nodes", format.FormatCount(g.Nodes)},
		{"Relationships", format.FormatCount(g.Relationships)},
		{"Accuracy", format.FormatPercent(g.Accuracy)},
	}
}

// Texts of the knowledge graph tab.
const (
	GraphTitle          = "Knowledge Graph Visualization"
	GraphSubtitle       = "Entities and relationships extracted from your documents"
	GraphLoadingNotice  = "Graph Visualization Loading..."
	GraphLoadingDetail  = "Your knowledge graph is being processed."
	GraphProcessingNote = "Processing entities and relationships"
)
