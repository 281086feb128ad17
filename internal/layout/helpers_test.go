package layout

import (
	"fmt"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// node builds a plain generic-graph node.
func node(id string) models.DisplayNode {
	return models.DisplayNode{ID: id, Title: id, IsItem: true}
}

// signalNode builds a conversation node with author, thread tag, sequence
// index, and body text.
func signalNode(id, author, threadID string, seq int64, body string) models.DisplayNode {
	src := models.SourceSignal
	n := models.DisplayNode{
		ID:            id,
		Title:         id,
		IsItem:        true,
		Source:        &src,
		SequenceIndex: &seq,
		Content:       &body,
	}
	if author != "" {
		n.Author = &author
	}
	if threadID != "" {
		tags := fmt.Sprintf(`{"thread_id":%q}`, threadID)
		n.Tags = &tags
	}
	return n
}

// edge builds an untyped edge between two nodes.
func edge(id, from, to string) models.DisplayEdge {
	return models.DisplayEdge{ID: id, SourceID: from, TargetID: to, EdgeType: "related"}
}

// typedEdge builds an edge with an explicit type.
func typedEdge(id, from, to, edgeType string) models.DisplayEdge {
	return models.DisplayEdge{ID: id, SourceID: from, TargetID: to, EdgeType: edgeType}
}

// memberSet flattens cluster membership for partition checks.
func memberSet(clusters []Cluster) map[string]int {
	seen := map[string]int{}
	for _, c := range clusters {
		for _, id := range c.Members {
			seen[id]++
		}
	}
	return seen
}

func testViewport() models.Viewport {
	return models.Viewport{Width: 1200, Height: 800}
}
