// Package models defines the display-graph data structures consumed by the
// layout engine: nodes, edges, positions, and cluster boundaries.
package models

// Node sources with special layout handling.
const (
	// SourceSignal marks nodes imported from Signal conversations.
	// Their presence switches the layout into conversation mode.
	SourceSignal = "signal"
)

// Edge types the layout engine gives meaning to. The type field is free-form;
// anything else is treated as a plain connection.
const (
	EdgeRepliesTo      = "replies_to"
	EdgeSharesLink     = "shares_link"
	EdgeTemporalThread = "temporal_thread"
	EdgeContains       = "contains"
)

// DefaultEdgeWeight is assumed when an edge carries no explicit weight.
const DefaultEdgeWeight = 0.5

// DisplayNode is the layout engine's read-only view of a graph node.
// Mirrors the nodes table row shape; optional columns stay pointers.
type DisplayNode struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	IsPersonal    bool     `json:"is_personal"`
	IsItem        bool     `json:"is_item"` // false = category node
	Author        *string  `json:"author,omitempty"`
	ContentType   *string  `json:"content_type,omitempty"`
	Source        *string  `json:"source,omitempty"`
	SequenceIndex *int64   `json:"sequence_index,omitempty"` // chronological ordering key
	Tags          *string  `json:"tags,omitempty"`           // JSON string, may carry thread_id
	Content       *string  `json:"content,omitempty"`
}

// Seq returns the node's sequence index, treating a missing value as 0.
func (n *DisplayNode) Seq() int64 {
	if n.SequenceIndex == nil {
		return 0
	}
	return *n.SequenceIndex
}

// Body returns the node's text content or "".
func (n *DisplayNode) Body() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

// AuthorName returns the node's author or "".
func (n *DisplayNode) AuthorName() string {
	if n.Author == nil {
		return ""
	}
	return *n.Author
}

// IsSignal reports whether the node came from a Signal conversation import.
func (n *DisplayNode) IsSignal() bool {
	return n.Source != nil && *n.Source == SourceSignal
}

// DisplayEdge is the layout engine's read-only view of a typed edge.
type DisplayEdge struct {
	ID         string   `json:"id"`
	SourceID   string   `json:"source_id"`
	TargetID   string   `json:"target_id"`
	EdgeType   string   `json:"edge_type"`
	Weight     *float64 `json:"weight,omitempty"`
	IsPersonal bool     `json:"is_personal"`
	EdgeSource *string  `json:"edge_source,omitempty"` // provenance tag
}

// EdgeWeight returns the edge weight, defaulting when unset.
func (e *DisplayEdge) EdgeWeight() float64 {
	if e.Weight == nil {
		return DefaultEdgeWeight
	}
	return *e.Weight
}
