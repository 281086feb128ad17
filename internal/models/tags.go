package models

import "encoding/json"

// NodeTags is the typed view of a node's tags JSON. Only the fields the
// layout engine cares about are decoded; unknown keys are ignored.
type NodeTags struct {
	ThreadID *string `json:"thread_id,omitempty"`
}

// ParseTags decodes a node's tags JSON defensively. Malformed or absent JSON
// yields empty tags rather than an error: a node whose tags cannot be parsed
// is simply treated as threadless.
func ParseTags(raw *string) NodeTags {
	if raw == nil || *raw == "" {
		return NodeTags{}
	}
	var tags NodeTags
	if err := json.Unmarshal([]byte(*raw), &tags); err != nil {
		return NodeTags{}
	}
	if tags.ThreadID != nil && *tags.ThreadID == "" {
		tags.ThreadID = nil
	}
	return tags
}

// ThreadOf returns the node's thread id, or "" when the node is threadless.
func ThreadOf(n *DisplayNode) string {
	tags := ParseTags(n.Tags)
	if tags.ThreadID == nil {
		return ""
	}
	return *tags.ThreadID
}
