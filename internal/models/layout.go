package models

// LayoutMode selects the placement strategy. It is passed in explicitly so
// tests and callers are not coupled to data-sniffing; DetectMode reproduces
// the historical inference from node sources.
type LayoutMode int

const (
	// ModeGeneric places clusters on concentric golden-angle rings.
	ModeGeneric LayoutMode = iota
	// ModeConversation lays threads out as vertical message columns.
	ModeConversation
)

func (m LayoutMode) String() string {
	if m == ModeConversation {
		return "conversation"
	}
	return "generic"
}

// MarshalJSON renders the mode as its string name.
func (m LayoutMode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts the string names; anything unknown falls back to
// generic.
func (m *LayoutMode) UnmarshalJSON(data []byte) error {
	if string(data) == `"conversation"` {
		*m = ModeConversation
	} else {
		*m = ModeGeneric
	}
	return nil
}

// DetectMode infers the layout mode from the node set: any Signal-sourced
// node switches the whole view into conversation mode.
func DetectMode(nodes []DisplayNode) LayoutMode {
	for i := range nodes {
		if nodes[i].IsSignal() {
			return ModeConversation
		}
	}
	return ModeGeneric
}

// Position is a resolved 2D placement. W/H are only set for column layout,
// where each message is a sized rectangle.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`
}

// ClusterBoundary is the bounding circle drawn around a multi-member ring
// cluster. Column layout produces none.
type ClusterBoundary struct {
	CX   float64 `json:"cx"`
	CY   float64 `json:"cy"`
	R    float64 `json:"r"`
	Size int     `json:"size"`
}

// Viewport carries the renderer's drawable area, used for centering and the
// ellipse aspect stretch.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the viewport midpoint.
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}
