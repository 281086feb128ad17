package layout

import "github.com/Ekats/mycelica-layout/internal/models"

// Input carries everything one layout run depends on. The engine holds no
// hidden state between runs: positional continuity works by feeding the
// previous run's Positions back in as Previous.
type Input struct {
	Nodes    []models.DisplayNode
	Edges    []models.DisplayEdge
	Mode     models.LayoutMode
	Viewport models.Viewport
	// Previous is the position map from the immediately prior run, if any.
	Previous map[string]models.Position
	// Saved holds user-dragged coordinates from the position store.
	Saved map[string]models.Position
}

// Result is one complete layout: positions for every visible node, bounding
// circles for ring clusters, and the burst-merge bookkeeping.
type Result struct {
	Positions    map[string]models.Position  `json:"positions"`
	Boundaries   []models.ClusterBoundary    `json:"boundaries,omitempty"`
	MergeMap     map[string]string           `json:"merge_map,omitempty"`
	MergedBodies map[string]string           `json:"merged_bodies,omitempty"`
	Clusters     []Cluster                   `json:"clusters"`
	Mode         models.LayoutMode           `json:"mode"`
}

// Engine computes layouts for one graph view. It carries only tuning
// configuration, so separate views and tests can run engines concurrently
// without cross-contamination.
type Engine struct {
	columns ColumnConfig
}

// NewEngine returns an engine with default sizing.
func NewEngine() *Engine {
	return &Engine{columns: DefaultColumnConfig()}
}

// NewEngineWithConfig returns an engine with custom column sizing; zero
// fields fall back to defaults.
func NewEngineWithConfig(columns ColumnConfig) *Engine {
	return &Engine{columns: columns.normalize()}
}

// Compute runs one full layout pass: detect clusters, merge temporal bursts
// (conversation mode), sequence clusters by cross-edge affinity, place nodes
// on rings or in columns, then resolve against saved and previous positions.
// Deterministic and idempotent for identical inputs.
func (e *Engine) Compute(in Input) Result {
	order, index := indexNodes(in.Nodes)
	edges := dropDanglingEdges(in.Edges, index)

	result := Result{
		Positions:    map[string]models.Position{},
		MergeMap:     map[string]string{},
		MergedBodies: map[string]string{},
		Mode:         in.Mode,
	}
	if len(order) == 0 {
		return result
	}

	detection := DetectClusters(in.Nodes, edges, in.Mode)
	clusters := detection.Clusters

	if in.Mode == models.ModeConversation {
		merged := make([]Cluster, 0, len(clusters))
		for _, c := range clusters {
			burst := MergeBursts(c.Members, index, edges)
			for absorbed, rep := range burst.MergeMap {
				result.MergeMap[absorbed] = rep
			}
			for rep, body := range burst.Bodies {
				result.MergedBodies[rep] = body
			}
			hub := c.HubID
			if rep, ok := result.MergeMap[hub]; ok {
				hub = rep
			}
			merged = append(merged, Cluster{Members: burst.Members, HubID: hub, ThreadID: c.ThreadID})
		}
		clusters = merged
	}

	clusters = SequenceClusters(clusters, edges)
	result.Clusters = clusters

	var computed map[string]models.Position
	if in.Mode == models.ModeConversation {
		computed = LayoutColumns(clusters, index, result.MergedBodies, in.Viewport, e.columns)
	} else {
		computed = LayoutRings(clusters, detection.Degrees, in.Viewport)
	}

	visible := make([]string, 0, len(order))
	for _, id := range order {
		if _, absorbed := result.MergeMap[id]; !absorbed {
			visible = append(visible, id)
		}
	}

	result.Positions = ResolvePositions(visible, in.Mode, in.Viewport, computed, in.Previous, in.Saved)

	if in.Mode != models.ModeConversation {
		result.Boundaries = ComputeBoundaries(clusters, result.Positions)
	}
	return result
}
