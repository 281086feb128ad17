// Package service coordinates layout computation: loading the display graph,
// running the engine, and publishing results to subscribers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ekats/mycelica-layout/internal/layout"
	"github.com/Ekats/mycelica-layout/internal/metrics"
	"github.com/Ekats/mycelica-layout/internal/models"
)

// GraphStore is the persistence surface the layout service needs.
// *db.Client satisfies it.
type GraphStore interface {
	ListNodes(ctx context.Context) ([]models.DisplayNode, error)
	ListEdges(ctx context.Context) ([]models.DisplayEdge, error)
	LoadPositions(ctx context.Context) (map[string]models.Position, error)
	SavePosition(ctx context.Context, nodeID string, pos models.Position) error
	DeletePosition(ctx context.Context, nodeID string) (bool, error)
}

// Publisher receives every freshly computed layout. The server's WebSocket
// hub implements it.
type Publisher interface {
	Publish(result layout.Result)
}

// LayoutService owns the compute loop: load graph, run engine, remember the
// result for positional continuity, publish.
type LayoutService struct {
	store    GraphStore
	engine   *layout.Engine
	metrics  *metrics.Collector
	pub      Publisher
	viewport models.Viewport

	mu        sync.RWMutex
	published *layout.Result
}

// NewLayoutService creates a layout service. Publisher and metrics may be nil.
func NewLayoutService(store GraphStore, engine *layout.Engine, collector *metrics.Collector, pub Publisher, viewport models.Viewport) *LayoutService {
	return &LayoutService{
		store:    store,
		engine:   engine,
		metrics:  collector,
		pub:      pub,
		viewport: viewport,
	}
}

// Recompute loads the graph and saved positions, runs a full layout pass
// seeded with the previous result's positions, and publishes the outcome.
func (s *LayoutService) Recompute(ctx context.Context) (layout.Result, error) {
	loadStart := time.Now()
	nodes, err := s.store.ListNodes(ctx)
	if err != nil {
		return layout.Result{}, fmt.Errorf("load nodes: %w", err)
	}
	edges, err := s.store.ListEdges(ctx)
	if err != nil {
		return layout.Result{}, fmt.Errorf("load edges: %w", err)
	}
	saved, err := s.store.LoadPositions(ctx)
	if err != nil {
		return layout.Result{}, fmt.Errorf("load positions: %w", err)
	}
	s.recordTiming(metrics.StageLoadGraph, time.Since(loadStart))

	mode := models.DetectMode(nodes)

	in := layout.Input{
		Nodes:    nodes,
		Edges:    edges,
		Mode:     mode,
		Viewport: s.viewport,
		Previous: s.previousPositions(),
		Saved:    saved,
	}

	computeStart := time.Now()
	result := s.engine.Compute(in)
	s.recordTiming(metrics.StageCompute, time.Since(computeStart))

	s.mu.Lock()
	s.published = &result
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordLayout(metrics.LayoutCounts{
			Nodes:      len(nodes),
			Edges:      len(edges),
			Clusters:   len(result.Clusters),
			MergedIDs:  len(result.MergeMap),
			Boundaries: len(result.Boundaries),
			Mode:       result.Mode.String(),
		})
	}

	if s.pub != nil {
		pubStart := time.Now()
		s.pub.Publish(result)
		s.recordTiming(metrics.StagePublish, time.Since(pubStart))
	}

	slog.Info("layout recomputed",
		"mode", result.Mode,
		"nodes", len(nodes),
		"edges", len(edges),
		"clusters", len(result.Clusters),
		"merged", len(result.MergeMap))

	return result, nil
}

// Published returns a copy of the most recent layout result.
// The second return is false before the first Recompute.
func (s *LayoutService) Published() (layout.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.published == nil {
		return layout.Result{}, false
	}
	return copyResult(*s.published), true
}

// SavePosition pins a node at user-chosen coordinates and patches the
// published result so readers see the move before the next recompute.
func (s *LayoutService) SavePosition(ctx context.Context, nodeID string, pos models.Position) error {
	if err := s.store.SavePosition(ctx, nodeID, pos); err != nil {
		return err
	}

	s.mu.Lock()
	if s.published != nil {
		if prior, ok := s.published.Positions[nodeID]; ok {
			pos.W = prior.W
			pos.H = prior.H
		}
		s.published.Positions[nodeID] = pos
	}
	s.mu.Unlock()
	return nil
}

// ClearPosition drops a node's pinned coordinates. Returns true if one existed.
func (s *LayoutService) ClearPosition(ctx context.Context, nodeID string) (bool, error) {
	return s.store.DeletePosition(ctx, nodeID)
}

// PlaceNearConnections suggests a spot for a node next to its already
// positioned neighbors: the neighbor centroid when there are several, beside
// the single neighbor when there is one, the viewport center otherwise.
func (s *LayoutService) PlaceNearConnections(nodeID string, edges []models.DisplayEdge) models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cx, cy := s.viewport.Center()
	center := models.Position{X: cx, Y: cy}
	if s.published == nil {
		return center
	}

	var neighbors []models.Position
	for _, e := range edges {
		var other string
		switch nodeID {
		case e.SourceID:
			other = e.TargetID
		case e.TargetID:
			other = e.SourceID
		default:
			continue
		}
		if p, ok := s.published.Positions[other]; ok {
			neighbors = append(neighbors, p)
		}
	}

	switch len(neighbors) {
	case 0:
		return center
	case 1:
		// Offset sideways so the new node does not land on top of its neighbor
		return models.Position{X: neighbors[0].X + 120, Y: neighbors[0].Y}
	}

	var sx, sy float64
	for _, p := range neighbors {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(neighbors))
	return models.Position{X: sx / n, Y: sy / n}
}

func (s *LayoutService) previousPositions() map[string]models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.published == nil {
		return nil
	}
	prev := make(map[string]models.Position, len(s.published.Positions))
	for id, p := range s.published.Positions {
		prev[id] = p
	}
	return prev
}

func (s *LayoutService) recordTiming(stage string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordTiming(stage, d)
	}
}

func copyResult(r layout.Result) layout.Result {
	out := r
	out.Positions = make(map[string]models.Position, len(r.Positions))
	for id, p := range r.Positions {
		out.Positions[id] = p
	}
	out.MergeMap = make(map[string]string, len(r.MergeMap))
	for k, v := range r.MergeMap {
		out.MergeMap[k] = v
	}
	out.MergedBodies = make(map[string]string, len(r.MergedBodies))
	for k, v := range r.MergedBodies {
		out.MergedBodies[k] = v
	}
	out.Boundaries = append([]models.ClusterBoundary(nil), r.Boundaries...)
	out.Clusters = append([]layout.Cluster(nil), r.Clusters...)
	return out
}
