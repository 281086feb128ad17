package service

import (
	"context"
	"testing"

	"github.com/Ekats/mycelica-layout/internal/layout"
	"github.com/Ekats/mycelica-layout/internal/metrics"
	"github.com/Ekats/mycelica-layout/internal/models"
)

type fakeStore struct {
	nodes     []models.DisplayNode
	edges     []models.DisplayEdge
	positions map[string]models.Position
}

func newFakeStore() *fakeStore {
	return &fakeStore{positions: map[string]models.Position{}}
}

func (f *fakeStore) ListNodes(ctx context.Context) ([]models.DisplayNode, error) {
	return f.nodes, nil
}

func (f *fakeStore) ListEdges(ctx context.Context) ([]models.DisplayEdge, error) {
	return f.edges, nil
}

func (f *fakeStore) LoadPositions(ctx context.Context) (map[string]models.Position, error) {
	out := make(map[string]models.Position, len(f.positions))
	for k, v := range f.positions {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SavePosition(ctx context.Context, nodeID string, pos models.Position) error {
	f.positions[nodeID] = pos
	return nil
}

func (f *fakeStore) DeletePosition(ctx context.Context, nodeID string) (bool, error) {
	_, ok := f.positions[nodeID]
	delete(f.positions, nodeID)
	return ok, nil
}

type capturePublisher struct {
	results []layout.Result
}

func (c *capturePublisher) Publish(r layout.Result) {
	c.results = append(c.results, r)
}

func node(id string) models.DisplayNode {
	return models.DisplayNode{ID: id, Title: id, IsItem: true}
}

func edge(id, from, to string) models.DisplayEdge {
	return models.DisplayEdge{ID: id, SourceID: from, TargetID: to, EdgeType: "related"}
}

func testService(store GraphStore, pub Publisher) *LayoutService {
	return NewLayoutService(store, layout.NewEngine(), metrics.NewCollector(), pub, models.Viewport{Width: 1200, Height: 800})
}

func TestRecomputePublishes(t *testing.T) {
	store := newFakeStore()
	store.nodes = []models.DisplayNode{node("a"), node("b"), node("c")}
	store.edges = []models.DisplayEdge{edge("e1", "a", "b")}

	pub := &capturePublisher{}
	svc := testService(store, pub)

	if _, ok := svc.Published(); ok {
		t.Fatal("no result should be published before first recompute")
	}

	result, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(result.Positions) != 3 {
		t.Errorf("positions = %d, want 3", len(result.Positions))
	}
	if result.Mode != models.ModeGeneric {
		t.Errorf("mode = %v, want generic", result.Mode)
	}
	if len(pub.results) != 1 {
		t.Fatalf("published %d results, want 1", len(pub.results))
	}

	got, ok := svc.Published()
	if !ok {
		t.Fatal("expected a published result")
	}
	if len(got.Positions) != 3 {
		t.Errorf("published positions = %d, want 3", len(got.Positions))
	}

	// Published returns a copy; mutating it must not leak back.
	got.Positions["a"] = models.Position{X: -1, Y: -1}
	again, _ := svc.Published()
	if again.Positions["a"].X == -1 {
		t.Error("published result mutation leaked into service")
	}
}

func TestRecomputeUsesPreviousPositions(t *testing.T) {
	store := newFakeStore()
	store.nodes = []models.DisplayNode{node("a"), node("b")}

	svc := testService(store, nil)
	ctx := context.Background()

	first, err := svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("first Recompute failed: %v", err)
	}
	second, err := svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}

	for id, p := range first.Positions {
		q, ok := second.Positions[id]
		if !ok {
			t.Fatalf("node %s missing from second layout", id)
		}
		if p.X != q.X || p.Y != q.Y {
			t.Errorf("node %s moved between identical recomputes: (%f,%f) -> (%f,%f)", id, p.X, p.Y, q.X, q.Y)
		}
	}
}

func TestSavePositionPatchesPublished(t *testing.T) {
	store := newFakeStore()
	store.nodes = []models.DisplayNode{node("a"), node("b")}

	svc := testService(store, nil)
	ctx := context.Background()

	if _, err := svc.Recompute(ctx); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if err := svc.SavePosition(ctx, "a", models.Position{X: 50, Y: 60}); err != nil {
		t.Fatalf("SavePosition failed: %v", err)
	}

	got, _ := svc.Published()
	if p := got.Positions["a"]; p.X != 50 || p.Y != 60 {
		t.Errorf("published position not patched: got (%f,%f)", p.X, p.Y)
	}
	if _, ok := store.positions["a"]; !ok {
		t.Error("position not persisted to store")
	}

	// Saved position survives the next recompute in generic mode
	next, err := svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute after save failed: %v", err)
	}
	if p := next.Positions["a"]; p.X != 50 || p.Y != 60 {
		t.Errorf("saved position not honored on recompute: got (%f,%f)", p.X, p.Y)
	}

	cleared, err := svc.ClearPosition(ctx, "a")
	if err != nil {
		t.Fatalf("ClearPosition failed: %v", err)
	}
	if !cleared {
		t.Error("ClearPosition should report true for existing pin")
	}
}

func TestPlaceNearConnections(t *testing.T) {
	store := newFakeStore()
	store.nodes = []models.DisplayNode{node("a"), node("b"), node("c")}

	svc := testService(store, nil)
	ctx := context.Background()

	// Before any layout the viewport center is the only answer.
	center := svc.PlaceNearConnections("x", nil)
	if center.X != 600 || center.Y != 400 {
		t.Errorf("expected viewport center (600,400), got (%f,%f)", center.X, center.Y)
	}

	if _, err := svc.Recompute(ctx); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	published, _ := svc.Published()

	// No neighbors: center again.
	p := svc.PlaceNearConnections("x", nil)
	if p.X != 600 || p.Y != 400 {
		t.Errorf("no-neighbor placement should be center, got (%f,%f)", p.X, p.Y)
	}

	// One neighbor: offset beside it.
	pa := published.Positions["a"]
	p = svc.PlaceNearConnections("x", []models.DisplayEdge{edge("e1", "x", "a")})
	if p.X != pa.X+120 || p.Y != pa.Y {
		t.Errorf("single-neighbor placement = (%f,%f), want (%f,%f)", p.X, p.Y, pa.X+120, pa.Y)
	}

	// Two neighbors: centroid.
	pb := published.Positions["b"]
	p = svc.PlaceNearConnections("x", []models.DisplayEdge{
		edge("e1", "x", "a"),
		edge("e2", "b", "x"),
	})
	wantX := (pa.X + pb.X) / 2
	wantY := (pa.Y + pb.Y) / 2
	if p.X != wantX || p.Y != wantY {
		t.Errorf("centroid placement = (%f,%f), want (%f,%f)", p.X, p.Y, wantX, wantY)
	}

	// Edges not touching the node are ignored.
	p = svc.PlaceNearConnections("x", []models.DisplayEdge{edge("e3", "a", "b")})
	if p.X != 600 || p.Y != 400 {
		t.Errorf("unrelated edges should fall back to center, got (%f,%f)", p.X, p.Y)
	}
}
