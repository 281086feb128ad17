package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/Ekats/mycelica-layout/internal/models"
)

func TestRingCapacities(t *testing.T) {
	macroWant := map[int]int{0: 1, 1: 4, 2: 6, 3: 8, 4: 8, 10: 8}
	for r, want := range macroWant {
		if got := macroRingCapacity(r); got != want {
			t.Errorf("macroRingCapacity(%d) = %d, want %d", r, got, want)
		}
	}
	microWant := map[int]int{0: 1, 1: 6, 2: 8, 3: 10, 4: 10, 10: 10}
	for r, want := range microWant {
		if got := microRingCapacity(r); got != want {
			t.Errorf("microRingCapacity(%d) = %d, want %d", r, got, want)
		}
	}
}

func TestMicroFootprint(t *testing.T) {
	tests := []struct {
		members int
		want    float64
	}{
		{0, nodeRadius},
		{1, nodeRadius},            // hub only
		{2, microStep + nodeRadius},  // one member on ring 1
		{7, microStep + nodeRadius},  // ring 1 holds 6
		{8, 2*microStep + nodeRadius}, // spills onto ring 2
	}
	for _, tt := range tests {
		if got := microFootprint(tt.members); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("microFootprint(%d) = %v, want %v", tt.members, got, tt.want)
		}
	}
}

func TestEllipseAspect(t *testing.T) {
	tests := []struct {
		name string
		vp   models.Viewport
		want float64
	}{
		{"square viewport", models.Viewport{Width: 800, Height: 800}, 1.2},
		{"ultrawide capped", models.Viewport{Width: 4000, Height: 800}, 2.5},
		{"degenerate height", models.Viewport{Width: 800, Height: 0}, 1},
		{"tall clamped to 1", models.Viewport{Width: 400, Height: 800}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ellipseAspect(tt.vp); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ellipseAspect = %v, want %v", got, tt.want)
			}
		})
	}
}

// Scenario: two nodes with one edge. The hub sits at the graph center (ring
// radius 0), the member on a micro ring around it, both at finite distinct
// coordinates.
func TestLayoutRingsTwoNodes(t *testing.T) {
	nodes := []models.DisplayNode{node("a"), node("b")}
	edges := []models.DisplayEdge{edge("e1", "a", "b")}
	vp := testViewport()

	det := DetectClusters(nodes, edges, models.ModeGeneric)
	positions := LayoutRings(det.Clusters, det.Degrees, vp)

	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	cx, cy := vp.Center()
	hub := positions[det.Clusters[0].HubID]
	if hub.X != cx || hub.Y != cy {
		t.Errorf("hub not at view center: got (%v,%v), want (%v,%v)", hub.X, hub.Y, cx, cy)
	}
	for id, p := range positions {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			t.Errorf("non-finite position for %s: %+v", id, p)
		}
	}
	a, b := positions["a"], positions["b"]
	if a.X == b.X && a.Y == b.Y {
		t.Error("nodes placed at identical coordinates")
	}
}

func TestLayoutRingsDistinctPositions(t *testing.T) {
	// Three clusters plus singletons; no two nodes may coincide.
	var nodes []models.DisplayNode
	var edges []models.DisplayEdge
	for c := 0; c < 3; c++ {
		hub := fmt.Sprintf("hub%d", c)
		nodes = append(nodes, node(hub))
		for m := 0; m < 8; m++ {
			id := fmt.Sprintf("c%dm%d", c, m)
			nodes = append(nodes, node(id))
			edges = append(edges, edge(fmt.Sprintf("e-%s", id), hub, id))
		}
	}
	nodes = append(nodes, node("lone1"), node("lone2"))

	det := DetectClusters(nodes, edges, models.ModeGeneric)
	positions := LayoutRings(det.Clusters, det.Degrees, testViewport())

	if len(positions) != len(nodes) {
		t.Fatalf("placed %d of %d nodes", len(positions), len(nodes))
	}
	type point struct{ x, y float64 }
	seen := map[point]string{}
	for id, p := range positions {
		key := point{math.Round(p.X * 1000), math.Round(p.Y * 1000)}
		if other, dup := seen[key]; dup {
			t.Errorf("nodes %s and %s share position (%v,%v)", id, other, p.X, p.Y)
		}
		seen[key] = id
	}
}

func TestComputeBoundariesContainment(t *testing.T) {
	var nodes []models.DisplayNode
	var edges []models.DisplayEdge
	nodes = append(nodes, node("hub"))
	for m := 0; m < 10; m++ {
		id := fmt.Sprintf("m%d", m)
		nodes = append(nodes, node(id))
		edges = append(edges, edge(fmt.Sprintf("e%d", m), "hub", id))
	}

	det := DetectClusters(nodes, edges, models.ModeGeneric)
	positions := LayoutRings(det.Clusters, det.Degrees, testViewport())
	boundaries := ComputeBoundaries(det.Clusters, positions)

	if len(boundaries) != 1 {
		t.Fatalf("expected one boundary, got %d", len(boundaries))
	}
	b := boundaries[0]
	if b.Size != 11 {
		t.Errorf("boundary size = %d, want 11", b.Size)
	}
	for _, c := range det.Clusters {
		for _, id := range c.Members {
			p := positions[id]
			if d := math.Hypot(p.X-b.CX, p.Y-b.CY); d > b.R {
				t.Errorf("member %s at distance %v outside boundary radius %v", id, d, b.R)
			}
		}
	}
}

func TestComputeBoundariesSkipsSingletons(t *testing.T) {
	det := DetectClusters([]models.DisplayNode{node("a"), node("b")}, nil, models.ModeGeneric)
	positions := LayoutRings(det.Clusters, det.Degrees, testViewport())
	if got := ComputeBoundaries(det.Clusters, positions); len(got) != 0 {
		t.Errorf("singleton clusters must produce no boundaries, got %d", len(got))
	}
}
