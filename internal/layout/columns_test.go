package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Ekats/mycelica-layout/internal/models"
)

func TestMessageHeightEstimate(t *testing.T) {
	cfg := DefaultColumnConfig()

	short := cfg.messageHeight("hi")
	if want := cfg.LineHeight + cfg.AuthorHeight + cfg.Padding; short != want {
		t.Errorf("short message height = %v, want %v", short, want)
	}

	twoLines := cfg.messageHeight(strings.Repeat("x", int(cfg.CharsPerLine)+1))
	if want := 2*cfg.LineHeight + cfg.AuthorHeight + cfg.Padding; twoLines != want {
		t.Errorf("two-line height = %v, want %v", twoLines, want)
	}

	long := cfg.messageHeight(strings.Repeat("x", 10000))
	if long != cfg.MaxHeight {
		t.Errorf("long message height = %v, want cap %v", long, cfg.MaxHeight)
	}

	empty := cfg.messageHeight("")
	if want := cfg.LineHeight + cfg.AuthorHeight + cfg.Padding; empty != want {
		t.Errorf("empty message height = %v, want one line %v", empty, want)
	}
}

func TestColumnConfigNormalize(t *testing.T) {
	partial := ColumnConfig{Width: 300}.normalize()
	if partial.Width != 300 {
		t.Errorf("explicit width dropped: %v", partial.Width)
	}
	if partial.LineHeight != DefaultColumnConfig().LineHeight {
		t.Errorf("zero field not defaulted: %v", partial.LineHeight)
	}
}

// Scenario: ten messages in one thread produce one column of ten stacked
// non-overlapping rectangles.
func TestLayoutColumnsSingleThread(t *testing.T) {
	var nodes []models.DisplayNode
	for i := 1; i <= 10; i++ {
		nodes = append(nodes, signalNode(
			fmt.Sprintf("m%d", i), "ana", "t1", int64(i),
			strings.Repeat("word ", i*3)))
	}

	det := DetectClusters(nodes, nil, models.ModeConversation)
	if len(det.Clusters) != 1 || len(det.Clusters[0].Members) != 10 {
		t.Fatalf("expected one cluster of 10, got %+v", det.Clusters)
	}

	_, index := indexNodes(nodes)
	positions := LayoutColumns(det.Clusters, index, nil, testViewport(), DefaultColumnConfig())

	if len(positions) != 10 {
		t.Fatalf("expected 10 positions, got %d", len(positions))
	}

	// All share the column x, rectangles sized, stacked without overlap.
	cfg := DefaultColumnConfig()
	var prevBottom float64
	for i, id := range det.Clusters[0].Members {
		p := positions[id]
		if p.W != cfg.Width {
			t.Errorf("%s width = %v, want %v", id, p.W, cfg.Width)
		}
		if p.H <= 0 {
			t.Errorf("%s has no height", id)
		}
		if p.X != positions[det.Clusters[0].Members[0]].X {
			t.Errorf("%s drifted off the column x", id)
		}
		top := p.Y - p.H/2
		if i > 0 && top < prevBottom {
			t.Errorf("%s overlaps the message above: top %v < previous bottom %v", id, top, prevBottom)
		}
		prevBottom = p.Y + p.H/2
	}
}

func TestLayoutColumnsOrderAndCentering(t *testing.T) {
	var nodes []models.DisplayNode
	for c := 0; c < 3; c++ {
		for i := 1; i <= 3; i++ {
			nodes = append(nodes, signalNode(
				fmt.Sprintf("t%dm%d", c, i), "ana", fmt.Sprintf("t%d", c), int64(i), "hello"))
		}
	}

	det := DetectClusters(nodes, nil, models.ModeConversation)
	_, index := indexNodes(nodes)
	vp := testViewport()
	positions := LayoutColumns(det.Clusters, index, nil, vp, DefaultColumnConfig())

	// Columns march left to right in cluster order.
	var lastX float64
	for i, c := range det.Clusters {
		x := positions[c.Members[0]].X
		if i > 0 && x <= lastX {
			t.Errorf("column %d not to the right of column %d", i, i-1)
		}
		lastX = x
	}

	// Group centered: mean of first and last column x equals viewport center.
	cx, _ := vp.Center()
	first := positions[det.Clusters[0].Members[0]].X
	last := positions[det.Clusters[2].Members[0]].X
	if mid := (first + last) / 2; mid != cx {
		t.Errorf("columns not centered: midpoint %v, viewport center %v", mid, cx)
	}
}

func TestLayoutColumnsUsesMergedBodies(t *testing.T) {
	nodes := []models.DisplayNode{
		signalNode("m1", "ana", "t1", 1, "short"),
		signalNode("m2", "ben", "t1", 2, "short"),
		signalNode("m3", "cal", "t1", 3, "short"),
	}
	det := DetectClusters(nodes, nil, models.ModeConversation)
	_, index := indexNodes(nodes)

	long := strings.Repeat("merged text ", 30)
	with := LayoutColumns(det.Clusters, index, map[string]string{"m1": long}, testViewport(), DefaultColumnConfig())
	without := LayoutColumns(det.Clusters, index, nil, testViewport(), DefaultColumnConfig())

	if with["m1"].H <= without["m1"].H {
		t.Errorf("merged body should grow the representative rectangle: %v vs %v",
			with["m1"].H, without["m1"].H)
	}
}
