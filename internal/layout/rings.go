package layout

import (
	"math"
	"sort"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// goldenAngle (~137.5 degrees) offsets each successive ring so members never
// line up radially with the ring underneath.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

const (
	// nodeRadius is the nominal drawn radius of a node, used when
	// accumulating ring radii.
	nodeRadius = 15.0
	// ringGap is the clear space kept between adjacent ring batches.
	ringGap = 60.0
	// boundaryNodeAllowance and boundaryPadding pad the bounding circle so
	// member shapes and labels sit fully inside it.
	boundaryNodeAllowance = 80.0
	boundaryPadding       = 20.0
	// maxEllipseAspect caps the horizontal stretch on very wide viewports.
	maxEllipseAspect = 2.5
)

// macroRingCapacity is how many cluster hubs fit on macro ring r.
func macroRingCapacity(r int) int {
	switch {
	case r == 0:
		return 1
	case r == 1:
		return 4
	default:
		c := 4 + 2*(r-1)
		if c > 8 {
			c = 8
		}
		return c
	}
}

// microRingCapacity is how many members fit on micro ring r around a hub.
// Ring 0 is the hub itself.
func microRingCapacity(r int) int {
	switch {
	case r == 0:
		return 1
	case r == 1:
		return 6
	default:
		c := 6 + 2*(r-1)
		if c > 10 {
			c = 10
		}
		return c
	}
}

// microStep is the radial distance between successive micro rings: one gap
// plus a node radius on each side, mirroring the macro accumulation rule.
const microStep = ringGap + 2*nodeRadius

// microFootprint is the radius a cluster occupies: the outermost micro ring
// it fills plus one node radius. Found by simulating ring filling.
func microFootprint(memberCount int) float64 {
	remaining := memberCount - 1 // hub sits at ring 0
	if remaining <= 0 {
		return nodeRadius
	}
	radius := 0.0
	for r := 1; remaining > 0; r++ {
		radius = float64(r) * microStep
		remaining -= microRingCapacity(r)
	}
	return radius + nodeRadius
}

// ellipseAspect stretches x placement to fill wide viewports; y stays
// unstretched.
func ellipseAspect(vp models.Viewport) float64 {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 1
	}
	aspect := vp.Width / vp.Height * 1.2
	if aspect > maxEllipseAspect {
		aspect = maxEllipseAspect
	}
	if aspect < 1 {
		aspect = 1
	}
	return aspect
}

// LayoutRings places every node of a generic graph: cluster hubs and
// singletons batch onto concentric macro rings (largest cluster at the graph
// center), and each multi-member cluster's remaining members spiral onto
// micro rings around their hub.
func LayoutRings(clusters []Cluster, degrees map[string]int, vp models.Viewport) map[string]models.Position {
	positions := make(map[string]models.Position)
	if len(clusters) == 0 {
		return positions
	}

	// Hubs ordered by cluster size outward, singletons appended.
	ordered := make([]Cluster, 0, len(clusters))
	var singles []Cluster
	for _, c := range clusters {
		if len(c.Members) > 1 {
			ordered = append(ordered, c)
		} else {
			singles = append(singles, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Members) > len(ordered[j].Members)
	})
	ordered = append(ordered, singles...)

	// Batch items into macro rings by capacity.
	var batches [][]Cluster
	for i, r := 0, 0; i < len(ordered); r++ {
		end := i + macroRingCapacity(r)
		if end > len(ordered) {
			end = len(ordered)
		}
		batches = append(batches, ordered[i:end])
		i = end
	}

	cx, cy := vp.Center()
	aspect := ellipseAspect(vp)

	radius := 0.0
	prevFootprint := 0.0
	for r, batch := range batches {
		maxFootprint := 0.0
		for _, c := range batch {
			if f := microFootprint(len(c.Members)); f > maxFootprint {
				maxFootprint = f
			}
		}
		if r > 0 {
			radius += prevFootprint + maxFootprint + ringGap
		}
		prevFootprint = maxFootprint

		for j, c := range batch {
			angle := 2*math.Pi*float64(j)/float64(len(batch)) + goldenAngle*float64(r)
			hubX := cx + math.Cos(angle)*radius*aspect
			hubY := cy + math.Sin(angle)*radius
			positions[c.HubID] = models.Position{X: hubX, Y: hubY}
			placeMicroRing(positions, c, hubX, hubY, degrees)
		}
	}
	return positions
}

// placeMicroRing spirals a cluster's non-hub members around the hub, highest
// degree first, using the micro capacity table and the same golden-angle
// offset per ring.
func placeMicroRing(positions map[string]models.Position, c Cluster, hubX, hubY float64, degrees map[string]int) {
	members := make([]string, 0, len(c.Members))
	for _, id := range c.Members {
		if id != c.HubID {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return
	}
	sort.SliceStable(members, func(i, j int) bool {
		return degrees[members[i]] > degrees[members[j]]
	})

	i := 0
	for r := 1; i < len(members); r++ {
		count := microRingCapacity(r)
		if i+count > len(members) {
			count = len(members) - i
		}
		radius := float64(r) * microStep
		for j := 0; j < count; j++ {
			angle := 2*math.Pi*float64(j)/float64(count) + goldenAngle*float64(r)
			positions[members[i+j]] = models.Position{
				X: hubX + math.Cos(angle)*radius,
				Y: hubY + math.Sin(angle)*radius,
			}
		}
		i += count
	}
}

// ComputeBoundaries builds a bounding circle for every cluster with two or
// more positioned members: the centroid of the member positions, with radius
// reaching the farthest member plus node allowance and padding.
func ComputeBoundaries(clusters []Cluster, positions map[string]models.Position) []models.ClusterBoundary {
	var boundaries []models.ClusterBoundary
	for _, c := range clusters {
		var xs, ys []float64
		for _, id := range c.Members {
			if p, ok := positions[id]; ok {
				xs = append(xs, p.X)
				ys = append(ys, p.Y)
			}
		}
		if len(xs) < 2 {
			continue
		}
		var cx, cy float64
		for i := range xs {
			cx += xs[i]
			cy += ys[i]
		}
		cx /= float64(len(xs))
		cy /= float64(len(ys))

		maxDist := 0.0
		for i := range xs {
			if d := math.Hypot(xs[i]-cx, ys[i]-cy); d > maxDist {
				maxDist = d
			}
		}
		boundaries = append(boundaries, models.ClusterBoundary{
			CX:   cx,
			CY:   cy,
			R:    maxDist + boundaryNodeAllowance + boundaryPadding,
			Size: len(xs),
		})
	}
	return boundaries
}
