package layout

import "github.com/Ekats/mycelica-layout/internal/models"

// SequenceClusters orders clusters so that strongly cross-connected ones end
// up adjacent. Greedy two-ended insertion over the pairwise cross-edge count
// matrix: seed with the cluster carrying the most cross-edges overall, then
// repeatedly attach the unplaced cluster with the strongest tie to either
// end of the growing sequence. O(n^2) in cluster count, which stays in the
// tens for real graphs.
func SequenceClusters(clusters []Cluster, edges []models.DisplayEdge) []Cluster {
	if len(clusters) < 3 {
		return clusters
	}

	clusterOf := map[string]int{}
	for i, c := range clusters {
		for _, id := range c.Members {
			clusterOf[id] = i
		}
	}

	n := len(clusters)
	cross := make([][]int, n)
	for i := range cross {
		cross[i] = make([]int, n)
	}
	for _, e := range edges {
		a, okA := clusterOf[e.SourceID]
		b, okB := clusterOf[e.TargetID]
		if !okA || !okB || a == b {
			continue
		}
		cross[a][b]++
		cross[b][a]++
	}

	totals := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			totals[i] += cross[i][j]
		}
	}

	seed := 0
	for i := 1; i < n; i++ {
		if totals[i] > totals[seed] {
			seed = i
		}
	}

	sequence := []int{seed}
	placed := make([]bool, n)
	placed[seed] = true

	for len(sequence) < n {
		left := sequence[0]
		right := sequence[len(sequence)-1]

		best, bestCount, bestAtLeft := -1, 0, false
		for i := 0; i < n; i++ {
			if placed[i] {
				continue
			}
			if c := cross[i][right]; c > bestCount {
				best, bestCount, bestAtLeft = i, c, false
			}
			if c := cross[i][left]; c > bestCount {
				best, bestCount, bestAtLeft = i, c, true
			}
		}

		// Nothing connects to either end: keep the rest in original order.
		if best < 0 {
			for i := 0; i < n; i++ {
				if !placed[i] {
					sequence = append(sequence, i)
					placed[i] = true
				}
			}
			break
		}

		if bestAtLeft {
			sequence = append([]int{best}, sequence...)
		} else {
			sequence = append(sequence, best)
		}
		placed[best] = true
	}

	ordered := make([]Cluster, 0, n)
	for _, i := range sequence {
		ordered = append(ordered, clusters[i])
	}
	return ordered
}
