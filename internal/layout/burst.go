package layout

import (
	"strings"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// maxBurstRun caps how many consecutive messages collapse into one visual
// unit. Longer monologues break into multiple bursts.
const maxBurstRun = 8

// BurstResult holds a cluster after temporal burst merging.
type BurstResult struct {
	// Members is the cluster with merged runs replaced by their
	// representative id, relative order preserved.
	Members []string
	// MergeMap maps every absorbed id to its representative. Ids absent
	// from the map stay individually visible.
	MergeMap map[string]string
	// Bodies maps each representative id to the newline-joined text of the
	// whole run, in chronological order.
	Bodies map[string]string
}

// MergeBursts collapses runs of consecutive same-author messages linked by
// temporal_thread edges into single visual units. The cluster is assumed to
// be in chronological order already. Runs of length one pass through
// unchanged.
func MergeBursts(cluster []string, index map[string]*models.DisplayNode, edges []models.DisplayEdge) BurstResult {
	linked := temporalPairs(edges)

	result := BurstResult{
		Members:  make([]string, 0, len(cluster)),
		MergeMap: map[string]string{},
		Bodies:   map[string]string{},
	}

	i := 0
	for i < len(cluster) {
		run := []string{cluster[i]}
		author := authorOf(index, cluster[i])
		for j := i + 1; j < len(cluster) && len(run) < maxBurstRun; j++ {
			if author == "" || authorOf(index, cluster[j]) != author {
				break
			}
			if !linked[pairKey(cluster[j-1], cluster[j])] {
				break
			}
			run = append(run, cluster[j])
		}

		rep := run[0]
		result.Members = append(result.Members, rep)
		if len(run) >= 2 {
			bodies := make([]string, 0, len(run))
			for _, id := range run {
				if n, ok := index[id]; ok {
					bodies = append(bodies, n.Body())
				}
			}
			result.Bodies[rep] = strings.Join(bodies, "\n")
			for _, id := range run[1:] {
				result.MergeMap[id] = rep
			}
		}
		i += len(run)
	}
	return result
}

// temporalPairs indexes temporal_thread edges as unordered id pairs.
func temporalPairs(edges []models.DisplayEdge) map[string]bool {
	pairs := map[string]bool{}
	for _, e := range edges {
		if e.EdgeType != models.EdgeTemporalThread {
			continue
		}
		pairs[pairKey(e.SourceID, e.TargetID)] = true
	}
	return pairs
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

func authorOf(index map[string]*models.DisplayNode, id string) string {
	if n, ok := index[id]; ok {
		return n.AuthorName()
	}
	return ""
}
