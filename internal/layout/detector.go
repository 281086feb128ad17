// Package layout converts a display graph (nodes plus typed edges) into
// stable 2D positions, cluster groupings, and visual merge groups for a
// renderer. The whole package is pure and synchronous: every run is a
// function of its inputs plus the previous position snapshot.
package layout

import (
	"sort"

	"github.com/Ekats/mycelica-layout/internal/models"
)

// minLargeThread is the member count at which a conversation thread stands on
// its own; smaller threads get folded into the chronologically nearest large
// one.
const minLargeThread = 3

// Cluster is an ordered group of node ids sharing cluster membership.
type Cluster struct {
	Members  []string `json:"members"`
	HubID    string   `json:"hub_id"`
	ThreadID string   `json:"thread_id,omitempty"` // conversation mode only
}

// Detection is the cluster detector's output.
type Detection struct {
	Clusters []Cluster
	// Degrees counts non-self-loop edge endpoints per node. Used for ring
	// member ordering and BFS hub tie-breaking.
	Degrees map[string]int
}

// DetectClusters groups the node set into clusters: connected components for
// generic graphs, thread-id grouping with orphan reattachment for
// conversation graphs. Every input node id lands in exactly one cluster.
func DetectClusters(nodes []models.DisplayNode, edges []models.DisplayEdge, mode models.LayoutMode) Detection {
	order, index := indexNodes(nodes)
	edges = dropDanglingEdges(edges, index)
	degrees := countDegrees(order, edges)

	var clusters []Cluster
	if mode == models.ModeConversation {
		clusters = detectThreads(order, index, edges)
	} else {
		clusters = detectComponents(order, edges, degrees)
	}

	return Detection{Clusters: clusters, Degrees: degrees}
}

// indexNodes deduplicates node ids preserving first-seen order.
func indexNodes(nodes []models.DisplayNode) ([]string, map[string]*models.DisplayNode) {
	order := make([]string, 0, len(nodes))
	index := make(map[string]*models.DisplayNode, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if _, seen := index[n.ID]; seen || n.ID == "" {
			continue
		}
		index[n.ID] = n
		order = append(order, n.ID)
	}
	return order, index
}

// dropDanglingEdges removes edges referencing ids outside the node set and
// self-loops. Untrusted input is normalized, never rejected.
func dropDanglingEdges(edges []models.DisplayEdge, index map[string]*models.DisplayNode) []models.DisplayEdge {
	kept := make([]models.DisplayEdge, 0, len(edges))
	for _, e := range edges {
		if e.SourceID == e.TargetID {
			continue
		}
		if _, ok := index[e.SourceID]; !ok {
			continue
		}
		if _, ok := index[e.TargetID]; !ok {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func countDegrees(order []string, edges []models.DisplayEdge) map[string]int {
	degrees := make(map[string]int, len(order))
	for _, id := range order {
		degrees[id] = 0
	}
	for _, e := range edges {
		degrees[e.SourceID]++
		degrees[e.TargetID]++
	}
	return degrees
}

// detectComponents enumerates connected components via BFS over an
// undirected adjacency map, in node input order for determinism.
func detectComponents(order []string, edges []models.DisplayEdge, degrees map[string]int) []Cluster {
	adjacency := make(map[string][]string, len(order))
	for _, e := range edges {
		adjacency[e.SourceID] = append(adjacency[e.SourceID], e.TargetID)
		adjacency[e.TargetID] = append(adjacency[e.TargetID], e.SourceID)
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	visited := make(map[string]bool, len(order))
	var components [][]string
	for _, start := range order {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []string{start}
		queue := []string{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[current] {
				if visited[next] {
					continue
				}
				visited[next] = true
				component = append(component, next)
				queue = append(queue, next)
			}
		}
		components = append(components, component)
	}

	sort.SliceStable(components, func(i, j int) bool {
		return len(components[i]) > len(components[j])
	})

	clusters := make([]Cluster, 0, len(components))
	for _, component := range components {
		hub := component[0]
		for _, id := range component {
			if degrees[id] > degrees[hub] ||
				(degrees[id] == degrees[hub] && position[id] < position[hub]) {
				hub = id
			}
		}
		clusters = append(clusters, Cluster{Members: component, HubID: hub})
	}
	return clusters
}

// detectThreads groups conversation nodes by their thread_id tag. Threadless
// orphans are reattached through shares_link edges where possible; tiny
// threads fold into the large thread whose mean sequence index is closest.
// Non-signal nodes caught in a conversation view become singletons so that
// every node still lands in exactly one cluster.
func detectThreads(order []string, index map[string]*models.DisplayNode, edges []models.DisplayEdge) []Cluster {
	threadOrder := []string{}
	threads := map[string][]string{}
	var orphans []string
	var foreign []string

	for _, id := range order {
		n := index[id]
		if !n.IsSignal() {
			foreign = append(foreign, id)
			continue
		}
		tid := models.ThreadOf(n)
		if tid == "" {
			orphans = append(orphans, id)
			continue
		}
		if _, ok := threads[tid]; !ok {
			threadOrder = append(threadOrder, tid)
		}
		threads[tid] = append(threads[tid], id)
	}

	// Reattach orphans via shares_link: first linked threaded node wins.
	threadByNode := map[string]string{}
	for tid, members := range threads {
		for _, id := range members {
			threadByNode[id] = tid
		}
	}
	var trueOrphans []string
	for _, orphan := range orphans {
		attached := ""
		for _, e := range edges {
			if e.EdgeType != models.EdgeSharesLink {
				continue
			}
			other := ""
			if e.SourceID == orphan {
				other = e.TargetID
			} else if e.TargetID == orphan {
				other = e.SourceID
			}
			if other == "" {
				continue
			}
			if tid, ok := threadByNode[other]; ok {
				attached = tid
				break
			}
		}
		if attached == "" {
			trueOrphans = append(trueOrphans, orphan)
			continue
		}
		threads[attached] = append(threads[attached], orphan)
		threadByNode[orphan] = attached
	}

	for _, tid := range threadOrder {
		sortBySequence(threads[tid], index)
	}

	mergeTinyThreads(threadOrder, threads, index)

	clusters := make([]Cluster, 0, len(threads)+len(trueOrphans)+len(foreign))
	for _, tid := range threadOrder {
		members := threads[tid]
		if len(members) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Members:  members,
			HubID:    threadHub(members, edges),
			ThreadID: tid,
		})
	}
	for _, id := range trueOrphans {
		clusters = append(clusters, Cluster{Members: []string{id}, HubID: id})
	}
	for _, id := range foreign {
		clusters = append(clusters, Cluster{Members: []string{id}, HubID: id})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Members) > len(clusters[j].Members)
	})
	return clusters
}

// mergeTinyThreads folds threads below the size floor into the large thread
// with the numerically closest mean sequence index. With no large thread at
// all, tiny threads stay standalone. Equidistant large threads resolve to
// the first encountered in thread discovery order.
func mergeTinyThreads(threadOrder []string, threads map[string][]string, index map[string]*models.DisplayNode) {
	var large []string
	for _, tid := range threadOrder {
		if len(threads[tid]) >= minLargeThread {
			large = append(large, tid)
		}
	}
	if len(large) == 0 {
		return
	}

	means := map[string]float64{}
	for _, tid := range large {
		means[tid] = meanSequence(threads[tid], index)
	}

	for _, tid := range threadOrder {
		members := threads[tid]
		if len(members) == 0 || len(members) >= minLargeThread {
			continue
		}
		tinyMean := meanSequence(members, index)
		best := large[0]
		bestDist := absFloat(means[best] - tinyMean)
		for _, candidate := range large[1:] {
			if d := absFloat(means[candidate] - tinyMean); d < bestDist {
				best = candidate
				bestDist = d
			}
		}
		threads[best] = append(threads[best], members...)
		sortBySequence(threads[best], index)
		threads[tid] = nil
	}
}

// threadHub picks the member with the most incoming replies_to edges,
// defaulting to the chronologically first member.
func threadHub(members []string, edges []models.DisplayEdge) string {
	inCluster := make(map[string]bool, len(members))
	for _, id := range members {
		inCluster[id] = true
	}
	replies := map[string]int{}
	for _, e := range edges {
		if e.EdgeType != models.EdgeRepliesTo {
			continue
		}
		if inCluster[e.SourceID] && inCluster[e.TargetID] {
			replies[e.TargetID]++
		}
	}
	hub := members[0]
	for _, id := range members[1:] {
		if replies[id] > replies[hub] {
			hub = id
		}
	}
	return hub
}

func sortBySequence(ids []string, index map[string]*models.DisplayNode) {
	sort.SliceStable(ids, func(i, j int) bool {
		return index[ids[i]].Seq() < index[ids[j]].Seq()
	})
}

func meanSequence(ids []string, index map[string]*models.DisplayNode) float64 {
	if len(ids) == 0 {
		return 0
	}
	var sum float64
	for _, id := range ids {
		sum += float64(index[id].Seq())
	}
	return sum / float64(len(ids))
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
