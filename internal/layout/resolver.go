package layout

import "github.com/Ekats/mycelica-layout/internal/models"

// ResolvePositions merges saved, previous, and freshly computed coordinates
// for every visible node id, in priority order:
//
//  1. user-saved position, except in conversation mode where columns are
//     authoritative and must not drift;
//  2. the position from the previous run, for continuity across re-renders;
//  3. the freshly computed layout position;
//  4. the view center as a last resort.
//
// Rectangle dimensions always come from the fresh computation: a dragged
// message keeps its coordinates but resizes with its content.
func ResolvePositions(
	visible []string,
	mode models.LayoutMode,
	vp models.Viewport,
	computed, previous, saved map[string]models.Position,
) map[string]models.Position {
	cx, cy := vp.Center()
	resolved := make(map[string]models.Position, len(visible))

	for _, id := range visible {
		fresh, hasFresh := computed[id]

		pick, ok := models.Position{}, false
		if mode != models.ModeConversation {
			pick, ok = saved[id]
		}
		if !ok {
			pick, ok = previous[id]
		}
		if !ok {
			pick, ok = fresh, hasFresh
		}
		if !ok {
			pick = models.Position{X: cx, Y: cy}
		}

		if hasFresh {
			pick.W, pick.H = fresh.W, fresh.H
		}
		resolved[id] = pick
	}
	return resolved
}
