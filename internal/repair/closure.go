package repair

import (
	"fmt"

	"arketype/internal/graph"
)

// CloseEdges adds the missing half of every two-way contract: symmetric
// edges get the same type mirrored onto the target, directed pairs get
// their declared inverse. A constellation edge is closed on each member;
// the back-edge is always single-target. Payload carries over (axis,
// fidelity, trigger); existing edges are never duplicated or modified.
// Edges with unknown types or targets are the validator's business and
// are skipped here.
func CloseEdges(g *graph.Graph) []Change {
	var changes []Change
	for _, a := range g.All() {
		for _, rel := range a.Relationships {
			recip, expected := rel.Type.Reciprocal()
			if !expected {
				continue
			}
			for _, tid := range rel.TargetIDs() {
				target, ok := g.Get(tid)
				if !ok {
					continue
				}
				if target.HasEdge(recip, a.ID) {
					continue
				}
				back := graph.Relationship{
					Type:    recip,
					Target:  a.ID,
					Axis:    rel.Axis,
					Trigger: rel.Trigger,
				}
				if rel.Fidelity != nil {
					f := *rel.Fidelity
					back.Fidelity = &f
				}
				target.Relationships = append(target.Relationships, back)
				changes = append(changes, Change{
					Pass:   PassClosure,
					ID:     target.ID,
					Action: ActionClose,
					Detail: fmt.Sprintf("added %s -> %s (closes %s)", recip, a.ID, rel.Type),
				})
			}
		}
	}
	return changes
}
