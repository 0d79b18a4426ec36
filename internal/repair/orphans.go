package repair

import (
	"fmt"

	"arketype/internal/graph"
	"arketype/internal/logging"
)

// RepairOrphans gives every archetype with zero relationships one outgoing
// edge: MIRRORS to the nearest record inside the distance band, or failing
// that INSTANTIATES to the record's strongest primordial (catalog default
// as fallback). Primordial categories themselves are exempt; they are
// targets, not participants. Only the forward edge is added here; the
// closure pass mirrors it.
func RepairOrphans(g *graph.Graph, cat *Catalog, params Params) []Change {
	log := logging.New("repair")
	var changes []Change

	for _, a := range g.All() {
		if len(a.Relationships) > 0 || a.IsPrimordial() {
			continue
		}

		if cand, dist, ok := g.Nearest(a, params.OrphanMin, params.OrphanMax); ok {
			a.Relationships = append(a.Relationships, graph.Relationship{
				Type:   graph.RelMirrors,
				Target: cand.ID,
			})
			changes = append(changes, Change{
				Pass:   PassOrphans,
				ID:     a.ID,
				Action: ActionMirror,
				Detail: fmt.Sprintf("%s at distance %.3f", cand.ID, dist),
			})
			continue
		}

		var target string
		if pw, ok := a.StrongestPrimordial(); ok && g.Has(pw.Primordial) {
			target = pw.Primordial
		}
		if target == "" {
			if def := cat.For(a.Namespace()).Primordial; def != "" && g.Has(def) {
				target = def
			}
		}
		if target == "" {
			log.Warn("orphan unrepairable", "id", a.ID)
			changes = append(changes, Change{
				Pass:   PassOrphans,
				ID:     a.ID,
				Action: ActionUnrepairable,
				Detail: "no mirror candidate in band and no primordial target in graph",
			})
			continue
		}

		a.Relationships = append(a.Relationships, graph.Relationship{
			Type:   graph.RelInstantiates,
			Target: target,
		})
		changes = append(changes, Change{
			Pass:   PassOrphans,
			ID:     a.ID,
			Action: ActionInstantiate,
			Detail: target,
		})
	}
	return changes
}
