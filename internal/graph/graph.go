package graph

import (
	"sort"

	"arketype/internal/spectral"
)

// Graph is the in-memory index over every loaded archetype. Iteration order
// is always sorted by id so passes and reports are deterministic.
type Graph struct {
	byID  map[string]*Archetype
	order []string
}

// New builds a graph from records. Records without an id are dropped; when
// an id repeats, the last record wins. The store warns about both cases and
// pre-resolves duplicates, so the guards here only matter for hand-built
// record lists.
func New(records []*Archetype) *Graph {
	g := &Graph{byID: make(map[string]*Archetype, len(records))}
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, dup := g.byID[rec.ID]; dup {
			g.byID[rec.ID] = rec
			continue
		}
		g.byID[rec.ID] = rec
		g.order = append(g.order, rec.ID)
	}
	sort.Strings(g.order)
	return g
}

// Len returns the number of indexed archetypes.
func (g *Graph) Len() int { return len(g.order) }

// Get returns the archetype with the given id.
func (g *Graph) Get(id string) (*Archetype, bool) {
	a, ok := g.byID[id]
	return a, ok
}

// Has reports whether id is indexed.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// All returns every archetype in sorted-id order.
func (g *Graph) All() []*Archetype {
	out := make([]*Archetype, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}

// IDs returns the sorted id list.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Primordials returns the primordial category records in sorted-id order.
func (g *Graph) Primordials() []*Archetype {
	var out []*Archetype
	for _, a := range g.All() {
		if a.IsPrimordial() {
			out = append(out, a)
		}
	}
	return out
}

// Namespaces returns record counts keyed by id namespace.
func (g *Graph) Namespaces() map[string]int {
	counts := make(map[string]int)
	for _, a := range g.All() {
		counts[a.Namespace()]++
	}
	return counts
}

// UnknownTargets returns the distinct edge targets that resolve to no
// record, sorted. These edges are skipped by every pass.
func (g *Graph) UnknownTargets() []string {
	seen := make(map[string]bool)
	for _, a := range g.All() {
		for _, rel := range a.Relationships {
			for _, id := range rel.TargetIDs() {
				if !g.Has(id) {
					seen[id] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UnknownAxes returns the distinct axis names used by coordinates or
// POLAR_OPPOSITE declarations that the registry does not know, sorted.
func (g *Graph) UnknownAxes(reg *spectral.Registry) []string {
	seen := make(map[string]bool)
	for _, a := range g.All() {
		for axis := range a.Coordinates {
			if !reg.Has(axis) {
				seen[axis] = true
			}
		}
		for _, rel := range a.Relationships {
			if rel.Type == RelPolarOpposite && rel.Axis != "" && !reg.Has(rel.Axis) {
				seen[rel.Axis] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for axis := range seen {
		out = append(out, axis)
	}
	sort.Strings(out)
	return out
}

// Nearest returns the non-primordial archetype closest to a (excluding a
// itself) whose distance falls inside [minDist, maxDist), together with that
// distance. Records without comparable coordinates are skipped. ok is false
// when no candidate qualifies. Ties resolve to the smaller id.
func (g *Graph) Nearest(a *Archetype, minDist, maxDist float64) (*Archetype, float64, bool) {
	var (
		best     *Archetype
		bestDist float64
		found    bool
	)
	for _, cand := range g.All() {
		if cand.ID == a.ID || cand.IsPrimordial() {
			continue
		}
		d, err := spectral.Distance(a.Coordinates, cand.Coordinates)
		if err != nil {
			continue
		}
		if d < minDist || d >= maxDist {
			continue
		}
		if !found || d < bestDist {
			best, bestDist, found = cand, d, true
		}
	}
	return best, bestDist, found
}
