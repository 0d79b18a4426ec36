package graph

// Census is a structural count over the graph: who is present, how they
// are partitioned, and what the edges and coordinates cover.
type Census struct {
	Archetypes    int            `json:"archetypes"`
	Primordials   int            `json:"primordials"`
	Edges         int            `json:"edges"`
	Orphans       int            `json:"orphans"` // records with zero relationships
	Namespaces    map[string]int `json:"namespaces"`
	RelationTypes map[string]int `json:"relation_types"`
	AxisCoverage  map[string]int `json:"axis_coverage"` // records carrying each axis
}

// TakeCensus walks the graph once and counts everything.
func TakeCensus(g *Graph) Census {
	c := Census{
		Namespaces:    map[string]int{},
		RelationTypes: map[string]int{},
		AxisCoverage:  map[string]int{},
	}
	for _, a := range g.All() {
		c.Archetypes++
		if a.IsPrimordial() {
			c.Primordials++
		}
		c.Namespaces[a.Namespace()]++
		if len(a.Relationships) == 0 {
			c.Orphans++
		}
		for _, rel := range a.Relationships {
			c.Edges++
			c.RelationTypes[string(rel.Type)]++
		}
		for axis := range a.Coordinates {
			c.AxisCoverage[axis]++
		}
	}
	return c
}
