package audit

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"arketype/internal/display"
	"arketype/internal/graph"
	"arketype/internal/logging"
)

// sampledEdge is one candidate claim before it becomes a case.
type sampledEdge struct {
	source *graph.Archetype
	target *graph.Archetype
	rel    graph.Relationship
}

// NewCaseSet samples up to n relationship instances from the graph,
// stratified across the relationship types present: categories take turns
// contributing one shuffled edge each until n cases exist or the graph runs
// out. The same seed over the same graph yields the same case set. Edges
// with unknown types or dangling targets are not sampleable; they belong to
// the validator.
func NewCaseSet(g *graph.Graph, graphDir string, n int, seed int64, threshold float64) *CaseSet {
	log := logging.New("audit")

	byCategory := map[string][]sampledEdge{}
	for _, a := range g.All() {
		for _, rel := range a.Relationships {
			if !rel.Type.Known() {
				continue
			}
			// Each member of a constellation edge is its own claim.
			for _, tid := range rel.TargetIDs() {
				target, ok := g.Get(tid)
				if !ok {
					continue
				}
				cat := string(rel.Type)
				byCategory[cat] = append(byCategory[cat], sampledEdge{source: a, target: target, rel: rel})
			}
		}
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	for _, cat := range categories {
		list := byCategory[cat]
		rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	}

	cs := &CaseSet{
		RoundID:   uuid.NewString(),
		CreatedAt: nowUTC(),
		GraphDir:  graphDir,
		Seed:      seed,
		Threshold: threshold,
	}
	for len(cs.Cases) < n {
		took := false
		for _, cat := range categories {
			if len(cs.Cases) == n {
				break
			}
			list := byCategory[cat]
			if len(list) == 0 {
				continue
			}
			byCategory[cat] = list[1:]
			cs.Cases = append(cs.Cases, newCase(len(cs.Cases), list[0]))
			took = true
		}
		if !took {
			break
		}
	}

	log.Info("case set sampled", "round", cs.RoundID, "cases", len(cs.Cases), "categories", len(categories), "seed", seed)
	return cs
}

func newCase(index int, e sampledEdge) Case {
	c := Case{
		Index:    index,
		Category: string(e.rel.Type),
		Claim:    claimText(e.source, e.rel, e.target),
		Source:   endpointSnapshot(e.source),
		Target:   endpointSnapshot(e.target),
		Axis:     e.rel.Axis,
	}
	if e.rel.Fidelity != nil {
		f := *e.rel.Fidelity
		c.Fidelity = &f
	}
	c.Distance, c.AxisDiffs = caseGeometry(e.source, e.target)
	return c
}

// claimText phrases an edge as the sentence the human is asked to judge.
func claimText(src *graph.Archetype, rel graph.Relationship, dst *graph.Archetype) string {
	s := displayName(src)
	d := displayName(dst)
	switch rel.Type {
	case graph.RelPolarOpposite:
		return fmt.Sprintf("%s is the polar opposite of %s along %s", s, d, display.Axis(rel.Axis))
	case graph.RelComplement:
		return fmt.Sprintf("%s and %s complete each other", s, d)
	case graph.RelCulturalEcho:
		return fmt.Sprintf("%s echoes %s across cultures", s, d)
	case graph.RelMirrors:
		return fmt.Sprintf("%s mirrors %s", s, d)
	case graph.RelShadow:
		return fmt.Sprintf("%s is the shadow side of %s", s, d)
	case graph.RelEvolution:
		return fmt.Sprintf("%s evolved into %s", s, d)
	case graph.RelDevolution:
		return fmt.Sprintf("%s traces back to %s", s, d)
	case graph.RelContains:
		return fmt.Sprintf("%s contains %s", s, d)
	case graph.RelContainedBy:
		return fmt.Sprintf("%s is contained by %s", s, d)
	case graph.RelInstantiates:
		return fmt.Sprintf("%s instantiates %s", s, d)
	}
	return fmt.Sprintf("%s %s %s", s, rel.Type, d)
}

func displayName(a *graph.Archetype) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
