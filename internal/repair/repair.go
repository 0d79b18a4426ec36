package repair

import (
	"fmt"
	"sort"
	"strings"

	"arketype/internal/graph"
)

// Pass names, in run order.
const (
	PassStubs   = "stubs"
	PassOrphans = "orphans"
	PassClosure = "closure"
)

// Change actions.
const (
	ActionFill         = "fill"         // stub fields populated from defaults
	ActionMirror       = "mirror"       // MIRRORS edge to a nearby archetype
	ActionInstantiate  = "instantiate"  // INSTANTIATES edge to a primordial
	ActionClose        = "close"        // reciprocal or inverse edge added
	ActionUnrepairable = "unrepairable" // orphan with no usable target
)

// Params bound the repair passes.
type Params struct {
	StubThreshold float64 // completeness score below this marks a stub
	OrphanMin     float64 // inclusive lower edge of the mirror distance band
	OrphanMax     float64 // exclusive upper edge of the mirror distance band
	SkipStubs     bool
	SkipOrphans   bool
	SkipClosure   bool
}

// DefaultParams returns the standard repair bounds.
func DefaultParams() Params {
	return Params{StubThreshold: 40, OrphanMin: 0.05, OrphanMax: 0.3}
}

// Change is one changelog entry. Unrepairable entries describe work the
// pass could not do; every other entry describes a mutation.
type Change struct {
	Pass   string `json:"pass"`
	ID     string `json:"id"`
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

// Run executes the enabled passes in order: stub completion, orphan repair,
// bidirectional closure. The graph is mutated in memory; persisting is the
// caller's decision.
func Run(g *graph.Graph, cat *Catalog, params Params) []Change {
	var changes []Change
	if !params.SkipStubs {
		changes = append(changes, CompleteStubs(g, cat, params)...)
	}
	if !params.SkipOrphans {
		changes = append(changes, RepairOrphans(g, cat, params)...)
	}
	if !params.SkipClosure {
		changes = append(changes, CloseEdges(g)...)
	}
	return changes
}

// ChangedIDs returns the sorted ids of records the changelog actually
// mutated. Unrepairable entries are excluded.
func ChangedIDs(changes []Change) []string {
	seen := make(map[string]bool)
	for _, c := range changes {
		if c.Action == ActionUnrepairable {
			continue
		}
		seen[c.ID] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FormatChangelog renders the repair report grouped by pass.
func FormatChangelog(changes []Change, dryRun bool) string {
	var b strings.Builder
	b.WriteString("=== Relationship Repair ===\n")
	mode := "APPLY"
	if dryRun {
		mode = "DRY RUN (use --apply to write)"
	}
	b.WriteString(fmt.Sprintf("Mode: %s\n\n", mode))

	byPass := map[string][]Change{}
	for _, c := range changes {
		byPass[c.Pass] = append(byPass[c.Pass], c)
	}
	unrepairable := 0
	for _, pass := range []string{PassStubs, PassOrphans, PassClosure} {
		list := byPass[pass]
		if len(list) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("--- %s (%d) ---\n", pass, len(list)))
		for _, c := range list {
			if c.Action == ActionUnrepairable {
				unrepairable++
			}
			line := fmt.Sprintf("  %-12s %s", c.Action, c.ID)
			if c.Detail != "" {
				line += ": " + c.Detail
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("RESULT: %d changes (%d stubs, %d orphans, %d closures), %d unrepairable\n",
		len(changes)-unrepairable,
		len(byPass[PassStubs]),
		countMutations(byPass[PassOrphans]),
		len(byPass[PassClosure]),
		unrepairable))
	return b.String()
}

func countMutations(list []Change) int {
	n := 0
	for _, c := range list {
		if c.Action != ActionUnrepairable {
			n++
		}
	}
	return n
}
