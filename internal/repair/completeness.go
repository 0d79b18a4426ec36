// Package repair closes the structural gaps validation finds: skeletal stub
// records, archetypes with no relationships at all, and one-way edges that
// should be reciprocal. Each pass is a pure function of the loaded graph
// and returns a changelog; nothing touches disk here.
package repair

import (
	"arketype/internal/graph"
)

// FieldSpec is one weighted field of the archetype schema. Weights sum to
// 100 so a completeness score reads as a percentage.
type FieldSpec struct {
	Name    string
	Weight  float64
	Present func(*graph.Archetype) bool
}

// ArchetypeFields is the schema the stub scorer walks, in report order.
var ArchetypeFields = []FieldSpec{
	{"identity", 10, func(a *graph.Archetype) bool { return a.ID != "" }},
	{"name", 10, func(a *graph.Archetype) bool { return a.Name != "" }},
	{"description", 10, func(a *graph.Archetype) bool { return a.Description != "" }},
	{"coordinates", 15, func(a *graph.Archetype) bool { return len(a.Coordinates) > 0 }},
	{"primordials", 10, func(a *graph.Archetype) bool { return len(a.Primordials) > 0 }},
	{"keywords", 5, func(a *graph.Archetype) bool { return len(a.Keywords) > 0 }},
	{"domains", 5, func(a *graph.Archetype) bool { return len(a.Domains) > 0 }},
	{"relationships", 15, func(a *graph.Archetype) bool { return len(a.Relationships) > 0 }},
	{"correspondences", 5, func(a *graph.Archetype) bool { return len(a.Correspondences) > 0 }},
	{"core_function", 10, func(a *graph.Archetype) bool { return a.CoreFunction != "" }},
	{"narrative_roles", 5, func(a *graph.Archetype) bool { return len(a.NarrativeRoles) > 0 }},
}

// CompletenessResult scores one record against the archetype schema.
type CompletenessResult struct {
	ID      string   `json:"id"`
	Score   float64  `json:"score"` // 0..100
	Present []string `json:"present,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Stub    bool     `json:"stub"`
}

// CheckCompleteness evaluates a record. A record is a stub when its weighted
// presence score falls below threshold.
func CheckCompleteness(a *graph.Archetype, threshold float64) CompletenessResult {
	result := CompletenessResult{ID: a.ID}
	for _, spec := range ArchetypeFields {
		if spec.Present(a) {
			result.Score += spec.Weight
			result.Present = append(result.Present, spec.Name)
		} else {
			result.Missing = append(result.Missing, spec.Name)
		}
	}
	result.Stub = result.Score < threshold
	return result
}
