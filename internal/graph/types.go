// Package graph holds the archetype model and the partitioned JSON store it
// is loaded from and written back to. The graph is an id-keyed index over
// archetype records; relationships are typed edges with per-type payloads
// and geometric contracts checked elsewhere.
package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"arketype/internal/spectral"
)

// RelationType is the edge vocabulary. Raw codes live in JSON; display names
// for humans come from internal/display.
type RelationType string

const (
	RelPolarOpposite RelationType = "POLAR_OPPOSITE" // symmetric, declares one axis
	RelComplement    RelationType = "COMPLEMENT"     // symmetric
	RelCulturalEcho  RelationType = "CULTURAL_ECHO"  // symmetric, carries fidelity
	RelMirrors       RelationType = "MIRRORS"        // symmetric
	RelShadow        RelationType = "SHADOW"         // directed, no inverse
	RelEvolution     RelationType = "EVOLUTION"      // directed, inverse DEVOLUTION
	RelDevolution    RelationType = "DEVOLUTION"     // directed, inverse EVOLUTION
	RelContains      RelationType = "CONTAINS"       // directed, inverse CONTAINED_BY
	RelContainedBy   RelationType = "CONTAINED_BY"   // directed, inverse CONTAINS
	RelInstantiates  RelationType = "INSTANTIATES"   // directed, target must be primordial
)

// AllRelationTypes lists the vocabulary in a stable order.
var AllRelationTypes = []RelationType{
	RelPolarOpposite,
	RelComplement,
	RelCulturalEcho,
	RelMirrors,
	RelShadow,
	RelEvolution,
	RelDevolution,
	RelContains,
	RelContainedBy,
	RelInstantiates,
}

// Known reports whether t is part of the vocabulary.
func (t RelationType) Known() bool {
	switch t {
	case RelPolarOpposite, RelComplement, RelCulturalEcho, RelMirrors,
		RelShadow, RelEvolution, RelDevolution, RelContains, RelContainedBy,
		RelInstantiates:
		return true
	}
	return false
}

// Symmetric reports whether t expects the same type on both endpoints.
func (t RelationType) Symmetric() bool {
	switch t {
	case RelPolarOpposite, RelComplement, RelCulturalEcho, RelMirrors:
		return true
	}
	return false
}

// Reciprocal returns the type the target endpoint is expected to carry back,
// and whether any reciprocity is expected at all. Symmetric types expect
// themselves; directed pairs expect their declared inverse; SHADOW and
// INSTANTIATES expect nothing.
func (t RelationType) Reciprocal() (RelationType, bool) {
	switch t {
	case RelPolarOpposite, RelComplement, RelCulturalEcho, RelMirrors:
		return t, true
	case RelEvolution:
		return RelDevolution, true
	case RelDevolution:
		return RelEvolution, true
	case RelContains:
		return RelContainedBy, true
	case RelContainedBy:
		return RelContains, true
	}
	return "", false
}

// Relationship is one typed edge from the record that carries it. Most edges
// name a single Target id; constellation edges fan out to several ids, which
// land in Targets and keep their array shape on writeback. Payload fields are
// per-type; unused ones stay empty.
type Relationship struct {
	Type       RelationType
	Target     string   // single-target form of "target"
	Targets    []string // multi-target form of "target"
	Axis       string   // POLAR_OPPOSITE
	Fidelity   *float64 // CULTURAL_ECHO, in [0,1]
	Trigger    string   // EVOLUTION / DEVOLUTION
	Activation string   // SHADOW
	Note       string

	// Extra holds JSON keys outside the schema, round-tripped untouched.
	Extra map[string]json.RawMessage
}

// TargetIDs returns the ids the edge points at: Targets when the edge is a
// constellation, otherwise the single Target. Empty edges return nil.
func (r Relationship) TargetIDs() []string {
	if len(r.Targets) > 0 {
		return r.Targets
	}
	if r.Target != "" {
		return []string{r.Target}
	}
	return nil
}

var relationshipKnownKeys = map[string]bool{
	"type":       true,
	"target":     true,
	"axis":       true,
	"fidelity":   true,
	"trigger":    true,
	"activation": true,
	"note":       true,
}

// UnmarshalJSON decodes the schema fields, accepting "target" as either one
// id or an id list, and tucks every other key into Extra.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var known struct {
		Type       RelationType    `json:"type"`
		Target     json.RawMessage `json:"target"`
		Axis       string          `json:"axis"`
		Fidelity   *float64        `json:"fidelity"`
		Trigger    string          `json:"trigger"`
		Activation string          `json:"activation"`
		Note       string          `json:"note"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*r = Relationship{
		Type:       known.Type,
		Axis:       known.Axis,
		Fidelity:   known.Fidelity,
		Trigger:    known.Trigger,
		Activation: known.Activation,
		Note:       known.Note,
	}
	if len(known.Target) > 0 {
		if err := json.Unmarshal(known.Target, &r.Target); err != nil {
			if err := json.Unmarshal(known.Target, &r.Targets); err != nil {
				return fmt.Errorf("target must be an id or a list of ids: %w", err)
			}
		}
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key := range all {
		if relationshipKnownKeys[key] {
			delete(all, key)
		}
	}
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// MarshalJSON re-emits the schema fields plus the preserved Extra keys,
// keeping the array shape for constellation targets.
func (r Relationship) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 7+len(r.Extra))
	for key, raw := range r.Extra {
		out[key] = raw
	}
	out["type"] = r.Type
	if len(r.Targets) > 0 {
		out["target"] = r.Targets
	} else {
		out["target"] = r.Target
	}
	if r.Axis != "" {
		out["axis"] = r.Axis
	}
	if r.Fidelity != nil {
		out["fidelity"] = *r.Fidelity
	}
	if r.Trigger != "" {
		out["trigger"] = r.Trigger
	}
	if r.Activation != "" {
		out["activation"] = r.Activation
	}
	if r.Note != "" {
		out["note"] = r.Note
	}
	return json.Marshal(out)
}

// PrimordialWeight binds an archetype to one primordial category with a
// strength in [0,1].
type PrimordialWeight struct {
	Primordial string  `json:"primordial"`
	Weight     float64 `json:"weight"`
}

// Archetype is one record of the graph. Fields absent from the source JSON
// stay zero-valued; unknown keys are preserved in Extra across load and
// save. The origin fields remember where the record came from so writeback
// can merge by id into the right file and container.
type Archetype struct {
	ID              string             `json:"id"`
	Name            string             `json:"name,omitempty"`
	Description     string             `json:"description,omitempty"`
	Coordinates     spectral.Vector    `json:"spectral_coordinates,omitempty"`
	Primordials     []PrimordialWeight `json:"primordial_instantiations,omitempty"`
	Keywords        []string           `json:"keywords,omitempty"`
	Domains         []string           `json:"domains,omitempty"`
	Relationships   []Relationship     `json:"relationships,omitempty"`
	Correspondences map[string]string  `json:"correspondences,omitempty"`
	CoreFunction    string             `json:"core_function,omitempty"`
	NarrativeRoles  []string           `json:"narrative_roles,omitempty"`

	// Extra holds JSON keys outside the schema, round-tripped untouched.
	Extra map[string]json.RawMessage `json:"-"`

	origin Position
}

var archetypeKnownKeys = map[string]bool{
	"id":                        true,
	"name":                      true,
	"description":               true,
	"spectral_coordinates":      true,
	"primordial_instantiations": true,
	"keywords":                  true,
	"domains":                   true,
	"relationships":             true,
	"correspondences":           true,
	"core_function":             true,
	"narrative_roles":           true,
}

// UnmarshalJSON decodes the schema fields and tucks every other key into
// Extra so writeback never drops hand-authored content.
func (a *Archetype) UnmarshalJSON(data []byte) error {
	type plain Archetype
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key := range all {
		if archetypeKnownKeys[key] {
			delete(all, key)
		}
	}
	*a = Archetype(known)
	if len(all) > 0 {
		a.Extra = all
	}
	return nil
}

// MarshalJSON re-emits the schema fields plus the preserved Extra keys.
func (a Archetype) MarshalJSON() ([]byte, error) {
	type plain Archetype
	base, err := json.Marshal(plain(a))
	if err != nil {
		return nil, err
	}
	if len(a.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, raw := range a.Extra {
		if _, clash := merged[key]; !clash {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

// Origin reports the file and container the record was loaded from.
func (a *Archetype) Origin() Position { return a.origin }

// Namespace returns the id prefix before the first colon, or "" when the id
// has no namespace. "greek:prometheus" -> "greek".
func (a *Archetype) Namespace() string { return Namespace(a.ID) }

// IsPrimordial reports whether the record is a primordial category.
func (a *Archetype) IsPrimordial() bool { return a.Namespace() == PrimordialNamespace }

// StrongestPrimordial returns the instantiation with the highest weight,
// first-listed winning ties. ok is false when the record declares none.
func (a *Archetype) StrongestPrimordial() (PrimordialWeight, bool) {
	if len(a.Primordials) == 0 {
		return PrimordialWeight{}, false
	}
	best := a.Primordials[0]
	for _, pw := range a.Primordials[1:] {
		if pw.Weight > best.Weight {
			best = pw
		}
	}
	return best, true
}

// HasEdge reports whether the record already carries an edge of the given
// type to the given target, counting constellation membership.
func (a *Archetype) HasEdge(t RelationType, target string) bool {
	for _, rel := range a.Relationships {
		if rel.Type != t {
			continue
		}
		for _, id := range rel.TargetIDs() {
			if id == target {
				return true
			}
		}
	}
	return false
}

// PrimordialNamespace is the id namespace reserved for primordial
// categories; INSTANTIATES edges must land inside it.
const PrimordialNamespace = "primordial"

// Namespace returns the part of id before the first colon, or "".
func Namespace(id string) string {
	if i := strings.Index(id, ":"); i > 0 {
		return id[:i]
	}
	return ""
}
