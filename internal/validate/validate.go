// Package validate runs the read-only integrity pass over the archetype
// graph: geometric contracts, referential integrity, and reciprocity. It
// reports findings and never mutates anything; repairs belong to the
// calibrate and repair packages.
package validate

import (
	"fmt"
	"sort"

	"arketype/internal/graph"
	"arketype/internal/spectral"
)

// Severity buckets for findings. Warnings mark edges the pass had to skip,
// violations mark broken contracts, advisories are informational and never
// fail anything.
const (
	SeverityWarning   = "warning"
	SeverityViolation = "violation"
	SeverityAdvisory  = "advisory"
)

// Finding codes. Human-readable descriptions live in internal/display.
const (
	CodeUnknownType     = "UNKNOWN_TYPE"
	CodeUnknownTarget   = "UNKNOWN_TARGET"
	CodeUnknownAxis     = "UNKNOWN_AXIS"
	CodeMissingAxis     = "MISSING_AXIS"
	CodeAxisNotOnRecord = "AXIS_NOT_ON_RECORD"
	CodePolarTooClose   = "POLAR_TOO_CLOSE"
	CodeMissingRecip    = "MISSING_RECIPROCAL"
	CodeMissingInverse  = "MISSING_INVERSE"
	CodeBadPrimordial   = "BAD_PRIMORDIAL"
	CodeBadFidelity     = "BAD_FIDELITY"
	CodeEchoDrift       = "ECHO_DRIFT"
)

// Params are the validator's tunables.
type Params struct {
	PolarThreshold float64 // minimum axis difference for POLAR_OPPOSITE
	DriftThreshold float64 // |fidelity - (1 - distance)| above this flags an echo
	Advisory       bool    // include ECHO_DRIFT advisories
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{PolarThreshold: 0.55, DriftThreshold: 0.35}
}

// Finding is one validation result for an edge or a record.
type Finding struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Source   string `json:"source"`
	Target   string `json:"target,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Report is the outcome of one validation pass. Findings keep graph
// iteration order: sorted source ids, then record edge order.
type Report struct {
	Checked  int       `json:"edges_checked"`
	Skipped  int       `json:"edges_skipped"`
	Findings []Finding `json:"findings,omitempty"`
}

// Counts returns finding counts keyed by code.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Code]++
	}
	return counts
}

// BySeverity returns finding counts keyed by severity.
func (r *Report) BySeverity() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// Clean reports whether the pass produced no violations. Warnings and
// advisories do not count against cleanliness.
func (r *Report) Clean() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityViolation {
			return false
		}
	}
	return true
}

// Run validates every edge of every archetype against the registry and
// params. The graph is never mutated.
func Run(g *graph.Graph, reg *spectral.Registry, params Params) *Report {
	rep := &Report{}
	add := func(severity, code, source, target, detail string) {
		rep.Findings = append(rep.Findings, Finding{
			Severity: severity, Code: code, Source: source, Target: target, Detail: detail,
		})
	}

	for _, a := range g.All() {
		for _, axis := range coordinateAxes(a) {
			if !reg.Has(axis) {
				add(SeverityWarning, CodeUnknownAxis, a.ID, "",
					fmt.Sprintf("coordinate axis %q not in catalog", axis))
			}
		}

		for _, rel := range a.Relationships {
			ids := rel.TargetIDs()
			if !rel.Type.Known() {
				rep.Skipped++
				first := ""
				if len(ids) > 0 {
					first = ids[0]
				}
				add(SeverityWarning, CodeUnknownType, a.ID, first, string(rel.Type))
				continue
			}
			if len(ids) == 0 {
				rep.Skipped++
				add(SeverityWarning, CodeUnknownTarget, a.ID, "", string(rel.Type))
				continue
			}
			// Constellation edges are checked once per target.
			for _, tid := range ids {
				target, ok := g.Get(tid)
				if !ok {
					rep.Skipped++
					add(SeverityWarning, CodeUnknownTarget, a.ID, tid, string(rel.Type))
					continue
				}
				rep.Checked++

				switch rel.Type {
				case graph.RelPolarOpposite:
					checkPolar(add, reg, params, a, target, rel)
				case graph.RelCulturalEcho:
					checkEcho(add, params, a, target, rel)
				case graph.RelInstantiates:
					if !target.IsPrimordial() {
						add(SeverityViolation, CodeBadPrimordial, a.ID, target.ID,
							fmt.Sprintf("target namespace %q", target.Namespace()))
					}
				}

				if recip, expected := rel.Type.Reciprocal(); expected {
					if !target.HasEdge(recip, a.ID) {
						code := CodeMissingRecip
						if !rel.Type.Symmetric() {
							code = CodeMissingInverse
						}
						add(SeverityViolation, code, a.ID, target.ID,
							fmt.Sprintf("target lacks %s back-edge", recip))
					}
				}
			}
		}
	}
	return rep
}

func checkPolar(add func(sev, code, src, tgt, detail string), reg *spectral.Registry, params Params, a, target *graph.Archetype, rel graph.Relationship) {
	if rel.Axis == "" {
		add(SeverityViolation, CodeMissingAxis, a.ID, target.ID, "")
		return
	}
	if !reg.Has(rel.Axis) {
		add(SeverityWarning, CodeUnknownAxis, a.ID, target.ID,
			fmt.Sprintf("declared axis %q not in catalog", rel.Axis))
		return
	}
	diff, err := spectral.AxisDifference(a.Coordinates, target.Coordinates, rel.Axis)
	if err != nil {
		add(SeverityViolation, CodeAxisNotOnRecord, a.ID, target.ID, err.Error())
		return
	}
	if diff < params.PolarThreshold {
		add(SeverityViolation, CodePolarTooClose, a.ID, target.ID,
			fmt.Sprintf("axis %s diff %.2f < %.2f", rel.Axis, diff, params.PolarThreshold))
	}
}

func checkEcho(add func(sev, code, src, tgt, detail string), params Params, a, target *graph.Archetype, rel graph.Relationship) {
	if rel.Fidelity == nil {
		add(SeverityViolation, CodeBadFidelity, a.ID, target.ID, "fidelity missing")
		return
	}
	f := *rel.Fidelity
	if f < 0 || f > 1 {
		add(SeverityViolation, CodeBadFidelity, a.ID, target.ID,
			fmt.Sprintf("fidelity %.2f outside [0,1]", f))
		return
	}
	if !params.Advisory {
		return
	}
	dist, err := spectral.Distance(a.Coordinates, target.Coordinates)
	if err != nil {
		return // no comparable coordinates, nothing to advise on
	}
	drift := f - (1 - dist)
	if drift < 0 {
		drift = -drift
	}
	if drift > params.DriftThreshold {
		add(SeverityAdvisory, CodeEchoDrift, a.ID, target.ID,
			fmt.Sprintf("fidelity %.2f vs distance %.2f (drift %.2f)", f, dist, drift))
	}
}

// coordinateAxes returns the record's coordinate axes sorted for
// deterministic reporting.
func coordinateAxes(a *graph.Archetype) []string {
	axes := make([]string, 0, len(a.Coordinates))
	for axis := range a.Coordinates {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}
