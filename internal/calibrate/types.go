// Package calibrate repairs POLAR_OPPOSITE geometry. It partitions polar
// pairs into passing and failing against the axis-difference threshold,
// plans a bounded symmetric shift for each failing pair, and applies the
// plan to the in-memory graph. Planning is pure; only Apply mutates, and a
// pair is either fully repaired within its caps or left untouched.
package calibrate

import (
	"time"

	"github.com/google/uuid"
)

// Params bound every repair. Threshold is the minimum axis difference a
// polar pair must reach; MaxShift caps how far one endpoint may move on the
// axis in a single run.
type Params struct {
	Threshold float64 `json:"threshold"`
	MaxShift  float64 `json:"max_shift"`
}

// DefaultParams returns the standard polar contract bounds.
func DefaultParams() Params {
	return Params{Threshold: 0.55, MaxShift: 0.15}
}

// Endpoints holds one per-side value of a pair, keyed the same way the pair
// is: Source is the lexically smaller id.
type Endpoints struct {
	Source float64 `json:"source"`
	Target float64 `json:"target"`
}

// PairPlan is the planned (or applied) repair for one failing polar pair.
// Before holds the working values the pair was planned against; After holds
// each endpoint's end-of-run value, which a later repair sharing the
// endpoint may have moved past this pair's own shift. For unachievable
// pairs Shift is zero and After equals Before.
type PairPlan struct {
	Source     string    `json:"source"` // lexically smaller id
	Target     string    `json:"target"`
	Axis       string    `json:"axis"`
	Before     Endpoints `json:"before"`
	Shift      Endpoints `json:"shift"` // magnitude each side moves
	After      Endpoints `json:"after"`
	DiffBefore float64   `json:"diff_before"`
	DiffAfter  float64   `json:"diff_after"`
	Achievable bool      `json:"achievable"`
}

// SkippedEdge records a polar edge excluded from consideration, with the
// reason (unknown target, unknown axis, endpoint lacking the axis).
type SkippedEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Axis   string `json:"axis,omitempty"`
	Reason string `json:"reason"`
}

// Summary is the run-level census every batch invocation reports.
type Summary struct {
	Pairs     int `json:"pairs"`   // distinct polar pairs considered
	Passing   int `json:"passing"` // already at or above threshold
	Fixed     int `json:"fixed"`
	Unfixable int `json:"unfixable"`
	Skipped   int `json:"skipped"` // edges excluded before pairing
}

// Plan is one recalibration run: parameters, per-pair entries in worst-first
// order, and the summary. It doubles as the persisted run log.
type Plan struct {
	RunID       string        `json:"run_id"`
	GeneratedAt string        `json:"generated_at"`
	Params      Params        `json:"params"`
	DryRun      bool          `json:"dry_run"`
	Summary     Summary       `json:"summary"`
	Pairs       []PairPlan    `json:"pairs"`
	Skipped     []SkippedEdge `json:"skipped_edges,omitempty"`
}

func newPlan(params Params) *Plan {
	return &Plan{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Params:      params,
	}
}
