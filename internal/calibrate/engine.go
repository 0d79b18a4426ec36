package calibrate

import (
	"fmt"
	"math"
	"sort"

	"arketype/internal/graph"
	"arketype/internal/logging"
	"arketype/internal/spectral"
)

// eps absorbs float64 noise in threshold and wall comparisons.
const eps = 1e-9

// polarPair is one deduplicated POLAR_OPPOSITE pair under consideration.
type polarPair struct {
	a, b *graph.Archetype // a.ID < b.ID
	axis string
	diff float64
}

// axisKey addresses one endpoint value in the working coordinates.
type axisKey struct {
	id   string
	axis string
}

// BuildPlan surveys every POLAR_OPPOSITE edge, deduplicates the two edge
// directions into canonical pairs, and plans a repair for each pair below
// threshold. Repairs are planned worst-first against working coordinates
// that carry every repair planned so far, so a pair sharing an endpoint
// with an earlier repair sees the moved value; pairs that could not be
// placed are retried until a full pass places nothing more. The graph is
// not mutated. Each entry's Before holds the working values the pair was
// planned against and After the end-of-run value of each endpoint; entries
// sort worst-first (smallest difference at plan time, ties by id).
func BuildPlan(g *graph.Graph, reg *spectral.Registry, params Params) *Plan {
	log := logging.New("calibrate")
	plan := newPlan(params)

	seen := make(map[string]bool)
	work := make(map[axisKey]float64)
	partners := make(map[axisKey][]string)
	var pending []polarPair

	for _, a := range g.All() {
		for _, rel := range a.Relationships {
			if rel.Type != graph.RelPolarOpposite {
				continue
			}
			for _, tid := range rel.TargetIDs() {
				skip := func(reason string) {
					plan.Skipped = append(plan.Skipped, SkippedEdge{
						Source: a.ID, Target: tid, Axis: rel.Axis, Reason: reason,
					})
					plan.Summary.Skipped++
					log.Warn("polar edge skipped", "source", a.ID, "target", tid, "reason", reason)
				}

				b, ok := g.Get(tid)
				if !ok {
					skip("target not in graph")
					continue
				}
				if rel.Axis == "" {
					skip("no axis declared")
					continue
				}
				if !reg.Has(rel.Axis) {
					skip(fmt.Sprintf("axis %q not in catalog", rel.Axis))
					continue
				}

				lo, hi := a, b
				if lo.ID > hi.ID {
					lo, hi = hi, lo
				}
				key := lo.ID + "|" + hi.ID + "|" + rel.Axis
				if seen[key] {
					continue
				}
				seen[key] = true

				diff, err := spectral.AxisDifference(lo.Coordinates, hi.Coordinates, rel.Axis)
				if err != nil {
					skip(err.Error())
					continue
				}

				loKey := axisKey{lo.ID, rel.Axis}
				hiKey := axisKey{hi.ID, rel.Axis}
				work[loKey] = lo.Coordinates[rel.Axis]
				work[hiKey] = hi.Coordinates[rel.Axis]
				partners[loKey] = append(partners[loKey], hi.ID)
				partners[hiKey] = append(partners[hiKey], lo.ID)

				plan.Summary.Pairs++
				if diff >= params.Threshold-eps {
					plan.Summary.Passing++
					continue
				}
				pending = append(pending, polarPair{a: lo, b: hi, axis: rel.Axis, diff: diff})
			}
		}
	}

	var entries []PairPlan
	for len(pending) > 0 {
		for i := range pending {
			p := &pending[i]
			p.diff = math.Abs(work[axisKey{p.a.ID, p.axis}] - work[axisKey{p.b.ID, p.axis}])
		}
		sort.Slice(pending, func(i, j int) bool {
			if pending[i].diff != pending[j].diff {
				return pending[i].diff < pending[j].diff
			}
			if pending[i].a.ID != pending[j].a.ID {
				return pending[i].a.ID < pending[j].a.ID
			}
			if pending[i].b.ID != pending[j].b.ID {
				return pending[i].b.ID < pending[j].b.ID
			}
			return pending[i].axis < pending[j].axis
		})

		progress := false
		var still []polarPair
		var stillPlans []PairPlan
		for _, p := range pending {
			pp := planPair(p, work, partners, params)
			if !pp.Achievable {
				still = append(still, p)
				stillPlans = append(stillPlans, pp)
				continue
			}
			work[axisKey{p.a.ID, p.axis}] = pp.After.Source
			work[axisKey{p.b.ID, p.axis}] = pp.After.Target
			plan.Summary.Fixed++
			entries = append(entries, pp)
			progress = true
		}
		pending = still
		if !progress {
			plan.Summary.Unfixable = len(stillPlans)
			entries = append(entries, stillPlans...)
			break
		}
	}

	// A later repair may have moved an endpoint again; report the values
	// Apply will write.
	for i := range entries {
		if !entries[i].Achievable {
			continue
		}
		s := work[axisKey{entries[i].Source, entries[i].Axis}]
		t := work[axisKey{entries[i].Target, entries[i].Axis}]
		entries[i].After = Endpoints{Source: s, Target: t}
		entries[i].DiffAfter = math.Abs(s - t)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DiffBefore != entries[j].DiffBefore {
			return entries[i].DiffBefore < entries[j].DiffBefore
		}
		if entries[i].Source != entries[j].Source {
			return entries[i].Source < entries[j].Source
		}
		if entries[i].Target != entries[j].Target {
			return entries[i].Target < entries[j].Target
		}
		return entries[i].Axis < entries[j].Axis
	})
	plan.Pairs = entries

	log.Debug("plan built",
		"pairs", plan.Summary.Pairs, "passing", plan.Summary.Passing,
		"fixed", plan.Summary.Fixed, "unfixable", plan.Summary.Unfixable,
		"skipped", plan.Summary.Skipped)
	return plan
}

// planPair computes the bounded symmetric repair for one failing pair
// against the working coordinates. The endpoint holding the lower axis
// value moves toward 0, the higher toward 1; on a tie the lexically
// smaller id takes the low role. Each side moves at most min(MaxShift,
// room to its wall, slack before a satisfied polar partner of its own
// would drop below threshold); a side's unplaceable share spills to the
// other side within the same limits. When the full needed separation
// cannot be placed the pair is unachievable and nothing moves. A pair the
// working coordinates already separate is achievable with zero shift.
func planPair(p polarPair, work map[axisKey]float64, partners map[axisKey][]string, params Params) PairPlan {
	av := work[axisKey{p.a.ID, p.axis}]
	bv := work[axisKey{p.b.ID, p.axis}]
	diff := math.Abs(av - bv)

	pp := PairPlan{
		Source:     p.a.ID,
		Target:     p.b.ID,
		Axis:       p.axis,
		Before:     Endpoints{Source: av, Target: bv},
		After:      Endpoints{Source: av, Target: bv},
		DiffBefore: diff,
		DiffAfter:  diff,
	}

	needed := params.Threshold - diff
	if needed <= eps {
		// Earlier repairs already pushed the pair apart.
		pp.Achievable = true
		return pp
	}

	// Assign roles. aIsLow also covers the tie case.
	aIsLow := av < bv || (av == bv && p.a.ID < p.b.ID)
	lowID, highID := p.a.ID, p.b.ID
	lowVal, highVal := av, bv
	if !aIsLow {
		lowID, highID = p.b.ID, p.a.ID
		lowVal, highVal = bv, av
	}

	half := needed / 2

	lowCap := math.Min(params.MaxShift, lowVal) // room down to 0
	lowCap = math.Min(lowCap, slack(work, partners, p.axis, lowID, highID, -1, params.Threshold))
	highCap := math.Min(params.MaxShift, 1-highVal) // room up to 1
	highCap = math.Min(highCap, slack(work, partners, p.axis, highID, lowID, +1, params.Threshold))

	lowShift := math.Min(half, lowCap)
	highShift := math.Min(half, highCap)
	leftover := needed - lowShift - highShift
	if leftover > eps {
		extra := math.Min(leftover, lowCap-lowShift)
		lowShift += extra
		leftover -= extra
	}
	if leftover > eps {
		extra := math.Min(leftover, highCap-highShift)
		highShift += extra
		leftover -= extra
	}
	if leftover > eps {
		return pp // unachievable, nothing moves
	}

	newLow := spectral.Clamp01(lowVal - lowShift)
	newHigh := spectral.Clamp01(highVal + highShift)

	pp.Achievable = true
	pp.DiffAfter = newHigh - newLow
	if aIsLow {
		pp.Shift = Endpoints{Source: lowShift, Target: highShift}
		pp.After = Endpoints{Source: newLow, Target: newHigh}
	} else {
		pp.Shift = Endpoints{Source: highShift, Target: lowShift}
		pp.After = Endpoints{Source: newHigh, Target: newLow}
	}
	return pp
}

// slack returns how far the endpoint id may move along axis in direction
// dir (-1 toward 0, +1 toward 1) before one of its own polar partners,
// one the working coordinates hold at or above threshold, would drop
// below it. Partners already under threshold do not constrain the move;
// they get their own repair turn. The partner being repaired right now is
// excluded.
func slack(work map[axisKey]float64, partners map[axisKey][]string, axis, id, exclude string, dir int, threshold float64) float64 {
	val := work[axisKey{id, axis}]
	room := math.Inf(1)
	for _, pid := range partners[axisKey{id, axis}] {
		if pid == exclude {
			continue
		}
		pv := work[axisKey{pid, axis}]
		if (dir < 0 && pv >= val) || (dir > 0 && pv <= val) {
			continue // partner on the far side, the move widens that gap
		}
		sep := math.Abs(val - pv)
		if sep < threshold-eps {
			continue
		}
		if r := sep - threshold; r < room {
			room = r
		}
	}
	if room < 0 {
		room = 0
	}
	return room
}

// Apply writes the plan's repairs into the graph and returns the sorted
// ids of mutated archetypes. After values are end-of-run values, so write
// order does not matter; endpoints that did not move and unachievable
// pairs are left untouched.
func Apply(g *graph.Graph, plan *Plan) []string {
	changed := make(map[string]bool)
	for _, pp := range plan.Pairs {
		if !pp.Achievable {
			continue
		}
		src, ok := g.Get(pp.Source)
		if !ok {
			continue
		}
		tgt, ok := g.Get(pp.Target)
		if !ok {
			continue
		}
		if src.Coordinates[pp.Axis] != pp.After.Source {
			src.Coordinates[pp.Axis] = pp.After.Source
			changed[pp.Source] = true
		}
		if tgt.Coordinates[pp.Axis] != pp.After.Target {
			tgt.Coordinates[pp.Axis] = pp.After.Target
			changed[pp.Target] = true
		}
	}
	ids := make([]string, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
