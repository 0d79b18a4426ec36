package calibrate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"arketype/internal/display"
)

// FormatPlan produces the human-readable recalibration report.
func FormatPlan(plan *Plan) string {
	var b strings.Builder

	b.WriteString("=== Polar Recalibration ===\n")
	b.WriteString(fmt.Sprintf("Threshold: %.2f  Max shift/side: %.2f\n", plan.Params.Threshold, plan.Params.MaxShift))
	mode := "APPLY"
	if plan.DryRun {
		mode = "DRY RUN (use --apply to write)"
	}
	b.WriteString(fmt.Sprintf("Mode:      %s\n\n", mode))

	if len(plan.Pairs) > 0 {
		b.WriteString("--- Failing pairs (worst first) ---\n")
		for _, pp := range plan.Pairs {
			mark := "✓"
			if !pp.Achievable {
				mark = "✗"
			}
			b.WriteString(fmt.Sprintf("%s %s <-> %s on %s: diff %.2f -> %.2f",
				mark, pp.Source, pp.Target, display.Axis(pp.Axis), pp.DiffBefore, pp.DiffAfter))
			if pp.Achievable {
				b.WriteString(fmt.Sprintf("  (%.2f/%.2f -> %.2f/%.2f)",
					pp.Before.Source, pp.Before.Target, pp.After.Source, pp.After.Target))
			} else {
				b.WriteString("  unfixable within bounds")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(plan.Skipped) > 0 {
		b.WriteString("--- Skipped edges ---\n")
		for _, se := range plan.Skipped {
			b.WriteString(fmt.Sprintf("  %s -> %s: %s\n", se.Source, se.Target, se.Reason))
		}
		b.WriteString("\n")
	}

	s := plan.Summary
	b.WriteString(fmt.Sprintf("RESULT: %d pairs (%d passing, %d fixed, %d unfixable, %d edges skipped)\n",
		s.Pairs, s.Passing, s.Fixed, s.Unfixable, s.Skipped))
	return b.String()
}

// WriteLog persists the plan as the run's structured log file. Both dry and
// apply runs write a log; the DryRun flag inside records which it was.
func WriteLog(path string, plan *Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("calibrate: marshal log: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("calibrate: write log %s: %w", path, err)
	}
	return nil
}
