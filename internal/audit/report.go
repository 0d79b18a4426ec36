package audit

import (
	"fmt"
	"sort"
	"strings"

	"arketype/internal/display"
	"arketype/internal/format"
)

// FormatStatus renders the round report: identity, progress, and the
// concordance breakdown per relationship category. Safe to call at any
// state; an unjudged round reports that instead of a score.
func FormatStatus(r *Round) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("=== Audit Round %s ===\n", r.Cases.RoundID))
	b.WriteString(fmt.Sprintf("Created: %s   Graph: %s   Seed: %d\n", r.Cases.CreatedAt, r.Cases.GraphDir, r.Cases.Seed))

	judged, total := r.Progress()
	overall, byCategory := Score(r)
	b.WriteString(fmt.Sprintf("State: %s (%d of %d judged, %d skipped)\n\n", r.State(), judged, total, overall.Skipped))

	if judged > 0 {
		t := format.NewTable(format.ASCII)
		t.Header("Category", "Agree", "Disagree", "Unsure", "Skip", "Rate")
		t.RightAlign(2, 3, 4, 5, 6)
		cats := make([]string, 0, len(byCategory))
		for cat := range byCategory {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			tally := byCategory[cat]
			t.Row(display.RelationType(cat), tally.Agree, tally.Disagree, tally.Unsure, tally.Skipped, rateCell(tally))
		}
		t.Footer("Total", overall.Agree, overall.Disagree, overall.Unsure, overall.Skipped, rateCell(overall))
		b.WriteString(t.String())
		b.WriteString("\n\n")
	}

	threshold := r.Cases.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	switch {
	case overall.Counted() == 0:
		b.WriteString("RESULT: no judgments counted yet\n")
	case overall.Pass(threshold):
		b.WriteString(fmt.Sprintf("RESULT: PASS, concordance %.1f%% over %d judged (threshold %.0f%%)\n",
			overall.Rate()*100, overall.Counted(), threshold*100))
	default:
		b.WriteString(fmt.Sprintf("RESULT: FAIL, concordance %.1f%% over %d judged (threshold %.0f%%)\n",
			overall.Rate()*100, overall.Counted(), threshold*100))
	}
	return b.String()
}

func rateCell(t Tally) string {
	if t.Counted() == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", t.Rate()*100)
}
