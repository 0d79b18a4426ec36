package validate

import (
	"fmt"
	"sort"
	"strings"

	"arketype/internal/display"
	"arketype/internal/format"
)

// FormatReport produces the human-readable validation report: a per-code
// summary table followed by the individual findings and a RESULT line.
func FormatReport(rep *Report, mode format.Mode) string {
	var b strings.Builder

	b.WriteString("=== Archetype Graph Validation ===\n")
	b.WriteString(fmt.Sprintf("Edges checked: %d  skipped: %d\n\n", rep.Checked, rep.Skipped))

	counts := rep.Counts()
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if len(codes) > 0 {
		tbl := format.NewTable(mode)
		tbl.Header("Code", "Finding", "Count")
		for _, code := range codes {
			tbl.Row(code, display.Finding(code), counts[code])
		}
		tbl.RightAlign(3)
		b.WriteString(tbl.String())
		b.WriteString("\n\n")

		b.WriteString("--- Findings ---\n")
		for _, f := range rep.Findings {
			target := f.Target
			if target == "" {
				target = "-"
			}
			line := fmt.Sprintf("[%s] %-18s %s -> %s", f.Severity, f.Code, f.Source, target)
			if f.Detail != "" {
				line += ": " + f.Detail
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	sev := rep.BySeverity()
	if rep.Clean() && sev[SeverityWarning] == 0 && sev[SeverityAdvisory] == 0 {
		b.WriteString("RESULT: CLEAN\n")
	} else {
		b.WriteString(fmt.Sprintf("RESULT: %d violations, %d warnings, %d advisories\n",
			sev[SeverityViolation], sev[SeverityWarning], sev[SeverityAdvisory]))
	}
	return b.String()
}
