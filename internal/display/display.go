// Package display provides human-readable names for machine codes.
//
// Rule: codes are for machines, words are for humans. Use these functions in
// CLI output, REPL prompts, and logs. Keep raw codes in JSON fields, map
// keys, and equality comparisons.
package display

import "strings"

// --- Relationship types ---

var relationTypes = map[string]string{
	"POLAR_OPPOSITE": "Polar Opposite",
	"COMPLEMENT":     "Complement",
	"CULTURAL_ECHO":  "Cultural Echo",
	"MIRRORS":        "Mirrors",
	"SHADOW":         "Shadow",
	"EVOLUTION":      "Evolution",
	"DEVOLUTION":     "Devolution",
	"CONTAINS":       "Contains",
	"CONTAINED_BY":   "Contained By",
	"INSTANTIATES":   "Instantiates",
}

// RelationType returns the human-readable name for a relationship type code.
// Unknown codes are returned as-is.
func RelationType(code string) string {
	if name, ok := relationTypes[code]; ok {
		return name
	}
	return code
}

// RelationTypeWithCode returns "Polar Opposite (POLAR_OPPOSITE)" format.
func RelationTypeWithCode(code string) string {
	if name, ok := relationTypes[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Axes ---

// Axis renders an axis identifier as its pole pair: "order_chaos" becomes
// "order <-> chaos". Identifiers without two poles are returned as-is.
func Axis(name string) string {
	low, high, ok := strings.Cut(name, "_")
	if !ok || low == "" || high == "" {
		return name
	}
	return low + " <-> " + high
}

// --- Validation finding codes ---

var findings = map[string]string{
	"UNKNOWN_TYPE":       "Unknown relationship type",
	"UNKNOWN_TARGET":     "Target not in graph",
	"UNKNOWN_AXIS":       "Axis not in catalog",
	"MISSING_AXIS":       "Polar opposite without axis declaration",
	"AXIS_NOT_ON_RECORD": "Endpoint lacks the declared axis",
	"POLAR_TOO_CLOSE":    "Axis difference below polar threshold",
	"MISSING_RECIPROCAL": "Symmetric edge not mirrored on target",
	"MISSING_INVERSE":    "Directed edge without its inverse",
	"BAD_PRIMORDIAL":     "Instantiates target is not primordial",
	"BAD_FIDELITY":       "Cultural echo fidelity outside [0,1]",
	"ECHO_DRIFT":         "Echo fidelity disagrees with distance",
}

// Finding returns the human-readable description for a finding code.
// Unknown codes are returned as-is.
func Finding(code string) string {
	if name, ok := findings[code]; ok {
		return name
	}
	return code
}

// FindingWithCode returns "Axis difference below polar threshold
// (POLAR_TOO_CLOSE)" format for dual-audience contexts.
func FindingWithCode(code string) string {
	if name, ok := findings[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Audit judgments ---

var judgments = map[string]string{
	"agree":    "Agree",
	"disagree": "Disagree",
	"unsure":   "Unsure",
	"skip":     "Skipped",
	"pending":  "Pending",
}

// Judgment returns the display form of an audit judgment code.
func Judgment(code string) string {
	if name, ok := judgments[code]; ok {
		return name
	}
	return code
}
