package display

import "testing"

func TestRelationType(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"POLAR_OPPOSITE", "Polar Opposite"},
		{"COMPLEMENT", "Complement"},
		{"CULTURAL_ECHO", "Cultural Echo"},
		{"MIRRORS", "Mirrors"},
		{"SHADOW", "Shadow"},
		{"EVOLUTION", "Evolution"},
		{"DEVOLUTION", "Devolution"},
		{"CONTAINS", "Contains"},
		{"CONTAINED_BY", "Contained By"},
		{"INSTANTIATES", "Instantiates"},
		{"TWIN_FLAME", "TWIN_FLAME"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := RelationType(tc.code); got != tc.want {
			t.Errorf("RelationType(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestRelationTypeWithCode(t *testing.T) {
	if got := RelationTypeWithCode("POLAR_OPPOSITE"); got != "Polar Opposite (POLAR_OPPOSITE)" {
		t.Errorf("got %q", got)
	}
	if got := RelationTypeWithCode("TWIN_FLAME"); got != "TWIN_FLAME" {
		t.Errorf("got %q", got)
	}
}

func TestAxis(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"order_chaos", "order <-> chaos"},
		{"matter_spirit", "matter <-> spirit"},
		{"nounderscore", "nounderscore"},
		{"trailing_", "trailing_"},
		{"_leading", "_leading"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Axis(tc.name); got != tc.want {
			t.Errorf("Axis(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFinding(t *testing.T) {
	if got := Finding("POLAR_TOO_CLOSE"); got != "Axis difference below polar threshold" {
		t.Errorf("got %q", got)
	}
	if got := Finding("NOT_A_CODE"); got != "NOT_A_CODE" {
		t.Errorf("got %q", got)
	}
	if got := FindingWithCode("MISSING_RECIPROCAL"); got != "Symmetric edge not mirrored on target (MISSING_RECIPROCAL)" {
		t.Errorf("got %q", got)
	}
}

func TestJudgment(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"agree", "Agree"},
		{"disagree", "Disagree"},
		{"unsure", "Unsure"},
		{"skip", "Skipped"},
		{"pending", "Pending"},
		{"maybe", "maybe"},
	}
	for _, tc := range cases {
		if got := Judgment(tc.code); got != tc.want {
			t.Errorf("Judgment(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
