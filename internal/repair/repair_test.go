package repair

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"arketype/internal/graph"
	"arketype/internal/spectral"
)

func TestCheckCompleteness(t *testing.T) {
	tests := []struct {
		name      string
		rec       *graph.Archetype
		wantScore float64
		wantStub  bool
	}{
		{
			"id only",
			&graph.Archetype{ID: "greek:echo"},
			10, true,
		},
		{
			"id, name, description",
			&graph.Archetype{ID: "greek:echo", Name: "Echo", Description: "a nymph"},
			30, true,
		},
		{
			"exactly at threshold",
			&graph.Archetype{
				ID:          "greek:echo",
				Coordinates: spectral.Vector{"order_chaos": 0.5},
				Primordials: []graph.PrimordialWeight{{Primordial: "primordial:seeker", Weight: 0.4}},
				Keywords:    []string{"echo"},
			},
			40, false,
		},
		{
			"all fields",
			&graph.Archetype{
				ID:              "greek:echo",
				Name:            "Echo",
				Description:     "a nymph",
				Coordinates:     spectral.Vector{"order_chaos": 0.5},
				Primordials:     []graph.PrimordialWeight{{Primordial: "primordial:seeker", Weight: 0.4}},
				Keywords:        []string{"echo"},
				Domains:         []string{"myth"},
				Relationships:   []graph.Relationship{{Type: graph.RelMirrors, Target: "x:y"}},
				Correspondences: map[string]string{"element": "air"},
				CoreFunction:    "repeats",
				NarrativeRoles:  []string{"chorus"},
			},
			100, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCompleteness(tt.rec, DefaultParams().StubThreshold)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %.0f, want %.0f (missing %v)", got.Score, tt.wantScore, got.Missing)
			}
			if got.Stub != tt.wantStub {
				t.Errorf("Stub = %v, want %v", got.Stub, tt.wantStub)
			}
		})
	}
}

func TestCompleteStubs(t *testing.T) {
	stub := &graph.Archetype{
		ID:          "greek:night-hag",
		Description: "already authored by hand", // must survive
	}
	complete := &graph.Archetype{
		ID:            "greek:athena",
		Name:          "Athena",
		Description:   "goddess of wisdom",
		Coordinates:   spectral.Vector{"order_chaos": 0.15},
		Primordials:   []graph.PrimordialWeight{{Primordial: "primordial:sage", Weight: 0.9}},
		Keywords:      []string{"wisdom"},
		Relationships: []graph.Relationship{{Type: graph.RelMirrors, Target: "greek:night-hag"}},
	}
	g := graph.New([]*graph.Archetype{stub, complete})

	changes := CompleteStubs(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1: %+v", len(changes), changes)
	}
	c := changes[0]
	if c.ID != "greek:night-hag" || c.Action != ActionFill {
		t.Fatalf("change = %+v", c)
	}

	if stub.Name != "Night Hag" {
		t.Errorf("Name = %q, want derived %q", stub.Name, "Night Hag")
	}
	if stub.Description != "already authored by hand" {
		t.Errorf("present field overwritten: %q", stub.Description)
	}
	if len(stub.Coordinates) != 8 || stub.Coordinates["order_chaos"] != 0.5 {
		t.Errorf("Coordinates = %v, want neutral 8-axis vector", stub.Coordinates)
	}
	if len(stub.Primordials) != 1 || stub.Primordials[0].Primordial != "primordial:hero" {
		t.Errorf("Primordials = %v, want greek default primordial:hero", stub.Primordials)
	}
	if diff := cmp.Diff([]string{"myth", "hellenic"}, stub.Domains); diff != "" {
		t.Errorf("Domains mismatch (-want +got):\n%s", diff)
	}
	if stub.Correspondences["tradition"] != "hellenic" {
		t.Errorf("Correspondences = %v", stub.Correspondences)
	}
	// Relationships belong to the orphan pass, never filled here.
	if len(stub.Relationships) != 0 {
		t.Errorf("stub completion invented relationships: %v", stub.Relationships)
	}

	if complete.Name != "Athena" || complete.Description != "goddess of wisdom" {
		t.Errorf("complete record disturbed: %+v", complete)
	}
}

func TestCompleteStubsUnknownNamespace(t *testing.T) {
	stub := &graph.Archetype{ID: "outsider:wanderer"}
	g := graph.New([]*graph.Archetype{stub})

	changes := CompleteStubs(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	// Falls back to the common layer.
	if stub.Primordials[0].Primordial != "primordial:seeker" {
		t.Errorf("Primordials = %v, want common default", stub.Primordials)
	}
	if diff := cmp.Diff([]string{"myth"}, stub.Domains); diff != "" {
		t.Errorf("Domains mismatch (-want +got):\n%s", diff)
	}
}

func TestRepairOrphansMirror(t *testing.T) {
	orphan := &graph.Archetype{ID: "norse:vali", Coordinates: spectral.Vector{"order_chaos": 0.5}}
	near := &graph.Archetype{
		ID:            "norse:vidar",
		Coordinates:   spectral.Vector{"order_chaos": 0.7},
		Relationships: []graph.Relationship{{Type: graph.RelShadow, Target: "norse:vali"}},
	}
	g := graph.New([]*graph.Archetype{orphan, near})

	changes := RepairOrphans(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 || changes[0].Action != ActionMirror {
		t.Fatalf("changes = %+v, want one mirror", changes)
	}
	if !orphan.HasEdge(graph.RelMirrors, "norse:vidar") {
		t.Errorf("MIRRORS edge not added: %v", orphan.Relationships)
	}
	if !strings.Contains(changes[0].Detail, "0.200") {
		t.Errorf("Detail = %q, want distance", changes[0].Detail)
	}
}

func TestRepairOrphansInstantiates(t *testing.T) {
	// No candidate inside [0.05, 0.3): the only neighbour is 0.4 away.
	orphan := &graph.Archetype{
		ID:          "greek:erebus",
		Coordinates: spectral.Vector{"order_chaos": 0.5},
		Primordials: []graph.PrimordialWeight{
			{Primordial: "primordial:shadow", Weight: 0.9},
			{Primordial: "primordial:hero", Weight: 0.2},
		},
	}
	far := &graph.Archetype{
		ID:            "greek:helios",
		Coordinates:   spectral.Vector{"order_chaos": 0.9},
		Relationships: []graph.Relationship{{Type: graph.RelShadow, Target: "greek:erebus"}},
	}
	shadow := &graph.Archetype{ID: "primordial:shadow"}
	g := graph.New([]*graph.Archetype{orphan, far, shadow})

	changes := RepairOrphans(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 || changes[0].Action != ActionInstantiate {
		t.Fatalf("changes = %+v, want one instantiate", changes)
	}
	if !orphan.HasEdge(graph.RelInstantiates, "primordial:shadow") {
		t.Errorf("INSTANTIATES edge not added: %v", orphan.Relationships)
	}
}

func TestRepairOrphansCatalogFallback(t *testing.T) {
	orphan := &graph.Archetype{ID: "greek:nobody"}
	hero := &graph.Archetype{ID: "primordial:hero"}
	g := graph.New([]*graph.Archetype{orphan, hero})

	changes := RepairOrphans(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 || changes[0].Action != ActionInstantiate {
		t.Fatalf("changes = %+v", changes)
	}
	if !orphan.HasEdge(graph.RelInstantiates, "primordial:hero") {
		t.Errorf("catalog fallback not used: %v", orphan.Relationships)
	}
}

func TestRepairOrphansUnrepairable(t *testing.T) {
	orphan := &graph.Archetype{ID: "greek:nobody"}
	g := graph.New([]*graph.Archetype{orphan})

	changes := RepairOrphans(g, DefaultCatalog(), DefaultParams())
	if len(changes) != 1 || changes[0].Action != ActionUnrepairable {
		t.Fatalf("changes = %+v, want one unrepairable", changes)
	}
	if len(orphan.Relationships) != 0 {
		t.Errorf("unrepairable orphan gained an edge: %v", orphan.Relationships)
	}
	if len(ChangedIDs(changes)) != 0 {
		t.Errorf("ChangedIDs() includes unrepairable entry")
	}
}

func TestRepairOrphansExemptsPrimordials(t *testing.T) {
	lone := &graph.Archetype{ID: "primordial:void"}
	g := graph.New([]*graph.Archetype{lone})
	if changes := RepairOrphans(g, DefaultCatalog(), DefaultParams()); len(changes) != 0 {
		t.Errorf("primordial category repaired: %+v", changes)
	}
}

func TestCloseEdges(t *testing.T) {
	fid := 0.8
	a := &graph.Archetype{
		ID:          "greek:hermes",
		Coordinates: spectral.Vector{"order_chaos": 0.7},
		Relationships: []graph.Relationship{
			{Type: graph.RelMirrors, Target: "norse:loki"},
			{Type: graph.RelCulturalEcho, Target: "egyptian:thoth", Fidelity: &fid},
			{Type: graph.RelEvolution, Target: "greek:hermes-trismegistus", Trigger: "syncretism"},
			{Type: graph.RelPolarOpposite, Target: "greek:hestia", Axis: "stasis_change"},
			{Type: graph.RelShadow, Target: "norse:loki"}, // directed, stays one-way
		},
	}
	loki := &graph.Archetype{ID: "norse:loki"}
	thoth := &graph.Archetype{ID: "egyptian:thoth"}
	tris := &graph.Archetype{ID: "greek:hermes-trismegistus"}
	hestia := &graph.Archetype{
		ID: "greek:hestia",
		Relationships: []graph.Relationship{
			{Type: graph.RelPolarOpposite, Target: "greek:hermes", Axis: "stasis_change"},
		},
	}
	g := graph.New([]*graph.Archetype{a, loki, thoth, tris, hestia})

	changes := CloseEdges(g)
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3: %+v", len(changes), changes)
	}

	if !loki.HasEdge(graph.RelMirrors, "greek:hermes") {
		t.Errorf("MIRRORS not closed: %v", loki.Relationships)
	}
	if !thoth.HasEdge(graph.RelCulturalEcho, "greek:hermes") {
		t.Errorf("CULTURAL_ECHO not closed: %v", thoth.Relationships)
	}
	back := thoth.Relationships[0]
	if back.Fidelity == nil || *back.Fidelity != 0.8 {
		t.Errorf("fidelity not carried: %+v", back)
	}
	if back.Fidelity == a.Relationships[1].Fidelity {
		t.Errorf("fidelity pointer shared between edges")
	}
	if !tris.HasEdge(graph.RelDevolution, "greek:hermes") {
		t.Errorf("EVOLUTION not inverted: %v", tris.Relationships)
	}
	if tris.Relationships[0].Trigger != "syncretism" {
		t.Errorf("trigger not carried: %+v", tris.Relationships[0])
	}
	// Already-closed polar pair untouched.
	if len(hestia.Relationships) != 1 {
		t.Errorf("existing reciprocal duplicated: %v", hestia.Relationships)
	}
	// SHADOW stays one-way.
	if loki.HasEdge(graph.RelShadow, "greek:hermes") {
		t.Errorf("SHADOW mirrored: %v", loki.Relationships)
	}

	if again := CloseEdges(g); len(again) != 0 {
		t.Errorf("second pass not idempotent: %+v", again)
	}
}

func TestRunAllPasses(t *testing.T) {
	stub := &graph.Archetype{ID: "greek:echo"}
	near := &graph.Archetype{
		ID:          "greek:narcissus",
		Coordinates: spectral.Vector{"order_chaos": 0.5, "light_shadow": 0.5, "creation_destruction": 0.5, "active_receptive": 0.5, "individual_collective": 0.5, "sacred_profane": 0.5, "stasis_change": 0.5, "matter_spirit": 0.35},
		Relationships: []graph.Relationship{
			{Type: graph.RelShadow, Target: "greek:echo"},
		},
	}
	hero := &graph.Archetype{ID: "primordial:hero"}
	g := graph.New([]*graph.Archetype{stub, near, hero})

	changes := Run(g, DefaultCatalog(), DefaultParams())

	// Stub pass fills echo (including neutral coordinates), orphan pass can
	// then mirror it to narcissus at distance 0.15, closure mirrors back.
	var passes []string
	for _, c := range changes {
		passes = append(passes, c.Pass)
	}
	want := []string{PassStubs, PassOrphans, PassClosure}
	if diff := cmp.Diff(want, passes); diff != "" {
		t.Fatalf("pass order mismatch (-want +got):\n%s\nchanges: %+v", diff, changes)
	}

	if !stub.HasEdge(graph.RelMirrors, "greek:narcissus") {
		t.Errorf("orphan not mirrored after stub fill: %v", stub.Relationships)
	}
	if !near.HasEdge(graph.RelMirrors, "greek:echo") {
		t.Errorf("closure did not mirror back: %v", near.Relationships)
	}

	ids := ChangedIDs(changes)
	if diff := cmp.Diff([]string{"greek:echo", "greek:narcissus"}, ids); diff != "" {
		t.Errorf("ChangedIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatChangelog(t *testing.T) {
	changes := []Change{
		{Pass: PassStubs, ID: "a:b", Action: ActionFill, Detail: "score 10"},
		{Pass: PassOrphans, ID: "a:c", Action: ActionUnrepairable, Detail: "nothing in range"},
	}
	out := FormatChangelog(changes, true)
	if !strings.Contains(out, "DRY RUN") {
		t.Errorf("missing dry-run banner:\n%s", out)
	}
	if !strings.Contains(out, "RESULT: 1 changes (1 stubs, 0 orphans, 0 closures), 1 unrepairable") {
		t.Errorf("bad summary:\n%s", out)
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"greek:night-hag", "Night Hag"},
		{"tarot:major-fool", "Major Fool"},
		{"jungian:anima_animus", "Anima Animus"},
		{"solo", "Solo"},
		{"french:étoile-du-matin", "Étoile Du Matin"},
		{"norse:ætt", "Ætt"},
	}
	for _, tt := range tests {
		if got := titleFromSlug(tt.id); got != tt.want {
			t.Errorf("titleFromSlug(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
