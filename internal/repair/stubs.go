package repair

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"arketype/internal/graph"
	"arketype/internal/logging"
	"arketype/internal/spectral"
)

// CompleteStubs fills records scoring below the stub threshold with
// defaults for their namespace. Fields already present are never touched;
// relationships are left to the orphan and closure passes.
func CompleteStubs(g *graph.Graph, cat *Catalog, params Params) []Change {
	log := logging.New("repair")
	var changes []Change

	for _, a := range g.All() {
		res := CheckCompleteness(a, params.StubThreshold)
		if !res.Stub {
			continue
		}
		def := cat.For(a.Namespace())
		var filled []string

		if a.Name == "" {
			a.Name = titleFromSlug(a.ID)
			filled = append(filled, "name")
		}
		if a.Description == "" && def.Description != "" {
			a.Description = def.Description
			filled = append(filled, "description")
		}
		if len(a.Coordinates) == 0 && len(def.Coordinates) > 0 {
			a.Coordinates = make(spectral.Vector, len(def.Coordinates))
			for axis, v := range def.Coordinates {
				a.Coordinates[axis] = spectral.Clamp01(v)
			}
			filled = append(filled, "coordinates")
		}
		if len(a.Primordials) == 0 && def.Primordial != "" {
			a.Primordials = []graph.PrimordialWeight{{Primordial: def.Primordial, Weight: 0.5}}
			filled = append(filled, "primordials")
		}
		if len(a.Keywords) == 0 && len(def.Keywords) > 0 {
			a.Keywords = append([]string(nil), def.Keywords...)
			filled = append(filled, "keywords")
		}
		if len(a.Domains) == 0 && len(def.Domains) > 0 {
			a.Domains = append([]string(nil), def.Domains...)
			filled = append(filled, "domains")
		}
		if len(a.Correspondences) == 0 && len(def.Correspondences) > 0 {
			a.Correspondences = make(map[string]string, len(def.Correspondences))
			for k, v := range def.Correspondences {
				a.Correspondences[k] = v
			}
			filled = append(filled, "correspondences")
		}
		if a.CoreFunction == "" && def.CoreFunction != "" {
			a.CoreFunction = def.CoreFunction
			filled = append(filled, "core_function")
		}
		if len(a.NarrativeRoles) == 0 && len(def.NarrativeRoles) > 0 {
			a.NarrativeRoles = append([]string(nil), def.NarrativeRoles...)
			filled = append(filled, "narrative_roles")
		}

		if len(filled) == 0 {
			continue
		}
		log.Debug("stub completed", "id", a.ID, "score", res.Score, "fields", len(filled))
		changes = append(changes, Change{
			Pass:   PassStubs,
			ID:     a.ID,
			Action: ActionFill,
			Detail: fmt.Sprintf("score %.0f, filled %s", res.Score, strings.Join(filled, ", ")),
		})
	}
	return changes
}

// titleFromSlug derives a display name from the slug part of an id:
// "greek:night-hag" becomes "Night Hag". Slugs are not always ASCII, so
// the first rune of each word is upcased as a rune.
func titleFromSlug(id string) string {
	slug := id
	if _, after, ok := strings.Cut(id, ":"); ok {
		slug = after
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
