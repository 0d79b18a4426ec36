package graph

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"arketype/internal/logging"
)

// Position locates a record inside the partition tree: the file it came
// from (relative to the store root) and, for nested collections, the suit
// container holding it.
type Position struct {
	File string `json:"file"`
	Suit string `json:"suit,omitempty"`
}

// LoadReport summarises one load pass. Warnings carry everything that was
// skipped; a load only fails outright on environmental errors.
type LoadReport struct {
	Files    int      `json:"files"`     // JSON files scanned
	BadFiles int      `json:"bad_files"` // unreadable or unparsable, treated as empty
	Records  int      `json:"records"`   // records indexed
	Skipped  int      `json:"skipped"`   // records dropped (no id, duplicate id, bad JSON)
	Warnings []string `json:"warnings,omitempty"`
}

func (r *LoadReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Store reads and writes an archetype graph kept as a directory tree of
// JSON partition files. Two file shapes are understood: a flat
// {"archetypes": [...]} list and a nested {"suits": [{"suit", "archetypes"}]}
// collection. Writeback merges changed records by id into their origin
// file; it never rewrites a file wholesale.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore returns a store rooted at dir. The directory must exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir, log: logging.New("graph")}
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

type suitDoc struct {
	Suit       string            `json:"suit"`
	Archetypes []json.RawMessage `json:"archetypes"`
}

type partitionDoc struct {
	Archetypes []json.RawMessage `json:"archetypes"`
	Suits      []suitDoc         `json:"suits"`
}

// Load walks the tree, decodes every *.json partition file, and indexes the
// records. Unreadable or unparsable files are warned about and treated as
// empty; records without an id or with malformed JSON are warned about and
// skipped. When an id repeats, the last-loaded record wins: it replaces the
// earlier one in the index, its file becomes the origin for writeback, and
// the collision is warned about. Load fails only when the root itself cannot
// be walked.
func (s *Store) Load() (*Graph, *LoadReport, error) {
	rep := &LoadReport{}
	var records []*Archetype
	index := make(map[string]int)     // id -> slot in records
	origin := make(map[string]string) // id -> file of the current holder

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, relErr := filepath.Rel(s.dir, path)
		if relErr != nil {
			rel = path
		}
		rep.Files++
		for _, rec := range s.loadFile(path, rel, rep) {
			switch {
			case rec.ID == "":
				rep.Skipped++
				rep.warnf("%s: record without id skipped", rel)
			case origin[rec.ID] != "":
				rep.Skipped++
				rep.warnf("%s: duplicate id %q, last-loaded record wins (replaces the one from %s)", rel, rec.ID, origin[rec.ID])
				records[index[rec.ID]] = rec
				origin[rec.ID] = rel
			default:
				index[rec.ID] = len(records)
				origin[rec.ID] = rel
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("graph: walk %s: %w", s.dir, err)
	}

	rep.Records = len(records)
	for _, w := range rep.Warnings {
		s.log.Warn(w)
	}
	s.log.Debug("graph loaded", "files", rep.Files, "records", rep.Records, "skipped", rep.Skipped)
	return New(records), rep, nil
}

func (s *Store) loadFile(path, rel string, rep *LoadReport) []*Archetype {
	data, err := os.ReadFile(path)
	if err != nil {
		rep.BadFiles++
		rep.warnf("%s: unreadable (%v), treated as empty", rel, err)
		return nil
	}
	var doc partitionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		rep.BadFiles++
		rep.warnf("%s: unparsable (%v), treated as empty", rel, err)
		return nil
	}
	if doc.Archetypes == nil && doc.Suits == nil {
		rep.warnf("%s: no archetype containers, treated as empty", rel)
		return nil
	}

	var out []*Archetype
	decode := func(raw json.RawMessage, suit string) {
		var a Archetype
		if err := json.Unmarshal(raw, &a); err != nil {
			rep.Skipped++
			rep.warnf("%s: malformed record skipped (%v)", rel, err)
			return
		}
		a.origin = Position{File: rel, Suit: suit}
		out = append(out, &a)
	}
	for _, raw := range doc.Archetypes {
		decode(raw, "")
	}
	for _, sd := range doc.Suits {
		for _, raw := range sd.Archetypes {
			decode(raw, sd.Suit)
		}
	}
	return out
}

// Save merges the records with the given ids back into their origin files.
// Each touched file is decoded generically, matching records are replaced
// in place, and the file is re-marshalled; sibling keys and record order
// survive. Returns the number of files written.
func (s *Store) Save(g *Graph, ids []string) (int, error) {
	byFile := make(map[string][]*Archetype)
	for _, id := range ids {
		a, ok := g.Get(id)
		if !ok {
			s.log.Warn("save: id not in graph, skipped", "id", id)
			continue
		}
		byFile[a.origin.File] = append(byFile[a.origin.File], a)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	written := 0
	for _, rel := range files {
		if err := s.mergeFile(rel, byFile[rel]); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *Store) mergeFile(rel string, recs []*Archetype) error {
	full := filepath.Join(s.dir, rel)
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("graph: read %s: %w", rel, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("graph: parse %s: %w", rel, err)
	}

	for _, rec := range recs {
		blob, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("graph: marshal %s: %w", rec.ID, err)
		}
		var asMap map[string]any
		if err := json.Unmarshal(blob, &asMap); err != nil {
			return fmt.Errorf("graph: remarshal %s: %w", rec.ID, err)
		}
		if !replaceRecord(doc, rec.origin.Suit, rec.ID, asMap) {
			s.log.Warn("save: record no longer present in origin file, skipped",
				"id", rec.ID, "file", rel, "suit", rec.origin.Suit)
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: marshal %s: %w", rel, err)
	}
	out = append(out, '\n')
	if err := os.WriteFile(full, out, 0o644); err != nil {
		return fmt.Errorf("graph: write %s: %w", rel, err)
	}
	return nil
}

func replaceRecord(doc map[string]any, suit, id string, rec map[string]any) bool {
	if suit == "" {
		list, ok := doc["archetypes"].([]any)
		if !ok {
			return false
		}
		return replaceInList(list, id, rec)
	}
	suits, ok := doc["suits"].([]any)
	if !ok {
		return false
	}
	for _, sv := range suits {
		sm, ok := sv.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := sm["suit"].(string); name != suit {
			continue
		}
		list, ok := sm["archetypes"].([]any)
		if !ok {
			return false
		}
		return replaceInList(list, id, rec)
	}
	return false
}

func replaceInList(list []any, id string, rec map[string]any) bool {
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if rid, _ := m["id"].(string); rid == id {
			list[i] = rec
			return true
		}
	}
	return false
}
