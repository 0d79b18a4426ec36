// Package audit runs the human-judgment loop over sampled relationship
// claims. A round lives in its own directory as two JSON files: an
// immutable case set frozen at sampling time and a mutable result set that
// is rewritten after every single judgment, so an interrupted session never
// loses more than the answer being typed.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"arketype/internal/graph"
	"arketype/internal/spectral"
)

// ErrNoRound reports that the round directory has no case set. Callers
// branch on it to suggest `audit new`.
var ErrNoRound = errors.New("no audit round")

// Judgment is the verdict a human enters for one case.
type Judgment string

const (
	JudgmentAgree    Judgment = "agree"
	JudgmentDisagree Judgment = "disagree"
	JudgmentUnsure   Judgment = "unsure"
	JudgmentSkip     Judgment = "skip"
)

// Known reports whether j is one of the four verdicts.
func (j Judgment) Known() bool {
	switch j {
	case JudgmentAgree, JudgmentDisagree, JudgmentUnsure, JudgmentSkip:
		return true
	}
	return false
}

// Round states.
const (
	StateUninitialized = "uninitialized" // cases exist, no judgment entered yet
	StateActive        = "active"        // some cases still pending
	StateComplete      = "complete"      // every case judged
)

// Case is one frozen relationship claim. Endpoint records are snapshotted
// in full at sampling time so later graph edits cannot shift what the
// human judged.
type Case struct {
	Index     int                `json:"index"`
	Category  string             `json:"category"` // relationship type code
	Claim     string             `json:"claim"`
	Source    graph.Archetype    `json:"source"`
	Target    graph.Archetype    `json:"target"`
	Axis      string             `json:"axis,omitempty"`     // declared polar axis
	Fidelity  *float64           `json:"fidelity,omitempty"` // declared echo fidelity
	Distance  *float64           `json:"distance,omitempty"` // nil when no shared axes
	AxisDiffs map[string]float64 `json:"axis_diffs,omitempty"`
}

// CaseSet is the immutable half of a round.
type CaseSet struct {
	RoundID   string  `json:"round_id"`
	CreatedAt string  `json:"created_at"`
	GraphDir  string  `json:"graph_dir"`
	Seed      int64   `json:"seed"`
	Threshold float64 `json:"threshold"` // concordance pass bar
	Cases     []Case  `json:"cases"`
}

// Result is one entered judgment. Re-judging a case overwrites it.
type Result struct {
	Judgment Judgment `json:"judgment"`
	Note     string   `json:"note,omitempty"`
	JudgedAt string   `json:"judged_at"`
}

// ResultSet is the mutable half of a round, keyed by case index.
type ResultSet struct {
	RoundID   string          `json:"round_id"`
	StartedAt string          `json:"started_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
	Results   map[int]*Result `json:"results"`
}

const (
	casesFile   = "cases.json"
	resultsFile = "results.json"
)

// Round couples a case set with its results and the directory both live in.
type Round struct {
	Dir     string
	Cases   *CaseSet
	Results *ResultSet
}

// NewRound wraps a freshly sampled case set with an empty result set.
func NewRound(dir string, cs *CaseSet) *Round {
	return &Round{
		Dir:     dir,
		Cases:   cs,
		Results: &ResultSet{RoundID: cs.RoundID, Results: map[int]*Result{}},
	}
}

// LoadRound reads both halves of a round. A missing case set is ErrNoRound;
// a missing result set is a round nobody has judged yet.
func LoadRound(dir string) (*Round, error) {
	data, err := os.ReadFile(filepath.Join(dir, casesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("audit: %w in %s (run `audit new` first)", ErrNoRound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("audit: read case set: %w", err)
	}
	var cs CaseSet
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("audit: parse case set in %s: %w", dir, err)
	}

	r := NewRound(dir, &cs)
	data, err = os.ReadFile(filepath.Join(dir, resultsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: read result set: %w", err)
	}
	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("audit: parse result set in %s: %w", dir, err)
	}
	if rs.RoundID != cs.RoundID {
		return nil, fmt.Errorf("audit: result set belongs to round %s, case set is %s", rs.RoundID, cs.RoundID)
	}
	if rs.Results == nil {
		rs.Results = map[int]*Result{}
	}
	r.Results = &rs
	return r, nil
}

// HasCases reports whether dir already holds a case set.
func HasCases(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, casesFile))
	return err == nil
}

// SaveCases writes the case set, creating the round directory if needed.
func (r *Round) SaveCases() error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("audit: create round dir: %w", err)
	}
	return writeJSON(filepath.Join(r.Dir, casesFile), r.Cases)
}

// SaveResults writes the result set. Called after every judgment.
func (r *Round) SaveResults() error {
	r.Results.UpdatedAt = nowUTC()
	return writeJSON(filepath.Join(r.Dir, resultsFile), r.Results)
}

// Judge records a verdict for the case at index. The first judgment of a
// session stamps StartedAt.
func (r *Round) Judge(index int, j Judgment, note string) {
	if r.Results.StartedAt == "" {
		r.Results.StartedAt = nowUTC()
	}
	r.Results.Results[index] = &Result{Judgment: j, Note: note, JudgedAt: nowUTC()}
}

// NextPending returns the first case in original order without a judgment.
func (r *Round) NextPending() (*Case, bool) {
	for i := range r.Cases.Cases {
		c := &r.Cases.Cases[i]
		if _, ok := r.Results.Results[c.Index]; !ok {
			return c, true
		}
	}
	return nil, false
}

// Progress counts judged cases against the total.
func (r *Round) Progress() (judged, total int) {
	total = len(r.Cases.Cases)
	for _, c := range r.Cases.Cases {
		if _, ok := r.Results.Results[c.Index]; ok {
			judged++
		}
	}
	return judged, total
}

// State derives the round state from the results on hand.
func (r *Round) State() string {
	judged, total := r.Progress()
	switch {
	case judged == 0:
		return StateUninitialized
	case judged < total:
		return StateActive
	}
	return StateComplete
}

// Reset discards the result file and empties the in-memory results,
// returning the round to uninitialized. The case set stays.
func (r *Round) Reset() error {
	err := os.Remove(filepath.Join(r.Dir, resultsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("audit: reset round: %w", err)
	}
	r.Results = &ResultSet{RoundID: r.Cases.RoundID, Results: map[int]*Result{}}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("audit: encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("audit: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// endpointSnapshot freezes a record for embedding in a case. The copy is
// shallow; cases are serialized before the graph can change underneath.
func endpointSnapshot(a *graph.Archetype) graph.Archetype {
	return *a
}

// caseGeometry computes the frozen distance and per-axis differences
// between two endpoints. Distance stays nil when no axes are shared.
func caseGeometry(a, b *graph.Archetype) (*float64, map[string]float64) {
	shared := spectral.SharedAxes(a.Coordinates, b.Coordinates)
	if len(shared) == 0 {
		return nil, nil
	}
	diffs := make(map[string]float64, len(shared))
	for _, axis := range shared {
		d, err := spectral.AxisDifference(a.Coordinates, b.Coordinates, axis)
		if err != nil {
			continue
		}
		diffs[axis] = d
	}
	dist, err := spectral.Distance(a.Coordinates, b.Coordinates)
	if err != nil {
		return nil, diffs
	}
	return &dist, diffs
}
