package audit

// DefaultThreshold is the concordance a round must reach to pass.
const DefaultThreshold = 0.80

// Tally counts judgments. Skipped cases are recorded but stay out of the
// concordance denominator.
type Tally struct {
	Agree    int `json:"agree"`
	Disagree int `json:"disagree"`
	Unsure   int `json:"unsure"`
	Skipped  int `json:"skipped"`
}

func (t *Tally) add(j Judgment) {
	switch j {
	case JudgmentAgree:
		t.Agree++
	case JudgmentDisagree:
		t.Disagree++
	case JudgmentUnsure:
		t.Unsure++
	case JudgmentSkip:
		t.Skipped++
	}
}

// Counted is the concordance denominator: every judgment except skip.
func (t Tally) Counted() int {
	return t.Agree + t.Disagree + t.Unsure
}

// Rate is the agreement rate, 0 when nothing counts yet.
func (t Tally) Rate() float64 {
	n := t.Counted()
	if n == 0 {
		return 0
	}
	return float64(t.Agree) / float64(n)
}

// Pass reports whether the tally clears the threshold. An empty tally
// never passes.
func (t Tally) Pass(threshold float64) bool {
	return t.Counted() > 0 && t.Rate() >= threshold
}

// Score tallies the round overall and per relationship category.
func Score(r *Round) (overall Tally, byCategory map[string]Tally) {
	byCategory = map[string]Tally{}
	for _, c := range r.Cases.Cases {
		res, ok := r.Results.Results[c.Index]
		if !ok {
			continue
		}
		overall.add(res.Judgment)
		t := byCategory[c.Category]
		t.add(res.Judgment)
		byCategory[c.Category] = t
	}
	return overall, byCategory
}
