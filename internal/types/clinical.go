package types

import (
	"encoding/json"
	"time"
)

// Score is a clinical sub-score that is either a determined value on [0,100]
// or explicitly undetermined. It marshals as a number or the string
// "undetermined", never as null.
type Score struct {
	Determined bool
	Value      float64
}

func DeterminedScore(v float64) Score { return Score{Determined: true, Value: v} }

func Undetermined() Score { return Score{} }

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Determined {
		return json.Marshal("undetermined")
	}
	return json.Marshal(s.Value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		s.Determined = true
		s.Value = v
		return nil
	}
	s.Determined = false
	s.Value = 0
	return nil
}

// Interpretation bands for the composite score.
const (
	InterpretationExcellent       = "excellent"
	InterpretationGood            = "good"
	InterpretationDeveloping      = "developing"
	InterpretationNeedsEvaluation = "needs_evaluation"
	InterpretationInsufficient    = "insufficient_data"
)

func InterpretComposite(s Score) string {
	if !s.Determined {
		return InterpretationInsufficient
	}
	switch {
	case s.Value >= 80:
		return InterpretationExcellent
	case s.Value >= 65:
		return InterpretationGood
	case s.Value >= 50:
		return InterpretationDeveloping
	default:
		return InterpretationNeedsEvaluation
	}
}

// ClinicalAssessmentSnapshot is computed on demand from the full attempt log
// and cached whole; it is never incrementally mutated.
type ClinicalAssessmentSnapshot struct {
	FigureGround          Score     `json:"figure_ground"`
	TemporalProcessing    Score     `json:"temporal_processing"`
	Localization          Score     `json:"localization"`
	AttentionSpanSeconds  float64   `json:"attention_span_seconds"`
	AttentionSpanCensored bool      `json:"attention_span_censored"`
	Composite             Score     `json:"composite"`
	Interpretation        string    `json:"interpretation"`
	ComputedAt            time.Time `json:"computed_at"`
}

// AssessmentResult wraps a snapshot with an explicit status so callers never
// have to guess from a missing body.
type AssessmentResult struct {
	Status       string                      `json:"status"` // "ok" | "insufficient_data"
	AttemptCount int                         `json:"attempt_count"`
	MinAttempts  int                         `json:"min_attempts"`
	Snapshot     *ClinicalAssessmentSnapshot `json:"snapshot,omitempty"`
}

const (
	AssessmentStatusOK           = "ok"
	AssessmentStatusInsufficient = "insufficient_data"
)

// ClinicalRecommendation is one evidence-based note for therapists/parents.
type ClinicalRecommendation struct {
	Area         string `json:"area"`
	Severity     string `json:"severity"` // "info" | "moderate" | "high_priority"
	Suggestion   string `json:"suggestion"`
	ClinicalNote string `json:"clinical_note"`
}
