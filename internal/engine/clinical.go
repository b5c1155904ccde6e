package engine

import (
	"sort"
	"time"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// ClinicalScorer derives standardized progress scores from the full attempt
// log. It is a pure read path: scoring never touches per-user engine state,
// and a snapshot is always rebuilt whole, never patched.
type ClinicalScorer struct {
	params Params
}

func NewClinicalScorer(params Params) *ClinicalScorer {
	return &ClinicalScorer{params: params}
}

// Score computes the snapshot from the given attempts. Attempts may arrive
// in any order; they are sorted by timestamp first. Sub-scores that cannot
// be supported by the data come back explicitly undetermined.
func (cs *ClinicalScorer) Score(attempts []types.AttemptRecord, now time.Time) types.ClinicalAssessmentSnapshot {
	sorted := make([]types.AttemptRecord, len(attempts))
	copy(sorted, attempts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	snap := types.ClinicalAssessmentSnapshot{
		FigureGround:       cs.figureGround(sorted),
		TemporalProcessing: cs.temporalProcessing(sorted),
		Localization:       cs.localization(sorted),
		ComputedAt:         now,
	}
	snap.AttentionSpanSeconds, snap.AttentionSpanCensored = cs.attentionSpan(sorted)
	snap.Composite = composite(snap.FigureGround, snap.TemporalProcessing, snap.Localization)
	snap.Interpretation = types.InterpretComposite(snap.Composite)
	return snap
}

// figureGround is the success rate among attempts with meaningful background
// noise (noise_level > 0.5), scaled to 0..100.
func (cs *ClinicalScorer) figureGround(attempts []types.AttemptRecord) types.Score {
	total, succeeded := 0, 0
	for _, a := range attempts {
		if a.NoiseLevel > 0.5 {
			total++
			if a.Success {
				succeeded++
			}
		}
	}
	if total == 0 {
		return types.Undetermined()
	}
	return types.DeterminedScore(100 * float64(succeeded) / float64(total))
}

// temporalProcessing rewards reaction-time consistency:
// clamp(100 - 100*std/mean, 0, 100).
func (cs *ClinicalScorer) temporalProcessing(attempts []types.AttemptRecord) types.Score {
	rts := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		rts = append(rts, a.ReactionTime)
	}
	if len(rts) < 2 {
		return types.Undetermined()
	}
	m := mean(rts)
	if m == 0 {
		return types.Undetermined()
	}
	return types.DeterminedScore(clampFloat(100-100*popStdDev(rts)/m, 0, 100))
}

func (cs *ClinicalScorer) localization(attempts []types.AttemptRecord) types.Score {
	if len(attempts) == 0 {
		return types.Undetermined()
	}
	n := 0
	for _, a := range attempts {
		if a.Success {
			n++
		}
	}
	return types.DeterminedScore(100 * float64(n) / float64(len(attempts)))
}

// attentionSpan is the elapsed time from session start to the first rolling
// 5-attempt window whose success rate drops below 50%. If performance never
// degrades the result is the total session duration, flagged right-censored.
func (cs *ClinicalScorer) attentionSpan(attempts []types.AttemptRecord) (float64, bool) {
	const rollingWindow = 5
	if len(attempts) == 0 {
		return 0, true
	}
	start := attempts[0].Timestamp
	for i := 0; i+rollingWindow <= len(attempts); i++ {
		succeeded := 0
		for _, a := range attempts[i : i+rollingWindow] {
			if a.Success {
				succeeded++
			}
		}
		if float64(succeeded)/rollingWindow < 0.5 {
			return attempts[i].Timestamp.Sub(start).Seconds(), false
		}
	}
	return attempts[len(attempts)-1].Timestamp.Sub(start).Seconds(), true
}

// composite averages the defined sub-scores; with none defined the result is
// itself undetermined.
func composite(scores ...types.Score) types.Score {
	sum, n := 0.0, 0
	for _, s := range scores {
		if s.Determined {
			sum += s.Value
			n++
		}
	}
	if n == 0 {
		return types.Undetermined()
	}
	return types.DeterminedScore(sum / float64(n))
}

// Recommendations produces the evidence-based notes for therapists and
// parents that accompany an assessment.
func (cs *ClinicalScorer) Recommendations(attempts []types.AttemptRecord, load types.LoadAssessment) []types.ClinicalRecommendation {
	if len(attempts) < 10 {
		return []types.ClinicalRecommendation{{
			Area:         "data_collection",
			Severity:     "info",
			Suggestion:   "Continue practicing to gather baseline data",
			ClinicalNote: "Minimum 20 attempts needed for meaningful assessment",
		}}
	}

	var out []types.ClinicalRecommendation

	perScenario := map[types.ScenarioType][2]int{} // total, succeeded
	for _, a := range attempts {
		c := perScenario[a.ScenarioType]
		c[0]++
		if a.Success {
			c[1]++
		}
		perScenario[a.ScenarioType] = c
	}
	for _, s := range types.AllScenarios() {
		c, ok := perScenario[s]
		if !ok || c[0] <= 5 {
			continue
		}
		rate := float64(c[1]) / float64(c[0])
		switch {
		case rate < 0.5:
			out = append(out, types.ClinicalRecommendation{
				Area:         string(s) + "_recognition",
				Severity:     "high_priority",
				Suggestion:   "Increase exposure to " + string(s) + " sounds in a controlled environment",
				ClinicalNote: "Consider frequency-specific hearing assessment",
			})
		case rate < 0.7:
			out = append(out, types.ClinicalRecommendation{
				Area:         string(s) + "_recognition",
				Severity:     "moderate",
				Suggestion:   "Additional practice recommended for " + string(s) + " scenarios",
				ClinicalNote: "Monitor progress over the next two weeks",
			})
		}
	}

	rts := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		rts = append(rts, a.ReactionTime)
	}
	if len(rts) > 5 && coefficientOfVariation(rts) > 0.5 {
		out = append(out, types.ClinicalRecommendation{
			Area:         "attention_consistency",
			Severity:     "moderate",
			Suggestion:   "Implement shorter, more frequent training sessions (10-15 min)",
			ClinicalNote: "High reaction-time variability may indicate attention difficulties",
		})
	}

	if load.Level == types.LoadLevelHigh {
		out = append(out, types.ClinicalRecommendation{
			Area:         "cognitive_load_management",
			Severity:     "high_priority",
			Suggestion:   "Reduce session duration and difficulty temporarily",
			ClinicalNote: "Signs of sustained cognitive overload detected",
		})
	}

	return out
}
