package engine

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

func attemptSeries(n int, build func(i int) types.AttemptRecord) []types.AttemptRecord {
	out := make([]types.AttemptRecord, n)
	for i := range out {
		out[i] = build(i)
	}
	return out
}

func TestScore_NoNoiseLeavesFigureGroundUndetermined(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	user := uuid.New()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := attemptSeries(20, func(i int) types.AttemptRecord {
		return types.AttemptRecord{
			UserID:          user,
			ScenarioType:    types.ScenarioAmbulance,
			Success:         true,
			ReactionTime:    2.0,
			DifficultyLevel: 1,
			NoiseLevel:      0,
			Timestamp:       start.Add(time.Duration(i) * 10 * time.Second),
		}
	})

	snap := cs.Score(attempts, start.Add(time.Hour))
	if snap.FigureGround.Determined {
		t.Fatalf("figure_ground should be undetermined with no noisy attempts, got %v", snap.FigureGround)
	}
	if !snap.Localization.Determined || snap.Localization.Value != 100 {
		t.Fatalf("localization = %+v, want 100", snap.Localization)
	}
	// Identical RTs: temporal processing is perfect consistency.
	if !snap.TemporalProcessing.Determined || snap.TemporalProcessing.Value != 100 {
		t.Fatalf("temporal_processing = %+v, want 100", snap.TemporalProcessing)
	}
	// Composite averages only the defined sub-scores.
	if !snap.Composite.Determined || snap.Composite.Value != 100 {
		t.Fatalf("composite = %+v, want 100 from the two defined scores", snap.Composite)
	}
	if snap.Interpretation != types.InterpretationExcellent {
		t.Fatalf("interpretation = %q, want excellent", snap.Interpretation)
	}
	if !snap.AttentionSpanCensored {
		t.Fatalf("all-success session should right-censor the attention span")
	}
}

func TestScore_FigureGroundCountsOnlyNoisyAttempts(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	user := uuid.New()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := attemptSeries(10, func(i int) types.AttemptRecord {
		noisy := i < 4 // 4 noisy, 3 of them successful
		return types.AttemptRecord{
			UserID:          user,
			ScenarioType:    types.ScenarioPolice,
			Success:         i != 0,
			ReactionTime:    2.0,
			DifficultyLevel: 1,
			NoiseLevel: map[bool]float64{true: 0.8, false: 0.2}[noisy],
			Timestamp:  start.Add(time.Duration(i) * 10 * time.Second),
		}
	})
	snap := cs.Score(attempts, start.Add(time.Hour))
	if !snap.FigureGround.Determined || snap.FigureGround.Value != 75 {
		t.Fatalf("figure_ground = %+v, want 75 (3 of 4 noisy attempts)", snap.FigureGround)
	}
}

func TestScore_TemporalProcessingUndeterminedCases(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	one := []types.AttemptRecord{{Success: true, ReactionTime: 2, Timestamp: now}}
	if cs.Score(one, now).TemporalProcessing.Determined {
		t.Fatalf("temporal_processing needs at least 2 attempts")
	}
	zeros := []types.AttemptRecord{
		{Success: true, ReactionTime: 0, Timestamp: now},
		{Success: true, ReactionTime: 0, Timestamp: now.Add(time.Second)},
	}
	if cs.Score(zeros, now).TemporalProcessing.Determined {
		t.Fatalf("temporal_processing undefined when mean RT is 0")
	}
}

func TestScore_AttentionSpanFindsDegradation(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// 10 successes, then failures: the first sub-50% rolling window of 5
	// starts inside the failure tail.
	attempts := attemptSeries(20, func(i int) types.AttemptRecord {
		return types.AttemptRecord{
			Success:      i < 10,
			ReactionTime: 2,
			Timestamp:    start.Add(time.Duration(i) * time.Minute),
		}
	})
	snap := cs.Score(attempts, start.Add(time.Hour))
	if snap.AttentionSpanCensored {
		t.Fatalf("attention span should be observed, not censored")
	}
	// Window starting at index 8 is the first with 2/5 successes.
	want := attempts[8].Timestamp.Sub(start).Seconds()
	if math.Abs(snap.AttentionSpanSeconds-want) > 1e-9 {
		t.Fatalf("attention span = %v, want %v", snap.AttentionSpanSeconds, want)
	}
}

func TestScore_EmptyLog(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := cs.Score(nil, now)
	if snap.Composite.Determined {
		t.Fatalf("composite must be undetermined with no data")
	}
	if snap.Interpretation != types.InterpretationInsufficient {
		t.Fatalf("interpretation = %q, want insufficient_data", snap.Interpretation)
	}
}

func TestInterpretComposite_Bands(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{92, types.InterpretationExcellent},
		{80, types.InterpretationExcellent},
		{79.9, types.InterpretationGood},
		{65, types.InterpretationGood},
		{50, types.InterpretationDeveloping},
		{49.9, types.InterpretationNeedsEvaluation},
	}
	for _, c := range cases {
		if got := types.InterpretComposite(types.DeterminedScore(c.v)); got != c.want {
			t.Fatalf("InterpretComposite(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestRecommendations_FlagsWeakScenarioAndOverload(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := attemptSeries(12, func(i int) types.AttemptRecord {
		return types.AttemptRecord{
			ScenarioType: types.ScenarioTrain,
			Success:      i%3 == 0, // ~33% success
			ReactionTime: 2,
			Timestamp:    start.Add(time.Duration(i) * time.Minute),
		}
	})
	recs := cs.Recommendations(attempts, types.LoadAssessment{Load: 0.8, Level: types.LoadLevelHigh})
	var areas []string
	for _, r := range recs {
		areas = append(areas, r.Area)
	}
	found := map[string]bool{}
	for _, a := range areas {
		found[a] = true
	}
	if !found["train_recognition"] {
		t.Fatalf("expected a train_recognition deficit flag, got %v", areas)
	}
	if !found["cognitive_load_management"] {
		t.Fatalf("expected a cognitive load warning, got %v", areas)
	}
}

func TestRecommendations_ThinDataIsInfoOnly(t *testing.T) {
	cs := NewClinicalScorer(DefaultParams())
	recs := cs.Recommendations(make([]types.AttemptRecord, 5), types.LoadAssessment{})
	if len(recs) != 1 || recs[0].Severity != "info" {
		t.Fatalf("thin data should yield the single info note, got %+v", recs)
	}
}
