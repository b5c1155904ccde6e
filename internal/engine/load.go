package engine

import "github.com/yungbote/soundbridge-backend/internal/types"

// CognitiveLoadEstimator scores fatigue/frustration risk from the session
// window. The output is advisory only; nothing in the engine mutates state
// because of it.
type CognitiveLoadEstimator struct {
	params Params
}

func NewCognitiveLoadEstimator(params Params) *CognitiveLoadEstimator {
	return &CognitiveLoadEstimator{params: params}
}

// Assess combines four normalized components: reaction-time inconsistency,
// reaction-time trend (rising times read as fatigue), error rate, and error
// clustering (consecutive failures read as frustration). With fewer than
// LoadMinSamples entries the estimate is a neutral 0.5.
func (cl *CognitiveLoadEstimator) Assess(entries []WindowEntry) types.LoadAssessment {
	if len(entries) < cl.params.LoadMinSamples {
		return types.LoadAssessment{Load: 0.5, Level: types.LoadLevelModerate}
	}

	rts := windowReactionTimes(entries)

	rtVariance := clamp01(coefficientOfVariation(rts))

	slope := linearSlope(rts)
	rtTrend := 0.0
	if slope > 0 {
		rtTrend = clamp01(slope * 10)
	}

	errorRate := 1 - windowSuccessRate(entries)

	errorClustering := float64(longestFailureRun(entries)) / float64(len(entries))

	load := clamp01(0.25*rtVariance + 0.25*rtTrend + 0.30*errorRate + 0.20*errorClustering)

	out := types.LoadAssessment{Load: load, Level: cl.level(load)}
	if out.Level == types.LoadLevelHigh {
		out.Intervention = types.InterventionLowerNoise
		if errorClustering >= 0.5 {
			out.Intervention = types.InterventionSuggestBreak
		}
	}
	return out
}

func (cl *CognitiveLoadEstimator) level(load float64) string {
	switch {
	case load < cl.params.LoadLowBand:
		return types.LoadLevelLow
	case load < cl.params.LoadHighBand:
		return types.LoadLevelModerate
	default:
		return types.LoadLevelHigh
	}
}
