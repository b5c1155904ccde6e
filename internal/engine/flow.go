package engine

import (
	"math"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// FlowStateDetector checks for the optimal challenge-skill band over the
// session window: a moderate success rate with consistent reaction times and
// no failure streaks.
type FlowStateDetector struct {
	params Params
}

func NewFlowStateDetector(params Params) *FlowStateDetector {
	return &FlowStateDetector{params: params}
}

func (fd *FlowStateDetector) Detect(entries []WindowEntry) types.FlowState {
	if len(entries) < fd.params.FlowMinSamples {
		return types.FlowState{
			Signal:      types.SignalNone,
			Consistency: 0.5,
			Reason:      "insufficient_data",
		}
	}

	successRate := windowSuccessRate(entries)
	rtCV := coefficientOfVariation(windowReactionTimes(entries))

	consistent := !math.IsInf(rtCV, 1) && rtCV < 0.3
	noStreak := longestFailureRun(entries) < 3
	inFlow := successRate >= 0.60 && successRate <= 0.85 && consistent && noStreak

	out := types.FlowState{
		InFlow:      inFlow,
		SuccessRate: successRate,
		Consistency: 1 / (1 + rtCV),
	}
	if math.IsInf(rtCV, 1) {
		out.Consistency = 0
	}

	// Boundary bands (0.40,0.60) and (0.85,0.90) deliberately hold
	// difficulty steady rather than oscillating it.
	switch {
	case successRate < 0.40:
		out.Signal = types.SignalDecrease
		out.Reason = "low success rate indicates frustration"
	case successRate > 0.90:
		out.Signal = types.SignalIncrease
		out.Reason = "high success rate indicates under-challenge"
	case inFlow:
		out.Signal = types.SignalMaintain
		out.Reason = "optimal challenge-skill balance"
	default:
		out.Signal = types.SignalNone
		out.Reason = "outside flow band, holding difficulty"
	}
	return out
}
