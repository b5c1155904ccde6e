package engine

import (
	"math"
	"math/rand"
	"sync"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// BanditSelector runs Thompson Sampling over the scenario arms. The random
// source is injected so tests can seed it; access to it is serialized here
// because arms of different users share one source.
type BanditSelector struct {
	params Params

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBanditSelector(rng *rand.Rand, params Params) *BanditSelector {
	return &BanditSelector{params: params, rng: rng}
}

// Select draws one fresh Beta(alpha,beta) sample per candidate and returns
// the argmax plus its sample value. Ties resolve to the lowest scenario
// ordinal, then the lowest attempt count.
func (bs *BanditSelector) Select(arms map[types.ScenarioType]types.ArmState, candidates []types.ScenarioType) (types.ScenarioType, float64) {
	best := types.ScenarioType("")
	bestSample := -1.0
	bestOrdinal := 0
	bestAttempts := 0

	for _, s := range candidates {
		arm, ok := arms[s]
		if !ok {
			arm = types.NewArmState()
		}
		sample := bs.sampleBeta(arm.Alpha, arm.Beta)
		ord := types.ScenarioOrdinal(s)
		if best == "" || betterArm(sample, bestSample, ord, bestOrdinal, arm.Attempts, bestAttempts) {
			best = s
			bestSample = sample
			bestOrdinal = ord
			bestAttempts = arm.Attempts
		}
	}
	return best, bestSample
}

func betterArm(sample, bestSample float64, ord, bestOrd, attempts, bestAttempts int) bool {
	if sample != bestSample {
		return sample > bestSample
	}
	if ord != bestOrd {
		return ord < bestOrd
	}
	return attempts < bestAttempts
}

// Update applies the learning-gain reward to one arm. The gain is clamped to
// [0,1] first; a gain above the threshold rewards alpha, anything else
// rewards beta. Alpha and beta are floored at 1.
func (bs *BanditSelector) Update(arm *types.ArmState, learningGain float64) {
	gain := clamp01(learningGain)
	if gain > bs.params.GainThreshold {
		arm.Alpha += gain
	} else {
		arm.Beta += 1 - gain
	}
	if arm.Alpha < 1 {
		arm.Alpha = 1
	}
	if arm.Beta < 1 {
		arm.Beta = 1
	}
	arm.Attempts++
}

func (bs *BanditSelector) sampleBeta(alpha, beta float64) float64 {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	x := sampleGamma(bs.rng, alpha)
	y := sampleGamma(bs.rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using Marsaglia-Tsang squeeze
// rejection, with the boost transform for shape < 1.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / (3 * math.Sqrt(d))
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
