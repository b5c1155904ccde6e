package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

func newTestBandit(seed int64) *BanditSelector {
	return NewBanditSelector(rand.New(rand.NewSource(seed)), DefaultParams())
}

func TestSampleBeta_ConvergesToPosteriorMean(t *testing.T) {
	bs := newTestBandit(1)
	cases := []struct {
		alpha, beta float64
	}{
		{1, 1},
		{3, 1},
		{2, 8},
		{50, 50},
	}
	for _, c := range cases {
		const n = 20000
		sum := 0.0
		for i := 0; i < n; i++ {
			s := bs.sampleBeta(c.alpha, c.beta)
			if s < 0 || s > 1 {
				t.Fatalf("Beta(%v,%v) sample out of [0,1]: %v", c.alpha, c.beta, s)
			}
			sum += s
		}
		want := c.alpha / (c.alpha + c.beta)
		got := sum / n
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("Beta(%v,%v): empirical mean %v, want %v +-0.01", c.alpha, c.beta, got, want)
		}
	}
}

func TestSampleBeta_VarianceShrinksWithEvidence(t *testing.T) {
	bs := newTestBandit(2)
	variance := func(alpha, beta float64) float64 {
		const n = 10000
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = bs.sampleBeta(alpha, beta)
		}
		m := mean(samples)
		sum := 0.0
		for _, s := range samples {
			sum += (s - m) * (s - m)
		}
		return sum / n
	}
	wide := variance(2, 2)
	tight := variance(40, 40)
	if tight >= wide {
		t.Fatalf("variance should shrink as alpha+beta grows: Beta(2,2)=%v Beta(40,40)=%v", wide, tight)
	}
}

func TestUpdate_HighGainRewardsAlphaOnly(t *testing.T) {
	bs := newTestBandit(3)
	arm := types.NewArmState()
	bs.Update(&arm, 0.8)
	if arm.Alpha != 1.8 {
		t.Fatalf("alpha = %v, want 1.8", arm.Alpha)
	}
	if arm.Beta != 1 {
		t.Fatalf("beta = %v, want unchanged 1", arm.Beta)
	}
	if arm.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", arm.Attempts)
	}
}

func TestUpdate_LowGainRewardsBetaOnly(t *testing.T) {
	bs := newTestBandit(4)
	arm := types.NewArmState()
	bs.Update(&arm, 0.1)
	if arm.Alpha != 1 {
		t.Fatalf("alpha = %v, want unchanged 1", arm.Alpha)
	}
	if math.Abs(arm.Beta-1.9) > 1e-12 {
		t.Fatalf("beta = %v, want 1.9", arm.Beta)
	}
}

func TestUpdate_ClampsGainAndFloorsParams(t *testing.T) {
	bs := newTestBandit(5)
	arm := types.NewArmState()
	bs.Update(&arm, 3.7) // clamps to 1, rewards alpha
	if arm.Alpha != 2 {
		t.Fatalf("alpha = %v, want 2 after clamped gain", arm.Alpha)
	}
	bs.Update(&arm, -2) // clamps to 0, rewards beta by 1
	if arm.Beta != 2 {
		t.Fatalf("beta = %v, want 2 after clamped gain", arm.Beta)
	}
	if arm.Alpha < 1 || arm.Beta < 1 {
		t.Fatalf("invariant broken: alpha=%v beta=%v", arm.Alpha, arm.Beta)
	}
}

func TestSelect_TieBreaksOnOrdinalThenAttempts(t *testing.T) {
	if !betterArm(0.9, 0.5, 3, 0, 0, 0) {
		t.Fatalf("higher sample must win")
	}
	if betterArm(0.5, 0.5, 3, 1, 0, 7) {
		t.Fatalf("equal sample: lower ordinal must win before attempt count")
	}
	if !betterArm(0.5, 0.5, 1, 1, 2, 7) {
		t.Fatalf("equal sample and ordinal: fewer attempts must win")
	}
}

func TestSelect_ReturnsACandidate(t *testing.T) {
	bs := newTestBandit(6)
	arms := map[types.ScenarioType]types.ArmState{}
	for _, s := range types.AllScenarios() {
		arms[s] = types.NewArmState()
	}
	seen := map[types.ScenarioType]bool{}
	for i := 0; i < 200; i++ {
		pick, sample := bs.Select(arms, types.AllScenarios())
		if types.ScenarioOrdinal(pick) < 0 {
			t.Fatalf("selected unknown scenario %q", pick)
		}
		if sample < 0 || sample > 1 {
			t.Fatalf("sample out of range: %v", sample)
		}
		seen[pick] = true
	}
	// Uniform priors should explore; a single arm winning 200 straight
	// draws means the sampler is not drawing fresh each call.
	if len(seen) < 2 {
		t.Fatalf("expected exploration across arms, saw only %v", seen)
	}
}

func TestSampleGamma_ShapeBelowOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := sampleGamma(rng, 0.5)
		if v < 0 {
			t.Fatalf("gamma sample negative: %v", v)
		}
		sum += v
	}
	// E[Gamma(0.5,1)] = 0.5
	if got := sum / n; math.Abs(got-0.5) > 0.02 {
		t.Fatalf("Gamma(0.5) empirical mean %v, want 0.5 +-0.02", got)
	}
}
