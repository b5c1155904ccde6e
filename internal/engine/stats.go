package engine

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStdDev is the population standard deviation (matching the scoring
// definitions, which do not apply Bessel's correction).
func popStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// coefficientOfVariation returns std/mean, or +Inf when the mean is zero and
// the data is not.
func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		if popStdDev(xs) == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return popStdDev(xs) / m
}

// linearSlope is the least-squares slope of xs against index 0..n-1.
func linearSlope(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	meanIdx := float64(n-1) / 2
	meanX := mean(xs)
	num, den := 0.0, 0.0
	for i, x := range xs {
		di := float64(i) - meanIdx
		num += di * (x - meanX)
		den += di * di
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func windowReactionTimes(entries []WindowEntry) []float64 {
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ReactionTime)
	}
	return out
}

func windowSuccessRate(entries []WindowEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Success {
			n++
		}
	}
	return float64(n) / float64(len(entries))
}

func longestFailureRun(entries []WindowEntry) int {
	longest, run := 0, 0
	for _, e := range entries {
		if e.Success {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}
