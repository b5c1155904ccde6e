package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params collects every tunable constant of the decision engine. Defaults
// are the shipped behavior; an optional YAML file (ENGINE_PARAMS_FILE) can
// override individual fields for clinical pilots.
type Params struct {
	// Session window
	WindowSize int `yaml:"window_size"`

	// Spaced repetition
	ForgettingThreshold float64 `yaml:"forgetting_threshold"`
	NearMissRTSeconds   float64 `yaml:"near_miss_rt_seconds"`

	// Bandit reward
	GainThreshold         float64 `yaml:"gain_threshold"`
	GainSuccessWeight     float64 `yaml:"gain_success_weight"`
	GainSpeedWeight       float64 `yaml:"gain_speed_weight"`
	GainImprovementWeight float64 `yaml:"gain_improvement_weight"`
	ColdStartGainSuccess  float64 `yaml:"cold_start_gain_success"`
	ColdStartGainFailure  float64 `yaml:"cold_start_gain_failure"`
	BaselineMinAttempts   int     `yaml:"baseline_min_attempts"`
	ChallengingBaseline   float64 `yaml:"challenging_baseline"`

	// Load / flow
	LoadMinSamples int     `yaml:"load_min_samples"`
	FlowMinSamples int     `yaml:"flow_min_samples"`
	LoadHighBand   float64 `yaml:"load_high_band"`
	LoadLowBand    float64 `yaml:"load_low_band"`

	// Recommendation knobs, each moved at most one step per call
	DefaultDifficulty int     `yaml:"default_difficulty"`
	MaxDifficulty     int     `yaml:"max_difficulty"`
	DefaultNoise      float64 `yaml:"default_noise"`
	NoiseStep         float64 `yaml:"noise_step"`
	DefaultSpeed      float64 `yaml:"default_speed"`
	SpeedStep         float64 `yaml:"speed_step"`
	MinSpeed          float64 `yaml:"min_speed"`
	MaxSpeed          float64 `yaml:"max_speed"`

	// Clinical scoring
	MinAttemptsAssessment int `yaml:"min_attempts_assessment"`
}

func DefaultParams() Params {
	return Params{
		WindowSize:            10,
		ForgettingThreshold:   0.5,
		NearMissRTSeconds:     4.0,
		GainThreshold:         0.4,
		GainSuccessWeight:     0.5,
		GainSpeedWeight:       0.3,
		GainImprovementWeight: 0.2,
		ColdStartGainSuccess:  0.8,
		ColdStartGainFailure:  0.4,
		BaselineMinAttempts:   3,
		ChallengingBaseline:   0.7,
		LoadMinSamples:        3,
		FlowMinSamples:        5,
		LoadHighBand:          0.6,
		LoadLowBand:           0.3,
		DefaultDifficulty:     1,
		MaxDifficulty:         10,
		DefaultNoise:          0.3,
		NoiseStep:             0.1,
		DefaultSpeed:          1.0,
		SpeedStep:             0.1,
		MinSpeed:              0.5,
		MaxSpeed:              1.5,
		MinAttemptsAssessment: 20,
	}
}

// LoadParams overlays the YAML file at path onto the defaults. A missing
// path returns the defaults unchanged.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read engine params file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse engine params file: %w", err)
	}
	return p, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
