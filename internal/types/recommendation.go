package types

// Recommendation is the composed output of one engine decision. Producing it
// never mutates per-user state.
type Recommendation struct {
	Scenario        ScenarioType `json:"scenario"`
	Action          string       `json:"action"`
	DifficultyLevel int          `json:"difficulty_level"`
	NoiseLevel      float64      `json:"noise_level"`
	SpeedModifier   float64      `json:"speed_modifier"`
	Reason          string       `json:"reason"`
	CognitiveLoad   float64      `json:"cognitive_load"`
	InFlowState     bool         `json:"in_flow_state"`
}

const (
	ActionPresentScenario = "present_scenario"
	ActionReviewScenario  = "review_scenario"
	ActionSuggestBreak    = "suggest_break"

	ReasonScheduledReview         = "scheduled_review"
	ReasonExplorationExploitation = "exploration_exploitation"
)

// FlowSignal is the adaptive-difficulty signal derived from the session
// window.
type FlowSignal string

const (
	SignalIncrease FlowSignal = "increase_difficulty"
	SignalDecrease FlowSignal = "decrease_difficulty"
	SignalMaintain FlowSignal = "maintain"
	SignalNone     FlowSignal = "no_change"
)

// FlowState is the detector output surfaced through the cognitive-status
// endpoint.
type FlowState struct {
	InFlow      bool       `json:"in_flow"`
	SuccessRate float64    `json:"success_rate"`
	Consistency float64    `json:"consistency_score"`
	Signal      FlowSignal `json:"recommendation"`
	Reason      string     `json:"reason"`
}

// LoadAssessment is the cognitive-load estimate with its band and the
// advisory intervention. It is output only; the engine never acts on it
// automatically.
type LoadAssessment struct {
	Load         float64 `json:"cognitive_load"`
	Level        string  `json:"load_level"` // "low" | "moderate" | "high"
	Intervention string  `json:"intervention,omitempty"`
}

const (
	LoadLevelLow      = "low"
	LoadLevelModerate = "moderate"
	LoadLevelHigh     = "high"

	InterventionLowerNoise   = "lower_noise"
	InterventionSuggestBreak = "suggest_break"
)

// CognitiveStatus composes load, flow and the current recommendation.
type CognitiveStatus struct {
	CognitiveLoad  float64        `json:"cognitive_load"`
	LoadLevel      string         `json:"load_level"`
	FlowState      FlowState      `json:"flow_state"`
	Recommendation Recommendation `json:"recommendation"`
}

// CurvePoint is one entry of the learning curve: the moving-average success
// rate at a given attempt index.
type CurvePoint struct {
	AttemptIndex         int     `json:"attempt_index"`
	MovingAverageSuccess float64 `json:"moving_average_success"`
}
