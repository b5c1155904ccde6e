package types

import "github.com/google/uuid"

// ScenarioProgress aggregates one scenario's slice of the attempt log.
type ScenarioProgress struct {
	Attempts         int     `json:"attempts"`
	SuccessRate      float64 `json:"success_rate"`
	MeanReactionTime float64 `json:"mean_reaction_time"`
}

// ProgressReport is the parent/therapist-facing progress view: the learning
// curve plus per-scenario aggregates.
type ProgressReport struct {
	UserID        uuid.UUID                         `json:"user_id"`
	TotalAttempts int                               `json:"total_attempts"`
	SuccessRate   float64                           `json:"success_rate"`
	Curve         []CurvePoint                      `json:"learning_curve"`
	PerScenario   map[ScenarioType]ScenarioProgress `json:"per_scenario"`
}
