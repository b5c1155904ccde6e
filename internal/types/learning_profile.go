package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ArmState holds the Beta-distribution parameters of one bandit arm.
// Invariant: Alpha >= 1 and Beta >= 1 at all times.
type ArmState struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Attempts int     `json:"attempts"`
}

// NewArmState returns the uniform Beta(1,1) prior.
func NewArmState() ArmState {
	return ArmState{Alpha: 1, Beta: 1}
}

// Mean is the posterior expectation alpha/(alpha+beta).
func (a ArmState) Mean() float64 {
	if a.Alpha+a.Beta == 0 {
		return 0.5
	}
	return a.Alpha / (a.Alpha + a.Beta)
}

// LearningProfile persists the per-user bandit state. BanditParams is a JSON
// map of scenario type to ArmState.
type LearningProfile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	BanditParams datatypes.JSON `gorm:"column:bandit_params" json:"bandit_params"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningProfile) TableName() string { return "learning_profile" }
