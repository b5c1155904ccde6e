package types

import (
	"time"

	"github.com/google/uuid"
)

// SkillMemoryState is the SM-2 spaced-repetition state for one user and one
// scenario. Invariants: EasinessFactor >= 1.3, IntervalDays >= 1,
// Repetitions >= 0.
type SkillMemoryState struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_skill_user_scenario,unique" json:"user_id"`
	ScenarioType   ScenarioType `gorm:"column:scenario_type;not null;index:idx_skill_user_scenario,unique" json:"scenario_type"`
	EasinessFactor float64      `gorm:"column:easiness_factor;not null" json:"easiness_factor"`
	IntervalDays   float64      `gorm:"column:interval_days;not null" json:"interval_days"`
	Repetitions    int          `gorm:"column:repetitions;not null" json:"repetitions"`
	LastReview     time.Time    `gorm:"column:last_review;not null" json:"last_review"`
	NextDue        time.Time    `gorm:"column:next_due;not null" json:"next_due"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (SkillMemoryState) TableName() string { return "skill_memory_state" }
