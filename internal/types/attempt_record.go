package types

import (
	"time"

	"github.com/google/uuid"
)

// AttemptRecord is one graded trial. The log is append-only; nothing in the
// engine ever mutates a stored attempt.
type AttemptRecord struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;index:idx_attempt_user_ts" json:"user_id"`
	ScenarioType    ScenarioType `gorm:"column:scenario_type;not null;index" json:"scenario_type"`
	Success         bool         `gorm:"column:success;not null" json:"success"`
	ReactionTime    float64      `gorm:"column:reaction_time;not null" json:"reaction_time"`
	DifficultyLevel int          `gorm:"column:difficulty_level;not null" json:"difficulty_level"`
	NoiseLevel      float64      `gorm:"column:noise_level;not null" json:"noise_level"`
	Timestamp       time.Time    `gorm:"column:timestamp;not null;index:idx_attempt_user_ts" json:"timestamp"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (AttemptRecord) TableName() string { return "attempt_record" }
