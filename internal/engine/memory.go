package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// MemoryScheduler drives SM-2 spaced repetition per user and scenario.
type MemoryScheduler struct {
	params Params
}

func NewMemoryScheduler(params Params) *MemoryScheduler {
	return &MemoryScheduler{params: params}
}

// NewSkillState initializes the state created on the first attempt of a
// scenario. The first review is due immediately.
func (ms *MemoryScheduler) NewSkillState(userID uuid.UUID, scenario types.ScenarioType, now time.Time) types.SkillMemoryState {
	return types.SkillMemoryState{
		ID:             uuid.New(),
		UserID:         userID,
		ScenarioType:   scenario,
		EasinessFactor: 2.5,
		IntervalDays:   1,
		Repetitions:    0,
		LastReview:     now,
		NextDue:        now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Quality grades one attempt on the SM-2 0..5 scale. A failure still counts
// as a near miss (quality 1) when the child answered quickly, meaning they
// engaged with the sound but picked wrong; slow failures grade 0.
func (ms *MemoryScheduler) Quality(reactionTime float64, success bool) int {
	if success {
		switch {
		case reactionTime < 1.5:
			return 5
		case reactionTime < 2.5:
			return 4
		case reactionTime < 4:
			return 3
		default:
			return 2
		}
	}
	if reactionTime < ms.params.NearMissRTSeconds {
		return 1
	}
	return 0
}

// Update applies one review. Quality >= 3 grows the interval (1 day, 6 days,
// then interval*EF, matching classic SM-2); anything lower resets to 1 day.
// The easiness factor uses the standard SM-2 adjustment floored at 1.3.
func (ms *MemoryScheduler) Update(st *types.SkillMemoryState, quality int, now time.Time) {
	if quality >= 3 {
		switch st.Repetitions {
		case 0:
			st.IntervalDays = 1
		case 1:
			st.IntervalDays = 6
		default:
			st.IntervalDays = st.IntervalDays * st.EasinessFactor
		}
		st.Repetitions++
	} else {
		st.IntervalDays = 1
		st.Repetitions = 0
	}
	if st.IntervalDays < 1 {
		st.IntervalDays = 1
	}

	q := float64(quality)
	st.EasinessFactor = st.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if st.EasinessFactor < 1.3 {
		st.EasinessFactor = 1.3
	}

	st.LastReview = now
	st.NextDue = now.Add(time.Duration(st.IntervalDays * 24 * float64(time.Hour)))
	st.UpdatedAt = now
}

// MemoryStrength is the Ebbinghaus forgetting-curve proxy
// exp(-elapsed / (EF * interval)).
func (ms *MemoryScheduler) MemoryStrength(st types.SkillMemoryState, now time.Time) float64 {
	elapsedDays := now.Sub(st.LastReview).Hours() / 24
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	s := st.EasinessFactor * st.IntervalDays
	if s <= 0 {
		return 0
	}
	return math.Exp(-elapsedDays / s)
}

// IsDue reports whether the scenario should be reviewed: either the schedule
// says so, or the memory-strength proxy has decayed below the forgetting
// threshold.
func (ms *MemoryScheduler) IsDue(st types.SkillMemoryState, now time.Time) bool {
	if !now.Before(st.NextDue) {
		return true
	}
	return ms.MemoryStrength(st, now) < ms.params.ForgettingThreshold
}
