package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// ProfileStore is the external persistence collaborator. The engine performs
// no I/O of its own; it loads per-user state through this interface on first
// touch and saves through it after every update. A store with no prior state
// for a user returns empty results, not an error, and the engine falls back
// to default priors.
type ProfileStore interface {
	LoadArms(ctx context.Context, userID uuid.UUID) (map[types.ScenarioType]types.ArmState, error)
	SaveArms(ctx context.Context, userID uuid.UUID, arms map[types.ScenarioType]types.ArmState) error
	LoadSkills(ctx context.Context, userID uuid.UUID) ([]types.SkillMemoryState, error)
	SaveSkill(ctx context.Context, userID uuid.UUID, st types.SkillMemoryState) error
}
