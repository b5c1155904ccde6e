package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/repos"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

// GormProfileStore persists bandit arms and spaced-repetition state through
// the gorm repos. Arms live as one JSON document per user; skill states are
// one row per user and scenario.
type GormProfileStore struct {
	profileRepo repos.LearningProfileRepo
	skillRepo   repos.SkillMemoryRepo
	log         *logger.Logger
}

func NewGormProfileStore(profileRepo repos.LearningProfileRepo, skillRepo repos.SkillMemoryRepo, baseLog *logger.Logger) *GormProfileStore {
	return &GormProfileStore{
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
		log:         baseLog.With("store", "GormProfileStore"),
	}
}

// LoadArms returns the persisted arm states, or an empty map for a user with
// no profile row yet.
func (s *GormProfileStore) LoadArms(ctx context.Context, userID uuid.UUID) (map[types.ScenarioType]types.ArmState, error) {
	row, err := s.profileRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load learning profile: %w", err)
	}
	if row == nil || len(row.BanditParams) == 0 {
		return map[types.ScenarioType]types.ArmState{}, nil
	}
	arms := map[types.ScenarioType]types.ArmState{}
	if err := json.Unmarshal(row.BanditParams, &arms); err != nil {
		// A corrupt document is unrecoverable; start the user over rather
		// than failing every request.
		s.log.Warn("discarding unreadable bandit_params", "user_id", userID, "error", err)
		return map[types.ScenarioType]types.ArmState{}, nil
	}
	return arms, nil
}

func (s *GormProfileStore) SaveArms(ctx context.Context, userID uuid.UUID, arms map[types.ScenarioType]types.ArmState) error {
	raw, err := json.Marshal(arms)
	if err != nil {
		return fmt.Errorf("encode bandit_params: %w", err)
	}
	profile := &types.LearningProfile{
		UserID:       userID,
		BanditParams: datatypes.JSON(raw),
	}
	if err := s.profileRepo.Upsert(ctx, nil, profile); err != nil {
		return fmt.Errorf("save learning profile: %w", err)
	}
	return nil
}

func (s *GormProfileStore) LoadSkills(ctx context.Context, userID uuid.UUID) ([]types.SkillMemoryState, error) {
	rows, err := s.skillRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load skill memory: %w", err)
	}
	return rows, nil
}

func (s *GormProfileStore) SaveSkill(ctx context.Context, userID uuid.UUID, state types.SkillMemoryState) error {
	state.UserID = userID
	if err := s.skillRepo.Upsert(ctx, nil, &state); err != nil {
		return fmt.Errorf("save skill memory: %w", err)
	}
	return nil
}
