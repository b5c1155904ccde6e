package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// MemoryStore is the in-process ProfileStore used when no database is
// configured, and by tests. Contents vanish on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	arms   map[uuid.UUID]map[types.ScenarioType]types.ArmState
	skills map[uuid.UUID]map[types.ScenarioType]types.SkillMemoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		arms:   make(map[uuid.UUID]map[types.ScenarioType]types.ArmState),
		skills: make(map[uuid.UUID]map[types.ScenarioType]types.SkillMemoryState),
	}
}

func (s *MemoryStore) LoadArms(_ context.Context, userID uuid.UUID) (map[types.ScenarioType]types.ArmState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[types.ScenarioType]types.ArmState{}
	for k, v := range s.arms[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) SaveArms(_ context.Context, userID uuid.UUID, arms map[types.ScenarioType]types.ArmState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := map[types.ScenarioType]types.ArmState{}
	for k, v := range arms {
		cp[k] = v
	}
	s.arms[userID] = cp
	return nil
}

func (s *MemoryStore) LoadSkills(_ context.Context, userID uuid.UUID) ([]types.SkillMemoryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.SkillMemoryState
	for _, st := range s.skills[userID] {
		out = append(out, st)
	}
	return out, nil
}

func (s *MemoryStore) SaveSkill(_ context.Context, userID uuid.UUID, state types.SkillMemoryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byScenario, ok := s.skills[userID]
	if !ok {
		byScenario = make(map[types.ScenarioType]types.SkillMemoryState)
		s.skills[userID] = byScenario
	}
	byScenario[state.ScenarioType] = state
	return nil
}
