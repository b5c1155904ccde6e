package engine

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type fakeStore struct {
	mu     sync.Mutex
	arms   map[uuid.UUID]map[types.ScenarioType]types.ArmState
	skills map[uuid.UUID][]types.SkillMemoryState
	fail   bool

	saveArmCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		arms:   map[uuid.UUID]map[types.ScenarioType]types.ArmState{},
		skills: map[uuid.UUID][]types.SkillMemoryState{},
	}
}

func (f *fakeStore) LoadArms(_ context.Context, userID uuid.UUID) (map[types.ScenarioType]types.ArmState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("store down")
	}
	out := map[types.ScenarioType]types.ArmState{}
	for k, v := range f.arms[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SaveArms(_ context.Context, userID uuid.UUID, arms map[types.ScenarioType]types.ArmState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store down")
	}
	f.saveArmCalls++
	cp := map[types.ScenarioType]types.ArmState{}
	for k, v := range arms {
		cp[k] = v
	}
	f.arms[userID] = cp
	return nil
}

func (f *fakeStore) LoadSkills(_ context.Context, userID uuid.UUID) ([]types.SkillMemoryState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("store down")
	}
	return append([]types.SkillMemoryState(nil), f.skills[userID]...), nil
}

func (f *fakeStore) SaveSkill(_ context.Context, userID uuid.UUID, st types.SkillMemoryState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store down")
	}
	list := f.skills[userID]
	for i := range list {
		if list[i].ScenarioType == st.ScenarioType {
			list[i] = st
			f.skills[userID] = list
			return nil
		}
	}
	f.skills[userID] = append(list, st)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func newTestOrchestrator(t *testing.T, store ProfileStore, now time.Time) *Orchestrator {
	t.Helper()
	return NewOrchestrator(
		store,
		rand.New(rand.NewSource(42)),
		DefaultParams(),
		testLogger(t),
		WithClock(func() time.Time { return now }),
	)
}

func validAttempt(user uuid.UUID, ts time.Time) types.AttemptRecord {
	return types.AttemptRecord{
		ID:              uuid.New(),
		UserID:          user,
		ScenarioType:    types.ScenarioAmbulance,
		Success:         true,
		ReactionTime:    1.2,
		DifficultyLevel: 1,
		NoiseLevel:      0.3,
		Timestamp:       ts,
	}
}

func TestRecommend_BrandNewUser(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	rec, err := o.Recommend(context.Background(), user)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if types.ScenarioOrdinal(rec.Scenario) < 0 {
		t.Fatalf("invalid scenario %q", rec.Scenario)
	}
	if rec.Reason != types.ReasonExplorationExploitation {
		t.Fatalf("reason = %q, want exploration_exploitation", rec.Reason)
	}
	if rec.DifficultyLevel != 1 {
		t.Fatalf("difficulty = %d, want default 1", rec.DifficultyLevel)
	}
	if store.saveArmCalls != 0 {
		t.Fatalf("Recommend must not write to the store")
	}
	if len(store.arms) != 0 || len(store.skills) != 0 {
		t.Fatalf("Recommend must not mutate any profile")
	}
}

func TestRecommend_IsIdempotentOnState(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	if _, err := o.Recommend(context.Background(), user); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	o.mu.RLock()
	us := o.users[user]
	o.mu.RUnlock()
	armsBefore := map[types.ScenarioType]types.ArmState{}
	for k, v := range us.arms {
		armsBefore[k] = v
	}
	skillsBefore := map[types.ScenarioType]types.SkillMemoryState{}
	for k, v := range us.skills {
		skillsBefore[k] = v
	}

	if _, err := o.Recommend(context.Background(), user); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !reflect.DeepEqual(armsBefore, us.arms) {
		t.Fatalf("arms changed across reads: %+v vs %+v", armsBefore, us.arms)
	}
	if !reflect.DeepEqual(skillsBefore, us.skills) {
		t.Fatalf("skills changed across reads")
	}
}

func TestRecordAttempt_RejectsInvalidInputBeforeMutation(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	bad := []types.AttemptRecord{
		func() types.AttemptRecord { a := validAttempt(user, now); a.ReactionTime = -1; return a }(),
		func() types.AttemptRecord { a := validAttempt(user, now); a.NoiseLevel = 1.5; return a }(),
		func() types.AttemptRecord { a := validAttempt(user, now); a.ScenarioType = "helicopter"; return a }(),
		func() types.AttemptRecord { a := validAttempt(user, now); a.DifficultyLevel = 0; return a }(),
		func() types.AttemptRecord { a := validAttempt(user, now); a.UserID = uuid.Nil; return a }(),
	}
	for i, a := range bad {
		err := o.RecordAttempt(context.Background(), a)
		if !errors.Is(err, ErrInvalidAttempt) {
			t.Fatalf("case %d: err = %v, want ErrInvalidAttempt", i, err)
		}
	}
	if store.saveArmCalls != 0 {
		t.Fatalf("rejected attempts must not reach the store")
	}
}

func TestRecordAttempt_UpdatesBanditMemoryAndWindow(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	if err := o.RecordAttempt(context.Background(), validAttempt(user, now)); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	arms := store.arms[user]
	arm := arms[types.ScenarioAmbulance]
	// Cold-start success has gain 0.8 > 0.4: alpha grows, beta holds.
	if arm.Alpha <= 1 || arm.Beta != 1 {
		t.Fatalf("arm after success = %+v, want alpha > 1 and beta == 1", arm)
	}
	if arm.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", arm.Attempts)
	}

	skills := store.skills[user]
	if len(skills) != 1 {
		t.Fatalf("skills persisted = %d, want 1", len(skills))
	}
	st := skills[0]
	if st.Repetitions != 1 || st.IntervalDays != 1 {
		t.Fatalf("skill after first success = %+v, want repetitions 1 interval 1", st)
	}
	if !st.NextDue.After(now) {
		t.Fatalf("next_due should move into the future")
	}

	o.mu.RLock()
	us := o.users[user]
	o.mu.RUnlock()
	if us.window.Len() != 1 {
		t.Fatalf("window length = %d, want 1", us.window.Len())
	}
}

func TestRecordAttempt_FailureRewardsBeta(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	a := validAttempt(user, now)
	a.Success = false
	a.ReactionTime = 5
	if err := o.RecordAttempt(context.Background(), a); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	arm := store.arms[user][types.ScenarioAmbulance]
	// Cold-start failure has gain 0.4, at the threshold: beta grows.
	if arm.Alpha != 1 || arm.Beta <= 1 {
		t.Fatalf("arm after failure = %+v, want alpha == 1 and beta > 1", arm)
	}
}

func TestRecommend_DueReviewOverridesBandit(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := uuid.New()
	// Train is long overdue, police due later: train must win.
	store.skills[user] = []types.SkillMemoryState{
		{
			ID: uuid.New(), UserID: user, ScenarioType: types.ScenarioPolice,
			EasinessFactor: 2.5, IntervalDays: 3, Repetitions: 2,
			LastReview: now.Add(-4 * 24 * time.Hour), NextDue: now.Add(-1 * 24 * time.Hour),
		},
		{
			ID: uuid.New(), UserID: user, ScenarioType: types.ScenarioTrain,
			EasinessFactor: 2.5, IntervalDays: 3, Repetitions: 2,
			LastReview: now.Add(-8 * 24 * time.Hour), NextDue: now.Add(-5 * 24 * time.Hour),
		},
	}
	o := newTestOrchestrator(t, store, now)

	rec, err := o.Recommend(context.Background(), user)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Reason != types.ReasonScheduledReview {
		t.Fatalf("reason = %q, want scheduled_review", rec.Reason)
	}
	if rec.Scenario != types.ScenarioTrain {
		t.Fatalf("scenario = %q, want earliest-due train", rec.Scenario)
	}
	if rec.Action != types.ActionReviewScenario {
		t.Fatalf("action = %q, want review_scenario", rec.Action)
	}
}

func TestRecordAttempt_StoreOutageIsRetryable(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	// Prime the arena, then fail the store.
	if _, err := o.Recommend(context.Background(), user); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()

	err := o.RecordAttempt(context.Background(), validAttempt(user, now))
	if !errors.Is(err, ErrStore) {
		t.Fatalf("err = %v, want ErrStore", err)
	}
}

func TestRecordAttempt_ConcurrentUsersDoNotInterfere(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)

	const users = 8
	const attempts = 25
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, users)
	for i := range ids {
		ids[i] = uuid.New()
	}
	for _, id := range ids {
		wg.Add(1)
		go func(user uuid.UUID) {
			defer wg.Done()
			for j := 0; j < attempts; j++ {
				a := validAttempt(user, now.Add(time.Duration(j)*time.Second))
				if err := o.RecordAttempt(context.Background(), a); err != nil {
					t.Errorf("RecordAttempt(%s): %v", user, err)
					return
				}
				if _, err := o.Recommend(context.Background(), user); err != nil {
					t.Errorf("Recommend(%s): %v", user, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		arm := store.arms[id][types.ScenarioAmbulance]
		if arm.Attempts != attempts {
			t.Fatalf("user %s: attempts = %d, want %d (lost update)", id, arm.Attempts, attempts)
		}
	}
}

func TestRecommend_KnobsMoveOneStep(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(t, store, now)
	user := uuid.New()

	// 10 fast successes: success rate 1 > 0.9 signals an increase.
	for i := 0; i < 10; i++ {
		a := validAttempt(user, now.Add(time.Duration(i)*time.Second))
		a.DifficultyLevel = 3
		a.NoiseLevel = 0.3
		if err := o.RecordAttempt(context.Background(), a); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	rec, err := o.Recommend(context.Background(), user)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.DifficultyLevel != 4 {
		t.Fatalf("difficulty = %d, want one step up from 3", rec.DifficultyLevel)
	}
	if rec.SpeedModifier != 1.1 {
		t.Fatalf("speed = %v, want one step up from 1.0", rec.SpeedModifier)
	}
	if rec.NoiseLevel < 0.3 || rec.NoiseLevel > 0.4000001 {
		t.Fatalf("noise = %v, want at most one step from 0.3", rec.NoiseLevel)
	}
}
