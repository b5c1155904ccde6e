package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

var (
	// ErrInvalidAttempt marks input rejected before any state mutation.
	ErrInvalidAttempt = errors.New("invalid attempt")
	// ErrStore marks a failure of the external store; callers should treat
	// it as retryable.
	ErrStore = errors.New("profile store unavailable")
)

// Orchestrator composes the bandit, the memory scheduler and the load/flow
// estimators into one recommendation per request, and drives all per-attempt
// updates. State is keyed per user; users never contend with each other.
// Within one user, RecordAttempt holds the write lock (single-writer
// discipline) while Recommend reads under the read lock, so a reader can see
// a slightly stale snapshot but never a torn one.
type Orchestrator struct {
	store  ProfileStore
	params Params
	log    *logger.Logger
	clock  func() time.Time

	bandit *BanditSelector
	memory *MemoryScheduler
	load   *CognitiveLoadEstimator
	flow   *FlowStateDetector

	mu    sync.RWMutex
	users map[uuid.UUID]*userState
}

type userState struct {
	mu     sync.RWMutex
	loaded bool

	arms   map[types.ScenarioType]types.ArmState
	skills map[types.ScenarioType]types.SkillMemoryState
	window *SessionWindow
	recent map[types.ScenarioType]*SessionWindow

	difficulty int
	noise      float64
	speed      float64
}

type Option func(*Orchestrator)

// WithClock injects the time source, used by tests to control due dates and
// forgetting-curve decay.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

func NewOrchestrator(store ProfileStore, rng *rand.Rand, params Params, baseLog *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		params: params,
		log:    baseLog.With("component", "Orchestrator"),
		clock:  func() time.Time { return time.Now().UTC() },
		bandit: NewBanditSelector(rng, params),
		memory: NewMemoryScheduler(params),
		load:   NewCognitiveLoadEstimator(params),
		flow:   NewFlowStateDetector(params),
		users:  make(map[uuid.UUID]*userState),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Params() Params { return o.params }

// Recommend returns the next scenario plus adjusted presentation knobs. It
// mutates nothing: two consecutive calls with no attempt in between leave
// the profile and memory state byte-for-byte unchanged.
func (o *Orchestrator) Recommend(ctx context.Context, userID uuid.UUID) (types.Recommendation, error) {
	us, err := o.userFor(ctx, userID)
	if err != nil {
		return types.Recommendation{}, err
	}

	us.mu.RLock()
	defer us.mu.RUnlock()
	return o.recommendLocked(us), nil
}

// GetCognitiveStatus reports load, flow and the recommendation they inform.
func (o *Orchestrator) GetCognitiveStatus(ctx context.Context, userID uuid.UUID) (types.CognitiveStatus, error) {
	us, err := o.userFor(ctx, userID)
	if err != nil {
		return types.CognitiveStatus{}, err
	}

	us.mu.RLock()
	defer us.mu.RUnlock()
	entries := us.window.Snapshot()
	la := o.load.Assess(entries)
	return types.CognitiveStatus{
		CognitiveLoad:  la.Load,
		LoadLevel:      la.Level,
		FlowState:      o.flow.Detect(entries),
		Recommendation: o.recommendLocked(us),
	}, nil
}

func (o *Orchestrator) recommendLocked(us *userState) types.Recommendation {
	now := o.clock()
	entries := us.window.Snapshot()
	loadAssessment := o.load.Assess(entries)
	flowState := o.flow.Detect(entries)

	// A due spaced-repetition review overrides the bandit.
	scenario, reason, isReview := o.dueReview(us, now)
	if !isReview {
		scenario, _ = o.bandit.Select(us.arms, types.AllScenarios())
		reason = types.ReasonExplorationExploitation
	}

	action := types.ActionPresentScenario
	if isReview {
		action = types.ActionReviewScenario
	}
	if loadAssessment.Level == types.LoadLevelHigh {
		action = types.ActionSuggestBreak
	}

	return types.Recommendation{
		Scenario:        scenario,
		Action:          action,
		DifficultyLevel: o.nextDifficulty(us.difficulty, flowState.Signal),
		NoiseLevel:      o.nextNoise(us.noise, loadAssessment, flowState.Signal),
		SpeedModifier:   o.nextSpeed(us.speed, flowState.Signal),
		Reason:          reason,
		CognitiveLoad:   loadAssessment.Load,
		InFlowState:     flowState.InFlow,
	}
}

func (o *Orchestrator) dueReview(us *userState, now time.Time) (types.ScenarioType, string, bool) {
	var best types.ScenarioType
	var bestDue time.Time
	found := false
	// Canonical order makes the earliest-due tie-break deterministic: on an
	// equal NextDue the lower scenario ordinal wins.
	for _, s := range types.AllScenarios() {
		st, ok := us.skills[s]
		if !ok || !o.memory.IsDue(st, now) {
			continue
		}
		if !found || st.NextDue.Before(bestDue) {
			best, bestDue, found = s, st.NextDue, true
		}
	}
	if !found {
		return "", "", false
	}
	return best, types.ReasonScheduledReview, true
}

// Knob derivation: each knob moves at most one discrete step per call.

func (o *Orchestrator) nextDifficulty(current int, signal types.FlowSignal) int {
	switch signal {
	case types.SignalIncrease:
		current++
	case types.SignalDecrease:
		current--
	}
	return clampInt(current, 1, o.params.MaxDifficulty)
}

func (o *Orchestrator) nextNoise(current float64, la types.LoadAssessment, signal types.FlowSignal) float64 {
	switch {
	case la.Level == types.LoadLevelHigh:
		current -= o.params.NoiseStep
	case signal == types.SignalIncrease && la.Level == types.LoadLevelLow:
		current += o.params.NoiseStep
	}
	return clamp01(current)
}

func (o *Orchestrator) nextSpeed(current float64, signal types.FlowSignal) float64 {
	switch signal {
	case types.SignalIncrease:
		current += o.params.SpeedStep
	case types.SignalDecrease:
		current -= o.params.SpeedStep
	}
	return clampFloat(current, o.params.MinSpeed, o.params.MaxSpeed)
}

// RecordAttempt validates the attempt, grades it, and applies the bandit,
// memory-scheduler and session-window updates under the user's write lock.
// Validation failures reject the attempt before any mutation.
func (o *Orchestrator) RecordAttempt(ctx context.Context, attempt types.AttemptRecord) error {
	if err := ValidateAttempt(attempt); err != nil {
		return err
	}

	us, err := o.userFor(ctx, attempt.UserID)
	if err != nil {
		return err
	}

	ts := attempt.Timestamp
	if ts.IsZero() {
		ts = o.clock()
	}

	us.mu.Lock()
	defer us.mu.Unlock()

	quality := o.memory.Quality(attempt.ReactionTime, attempt.Success)
	gain := o.learningGain(us, attempt)

	arm, ok := us.arms[attempt.ScenarioType]
	if !ok {
		arm = types.NewArmState()
	}
	o.bandit.Update(&arm, gain)
	us.arms[attempt.ScenarioType] = arm

	skill, ok := us.skills[attempt.ScenarioType]
	if !ok {
		skill = o.memory.NewSkillState(attempt.UserID, attempt.ScenarioType, ts)
	}
	o.memory.Update(&skill, quality, ts)
	us.skills[attempt.ScenarioType] = skill

	entry := WindowEntry{ReactionTime: attempt.ReactionTime, Success: attempt.Success, Timestamp: ts}
	us.window.Push(entry)
	baseline, ok := us.recent[attempt.ScenarioType]
	if !ok {
		baseline = NewSessionWindow(o.params.WindowSize)
		us.recent[attempt.ScenarioType] = baseline
	}
	baseline.Push(entry)

	us.difficulty = attempt.DifficultyLevel
	us.noise = attempt.NoiseLevel

	if err := o.store.SaveArms(ctx, attempt.UserID, us.arms); err != nil {
		o.log.Warn("save learning profile failed", "user_id", attempt.UserID, "error", err)
		return fmt.Errorf("%w: save learning profile: %v", ErrStore, err)
	}
	if err := o.store.SaveSkill(ctx, attempt.UserID, skill); err != nil {
		o.log.Warn("save skill memory failed", "user_id", attempt.UserID, "error", err)
		return fmt.Errorf("%w: save skill memory: %v", ErrStore, err)
	}

	o.log.Debug("attempt recorded",
		"user_id", attempt.UserID,
		"scenario", attempt.ScenarioType,
		"quality", quality,
		"learning_gain", gain,
	)
	return nil
}

// learningGain grades the attempt on [0,1] from correctness, speed against
// the per-scenario baseline, and improvement over the baseline success rate.
// With too little history the cold-start values apply: early success is high
// gain by definition.
func (o *Orchestrator) learningGain(us *userState, attempt types.AttemptRecord) float64 {
	baseline := us.recent[attempt.ScenarioType]
	if baseline == nil || baseline.Len() < o.params.BaselineMinAttempts {
		if attempt.Success {
			return o.params.ColdStartGainSuccess
		}
		return o.params.ColdStartGainFailure
	}

	entries := baseline.Snapshot()
	baselineRate := windowSuccessRate(entries)
	baselineRT := mean(windowReactionTimes(entries))

	correctness := 0.0
	if attempt.Success {
		correctness = 1
	}

	speed := 0.0
	if attempt.ReactionTime > 0 && baselineRT > 0 {
		speed = clamp01((baselineRT - attempt.ReactionTime) / baselineRT)
	}

	improvement := 0.0
	if attempt.Success {
		improvement = 0.5
		if baselineRate < o.params.ChallengingBaseline {
			improvement = 1
		}
	}

	return clamp01(o.params.GainSuccessWeight*correctness +
		o.params.GainSpeedWeight*speed +
		o.params.GainImprovementWeight*improvement)
}

// ValidateAttempt enforces the input contract: known scenario, non-negative
// finite reaction time, noise in [0,1], difficulty >= 1.
func ValidateAttempt(a types.AttemptRecord) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAttempt)
	}
	if _, err := types.ParseScenario(string(a.ScenarioType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttempt, err)
	}
	if a.ReactionTime < 0 || math.IsNaN(a.ReactionTime) || math.IsInf(a.ReactionTime, 0) {
		return fmt.Errorf("%w: reaction_time must be a finite value >= 0", ErrInvalidAttempt)
	}
	if a.NoiseLevel < 0 || a.NoiseLevel > 1 || math.IsNaN(a.NoiseLevel) {
		return fmt.Errorf("%w: noise_level must be in [0,1]", ErrInvalidAttempt)
	}
	if a.DifficultyLevel < 1 {
		return fmt.Errorf("%w: difficulty_level must be >= 1", ErrInvalidAttempt)
	}
	return nil
}

// userFor returns the arena entry for userID, loading prior state from the
// store on first touch. A store with nothing for this user yields default
// priors; nothing is written back until an attempt is recorded.
func (o *Orchestrator) userFor(ctx context.Context, userID uuid.UUID) (*userState, error) {
	o.mu.RLock()
	us, ok := o.users[userID]
	o.mu.RUnlock()
	if !ok {
		o.mu.Lock()
		us, ok = o.users[userID]
		if !ok {
			us = &userState{
				arms:       make(map[types.ScenarioType]types.ArmState),
				skills:     make(map[types.ScenarioType]types.SkillMemoryState),
				window:     NewSessionWindow(o.params.WindowSize),
				recent:     make(map[types.ScenarioType]*SessionWindow),
				difficulty: o.params.DefaultDifficulty,
				noise:      o.params.DefaultNoise,
				speed:      o.params.DefaultSpeed,
			}
			o.users[userID] = us
		}
		o.mu.Unlock()
	}

	us.mu.Lock()
	defer us.mu.Unlock()
	if us.loaded {
		return us, nil
	}

	arms, err := o.store.LoadArms(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load learning profile: %v", ErrStore, err)
	}
	for s, arm := range arms {
		us.arms[s] = arm
	}
	for _, s := range types.AllScenarios() {
		if _, ok := us.arms[s]; !ok {
			us.arms[s] = types.NewArmState()
		}
	}

	skills, err := o.store.LoadSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load skill memory: %v", ErrStore, err)
	}
	for _, st := range skills {
		us.skills[st.ScenarioType] = st
	}

	us.loaded = true
	return us, nil
}
