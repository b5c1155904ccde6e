package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/cache"
	"github.com/yungbote/soundbridge-backend/internal/engine"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/repos"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type AssessmentService interface {
	Assess(ctx context.Context, userID uuid.UUID) (types.AssessmentResult, error)
	Recommendations(ctx context.Context, userID uuid.UUID) ([]types.ClinicalRecommendation, error)
}

type assessmentService struct {
	log         *logger.Logger
	params      engine.Params
	scorer      *engine.ClinicalScorer
	load        *engine.CognitiveLoadEstimator
	attemptRepo repos.AttemptRecordRepo
	snapCache   cache.SnapshotCache
	group       singleflight.Group
}

func NewAssessmentService(
	baseLog *logger.Logger,
	params engine.Params,
	attemptRepo repos.AttemptRecordRepo,
	snapCache cache.SnapshotCache,
) AssessmentService {
	return &assessmentService{
		log:         baseLog.With("service", "AssessmentService"),
		params:      params,
		scorer:      engine.NewClinicalScorer(params),
		load:        engine.NewCognitiveLoadEstimator(params),
		attemptRepo: attemptRepo,
		snapCache:   snapCache,
	}
}

// Assess scores the full attempt log. Snapshots are cached per user and
// concurrent misses for the same user collapse into one scoring pass, so a
// dashboard poll storm costs one log scan.
func (s *assessmentService) Assess(ctx context.Context, userID uuid.UUID) (types.AssessmentResult, error) {
	count, err := s.attemptRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return types.AssessmentResult{}, apierr.Unavailable(err)
	}
	result := types.AssessmentResult{
		AttemptCount: int(count),
		MinAttempts:  s.params.MinAttemptsAssessment,
	}
	if int(count) < s.params.MinAttemptsAssessment {
		result.Status = types.AssessmentStatusInsufficient
		return result, nil
	}

	if snap, err := s.snapCache.Get(ctx, userID); err == nil && snap != nil {
		result.Status = types.AssessmentStatusOK
		result.Snapshot = snap
		return result, nil
	} else if err != nil {
		s.log.Warn("assessment cache read failed", "user_id", userID, "error", err)
	}

	v, err, _ := s.group.Do(userID.String(), func() (interface{}, error) {
		attempts, err := s.attemptRepo.ListByUser(ctx, nil, userID)
		if err != nil {
			return nil, err
		}
		snap := s.scorer.Score(attempts, time.Now().UTC())
		if err := s.snapCache.Set(ctx, userID, &snap); err != nil {
			s.log.Warn("assessment cache write failed", "user_id", userID, "error", err)
		}
		return &snap, nil
	})
	if err != nil {
		return types.AssessmentResult{}, apierr.Unavailable(err)
	}

	result.Status = types.AssessmentStatusOK
	result.Snapshot = v.(*types.ClinicalAssessmentSnapshot)
	return result, nil
}

// Recommendations derives therapist-facing notes from the attempt log and the
// load estimate over the most recent session window.
func (s *assessmentService) Recommendations(ctx context.Context, userID uuid.UUID) ([]types.ClinicalRecommendation, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return s.scorer.Recommendations(attempts, s.recentLoad(attempts)), nil
}

func (s *assessmentService) recentLoad(attempts []types.AttemptRecord) types.LoadAssessment {
	start := len(attempts) - s.params.WindowSize
	if start < 0 {
		start = 0
	}
	entries := make([]engine.WindowEntry, 0, len(attempts)-start)
	for _, a := range attempts[start:] {
		entries = append(entries, engine.WindowEntry{
			ReactionTime: a.ReactionTime,
			Success:      a.Success,
			Timestamp:    a.Timestamp,
		})
	}
	return s.load.Assess(entries)
}
