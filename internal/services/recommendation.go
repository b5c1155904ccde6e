package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/engine"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type RecommendationService interface {
	NextScenario(ctx context.Context, userID uuid.UUID) (types.Recommendation, error)
	CognitiveStatus(ctx context.Context, userID uuid.UUID) (types.CognitiveStatus, error)
}

type recommendationService struct {
	log  *logger.Logger
	orch *engine.Orchestrator
}

func NewRecommendationService(baseLog *logger.Logger, orch *engine.Orchestrator) RecommendationService {
	return &recommendationService{
		log:  baseLog.With("service", "RecommendationService"),
		orch: orch,
	}
}

func (s *recommendationService) NextScenario(ctx context.Context, userID uuid.UUID) (types.Recommendation, error) {
	rec, err := s.orch.Recommend(ctx, userID)
	if err != nil {
		if errors.Is(err, engine.ErrStore) {
			return types.Recommendation{}, apierr.Unavailable(err)
		}
		return types.Recommendation{}, err
	}
	return rec, nil
}

func (s *recommendationService) CognitiveStatus(ctx context.Context, userID uuid.UUID) (types.CognitiveStatus, error) {
	status, err := s.orch.GetCognitiveStatus(ctx, userID)
	if err != nil {
		if errors.Is(err, engine.ErrStore) {
			return types.CognitiveStatus{}, apierr.Unavailable(err)
		}
		return types.CognitiveStatus{}, err
	}
	return status, nil
}
