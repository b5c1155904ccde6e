package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/repos"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

// curveWindow is the moving-average span of the learning curve.
const curveWindow = 5

type ProgressService interface {
	Report(ctx context.Context, userID uuid.UUID) (types.ProgressReport, error)
}

type progressService struct {
	log         *logger.Logger
	attemptRepo repos.AttemptRecordRepo
}

func NewProgressService(baseLog *logger.Logger, attemptRepo repos.AttemptRecordRepo) ProgressService {
	return &progressService{
		log:         baseLog.With("service", "ProgressService"),
		attemptRepo: attemptRepo,
	}
}

func (s *progressService) Report(ctx context.Context, userID uuid.UUID) (types.ProgressReport, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return types.ProgressReport{}, apierr.Unavailable(err)
	}

	report := types.ProgressReport{
		UserID:        userID,
		TotalAttempts: len(attempts),
		Curve:         learningCurve(attempts),
		PerScenario:   map[types.ScenarioType]types.ScenarioProgress{},
	}

	successes := 0
	type agg struct {
		attempts  int
		successes int
		rtSum     float64
	}
	byScenario := map[types.ScenarioType]*agg{}
	for _, a := range attempts {
		if a.Success {
			successes++
		}
		sc, ok := byScenario[a.ScenarioType]
		if !ok {
			sc = &agg{}
			byScenario[a.ScenarioType] = sc
		}
		sc.attempts++
		if a.Success {
			sc.successes++
		}
		sc.rtSum += a.ReactionTime
	}
	if len(attempts) > 0 {
		report.SuccessRate = float64(successes) / float64(len(attempts))
	}
	for scenario, sc := range byScenario {
		report.PerScenario[scenario] = types.ScenarioProgress{
			Attempts:         sc.attempts,
			SuccessRate:      float64(sc.successes) / float64(sc.attempts),
			MeanReactionTime: sc.rtSum / float64(sc.attempts),
		}
	}
	return report, nil
}

// learningCurve is the moving-average success rate at each attempt index,
// averaged over the trailing curveWindow attempts.
func learningCurve(attempts []types.AttemptRecord) []types.CurvePoint {
	curve := make([]types.CurvePoint, 0, len(attempts))
	for i := range attempts {
		start := i - curveWindow + 1
		if start < 0 {
			start = 0
		}
		successes := 0
		for _, a := range attempts[start : i+1] {
			if a.Success {
				successes++
			}
		}
		curve = append(curve, types.CurvePoint{
			AttemptIndex:         i,
			MovingAverageSuccess: float64(successes) / float64(i+1-start),
		})
	}
	return curve
}
