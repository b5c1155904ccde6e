package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/soundbridge-backend/internal/apierr"
	"github.com/yungbote/soundbridge-backend/internal/cache"
	"github.com/yungbote/soundbridge-backend/internal/engine"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/repos"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type AttemptService interface {
	RecordAttempt(ctx context.Context, attempt types.AttemptRecord) error
}

type attemptService struct {
	db          *gorm.DB
	log         *logger.Logger
	orch        *engine.Orchestrator
	attemptRepo repos.AttemptRecordRepo
	snapCache   cache.SnapshotCache
}

func NewAttemptService(
	db *gorm.DB,
	baseLog *logger.Logger,
	orch *engine.Orchestrator,
	attemptRepo repos.AttemptRecordRepo,
	snapCache cache.SnapshotCache,
) AttemptService {
	return &attemptService{
		db:          db,
		log:         baseLog.With("service", "AttemptService"),
		orch:        orch,
		attemptRepo: attemptRepo,
		snapCache:   snapCache,
	}
}

// RecordAttempt feeds one attempt through the decision engine, appends it to
// the immutable attempt log, and drops the user's cached clinical snapshot.
// Engine validation runs first so a rejected attempt leaves no trace anywhere.
func (s *attemptService) RecordAttempt(ctx context.Context, attempt types.AttemptRecord) error {
	if err := s.orch.RecordAttempt(ctx, attempt); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidAttempt):
			return apierr.Invalid(err)
		case errors.Is(err, engine.ErrStore):
			return apierr.Unavailable(err)
		}
		return err
	}

	if err := s.attemptRepo.Create(ctx, nil, &attempt); err != nil {
		s.log.Error("failed to append attempt log", "user_id", attempt.UserID, "error", err)
		return apierr.Unavailable(err)
	}

	if err := s.snapCache.Invalidate(ctx, attempt.UserID); err != nil {
		// Stale for at most one TTL; not worth failing the write.
		s.log.Warn("failed to invalidate assessment cache", "user_id", attempt.UserID, "error", err)
	}
	return nil
}
