package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type SkillMemoryRepo interface {
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.SkillMemoryState, error)
	Upsert(ctx context.Context, tx *gorm.DB, state *types.SkillMemoryState) error
}

type skillMemoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillMemoryRepo(db *gorm.DB, baseLog *logger.Logger) SkillMemoryRepo {
	return &skillMemoryRepo{
		db:  db,
		log: baseLog.With("repo", "SkillMemoryRepo"),
	}
}

func (r *skillMemoryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.SkillMemoryState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []types.SkillMemoryState
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillMemoryRepo) Upsert(ctx context.Context, tx *gorm.DB, state *types.SkillMemoryState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if state.UserID == uuid.Nil {
		return nil
	}
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	state.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "scenario_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"easiness_factor", "interval_days", "repetitions",
				"last_review", "next_due", "updated_at",
			}),
		}).
		Create(state).Error
}
