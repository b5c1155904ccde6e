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

type LearningProfileRepo interface {
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearningProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.LearningProfile) error
}

type learningProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningProfileRepo(db *gorm.DB, baseLog *logger.Logger) LearningProfileRepo {
	return &learningProfileRepo{
		db:  db,
		log: baseLog.With("repo", "LearningProfileRepo"),
	}
}

func (r *learningProfileRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearningProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.LearningProfile
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *learningProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.LearningProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if profile.UserID == uuid.Nil {
		return nil
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"bandit_params", "updated_at",
			}),
		}).
		Create(profile).Error
}
