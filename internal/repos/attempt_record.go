package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
)

type AttemptRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.AttemptRecord) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.AttemptRecord, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type attemptRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRecordRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRecordRepo {
	return &attemptRecordRepo{
		db:  db,
		log: baseLog.With("repo", "AttemptRecordRepo"),
	}
}

func (r *attemptRecordRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.AttemptRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = time.Now().UTC()
	}
	return transaction.WithContext(ctx).Create(attempt).Error
}

// ListByUser returns the full attempt log ordered oldest first. Clinical
// scoring depends on this ordering.
func (r *attemptRecordRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.AttemptRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []types.AttemptRecord
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attemptRecordRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.AttemptRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
