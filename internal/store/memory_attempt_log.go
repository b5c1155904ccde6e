package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/soundbridge-backend/internal/types"
)

// MemoryAttemptLog is the in-process AttemptRecordRepo counterpart to
// MemoryStore. The tx argument is accepted for interface compatibility and
// ignored.
type MemoryAttemptLog struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]types.AttemptRecord
}

func NewMemoryAttemptLog() *MemoryAttemptLog {
	return &MemoryAttemptLog{rows: make(map[uuid.UUID][]types.AttemptRecord)}
}

func (l *MemoryAttemptLog) Create(_ context.Context, _ *gorm.DB, attempt *types.AttemptRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = time.Now().UTC()
	}
	l.rows[attempt.UserID] = append(l.rows[attempt.UserID], *attempt)
	return nil
}

func (l *MemoryAttemptLog) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]types.AttemptRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := append([]types.AttemptRecord(nil), l.rows[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (l *MemoryAttemptLog) CountByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.rows[userID])), nil
}
