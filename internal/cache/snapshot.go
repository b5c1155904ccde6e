package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
	"github.com/yungbote/soundbridge-backend/internal/utils"
)

// SnapshotCache holds computed clinical assessments so repeated dashboard
// polls do not rescore the full attempt log. A miss returns (nil, nil).
type SnapshotCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.ClinicalAssessmentSnapshot, error)
	Set(ctx context.Context, userID uuid.UUID, snap *types.ClinicalAssessmentSnapshot) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// NewFromEnv returns the redis-backed cache when REDIS_ADDR is set and
// reachable, and falls back to the in-process cache otherwise.
func NewFromEnv(log *logger.Logger) SnapshotCache {
	ttl := time.Duration(utils.GetEnvAsInt("ASSESSMENT_CACHE_TTL", 300, log)) * time.Second
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		log.Info("REDIS_ADDR not set, using in-process assessment cache")
		return NewLocalCache(ttl)
	}
	c, err := NewRedisCache(addr, ttl, log)
	if err != nil {
		log.Warn("redis cache unavailable, using in-process assessment cache", "error", err)
		return NewLocalCache(ttl)
	}
	return c
}

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisCache(addr string, ttl time.Duration, log *logger.Logger) (SnapshotCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisCache{
		log: log.With("service", "RedisSnapshotCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func snapshotKey(userID uuid.UUID) string {
	return "clinical:" + userID.String()
}

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (*types.ClinicalAssessmentSnapshot, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap types.ClinicalAssessmentSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Treat an unreadable entry as a miss and overwrite it on the next Set.
		c.log.Warn("dropping unreadable cached snapshot", "user_id", userID, "error", err)
		return nil, nil
	}
	return &snap, nil
}

func (c *redisCache) Set(ctx context.Context, userID uuid.UUID, snap *types.ClinicalAssessmentSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(userID), raw, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, snapshotKey(userID)).Err()
}

type localEntry struct {
	snap      types.ClinicalAssessmentSnapshot
	expiresAt time.Time
}

type localCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]localEntry
}

func NewLocalCache(ttl time.Duration) SnapshotCache {
	return &localCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]localEntry),
	}
}

func (c *localCache) Get(_ context.Context, userID uuid.UUID) (*types.ClinicalAssessmentSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok || time.Now().After(e.expiresAt) {
		delete(c.entries, userID)
		return nil, nil
	}
	snap := e.snap
	return &snap, nil
}

func (c *localCache) Set(_ context.Context, userID uuid.UUID, snap *types.ClinicalAssessmentSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = localEntry{snap: *snap, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

func (c *localCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}
