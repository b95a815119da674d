package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/config"
	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	recordsKeyPrefix    = "view:records"
	fillLockPrefix      = "lock:" + recordsKeyPrefix
	defaultFillLockTime = 10 * time.Second
)

// Unlock releases a fill lock. It is safe to call on a lock that was never
// obtained.
type Unlock func(ctx context.Context)

// RecordsCache keeps fetched record collections per kind and parameter set.
type RecordsCache interface {
	GetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, bool, error)
	SetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams, records []domain.Record) error
	// LockFill serializes concurrent misses for the same key so only one
	// caller queries the database. obtained is false when another caller
	// holds the lock.
	LockFill(ctx context.Context, kind domain.Kind, params domain.FetchParams) (unlock Unlock, obtained bool, err error)
	InvalidateKind(ctx context.Context, kind domain.Kind) error
}

type redisRecordsCache struct {
	client   *redis.Client
	locker   *redislock.Client
	ttl      time.Duration
	lockTime time.Duration
}

type noopRecordsCache struct{}

func NewRecordsCache(cfg config.CacheConfig) (RecordsCache, error) {
	if !cfg.Enabled {
		return &noopRecordsCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecordsCache{
		client:   client,
		locker:   redislock.New(client),
		ttl:      secondsOr(cfg.RecordsTTLSeconds, defaultCacheTTL),
		lockTime: secondsOr(cfg.FillLockSeconds, defaultFillLockTime),
	}, nil
}

func NewNoopRecordsCache() RecordsCache {
	return &noopRecordsCache{}
}

func (c *redisRecordsCache) GetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, bool, error) {
	key := buildRecordsKey(kind, params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var records []domain.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("decode records cache: %w", err)
	}

	return records, true, nil
}

func (c *redisRecordsCache) SetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams, records []domain.Record) error {
	key := buildRecordsKey(kind, params)
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisRecordsCache) LockFill(ctx context.Context, kind domain.Kind, params domain.FetchParams) (Unlock, bool, error) {
	lockKey := fillLockPrefix + buildRecordsKey(kind, params)[len(recordsKeyPrefix):]

	lock, err := c.locker.Obtain(ctx, lockKey, c.lockTime, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return noUnlock, false, nil
	}
	if err != nil {
		return noUnlock, false, fmt.Errorf("obtain fill lock: %w", err)
	}

	return func(ctx context.Context) {
		_ = lock.Release(ctx)
	}, true, nil
}

func (c *redisRecordsCache) InvalidateKind(ctx context.Context, kind domain.Kind) error {
	return deleteKeysWithPrefix(ctx, c.client, fmt.Sprintf("%s:%s:", recordsKeyPrefix, kind), scanBatchSize)
}

func (n *noopRecordsCache) GetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, bool, error) {
	return nil, false, nil
}

func (n *noopRecordsCache) SetRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams, records []domain.Record) error {
	return nil
}

func (n *noopRecordsCache) LockFill(ctx context.Context, kind domain.Kind, params domain.FetchParams) (Unlock, bool, error) {
	return noUnlock, true, nil
}

func (n *noopRecordsCache) InvalidateKind(ctx context.Context, kind domain.Kind) error {
	return nil
}

func noUnlock(context.Context) {}

func buildRecordsKey(kind domain.Kind, params domain.FetchParams) string {
	raw := params.Canonical()
	if raw == "" {
		return fmt.Sprintf("%s:%s:default", recordsKeyPrefix, kind)
	}

	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", recordsKeyPrefix, kind, hex.EncodeToString(hash[:]))
}
