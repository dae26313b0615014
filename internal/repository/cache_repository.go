package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

// DirectoryKeyspace prefixes every key the directory cache owns. Keys and
// patterns outside it are refused so a shared Redis is never cleared wholesale.
const DirectoryKeyspace = "directory:"

const unlinkBatch = 100

// ErrOutsideKeyspace is returned for keys or patterns not under DirectoryKeyspace.
var ErrOutsideKeyspace = errors.New("key outside directory keyspace")

// CacheRepository holds teacher lists and rosters as JSON under
// DirectoryKeyspace. Without a client reads miss and writes are dropped.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository wires the directory cache to client, which may be nil.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger.Named("directory_cache")}
}

// Get decodes the entry at key into dest. An absent entry is
// appErrors.ErrCacheMiss; an undecodable one is dropped and also reported as
// a miss so the caller rebuilds it from the directory.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if err := checkKeyspace(key); err != nil {
		return err
	}
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("directory cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("dropping corrupt directory cache entry", zap.String("key", key), zap.Error(err))
		if delErr := r.client.Unlink(ctx, key).Err(); delErr != nil {
			r.logger.Warn("corrupt directory cache entry not removed", zap.String("key", key), zap.Error(delErr))
		}
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set stores value at key for ttl. A zero ttl keeps the entry until the next
// directory mutation invalidates it.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := checkKeyspace(key); err != nil {
		return err
	}
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode directory cache entry %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("directory cache set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern unlinks every directory entry matching pattern, in batches
// as the keyspace is scanned.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if err := checkKeyspace(pattern); err != nil {
		return err
	}
	if r.client == nil {
		return nil
	}

	removed := 0
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("directory cache unlink %d keys: %w", len(batch), err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, unlinkBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("directory cache scan %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return err
	}

	r.logger.Debug("directory cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
	return nil
}

func checkKeyspace(key string) error {
	if !strings.HasPrefix(key, DirectoryKeyspace) {
		return fmt.Errorf("%w: %q", ErrOutsideKeyspace, key)
	}
	return nil
}
