// README: Plan cache backed by Redis, shared across API instances.
package plancache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wayfare/internal/plangen"
)

// RedisStore stores entries under their derived key with the TTL applied
// by Redis itself, plus a per-scope sorted-set index scored by store time
// for oldest-first eviction and scope-wide clears.
type RedisStore struct {
	redis    *redis.Client
	ttl      time.Duration
	capacity int
	logger   *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, capacity int, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{redis: client, ttl: ttl, capacity: capacity, logger: logger}
}

func indexKey(scope string) string {
	return keyPrefix + ":" + scope + ":index"
}

func (s *RedisStore) Lookup(ctx context.Context, scope string, prefs plangen.Preferences) (*plangen.Result, bool) {
	key := Key(scope, prefs)
	val, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("plan cache lookup failed", zap.Error(err))
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		s.logger.Warn("plan cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return e.Result, true
}

func (s *RedisStore) Save(ctx context.Context, scope string, prefs plangen.Preferences, res *plangen.Result) {
	key := Key(scope, prefs)
	entry := Entry{Key: key, Preferences: prefs, Result: res, StoredAt: time.Now().UTC()}
	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("plan cache entry not serializable", zap.Error(err))
		return
	}

	idx := indexKey(scope)
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, key, raw, s.ttl)
	pipe.ZAdd(ctx, idx, redis.Z{Score: float64(entry.StoredAt.Unix()), Member: key})
	// The index outlives the entries so EvictExpired can still sweep it.
	pipe.Expire(ctx, idx, 2*s.ttl)
	card := pipe.ZCard(ctx, idx)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("plan cache save failed", zap.Error(err))
		return
	}

	over := card.Val() - int64(s.capacity)
	for i := int64(0); i < over; i++ {
		popped, err := s.redis.ZPopMin(ctx, idx, 1).Result()
		if err != nil || len(popped) == 0 {
			return
		}
		if member, ok := popped[0].Member.(string); ok {
			s.redis.Del(ctx, member)
		}
	}
}

// EvictExpired prunes index members whose entries Redis has already
// expired. The values themselves need no sweep.
func (s *RedisStore) EvictExpired(ctx context.Context, scope string) (int, error) {
	idx := indexKey(scope)
	members, err := s.redis.ZRange(ctx, idx, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	dropped := 0
	for _, key := range members {
		exists, err := s.redis.Exists(ctx, key).Result()
		if err != nil {
			return dropped, err
		}
		if exists == 0 {
			if err := s.redis.ZRem(ctx, idx, key).Err(); err != nil {
				return dropped, err
			}
			dropped++
		}
	}
	return dropped, nil
}

func (s *RedisStore) Clear(ctx context.Context, scope string) error {
	idx := indexKey(scope)
	members, err := s.redis.ZRange(ctx, idx, 0, -1).Result()
	if err != nil {
		return err
	}
	pipe := s.redis.Pipeline()
	for _, key := range members {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, idx)
	_, err = pipe.Exec(ctx)
	return err
}
