package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/redissvc"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errStaleVersion = errors.New("cache version changed")

// versionTTL outlives any product TTL, so a version never resets while a
// copy read under it may still be written.
const versionTTL = 24 * time.Hour

// RedisProductCache stores products as JSON under product:<id>. Errors are
// logged and treated as misses; the database stays the source of truth.
type RedisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisProductCache(rs *redissvc.RedisService, ttl time.Duration, log *zap.Logger) *RedisProductCache {
	return &RedisProductCache{rdb: rs.Rdb(), ttl: ttl, log: log}
}

func (c *RedisProductCache) GetProduct(ctx context.Context, id int64) (models.Product, int64, bool) {
	vals, err := c.rdb.MGet(ctx, productKey(id), versionKey(id)).Result()
	if err != nil {
		c.log.Warn("redis MGET failed", zap.Error(e.Wrap(whereami.WhereAmI(), err)))
		return models.Product{}, 0, false
	}

	version, err := parseVersion(vals[1])
	if err != nil {
		c.log.Warn("bad cache version", zap.Int64("product_id", id), zap.Error(err))
		return models.Product{}, 0, false
	}

	data, ok := vals[0].(string)
	if !ok {
		return models.Product{}, version, false
	}

	var p models.Product
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		c.log.Warn("redis unmarshal failed", zap.Error(e.Wrap(whereami.WhereAmI(), err)))
		return models.Product{}, version, false
	}
	if p.ID != id {
		c.log.Warn("cache id mismatch", zap.Int64("key_id", id), zap.Int64("model_id", p.ID))
		_ = c.rdb.Del(ctx, productKey(id)).Err()
		return models.Product{}, version, false
	}
	return p, version, true
}

// SetProduct writes p only if no invalidation happened since version was
// read. The version key is watched, so a concurrent DeleteProducts aborts
// the write.
func (c *RedisProductCache) SetProduct(ctx context.Context, p models.Product, version int64) {
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("failed to marshal product for caching", zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(p.ID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(p.ID), data, c.ttl)
			return nil
		})
		return err
	}, versionKey(p.ID))

	switch {
	case err == nil, errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
	default:
		c.log.Warn("redis SET failed", zap.Error(e.Wrap(whereami.WhereAmI(), err)))
	}
}

func (c *RedisProductCache) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := c.rdb.TxPipeline()
	for _, id := range ids {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), versionTTL)
		pipe.Del(ctx, productKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func parseVersion(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func versionKey(id int64) string {
	return fmt.Sprintf("product:%d:version", id)
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
