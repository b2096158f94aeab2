package redissvc

import (
	"context"

	"github.com/fejiro0/gomart/internal/config"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	rdb *redis.Client
}

func NewRedisService(rdb *redis.Client) *RedisService {
	return &RedisService{rdb: rdb}
}

// Connect opens a client for cfg and checks that the server answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*RedisService, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return NewRedisService(rdb), nil
}

func (a *RedisService) Rdb() *redis.Client {
	return a.rdb
}

func (a *RedisService) Close() error {
	return a.rdb.Close()
}
