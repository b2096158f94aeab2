// Package ban locks an identifier out of login after repeated failures.
package ban

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/redissvc"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
)

// Strikes counts failed logins per identifier inside a rolling window that
// starts at the first failure.
type Strikes interface {
	// Banned reports whether identifier has used up its attempts.
	Banned(ctx context.Context, identifier string) (bool, error)
	// Strike records a failure and returns the failure count in the window.
	Strike(ctx context.Context, identifier string) (int, error)
	Reset(ctx context.Context, identifier string) error
}

func strikesKey(identifier string) string {
	return fmt.Sprintf("login:strikes:%s", identifier)
}

type RedisStrikes struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewRedisStrikes(rs *redissvc.RedisService, max int, window time.Duration) *RedisStrikes {
	return &RedisStrikes{rdb: rs.Rdb(), max: max, window: window}
}

func (s *RedisStrikes) Banned(ctx context.Context, identifier string) (bool, error) {
	n, err := s.rdb.Get(ctx, strikesKey(identifier)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
	return n >= s.max, nil
}

func (s *RedisStrikes) Strike(ctx context.Context, identifier string) (int, error) {
	key := strikesKey(identifier)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStrikes) Reset(ctx context.Context, identifier string) error {
	if err := s.rdb.Del(ctx, strikesKey(identifier)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

type memoryEntry struct {
	count   int
	expires time.Time
}

// MemoryStrikes is the process-local Strikes used with the in-memory store.
type MemoryStrikes struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryStrikes(max int, window time.Duration) *MemoryStrikes {
	return &MemoryStrikes{entries: map[string]memoryEntry{}, max: max, window: window, now: time.Now}
}

func (s *MemoryStrikes) current(identifier string) memoryEntry {
	entry, ok := s.entries[identifier]
	if ok && !s.now().Before(entry.expires) {
		delete(s.entries, identifier)
		return memoryEntry{}
	}
	return entry
}

func (s *MemoryStrikes) Banned(_ context.Context, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(identifier).count >= s.max, nil
}

func (s *MemoryStrikes) Strike(_ context.Context, identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.current(identifier)
	if entry.count == 0 {
		entry.expires = s.now().Add(s.window)
	}
	entry.count++
	s.entries[identifier] = entry
	return entry.count, nil
}

func (s *MemoryStrikes) Reset(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identifier)
	return nil
}
