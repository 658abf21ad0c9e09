package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	AdminStats(ctx context.Context) (AdminStats, error)
	LecturerStats(ctx context.Context, lecturerID int64) (LecturerStats, error)
	StudentStats(ctx context.Context, studentID int64) (StudentStats, error)
}

// Cache holds rendered stats for a short TTL. A nil or failing cache only
// costs the query.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// RedisCache backs Cache with a shared redis client.
type RedisCache struct {
	Client *redis.Client
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if c == nil || c.Client == nil {
		return
	}
	c.Client.Set(ctx, key, val, ttl)
}

type Service struct {
	store   Store
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
}

func NewService(store Store, cache Cache, ttl, timeout time.Duration) *Service {
	return &Service{store: store, cache: cache, ttl: ttl, timeout: timeout}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) Admin(ctx context.Context) (AdminStats, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var out AdminStats
	err := s.cached(ctx, "stats:admin", &out, func() (any, error) {
		return s.store.AdminStats(ctx)
	})
	return out, err
}

func (s *Service) Lecturer(ctx context.Context, lecturerID int64) (LecturerStats, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var out LecturerStats
	err := s.cached(ctx, fmt.Sprintf("stats:lecturer:%d", lecturerID), &out, func() (any, error) {
		return s.store.LecturerStats(ctx, lecturerID)
	})
	return out, err
}

func (s *Service) Student(ctx context.Context, studentID int64) (StudentStats, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var out StudentStats
	err := s.cached(ctx, fmt.Sprintf("stats:student:%d", studentID), &out, func() (any, error) {
		return s.store.StudentStats(ctx, studentID)
	})
	return out, err
}

// cached is a read-through: serve from cache when present, otherwise query
// and fill the cache.
func (s *Service) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			if json.Unmarshal(raw, dst) == nil {
				return nil
			}
		}
	}
	val, err := load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return json.Unmarshal(raw, dst)
}
