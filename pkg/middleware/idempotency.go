package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"Lifeline/pkg/errors"
	"Lifeline/pkg/response"
)

// IdemStore marks a key as seen for a window. Set returns false when the
// key was already present inside the window.
type IdemStore interface {
	Set(ctx context.Context, key string, ttl time.Duration) bool
}

type memoryIdemStore struct {
	c *gocache.Cache
}

// NewMemoryIdemStore builds an in-process store.
func NewMemoryIdemStore() IdemStore {
	return &memoryIdemStore{c: gocache.New(gocache.NoExpiration, 1*time.Minute)}
}

func (s *memoryIdemStore) Set(_ context.Context, key string, ttl time.Duration) bool {
	return s.c.Add(key, struct{}{}, ttl) == nil
}

type redisIdemStore struct {
	cli *redis.Client
}

// NewRedisIdemStore builds a Redis-backed store so the dedupe window holds
// across replicas.
func NewRedisIdemStore(addr string) IdemStore {
	return &redisIdemStore{cli: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *redisIdemStore) Set(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := s.cli.SetNX(ctx, "idem:"+key, 1, ttl).Result()
	if err != nil {
		// Store unavailable: let the request through rather than block an SOS.
		return true
	}
	return ok
}

// IdempotencyConfig controls the optional trigger-dedupe policy.
type IdempotencyConfig struct {
	HeaderName string // defaults to Idempotency-Key
	TTL        time.Duration
	Store      IdemStore
}

// Idempotency rejects a request repeating a recently seen Idempotency-Key
// with 409, before any side effect runs. Requests without the header pass
// through untouched: supplying a key is the caller's opt-in.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Idempotency-Key"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryIdemStore()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(cfg.HeaderName)
		if key == "" {
			c.Next()
			return
		}
		if !cfg.Store.Set(c.Request.Context(), key, cfg.TTL) {
			response.Fail(c, http.StatusConflict, errors.CodeConflict, "duplicate request")
			return
		}
		c.Next()
	}
}
