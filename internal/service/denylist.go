package service

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/internal/database"
)

// TokenDenylist remembers revoked token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}


// RedisDenylist shares revocations between API instances.
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, database.RedisKey("revoked", jti), 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, database.RedisKey("revoked", jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// MemoryDenylist is the single-process fallback when Redis is not configured.
// When full, the oldest revocations are evicted first.
type MemoryDenylist struct {
	cache *lru.Cache
	now   func() time.Time
}

func NewMemoryDenylist(size int) (*MemoryDenylist, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MemoryDenylist{cache: cache, now: time.Now}, nil
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.cache.Add(jti, until)
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	v, ok := d.cache.Get(jti)
	if !ok {
		return false, nil
	}
	if d.now().After(v.(time.Time)) {
		d.cache.Remove(jti)
		return false, nil
	}
	return true, nil
}
