package service

import (
	"context"
	"errors"
	"time"

	"Go_Share/internal/repo"

	"github.com/redis/go-redis/v9"
)

// Reserver claims a freshly allocated identifier until its record is written.
type Reserver interface {
	// Reserve returns ok=false when another upload holds id.
	Reserve(ctx context.Context, id string) (release func(), ok bool, err error)
}

// NopReserver leaves the primary key as the only guard against duplicate ids.
type NopReserver struct{}

func (NopReserver) Reserve(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}

// RedisReserver claims ids with a SET NX lock per identifier.
type RedisReserver struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisReserver(rdb *redis.Client, ttl time.Duration) *RedisReserver {
	return &RedisReserver{rdb: rdb, ttl: ttl}
}

func (r *RedisReserver) Reserve(ctx context.Context, id string) (func(), bool, error) {
	lock := repo.NewRedisLock(r.rdb, "file_id:"+id, r.ttl)
	if err := lock.Lock(ctx); err != nil {
		if errors.Is(err, repo.ErrLockBusy) {
			return nil, false, nil
		}
		return nil, false, err
	}
	release := func() {
		_ = lock.Unlock(context.Background())
	}
	return release, true, nil
}
