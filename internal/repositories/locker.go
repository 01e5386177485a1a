package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrLockBusy = errors.New("lock is held by another request")

// RedisLocker serialises work on one record across service instances.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
	log    zerolog.Logger
}

func NewRedisLocker(client *redis.Client, expiry time.Duration, tries int, log zerolog.Logger) *RedisLocker {
	if tries < 1 {
		tries = 1
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		tries:  tries,
		log:    log,
	}
}

// Lock acquires key and returns the function that releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(l.expiry), redsync.WithTries(l.tries))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Join(ErrLockBusy, err)
	}
	return func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}
