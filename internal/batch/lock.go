package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedsyncLocker keeps scheduled jobs single-runner across replicas.
type RedsyncLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

var _ Locker = (*RedsyncLocker)(nil)

func NewRedsyncLocker(client redis.UniversalClient, expiry time.Duration) *RedsyncLocker {
	return &RedsyncLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
	}
}

func (l *RedsyncLocker) TryLock(ctx context.Context, key string) (func(context.Context) error, bool, error) {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to attempt lock acquisition for %s: %w", key, err)
	}

	unlock := func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lock %s was no longer held", key)
		}
		return nil
	}
	return unlock, true, nil
}
