package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nelalmis/league-match-service/internal/repository"
)

// keyedMutex serializes work per match id so rating submissions and
// standings updates for the same match never interleave in this process.
// Different keys proceed fully in parallel. Entries are never evicted; the
// footprint is one mutex per match seen since boot, which is negligible.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for the key and returns its unlock func.
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

const (
	conflictRetries = 3
	retryBaseDelay  = 50 * time.Millisecond
)

// withConflictRetry runs fn, retrying on repository.ErrConflict with bounded
// linear backoff. Only the numeric-aggregate read-modify-write paths use it;
// validation and state-machine failures are never retried. After the retries
// are exhausted the conflict surfaces to the caller.
func withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}
		err = fn(ctx)
		if err == nil || !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}
	return err
}
