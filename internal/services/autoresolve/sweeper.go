// Package autoresolve closes non-delivery disputes whose artist missed the
// response deadline. Eligibility comes only from the dispute row itself
// (status open, deadline passed); scheduled task rows are hints for waking up
// early and are never required.
package autoresolve

import (
	"context"
	"errors"
	"log"
	"time"

	"stagepay/internal/repositories"
	"stagepay/internal/repositories/cache"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const sweepLockKey = "stagepay:autoresolve:sweep"

// Resolver applies the default outcome to one dispute.
type Resolver interface {
	AutoResolve(ctx context.Context, disputeID uuid.UUID) (bool, error)
}

// Locker provides cross-instance mutual exclusion.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (cache.Releaser, error)
}

// Report summarizes one sweep.
type Report struct {
	Due      int  `json:"due"`
	Resolved int  `json:"resolved"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
	Locked   bool `json:"locked"`
}

type Sweeper struct {
	store     repositories.Store
	resolver  Resolver
	clock     clockwork.Clock
	locker    Locker
	batchSize int
	lockTTL   time.Duration
}

// NewSweeper creates a sweeper. locker may be nil; the conditional updates in
// the store already prevent double resolution, the lock only saves work.
func NewSweeper(store repositories.Store, resolver Resolver, clock clockwork.Clock, locker Locker, batchSize int, lockTTL time.Duration) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &Sweeper{store: store, resolver: resolver, clock: clock, locker: locker, batchSize: batchSize, lockTTL: lockTTL}
}

// Sweep resolves one batch of due disputes. A failure on one dispute is
// logged and the sweep moves on to the next.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var rep Report
	if s.locker != nil {
		lock, err := s.locker.TryAcquire(ctx, sweepLockKey, s.lockTTL)
		switch {
		case errors.Is(err, cache.ErrLockHeld):
			rep.Locked = true
			log.Printf("[autoresolve] another instance is sweeping, skipping")
			return rep, nil
		case err != nil:
			log.Printf("[autoresolve] sweep lock unavailable, sweeping without it: %v", err)
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					log.Printf("[autoresolve] release sweep lock: %v", err)
				}
			}()
		}
	}

	due, err := s.store.Disputes().ListDueForAutoResolve(ctx, s.clock.Now(), s.batchSize)
	if err != nil {
		return rep, err
	}
	rep.Due = len(due)
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		ok, err := s.resolver.AutoResolve(ctx, d.ID)
		switch {
		case err != nil:
			rep.Failed++
			log.Printf("[autoresolve] dispute %s: %v", d.ID, err)
		case ok:
			rep.Resolved++
		default:
			rep.Skipped++
		}
	}
	if rep.Due > 0 {
		log.Printf("[autoresolve] sweep done: due=%d resolved=%d skipped=%d failed=%d", rep.Due, rep.Resolved, rep.Skipped, rep.Failed)
	}
	return rep, nil
}
