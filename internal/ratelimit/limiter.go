package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Limiter allows at most limit attempts per identity within window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a Limiter over store.
func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Reservation is one attempt counted against an identity's budget.
type Reservation struct {
	store Store
	key   string
	id    string
}

// Release gives the attempt back, e.g. when it turned out not to be a
// failure.
func (r *Reservation) Release(ctx context.Context) error {
	return r.store.Release(ctx, r.key, r.id)
}

// Reserve counts one attempt against id if it is still under budget. ok is
// false, with a nil Reservation, once the budget for the window is spent.
func (l *Limiter) Reserve(ctx context.Context, id string) (res *Reservation, ok bool, err error) {
	now := l.now()
	attemptID := uuid.NewString()
	ok, err = l.store.Reserve(ctx, id, attemptID, now, now.Add(-l.window), l.limit)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Reservation{store: l.store, key: id, id: attemptID}, true, nil
}

// Take counts one attempt and reports whether it was within budget. Used
// where every request counts, not only failures.
func (l *Limiter) Take(ctx context.Context, id string) (bool, error) {
	_, ok, err := l.Reserve(ctx, id)
	return ok, err
}
