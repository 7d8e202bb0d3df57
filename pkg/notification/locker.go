package notification

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const lockNamespace = "notification:"

// UserLocker runs fn while no other holder of the same user's lock is
// running.
type UserLocker interface {
	WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

// NewMutexLocker serialises callers inside one process only.
func NewMutexLocker() UserLocker {
	return &mutexLocker{locks: map[string]*userLock{}}
}

func (l *mutexLocker) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	defer func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}()

	return fn(ctx)
}

type advisoryLocker struct {
	local UserLocker
	db    *gorm.DB
}

// NewAdvisoryLocker holds a Postgres transaction-scoped advisory lock on the
// user while fn runs, so API servers and dispatchers sharing the database
// take turns. Callers in the same process queue on a local mutex first and
// hold at most one connection per user.
func NewAdvisoryLocker(db *gorm.DB) UserLocker {
	return &advisoryLocker{local: NewMutexLocker(), db: db}
}

func (l *advisoryLocker) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	return l.local.WithUserLock(ctx, userID, func(ctx context.Context) error {
		return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockNamespace+userID).Error; err != nil {
				return errors.Wrap(err, "lock user notifications")
			}
			return fn(ctx)
		})
	})
}
