package service

import "sync"

// userLocks hands out one mutex per user id
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

// lock blocks until the user's mutex is held and returns its release func.
// Entries are dropped once no goroutine holds or waits on them.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	lock, exists := l.locks[userID]
	if !exists {
		lock = &userLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// size returns the number of tracked users
func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
