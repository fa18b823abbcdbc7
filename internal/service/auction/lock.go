package auction

import "sync"

// itemLocks provides per-item mutual exclusion for the read-floor / compare /
// append sequence. Bids on distinct items never contend; entries are
// reference-counted and removed once the last holder releases, so the map
// stays bounded by concurrent traffic rather than item count.
type itemLocks struct {
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[string]*itemLock)}
}

// Acquire blocks until the lock for itemID is held and returns the release
// function.
func (il *itemLocks) Acquire(itemID string) func() {
	il.mu.Lock()
	l, ok := il.locks[itemID]
	if !ok {
		l = &itemLock{}
		il.locks[itemID] = l
	}
	l.refs++
	il.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		il.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(il.locks, itemID)
		}
		il.mu.Unlock()
	}
}
