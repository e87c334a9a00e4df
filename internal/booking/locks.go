package booking

import "sync"

type bookingLock struct {
	sync.Mutex
	holders int
}

// bookingLocks hands out one mutex per booking id and forgets it once the
// last holder unlocks, so ids that are never seen again cost nothing.
type bookingLocks struct {
	mu    sync.Mutex
	locks map[string]*bookingLock
}

func newBookingLocks() *bookingLocks {
	//nolint:exhaustruct
	return &bookingLocks{locks: make(map[string]*bookingLock)}
}

func (b *bookingLocks) lock(id string) func() {
	b.mu.Lock()

	l, ok := b.locks[id]
	if !ok {
		l = &bookingLock{} //nolint:exhaustruct
		b.locks[id] = l
	}

	l.holders++
	b.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		b.mu.Lock()
		defer b.mu.Unlock()

		l.holders--
		if l.holders == 0 {
			delete(b.locks, id)
		}
	}
}

func (b *bookingLocks) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.locks)
}
