package db

import "sync"

// TruckLocks serializes read-modify-write cycles on a single truck between
// the scheduler and manual route control. Locks are created on first use and
// kept for the process lifetime; the fleet is small enough that they are
// never reaped.
type TruckLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTruckLocks returns an empty lock set.
func NewTruckLocks() *TruckLocks {
	return &TruckLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the truck's lock and returns the matching unlock function.
func (l *TruckLocks) Lock(truckID string) func() {
	l.mu.Lock()
	m, ok := l.locks[truckID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[truckID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
