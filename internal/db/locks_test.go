package db

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruckLocksSerializeSameTruck(t *testing.T) {
	locks := NewTruckLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("truck-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestTruckLocksIndependentTrucks(t *testing.T) {
	locks := NewTruckLocks()

	unlockA := locks.Lock("truck-a")
	// a different truck's lock must not block
	unlockB := locks.Lock("truck-b")
	unlockB()
	unlockA()

	// same truck relocks fine after unlock
	unlock := locks.Lock("truck-a")
	unlock()
}
