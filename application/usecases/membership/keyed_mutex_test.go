package membership

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	const goroutines = 16
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				km.lock("same")
				counter++
				km.unlock("same")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()

	km.lock("a")
	km.lock("b")
	km.unlock("a")
	km.unlock("b")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks, "entries are reclaimed once unheld")
}

func TestKeyedMutexDistinctKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()

	km.lock("a")
	done := make(chan struct{})
	go func() {
		km.lock("b")
		km.unlock("b")
		close(done)
	}()
	<-done
	km.unlock("a")
}
