package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerialisesSameKey(t *testing.T) {
	km := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("project-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Empty(t, km.locks)
}

func TestKeyedMutex_TryLock(t *testing.T) {
	km := newKeyedMutex()

	unlock, ok := km.TryLock("doc-1")
	assert.True(t, ok)

	_, ok = km.TryLock("doc-1")
	assert.False(t, ok)

	other, ok := km.TryLock("doc-2")
	assert.True(t, ok)
	other()

	unlock()
	again, ok := km.TryLock("doc-1")
	assert.True(t, ok)
	again()
}
