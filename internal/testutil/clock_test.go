package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_StartsAtZero(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(0), seq.Current())
}

func TestSequence_NextIncrementsMonotonically(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(1), seq.Current())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(3), seq.Next())
	assert.Equal(t, int64(3), seq.Current())
}

func TestSequence_Reset(t *testing.T) {
	seq := NewSequence()
	seq.Next()
	seq.Next()

	seq.Reset()
	assert.Equal(t, int64(0), seq.Current())
	assert.Equal(t, int64(1), seq.Next())
}

func TestSequence_Concurrent(t *testing.T) {
	seq := NewSequence()
	const goroutines, perGoroutine = 8, 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seq.Next()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), seq.Current())
}
