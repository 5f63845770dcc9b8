package testutil

import (
	"sync"
	"testing"
)

// RunConcurrently starts workers goroutines that each call fn with their
// index, releases them together and waits for all of them.
func RunConcurrently(t *testing.T, workers int, fn func(i int)) {
	t.Helper()

	var (
		start sync.WaitGroup
		done  sync.WaitGroup
	)
	start.Add(1)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			fn(i)
		}(i)
	}
	start.Done()
	done.Wait()
}
