// Package parallel contains a bounded parallel ForEach used to fit and evaluate trees.
package parallel

import "sync"

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// ForEachErr is ForEach for bodies which can fail. Once a body fails no new
// iterations are started, already running ones finish. The first error is returned.
func ForEachErr(length, limit int, body func(i int) error) error {
	var (
		mut      sync.Mutex
		firstErr error
	)
	failed := func() bool {
		mut.Lock()
		defer mut.Unlock()
		return firstErr != nil
	}
	ForEach(length, limit, func(i int) {
		if failed() {
			return
		}
		if err := body(i); err != nil {
			mut.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mut.Unlock()
		}
	})
	return firstErr
}
