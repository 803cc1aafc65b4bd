package testutil

import (
	"sync"
	"sync/atomic"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Failures  int32

	mu   sync.Mutex
	errs []error
}

// Errors returns the collected failures in completion order.
func (r *ConcurrentResult) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Failures
}

// RunConcurrent starts fn in goroutines parallel goroutines, waits for all of
// them and reports how many failed.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		failures  atomic.Int32
		result    = &ConcurrentResult{}
	)

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				failures.Add(1)
				result.mu.Lock()
				result.errs = append(result.errs, err)
				result.mu.Unlock()
				return
			}
			successes.Add(1)
		}(i)
	}

	wg.Wait()
	result.Successes = successes.Load()
	result.Failures = failures.Load()
	return result
}
