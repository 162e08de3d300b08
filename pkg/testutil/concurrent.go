package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"tenantry/pkg/changeset"
	"tenantry/pkg/platform/sentinel"
)

// ConcurrentResult tallies how a burst of concurrent calls ended.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
	// First holds the first unclassified error, for diagnostics.
	First error
}

// Total is the number of calls that returned.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent starts n goroutines, releases them together and classifies
// each return value. Constraint violations count as conflicts and
// sentinel.ErrNotFound as not found.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		start                           = make(chan struct{})
		done                            sync.WaitGroup
		ok, conflict, missing, failures atomic.Int32
		firstOnce                       sync.Once
		first                           error
	)

	done.Add(n)
	for i := range n {
		go func() {
			defer done.Done()
			<-start
			switch err := fn(i); {
			case err == nil:
				ok.Add(1)
			case conflicted(err):
				conflict.Add(1)
			case errors.Is(err, sentinel.ErrNotFound):
				missing.Add(1)
			default:
				failures.Add(1)
				firstOnce.Do(func() { first = err })
			}
		}()
	}
	close(start)
	done.Wait()

	return &ConcurrentResult{
		Successes: ok.Load(),
		Conflicts: conflict.Load(),
		NotFounds: missing.Load(),
		Errors:    failures.Load(),
		First:     first,
	}
}

func conflicted(err error) bool {
	var cv *changeset.ConstraintViolation
	return errors.As(err, &cv)
}
