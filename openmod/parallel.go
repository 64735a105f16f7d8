package openmod

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Parallelize runs the actions concurrently when parallel is set,
// sequentially otherwise, and collects every failure.
func Parallelize(parallel bool, actions ...func() error) error {
	var res *multierror.Error

	if !parallel {
		for _, action := range actions {
			res = multierror.Append(res, action())
		}

		return res.ErrorOrNil()
	}

	var wait sync.WaitGroup
	var mu sync.Mutex

	wait.Add(len(actions))
	for _, action := range actions {
		go func(action func() error) {
			defer wait.Done()

			if err := action(); err != nil {
				mu.Lock()
				res = multierror.Append(res, err)
				mu.Unlock()
			}
		}(action)
	}

	wait.Wait()

	return res.ErrorOrNil()
}

// Distinct filters duplicates out of a candidate name list,
// preserving order.
func Distinct[T comparable](values []T) []T {
	seen := make(map[T]bool, len(values))

	res := make([]T, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}

	return res
}
