package pipeline

import (
	"context"
	"sync"
)

// ForEach calls fn for every index in [0, n) with at most limit calls in flight.
// It returns the first error; calls still running see a cancelled context.
// A panic in fn releases its slot and is re-raised in the caller's goroutine.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make(chan struct{}, limit)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		panicked any
	)
	record := func(err error, recovered any) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		if panicked == nil {
			panicked = recovered
		}
		mu.Unlock()
		cancel()
	}
	finish := func() error {
		wg.Wait()
		if panicked != nil {
			panic(panicked)
		}
		return firstErr
	}

	for i := 0; i < n; i++ {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			if err := finish(); err != nil {
				return err
			}
			return ctx.Err()
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-slots }()
			defer func() {
				if r := recover(); r != nil {
					record(nil, r)
				}
			}()

			if err := fn(ctx, i); err != nil {
				record(err, nil)
			}
		}(i)
	}

	return finish()
}
