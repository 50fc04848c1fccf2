package analysis

import (
	"context"
	"runtime"
	"sync"
)

// Outcome is the result of one item processed by Map
type Outcome[R any] struct {
	Value R
	Err   error
}

type job[T any] struct {
	index int
	item  T
}

type outcome[R any] struct {
	index int
	Outcome[R]
}

// Map applies fn to every item on a fixed number of goroutines. Outcomes keep
// the order of items. Per-item failures are reported in the outcome; the
// returned error is only set when ctx ends before every item was processed.
// workers <= 0 uses GOMAXPROCS.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]Outcome[R], error) {
	if len(items) == 0 {
		return []Outcome[R]{}, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan job[T], workers*2)
	results := make(chan outcome[R], workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				v, err := fn(ctx, j.item)
				select {
				case results <- outcome[R]{index: j.index, Outcome: Outcome[R]{Value: v, Err: err}}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			select {
			case jobs <- job[T]{index: i, item: item}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Outcome[R], len(items))
	done := 0
	for r := range results {
		out[r.index] = r.Outcome
		done++
	}

	if done < len(items) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
	}
	return out, nil
}
