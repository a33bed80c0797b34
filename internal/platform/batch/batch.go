// Package batch runs homogeneous tasks with bounded parallelism.
// Admission is FIFO in input order, at most limit tasks run at once, and
// every input slot gets exactly one result
package batch

import (
	"context"
	"sync"
)

// Result pairs a task's value with its error, indexed 1:1 with the input
type Result[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every item with at most limit concurrent calls.
// Results line up with items by index regardless of completion order.
// A cancelled ctx fails the not-yet-started remainder with ctx.Err();
// tasks already running are left to honor ctx themselves
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))
	if len(items) == 0 {
		return out
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	// unbuffered so sends hand off directly to an idle worker: dispatch
	// order is the slice order, which keeps admission first-in first-out
	idx := make(chan int)

	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				if err := ctx.Err(); err != nil {
					out[i] = Result[R]{Err: err}
					continue
				}
				v, err := fn(ctx, items[i])
				out[i] = Result[R]{Value: v, Err: err}
			}
		}()
	}

	for i := range items {
		idx <- i
	}
	close(idx)
	wg.Wait()

	return out
}

// Run executes fns with bounded parallelism and returns their errors by index
func Run(ctx context.Context, limit int, fns []func(ctx context.Context) error) []error {
	res := Map(ctx, limit, fns, func(ctx context.Context, fn func(ctx context.Context) error) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	errs := make([]error, len(res))
	for i, r := range res {
		errs[i] = r.Err
	}
	return errs
}
