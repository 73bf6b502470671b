package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MapEmployees runs fn once per employee ID with at most workers in flight and
// collects the results by ID. There is no ordering between employees. The
// first error cancels the context passed to the remaining calls.
func MapEmployees[T any](ctx context.Context, ids []string, workers int, fn func(ctx context.Context, employeeID string) (T, error)) (map[string]T, error) {
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	out := make(map[string]T, len(ids))
	for _, id := range ids {
		id := id
		g.Go(func() error {
			v, err := fn(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
