package session

import (
	"context"
	"fmt"

	"github.com/san-kum/wavelink/internal/dynamo"
)

// Builder constructs an independent session for sweep index i.
type Builder func(i int) (*Session, Config, error)

// Sweep runs n independent sessions in parallel. Results are returned in
// index order; the first error by index wins.
func Sweep(ctx context.Context, n int, build Builder) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, n)
	errs := make([]error, n)

	dynamo.ParallelFor(n, 1, func(start, end int) {
		for i := start; i < end; i++ {
			s, cfg, err := build(i)
			if err != nil {
				errs[i] = err
				continue
			}
			results[i], errs[i] = s.Run(ctx, cfg)
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
	}
	return results, nil
}
