package utils

import (
	"context"
	"time"
)

// Condition reports whether polling can stop.
type Condition func(ctx context.Context) (bool, error)

// Poll evaluates cond, sleeping interval between evaluations, until it holds,
// returns an error, or ctx is done. There is no upper bound on attempts.
func Poll(ctx context.Context, interval time.Duration, cond Condition) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
