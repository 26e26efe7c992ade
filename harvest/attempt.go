package harvest

import (
	"context"
	"time"
)

// Attempt carries the state of one try inside a bounded retry loop.
type Attempt struct {
	// Number is 1-based.
	Number int
	// Max is the attempt ceiling for this loop.
	Max int
}

// Last reports whether this is the final attempt.
func (a Attempt) Last() bool { return a.Number >= a.Max }

// retry runs op up to max times, sleeping delay between tries. It
// returns the number of attempts consumed and the last error, nil on
// success. Both the download loop and the reconciliation pass share it.
func retry(ctx context.Context, max int, delay time.Duration, op func(Attempt) error) (int, error) {
	var err error
	for n := 1; n <= max; n++ {
		err = op(Attempt{Number: n, Max: max})
		if err == nil {
			return n, nil
		}
		if n < max && delay > 0 {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
	}
	return max, err
}
