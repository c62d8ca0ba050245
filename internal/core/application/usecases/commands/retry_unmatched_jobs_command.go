package commands

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultMaxMatchAttempts = 3
	DefaultRetryBackoff     = 30 * time.Second
	DefaultMaxRetryBackoff  = 10 * time.Minute
)

var ErrRetryUnmatchedJobsCommandIsNotConstructed = errors.New(
	"RetryUnmatchedJobsCommand must be created via NewRetryUnmatchedJobsCommand constructor",
)

// RetryUnmatchedJobsCommand configures one pass over jobs that found no courier.
type RetryUnmatchedJobsCommand struct { //nolint:recvcheck //using for validation
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
	batch       int

	guard guard.ConstructorGuard
}

// NewRetryUnmatchedJobsCommand validates the retry policy. A zero maxBackoff
// means DefaultMaxRetryBackoff and a non-positive batch DefaultSweepBatch.
func NewRetryUnmatchedJobsCommand(maxAttempts int, backoff, maxBackoff time.Duration, batch int) (RetryUnmatchedJobsCommand, error) {
	var err error
	if maxAttempts < 1 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("max attempts", fmt.Errorf("%d is below 1", maxAttempts)))
	}
	if backoff <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("backoff", fmt.Errorf("%s is not positive", backoff)))
	}
	if maxBackoff < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("max backoff", fmt.Errorf("%s is negative", maxBackoff)))
	}
	if err != nil {
		return RetryUnmatchedJobsCommand{}, err
	}
	if maxBackoff == 0 {
		maxBackoff = DefaultMaxRetryBackoff
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}

	return RetryUnmatchedJobsCommand{
		maxAttempts: maxAttempts,
		backoff:     backoff,
		maxBackoff:  max(maxBackoff, backoff),
		batch:       batch,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RetryUnmatchedJobsCommand) Validate() error {
	return c.guard.Validate(ErrRetryUnmatchedJobsCommandIsNotConstructed)
}

func (c RetryUnmatchedJobsCommand) MaxAttempts() int {
	return c.maxAttempts
}

func (c RetryUnmatchedJobsCommand) Batch() int {
	return c.batch
}

// BackoffAfter returns how long a job waits in no_driver_found after its
// n-th search: backoff × 2^(n−1), capped at the maximum.
func (c RetryUnmatchedJobsCommand) BackoffAfter(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := c.backoff
	for i := 1; i < attempts && d < c.maxBackoff; i++ {
		d *= 2
	}
	return min(d, c.maxBackoff)
}

// MinBackoff is the shortest wait any job is subject to.
func (c RetryUnmatchedJobsCommand) MinBackoff() time.Duration {
	return c.backoff
}
