package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultOfferTimeout = 2 * time.Minute
	DefaultSweepBatch   = 100
)

var ErrExpireStaleSearchesCommandIsNotConstructed = errors.New(
	"ExpireStaleSearchesCommand must be created via NewExpireStaleSearchesCommand constructor",
)

// Transitioner moves a job through the lifecycle.
type Transitioner interface {
	Handle(ctx context.Context, cmd TransitionJobCommand) (*job.Job, error)
}

// ExpireStaleSearchesCommand closes searches that went unanswered for too
// long, including those whose matching task was lost.
type ExpireStaleSearchesCommand struct { //nolint:recvcheck //using for validation
	offerTimeout time.Duration
	batch        int

	guard guard.ConstructorGuard
}

func NewExpireStaleSearchesCommand(offerTimeout time.Duration, batch int) (ExpireStaleSearchesCommand, error) {
	if offerTimeout <= 0 {
		return ExpireStaleSearchesCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"offer timeout", fmt.Errorf("%s is not positive", offerTimeout))
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}

	return ExpireStaleSearchesCommand{
		offerTimeout: offerTimeout,
		batch:        batch,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireStaleSearchesCommand) Validate() error {
	return c.guard.Validate(ErrExpireStaleSearchesCommandIsNotConstructed)
}

func (c ExpireStaleSearchesCommand) OfferTimeout() time.Duration {
	return c.offerTimeout
}

func (c ExpireStaleSearchesCommand) Batch() int {
	return c.batch
}
