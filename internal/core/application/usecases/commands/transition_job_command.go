package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrTransitionJobCommandIsNotConstructed = errors.New(
	"TransitionJobCommand must be created via NewTransitionJobCommand constructor",
)

// TransitionJobCommand asks to move a job to a target state.
//
// Example:
//
//	cmd, err := NewTransitionJobCommand(jobID, job.Accepted, job.TransitionOptions{CourierID: &courierID})
//	j, err := handler.Handle(ctx, cmd)
type TransitionJobCommand struct { //nolint:recvcheck //using for validation
	jobID  kernel.UUID
	target job.Status
	opts   job.TransitionOptions

	guard guard.ConstructorGuard
}

// NewTransitionJobCommand validates the job id, the target status, the
// cancel initiator and the shape of the security code. Whether the target is reachable is decided by the handler
// against the stored state.
func NewTransitionJobCommand(jobID kernel.UUID, target job.Status, opts job.TransitionOptions) (TransitionJobCommand, error) {
	command := TransitionJobCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setJobID(jobID),
		command.setTarget(target),
		command.setOptions(opts),
	); err != nil {
		return TransitionJobCommand{}, err
	}

	return command, nil
}

func (c TransitionJobCommand) Validate() error {
	return c.guard.Validate(ErrTransitionJobCommandIsNotConstructed)
}

func (c TransitionJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c TransitionJobCommand) Target() job.Status {
	return c.target
}

// Options returns a copy of the transition options.
func (c TransitionJobCommand) Options() job.TransitionOptions {
	opts := c.opts
	if c.opts.CourierID != nil {
		id := *c.opts.CourierID
		opts.CourierID = &id
	}
	return opts
}

func (c *TransitionJobCommand) setJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.jobID = id
	return nil
}

func (c *TransitionJobCommand) setTarget(target job.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *TransitionJobCommand) setOptions(opts job.TransitionOptions) error {
	if opts.CancelledBy != "" {
		if _, err := job.ParseInitiator(string(opts.CancelledBy)); err != nil {
			return err
		}
	}
	if opts.SecurityCode != "" {
		if _, err := job.ParseSecurityCode(string(opts.SecurityCode)); err != nil {
			return err
		}
	}
	if opts.CourierID != nil {
		id := *opts.CourierID
		opts.CourierID = &id
	}
	c.opts = opts
	return nil
}
