package commands

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateJobCommandIsNotConstructed = errors.New(
	"CreateJobCommand must be created via NewCreateJobCommand constructor",
)

// Endpoint is a pickup or drop-off point given either as coordinates or as
// an address to geocode. Coordinates win when both are set.
type Endpoint struct {
	Location *kernel.Location
	Address  string
}

func (e Endpoint) needsGeocoding() bool {
	return e.Location == nil
}

func (e Endpoint) validate(name string) error {
	if e.Location != nil {
		return e.Location.Validate()
	}
	if strings.TrimSpace(e.Address) == "" {
		return errs.NewValueIsRequiredErrorWithCause(name, errors.New("coordinates or address are required"))
	}
	return nil
}

// CreateJobCommand registers a new delivery request. The price is computed
// upstream and taken as is.
//
// Example:
//
//	cmd, err := NewCreateJobCommand(
//	    Endpoint{Location: &pickup},
//	    Endpoint{Address: "Avenue Cheikh Anta Diop, Dakar"},
//	    3500, 2.5, job.UrgencyExpress,
//	)
type CreateJobCommand struct { //nolint:recvcheck //using for validation
	jobID   kernel.UUID
	pickup  Endpoint
	dropoff Endpoint
	price   float64
	weight  float64
	urgency job.Urgency

	guard guard.ConstructorGuard
}

// NewCreateJobCommand validates the request and generates the job id.
func NewCreateJobCommand(pickup, dropoff Endpoint, price, weight float64, urgency job.Urgency) (CreateJobCommand, error) {
	command := CreateJobCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setJobID(kernel.NewUUID()),
		command.setEndpoints(pickup, dropoff),
		command.setAmounts(price, weight),
		command.setUrgency(urgency),
	); err != nil {
		return CreateJobCommand{}, err
	}

	return command, nil
}

func (c CreateJobCommand) Validate() error {
	return c.guard.Validate(ErrCreateJobCommandIsNotConstructed)
}

func (c CreateJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CreateJobCommand) Pickup() Endpoint {
	return c.pickup
}

func (c CreateJobCommand) Dropoff() Endpoint {
	return c.dropoff
}

func (c CreateJobCommand) Price() float64 {
	return c.price
}

func (c CreateJobCommand) Weight() float64 {
	return c.weight
}

func (c CreateJobCommand) Urgency() job.Urgency {
	return c.urgency
}

func (c *CreateJobCommand) setJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.jobID = id
	return nil
}

func (c *CreateJobCommand) setEndpoints(pickup, dropoff Endpoint) error {
	if err := errors.Join(pickup.validate("pickup"), dropoff.validate("dropoff")); err != nil {
		return err
	}
	c.pickup = pickup
	c.dropoff = dropoff
	return nil
}

func (c *CreateJobCommand) setAmounts(price, weight float64) error {
	var err error
	if price < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%v is negative", price)))
	}
	if weight < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is negative", weight)))
	}
	if err != nil {
		return err
	}
	c.price = price
	c.weight = weight
	return nil
}

func (c *CreateJobCommand) setUrgency(urgency job.Urgency) error {
	u, err := job.ParseUrgency(string(urgency))
	if err != nil {
		return err
	}
	c.urgency = u
	return nil
}
