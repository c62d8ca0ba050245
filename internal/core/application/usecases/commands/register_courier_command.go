package commands

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrRegisterCourierCommandIsNotConstructed = errors.New(
		"RegisterCourierCommand must be created via NewRegisterCourierCommand constructor",
	)
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
)

// RegisterCourierCommand signs up a new courier. The courier starts
// unapproved and offline.
//
// Example:
//
//	cmd, err := NewRegisterCourierCommand("Awa Ndiaye", 4.7)
//	if err != nil {
//	    return fmt.Errorf("invalid courier data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to register courier: %w", err)
//	}
//	fmt.Printf("Registered courier with ID: %s", cmd.CourierID())
type RegisterCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	name      string
	rating    float64

	guard guard.ConstructorGuard
}

// NewRegisterCourierCommand generates the courier id and validates the name
// and the initial rating.
func NewRegisterCourierCommand(name string, rating float64) (RegisterCourierCommand, error) {
	command := RegisterCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(kernel.NewUUID()),
		command.setName(name),
		command.setRating(rating),
	); err != nil {
		return RegisterCourierCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterCourierCommand) Validate() error {
	return c.guard.Validate(ErrRegisterCourierCommandIsNotConstructed)
}

func (c RegisterCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c RegisterCourierCommand) Name() string {
	return c.name
}

func (c RegisterCourierCommand) Rating() float64 {
	return c.rating
}

func (c *RegisterCourierCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *RegisterCourierCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *RegisterCourierCommand) setRating(rating float64) error {
	if rating < courier.MinRating || rating > courier.MaxRating {
		return errs.NewValueIsOutOfRangeErrorWithCause("rating", rating, courier.MinRating, courier.MaxRating,
			fmt.Errorf("rating must be within [%v, %v]", courier.MinRating, courier.MaxRating))
	}

	c.rating = rating
	return nil
}
