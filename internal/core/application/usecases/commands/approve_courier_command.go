package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrApproveCourierCommandIsNotConstructed = errors.New(
	"ApproveCourierCommand must be created via NewApproveCourierCommand constructor",
)

// ApproveCourierCommand clears a courier for work.
type ApproveCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

func NewApproveCourierCommand(courierID kernel.UUID) (ApproveCourierCommand, error) {
	if err := courierID.Validate(); err != nil {
		return ApproveCourierCommand{}, err
	}

	return ApproveCourierCommand{
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ApproveCourierCommand) Validate() error {
	return c.guard.Validate(ErrApproveCourierCommandIsNotConstructed)
}

func (c ApproveCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}
