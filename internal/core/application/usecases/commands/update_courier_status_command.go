package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierStatusCommandIsNotConstructed = errors.New(
	"UpdateCourierStatusCommand must be created via NewUpdateCourierStatusCommand constructor",
)

// UpdateCourierStatusCommand toggles a courier's presence. Available is
// ignored when Online is false: an offline courier is never available.
type UpdateCourierStatusCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	online    bool
	available bool

	guard guard.ConstructorGuard
}

func NewUpdateCourierStatusCommand(courierID kernel.UUID, online, available bool) (UpdateCourierStatusCommand, error) {
	if err := courierID.Validate(); err != nil {
		return UpdateCourierStatusCommand{}, err
	}

	return UpdateCourierStatusCommand{
		courierID: courierID,
		online:    online,
		available: online && available,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierStatusCommandIsNotConstructed)
}

func (c UpdateCourierStatusCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c UpdateCourierStatusCommand) Online() bool {
	return c.online
}

func (c UpdateCourierStatusCommand) Available() bool {
	return c.available
}
