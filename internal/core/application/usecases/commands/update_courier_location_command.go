package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierLocationCommandIsNotConstructed = errors.New(
	"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
)

// UpdateCourierLocationCommand reports a courier's GPS position.
//
// Example:
//
//	cmd, err := NewUpdateCourierLocationCommand(courierID, 14.6928, -17.4467)
type UpdateCourierLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	location  kernel.Location

	guard guard.ConstructorGuard
}

// NewUpdateCourierLocationCommand validates the id and the coordinate ranges.
func NewUpdateCourierLocationCommand(courierID kernel.UUID, lat, lng float64) (UpdateCourierLocationCommand, error) {
	location, locErr := kernel.NewLocation(lat, lng)
	if err := errors.Join(courierID.Validate(), locErr); err != nil {
		return UpdateCourierLocationCommand{}, err
	}

	return UpdateCourierLocationCommand{
		courierID: courierID,
		location:  location,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

func (c UpdateCourierLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c UpdateCourierLocationCommand) Location() kernel.Location {
	return c.location
}
