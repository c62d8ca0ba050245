package commands

import (
	"context"
)

// ApproveCourierCommandHandler marks a courier as approved. Approving twice
// is harmless.
type ApproveCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewApproveCourierCommandHandler(uowFactory CourierUoWFactory) ApproveCourierCommandHandler {
	return ApproveCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h ApproveCourierCommandHandler) Handle(ctx context.Context, cmd ApproveCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CourierRepository()
	c, err := repo.GetForUpdate(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	c.Approve()

	if err = repo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
