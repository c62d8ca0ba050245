package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/ports"
)

// UpdateCourierStatusCommandHandler brings couriers online or offline and
// keeps the location index in step: only couriers who can take a job stay
// indexed.
type UpdateCourierStatusCommandHandler struct {
	uowFactory CourierUoWFactory
	index      ports.LocationIndex
	logger     *slog.Logger
}

// NewUpdateCourierStatusCommandHandler builds the handler. index may be nil.
func NewUpdateCourierStatusCommandHandler(
	uowFactory CourierUoWFactory,
	index ports.LocationIndex,
	logger *slog.Logger,
) UpdateCourierStatusCommandHandler {
	return UpdateCourierStatusCommandHandler{
		uowFactory: uowFactory,
		index:      index,
		logger:     logger.With("component", "UpdateCourierStatusCommandHandler"),
	}
}

// Handle applies the new status.
//
// Returns courier.ErrCourierIsNotApproved when an unapproved courier tries
// to go online.
func (h UpdateCourierStatusCommandHandler) Handle(ctx context.Context, cmd UpdateCourierStatusCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CourierRepository()
	c, err := repo.GetForUpdate(ctx, cmd.CourierID())
	if err != nil {
		return nil, err
	}

	if cmd.Online() {
		if err = c.GoOnline(); err != nil {
			return nil, err
		}
		if err = c.SetAvailable(cmd.Available()); err != nil {
			return nil, err
		}
	} else {
		c.GoOffline()
	}

	if err = repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	syncCourierIndex(ctx, h.index, h.logger, c)
	return c, nil
}
