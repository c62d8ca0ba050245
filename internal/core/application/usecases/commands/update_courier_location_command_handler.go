package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// UpdateCourierLocationCommandHandler stores a courier's position stamped
// with the current time and refreshes the location index for couriers who
// can take a job.
type UpdateCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	index      ports.LocationIndex
	clock      ports.Clock
	logger     *slog.Logger
}

// NewUpdateCourierLocationCommandHandler builds the handler. index may be nil.
func NewUpdateCourierLocationCommandHandler(
	uowFactory CourierUoWFactory,
	index ports.LocationIndex,
	clock ports.Clock,
	logger *slog.Logger,
) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{
		uowFactory: uowFactory,
		index:      index,
		clock:      clock,
		logger:     logger.With("component", "UpdateCourierLocationCommandHandler"),
	}
}

func (h UpdateCourierLocationCommandHandler) Handle(ctx context.Context, cmd UpdateCourierLocationCommand) error {
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

	if err = c.UpdateLocation(cmd.Location(), h.clock.Now()); err != nil {
		return err
	}

	if err = repo.Update(ctx, c); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// Busy and offline couriers were removed when their status changed.
	if c.IsOnline() && c.IsAvailable() {
		syncCourierIndex(ctx, h.index, h.logger, c)
	}
	return nil
}
