package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/ports"
)

// syncCourierIndex keeps a courier in the location index only while they can
// take a job: online, available and with a known position. Failures are
// logged; the courier store stays authoritative.
func syncCourierIndex(ctx context.Context, index ports.LocationIndex, logger *slog.Logger, c *courier.Courier) {
	if index == nil || c == nil {
		return
	}

	var err error
	if loc, ok := c.Location(); ok && c.IsOnline() && c.IsAvailable() {
		err = index.Upsert(ctx, c.ID(), loc)
	} else {
		err = index.Remove(ctx, c.ID())
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to sync location index", "courier_id", c.ID().String(), "error", err)
	}
}
