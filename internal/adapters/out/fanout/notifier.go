// Package fanout combines several notifiers into one.
package fanout

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Notifier sends every notification through all its channels. An offer
// counts as delivered when at least one channel took it; status changes must
// reach every channel.
type Notifier struct {
	channels []ports.Notifier
	logger   *slog.Logger
}

// New ignores nil channels. With no channel left, every call succeeds and
// only logs at debug level.
func New(logger *slog.Logger, channels ...ports.Notifier) *Notifier {
	n := &Notifier{logger: logger.With("component", "FanoutNotifier")}
	for _, c := range channels {
		if c != nil {
			n.channels = append(n.channels, c)
		}
	}
	return n
}

func (n *Notifier) NotifyCourier(ctx context.Context, courierID kernel.UUID, offer ports.Offer) error {
	if len(n.channels) == 0 {
		n.logger.DebugContext(ctx, "no notification channel, offer dropped",
			"courier_id", courierID.String(), "job_id", offer.JobID.String())
		return nil
	}

	var failures []error
	for _, c := range n.channels {
		err := c.NotifyCourier(ctx, courierID, offer)
		if err == nil {
			return nil
		}
		failures = append(failures, err)
	}
	return errors.Join(failures...)
}

func (n *Notifier) NotifyStatusChange(ctx context.Context, jobID kernel.UUID, from, to job.Status) error {
	var failures []error
	for _, c := range n.channels {
		if err := c.NotifyStatusChange(ctx, jobID, from, to); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
