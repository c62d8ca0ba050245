package ports

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// Offer is the job summary sent to a candidate courier.
type Offer struct {
	JobID   kernel.UUID
	Pickup  kernel.Location
	Dropoff kernel.Location
	Price   float64
	Urgency job.Urgency
	Score   float64
	Rank    int
}

// Notifier delivers messages to couriers and to the surrounding application.
// Calls are fire-and-forget: the core logs returned errors and moves on.
type Notifier interface {
	// NotifyCourier offers a job to one candidate courier.
	NotifyCourier(ctx context.Context, courierID kernel.UUID, offer Offer) error

	// NotifyStatusChange announces a committed lifecycle transition.
	NotifyStatusChange(ctx context.Context, jobID kernel.UUID, from, to job.Status) error
}
