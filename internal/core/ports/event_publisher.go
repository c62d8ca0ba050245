package ports

import (
	"context"

	"dispatch/internal/core/domain/model/job"
)

// EventPublisher hands committed domain events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...job.Event) error
}
