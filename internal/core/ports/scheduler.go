package ports

import (
	"context"
	"time"
)

// Task is a unit of background work. It receives its own context, detached
// from the request that scheduled it.
type Task func(ctx context.Context)

// TaskScheduler accepts background tasks. Schedule returns once the task is
// queued; an error means it was not and never will run.
type TaskScheduler interface {
	Schedule(ctx context.Context, name string, task Task) error
}

// Clock supplies the current time for every timestamp the core writes.
type Clock interface {
	Now() time.Time
}
