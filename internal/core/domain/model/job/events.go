package job

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

const (
	EventStatusChanged = "job.status_changed"
	EventAccepted      = "job.accepted"
	EventDelivered     = "job.delivered"
)

// Event is a domain event emitted after a transition commits.
type Event interface {
	EventName() string
	JobID() kernel.UUID
	OccurredAt() time.Time
}

// StatusChanged is emitted for every committed transition.
type StatusChanged struct {
	Job  kernel.UUID
	From Status
	To   Status
	At   time.Time
}

func (e StatusChanged) EventName() string     { return EventStatusChanged }
func (e StatusChanged) JobID() kernel.UUID    { return e.Job }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

// AcceptedEvent is emitted when a courier takes the job.
type AcceptedEvent struct {
	Job     kernel.UUID
	Courier kernel.UUID
	At      time.Time
}

func (e AcceptedEvent) EventName() string     { return EventAccepted }
func (e AcceptedEvent) JobID() kernel.UUID    { return e.Job }
func (e AcceptedEvent) OccurredAt() time.Time { return e.At }

// DeliveredEvent is emitted when the parcel reaches the recipient.
type DeliveredEvent struct {
	Job     kernel.UUID
	Courier kernel.UUID
	At      time.Time
}

func (e DeliveredEvent) EventName() string     { return EventDelivered }
func (e DeliveredEvent) JobID() kernel.UUID    { return e.Job }
func (e DeliveredEvent) OccurredAt() time.Time { return e.At }

// Events builds the domain events a committed transition emits, in the order
// of its effects.
func (t Transition) Events(j *Job, at time.Time) []Event {
	var courier kernel.UUID
	if id := j.CourierID(); id != nil {
		courier = *id
	}

	out := make([]Event, 0, 2)
	for _, e := range t.Effects {
		//nolint:exhaustive // non-event effects are skipped
		switch e {
		case EffectEmitStatusChanged:
			out = append(out, StatusChanged{Job: j.ID(), From: t.From, To: t.To, At: at})
		case EffectEmitAccepted:
			out = append(out, AcceptedEvent{Job: j.ID(), Courier: courier, At: at})
		case EffectEmitDelivered:
			out = append(out, DeliveredEvent{Job: j.ID(), Courier: courier, At: at})
		}
	}
	return out
}
