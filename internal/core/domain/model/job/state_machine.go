package job

import (
	"fmt"
	"slices"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Initiator tells who asked for a cancellation.
type Initiator string

const (
	InitiatorClient  Initiator = "client"
	InitiatorCourier Initiator = "courier"
	InitiatorSystem  Initiator = "system"
)

// ParseInitiator validates a persisted or wire initiator. The empty string is
// rejected; callers that want a default should pick it before parsing.
func ParseInitiator(s string) (Initiator, error) {
	switch i := Initiator(s); i {
	case InitiatorClient, InitiatorCourier, InitiatorSystem:
		return i, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("cancelled by", fmt.Errorf("%q is not a valid initiator", s))
	}
}

// TransitionOptions carries the data some target states need.
type TransitionOptions struct {
	// CourierID is required when moving to Accepted.
	CourierID *kernel.UUID
	// CancelledBy is recorded when moving to Cancelled. Defaults to InitiatorSystem.
	CancelledBy Initiator
	// Reason is free text recorded when moving to Cancelled.
	Reason string
	// SecurityCode is required when moving to Delivered.
	SecurityCode SecurityCode
}

// Effect is a side-effect command produced by a planned transition. Effects
// before the commit boundary run inside the job's transaction; the others run
// after the commit and never undo it.
type Effect int

const (
	// EffectAssignCourier binds the courier from the options and marks them busy.
	EffectAssignCourier Effect = iota + 1
	// EffectCompleteDelivery counts the delivery and releases the courier.
	EffectCompleteDelivery
	// EffectPayout credits the courier with price × (1 − commission).
	EffectPayout
	// EffectApplyCancellationPolicy charges the client or the courier and releases the courier.
	EffectApplyCancellationPolicy
	// EffectStartMatching hands a matching run to the executor.
	EffectStartMatching
	// EffectNotifyStatusChange tells the notifier about (old, new).
	EffectNotifyStatusChange
	// EffectEmitStatusChanged publishes a StatusChanged event.
	EffectEmitStatusChanged
	// EffectEmitAccepted publishes an Accepted event.
	EffectEmitAccepted
	// EffectEmitDelivered publishes a Delivered event.
	EffectEmitDelivered
)

var effectNames = map[Effect]string{
	EffectAssignCourier:           "assign_courier",
	EffectCompleteDelivery:        "complete_delivery",
	EffectPayout:                  "payout",
	EffectApplyCancellationPolicy: "apply_cancellation_policy",
	EffectStartMatching:           "start_matching",
	EffectNotifyStatusChange:      "notify_status_change",
	EffectEmitStatusChanged:       "emit_status_changed",
	EffectEmitAccepted:            "emit_accepted",
	EffectEmitDelivered:           "emit_delivered",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return "unknown"
}

// IsTransactional reports whether the effect belongs to the transition's
// atomicity boundary.
func (e Effect) IsTransactional() bool {
	switch e {
	case EffectAssignCourier, EffectCompleteDelivery, EffectPayout, EffectApplyCancellationPolicy:
		return true
	default:
		return false
	}
}

// Transition is a validated move together with the ordered effects it triggers.
type Transition struct {
	From    Status
	To      Status
	Effects []Effect
}

// Has reports whether the transition triggers e.
func (t Transition) Has(e Effect) bool {
	return slices.Contains(t.Effects, e)
}

// TransactionalEffects returns the effects to run before commit, in order.
func (t Transition) TransactionalEffects() []Effect {
	out := make([]Effect, 0, len(t.Effects))
	for _, e := range t.Effects {
		if e.IsTransactional() {
			out = append(out, e)
		}
	}
	return out
}

// PostCommitEffects returns the best-effort effects to run after commit, in order.
func (t Transition) PostCommitEffects() []Effect {
	out := make([]Effect, 0, len(t.Effects))
	for _, e := range t.Effects {
		if !e.IsTransactional() {
			out = append(out, e)
		}
	}
	return out
}

// StateMachine decides whether a move is legal and which effects it triggers.
// It holds no state and is safe for concurrent use.
type StateMachine struct{}

// NewStateMachine returns the lifecycle state machine.
func NewStateMachine() StateMachine {
	return StateMachine{}
}

// CanTransition reports whether target is reachable from current.
func (StateMachine) CanTransition(current, target Status) bool {
	return current.CanTransitionTo(target)
}

// Plan validates the move from current to target and returns the transition
// with its effects.
//
// Parameters:
//   - current: the job's state as read under lock
//   - target: the requested state
//   - opts: options required by some targets
//
// Returns:
//   - Transition: next state and effects, in execution order
//   - *IllegalTransitionError: target is not reachable from current
//   - *MissingOptionError: accepting without a courier id, or delivering
//     without a security code
//
// Example:
//
//	tr, err := job.NewStateMachine().Plan(job.Created, job.Accepted, job.TransitionOptions{})
//	// err: cannot move from created to accepted; allowed: [finding_driver, cancelled]
func (m StateMachine) Plan(current, target Status, opts TransitionOptions) (Transition, error) {
	if !m.CanTransition(current, target) {
		return Transition{}, NewIllegalTransitionError(current, target)
	}

	if target == Accepted {
		if opts.CourierID == nil {
			return Transition{}, NewMissingOptionError("courier id", target)
		}
		if err := opts.CourierID.Validate(); err != nil {
			return Transition{}, NewMissingOptionError("courier id", target)
		}
	}
	if target == Delivered && opts.SecurityCode == "" {
		return Transition{}, NewMissingOptionError("security code", target)
	}

	effects := make([]Effect, 0, 4)
	//nolint:exhaustive // other targets only carry the common effects
	switch target {
	case Accepted:
		effects = append(effects, EffectAssignCourier)
	case Delivered:
		effects = append(effects, EffectCompleteDelivery)
	case Paid:
		effects = append(effects, EffectPayout)
	case Cancelled:
		effects = append(effects, EffectApplyCancellationPolicy)
	case FindingDriver:
		effects = append(effects, EffectStartMatching)
	}

	effects = append(effects, EffectNotifyStatusChange, EffectEmitStatusChanged)

	//nolint:exhaustive // only two states have a dedicated event
	switch target {
	case Accepted:
		effects = append(effects, EffectEmitAccepted)
	case Delivered:
		effects = append(effects, EffectEmitDelivered)
	}

	return Transition{From: current, To: target, Effects: effects}, nil
}
