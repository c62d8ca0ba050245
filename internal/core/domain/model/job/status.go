package job

import (
	"fmt"
	"slices"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a job.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of a new job.
	Created

	// FindingDriver means a matching run has been scheduled and couriers are being offered the job.
	FindingDriver

	// Accepted means a courier took the job.
	Accepted

	// PickingUp means the courier is heading to the pickup point.
	PickingUp

	// OnRoute means the parcel is on its way to the drop-off point.
	OnRoute

	// Delivered means the parcel reached the recipient. Only payment may follow.
	Delivered

	// Paid is terminal: the courier has been paid out.
	Paid

	// Cancelled is terminal.
	Cancelled

	// NoDriverFound means the last matching run found no eligible courier.
	NoDriverFound
)

var statusNames = map[Status]string{
	Unknown:       "unknown",
	Created:       "created",
	FindingDriver: "finding_driver",
	Accepted:      "accepted",
	PickingUp:     "picking_up",
	OnRoute:       "on_route",
	Delivered:     "delivered",
	Paid:          "paid",
	Cancelled:     "cancelled",
	NoDriverFound: "no_driver_found",
}

// transitions is the single source of truth for legal moves.
//
//nolint:exhaustive // Unknown has no transitions
var transitions = map[Status][]Status{
	Created:       {FindingDriver, Cancelled},
	FindingDriver: {Accepted, Cancelled, NoDriverFound},
	Accepted:      {PickingUp, Cancelled},
	PickingUp:     {OnRoute, Cancelled},
	OnRoute:       {Delivered, Cancelled},
	Delivered:     {Paid},
	NoDriverFound: {FindingDriver, Cancelled},
	Paid:          {},
	Cancelled:     {},
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Created, FindingDriver, Accepted, PickingUp, OnRoute, Delivered, Paid, Cancelled, NoDriverFound}
}

// ParseStatus converts the persisted/wire name back to a Status.
//
// Example:
//
//	s, err := job.ParseStatus("finding_driver") // job.FindingDriver, nil
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if s != Unknown && n == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

// Validate checks that s is one of the nine lifecycle states.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name used in storage, events and the API.
// Invalid values render as "unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// AllowedTransitions returns the states reachable from s in one step.
// The slice is a copy and may be modified by the caller.
func (s Status) AllowedTransitions() []Status {
	return slices.Clone(transitions[s])
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

// IsTerminal reports whether s is a valid state without outgoing transitions.
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// RequiresCourier reports whether a job in s must have an assigned courier.
func (s Status) RequiresCourier() bool {
	switch s {
	case Accepted, PickingUp, OnRoute, Delivered, Paid:
		return true
	default:
		return false
	}
}

// IsBeforeAcceptance reports whether no courier has committed to the job yet.
func (s Status) IsBeforeAcceptance() bool {
	switch s {
	case Created, FindingDriver, NoDriverFound:
		return true
	default:
		return false
	}
}
