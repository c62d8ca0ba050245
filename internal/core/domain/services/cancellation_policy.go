package services

import "dispatch/internal/core/domain/model/job"

// CancellationCharge is what a cancellation costs each side.
type CancellationCharge struct {
	ClientFee      float64
	CourierPenalty float64
}

// IsZero reports whether nobody is charged.
func (c CancellationCharge) IsZero() bool {
	return c.ClientFee == 0 && c.CourierPenalty == 0
}

// CancellationPolicy decides the charge for cancelling a job that was in
// previous when the initiator cancelled it.
type CancellationPolicy interface {
	Evaluate(previous job.Status, by job.Initiator) CancellationCharge
}

// DefaultCancellationPolicy is free until a courier accepts. After that a
// courier who walks away pays CourierPenalty and a client who cancels pays
// ClientFee. System cancellations are always free.
type DefaultCancellationPolicy struct {
	CourierPenalty float64
	ClientFee      float64
}

func (p DefaultCancellationPolicy) Evaluate(previous job.Status, by job.Initiator) CancellationCharge {
	if previous.IsBeforeAcceptance() {
		return CancellationCharge{}
	}
	switch by {
	case job.InitiatorCourier:
		return CancellationCharge{CourierPenalty: p.CourierPenalty}
	case job.InitiatorClient:
		return CancellationCharge{ClientFee: p.ClientFee}
	default:
		return CancellationCharge{}
	}
}
