package job

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrJobIsNotConstructed is returned when a Job was not created through NewJob or RestoreJob.
var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")

// Urgency is the delivery class chosen by the client. It is carried through
// the lifecycle but not interpreted by matching.
type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyExpress   Urgency = "express"
	UrgencyScheduled Urgency = "scheduled"
)

// ParseUrgency validates an urgency class. The empty string maps to UrgencyStandard.
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(s); u {
	case "":
		return UrgencyStandard, nil
	case UrgencyStandard, UrgencyExpress, UrgencyScheduled:
		return u, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("urgency", fmt.Errorf("%q is not a valid urgency", s))
	}
}

// Cancellation records who cancelled a job, why, and what the cancellation policy charged.
type Cancellation struct {
	By             Initiator
	Reason         string
	ClientFee      float64
	CourierPenalty float64
}

// Job is the aggregate root for one delivery request.
//
// Invariants:
//   - pickup and drop-off are valid locations
//   - price and weight are not negative
//   - status only changes through Apply with a Transition planned by StateMachine
//   - a state's timestamp is set on first entry and never overwritten or cleared
//   - a courier is assigned in every state from accepted to paid; it is kept
//     when a job is cancelled after acceptance so the record shows who held it
//   - delivered is only entered with the security code issued at creation
//
// Example:
//
//	j, err := job.NewJob(kernel.NewUUID(), pickup, dropoff, 3500, 2.5, job.UrgencyExpress, clock.Now())
//	tr, err := job.NewStateMachine().Plan(j.Status(), job.FindingDriver, job.TransitionOptions{})
//	err = j.Apply(tr, job.TransitionOptions{}, clock.Now())
type Job struct {
	id      kernel.UUID
	pickup  kernel.Location
	dropoff kernel.Location
	price   float64
	weight  float64
	urgency Urgency

	status    Status
	courierID *kernel.UUID
	createdAt time.Time
	// statusChangedAt is when the current status was last entered
	statusChangedAt time.Time
	// enteredAt maps each state to the moment it was first entered
	enteredAt     map[Status]time.Time
	matchAttempts int
	cancellation  *Cancellation

	securityCode          SecurityCode
	securityCodeValidated bool

	// version is the persisted version this instance was loaded with
	version int64
	dirty   bool

	guard guard.ConstructorGuard
}

// Snapshot is the persisted state of a job, used by RestoreJob.
type Snapshot struct {
	ID              kernel.UUID
	Pickup          kernel.Location
	Dropoff         kernel.Location
	Price           float64
	Weight          float64
	Urgency         Urgency
	Status          Status
	CourierID       *kernel.UUID
	CreatedAt       time.Time
	StatusChangedAt time.Time
	EnteredAt       map[Status]time.Time
	MatchAttempts   int
	Cancellation    *Cancellation

	// SecurityCode is empty for jobs stored before codes were issued.
	SecurityCode          SecurityCode
	SecurityCodeValidated bool
	Version               int64
}

// NewJob creates a job in the Created state.
//
// Parameters:
//   - id: unique identifier
//   - pickup, dropoff: resolved coordinates
//   - price: already computed price, not negative
//   - weight: estimated weight in kg, not negative
//   - urgency: delivery class
//   - createdAt: creation time from the clock
//
// Returns:
//   - *Job: the created job
//   - error: joined validation errors
func NewJob(
	id kernel.UUID,
	pickup, dropoff kernel.Location,
	price, weight float64,
	urgency Urgency,
	createdAt time.Time,
) (*Job, error) {
	j := &Job{
		status:          Created,
		createdAt:       createdAt,
		statusChangedAt: createdAt,
		enteredAt:       make(map[Status]time.Time),
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		j.setID(id),
		j.setEndpoints(pickup, dropoff),
		j.setPrice(price),
		j.setWeight(weight),
		j.setUrgency(urgency),
	); err != nil {
		return nil, err
	}

	return j, nil
}

// RestoreJob rebuilds a job from storage and re-checks status/courier consistency.
func RestoreJob(s Snapshot) (*Job, error) {
	j := &Job{
		status:          s.Status,
		createdAt:       s.CreatedAt,
		statusChangedAt: s.StatusChangedAt,
		enteredAt:       make(map[Status]time.Time, len(s.EnteredAt)),
		matchAttempts:   s.MatchAttempts,
		version:         s.Version,
		guard:           guard.NewConstructorGuard(),
	}
	maps.Copy(j.enteredAt, s.EnteredAt)
	if j.statusChangedAt.IsZero() {
		j.statusChangedAt = s.CreatedAt
	}

	if err := errors.Join(
		j.setID(s.ID),
		j.setEndpoints(s.Pickup, s.Dropoff),
		j.setPrice(s.Price),
		j.setWeight(s.Weight),
		j.setUrgency(s.Urgency),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if s.CourierID != nil {
		id := *s.CourierID
		j.courierID = &id
	}
	if s.Status.RequiresCourier() && j.courierID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"courier", fmt.Errorf("%s job has no courier", s.Status))
	}
	if s.Cancellation != nil {
		c := *s.Cancellation
		j.cancellation = &c
	}
	if s.SecurityCode != "" {
		code, err := ParseSecurityCode(string(s.SecurityCode))
		if err != nil {
			return nil, err
		}
		j.securityCode = code
	}
	j.securityCodeValidated = s.SecurityCodeValidated

	return j, nil
}

// Snapshot returns the job's state for persistence.
func (j *Job) Snapshot() Snapshot {
	s := Snapshot{
		ID:              j.id,
		Pickup:          j.pickup,
		Dropoff:         j.dropoff,
		Price:           j.price,
		Weight:          j.weight,
		Urgency:         j.urgency,
		Status:          j.status,
		CreatedAt:       j.createdAt,
		StatusChangedAt: j.statusChangedAt,
		EnteredAt:       maps.Clone(j.enteredAt),
		MatchAttempts:   j.matchAttempts,
		Cancellation:    j.Cancellation(),

		SecurityCode:          j.securityCode,
		SecurityCodeValidated: j.securityCodeValidated,
		Version:               j.version,
	}
	if j.courierID != nil {
		id := *j.courierID
		s.CourierID = &id
	}
	return s
}

// Validate ensures the job was created through NewJob or RestoreJob.
func (j *Job) Validate() error {
	if j == nil {
		return ErrJobIsNotConstructed
	}
	return j.guard.Validate(ErrJobIsNotConstructed)
}

func (j *Job) ID() kernel.UUID {
	return j.id
}

func (j *Job) Pickup() kernel.Location {
	return j.pickup
}

func (j *Job) Dropoff() kernel.Location {
	return j.dropoff
}

func (j *Job) Price() float64 {
	return j.price
}

func (j *Job) Weight() float64 {
	return j.weight
}

func (j *Job) Urgency() Urgency {
	return j.urgency
}

func (j *Job) Status() Status {
	return j.status
}

// CourierID returns the assigned courier, or nil before acceptance.
func (j *Job) CourierID() *kernel.UUID {
	return j.courierID
}

func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// StatusChangedAt returns when the current status was last entered. Unlike
// EnteredAt it moves forward when a state is re-entered.
func (j *Job) StatusChangedAt() time.Time {
	return j.statusChangedAt
}

// EnteredAt returns when the job first entered s.
func (j *Job) EnteredAt(s Status) (time.Time, bool) {
	at, ok := j.enteredAt[s]
	return at, ok
}

// Timeline returns a copy of all first-entry timestamps.
func (j *Job) Timeline() map[Status]time.Time {
	return maps.Clone(j.enteredAt)
}

// MatchAttempts counts how many times the job entered FindingDriver.
func (j *Job) MatchAttempts() int {
	return j.matchAttempts
}

// Cancellation returns the cancellation record, or nil if the job was not cancelled.
func (j *Job) Cancellation() *Cancellation {
	if j.cancellation == nil {
		return nil
	}
	c := *j.cancellation
	return &c
}

// SecurityCode returns the code issued at creation, or "" if none was.
func (j *Job) SecurityCode() SecurityCode {
	return j.securityCode
}

// SecurityCodeValidated reports whether the courier presented the code at delivery.
func (j *Job) SecurityCodeValidated() bool {
	return j.securityCodeValidated
}

// IssueSecurityCode attaches the delivery code. Only a created job without a
// code can be given one.
func (j *Job) IssueSecurityCode(code SecurityCode) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if _, err := ParseSecurityCode(string(code)); err != nil {
		return err
	}
	if j.securityCode != "" {
		return ErrSecurityCodeAlreadyIssued
	}
	if j.status != Created {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s job cannot be given a security code", j.status))
	}
	j.securityCode = code
	return nil
}

// Version returns the storage version the job was loaded with.
func (j *Job) Version() int64 {
	return j.version
}

// IsDirty reports whether Apply changed the job since it was loaded or persisted.
func (j *Job) IsDirty() bool {
	return j.dirty
}

// MarkPersisted records that the repository stored the pending change as newVersion.
func (j *Job) MarkPersisted(newVersion int64) {
	j.version = newVersion
	j.dirty = false
}

// Payout returns what the courier earns for this job after commission.
//
// Example:
//
//	j.Payout(0.15) // 2975 for a price of 3500
func (j *Job) Payout(commissionRate float64) float64 {
	return j.price * (1 - commissionRate)
}

// Apply moves the job along a planned transition.
//
// Business rules:
//   - tr.From must equal the current status, so a stale plan is rejected
//   - Accepted binds opts.CourierID
//   - Delivered needs opts.SecurityCode to match the issued code
//   - Cancelled records the initiator (system when unset) and reason
//   - FindingDriver increments the match attempt counter
//   - the target's timestamp is set only if it was never set before
//
// Returns:
//   - *IllegalTransitionError if the plan does not start from the current status
//   - *MissingOptionError if Accepted is applied without a courier or
//     Delivered without a security code
//   - ErrSecurityCodeMismatch if the code is wrong or none was issued
func (j *Job) Apply(tr Transition, opts TransitionOptions, at time.Time) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if tr.From != j.status || !tr.From.CanTransitionTo(tr.To) {
		return NewIllegalTransitionError(j.status, tr.To)
	}

	//nolint:exhaustive // remaining targets only change status and timestamp
	switch tr.To {
	case Accepted:
		if opts.CourierID == nil || opts.CourierID.Validate() != nil {
			return NewMissingOptionError("courier id", tr.To)
		}
		id := *opts.CourierID
		j.courierID = &id
	case Delivered:
		if opts.SecurityCode == "" {
			return NewMissingOptionError("security code", tr.To)
		}
		if !j.securityCode.Matches(opts.SecurityCode) {
			return ErrSecurityCodeMismatch
		}
		j.securityCodeValidated = true
	case Cancelled:
		by := opts.CancelledBy
		if by == "" {
			by = InitiatorSystem
		}
		j.cancellation = &Cancellation{By: by, Reason: opts.Reason}
	case FindingDriver:
		j.matchAttempts++
	}

	if _, ok := j.enteredAt[tr.To]; !ok {
		j.enteredAt[tr.To] = at
	}
	j.status = tr.To
	j.statusChangedAt = at
	j.dirty = true

	return nil
}

// ChargeCancellation stores what the cancellation policy charged. It is only
// valid on a cancelled job.
func (j *Job) ChargeCancellation(clientFee, courierPenalty float64) error {
	if j.status != Cancelled || j.cancellation == nil {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s job cannot be charged", j.status))
	}
	if clientFee < 0 || courierPenalty < 0 {
		return errs.NewValueIsInvalidErrorWithCause("charge", errors.New("charges must not be negative"))
	}
	j.cancellation.ClientFee = clientFee
	j.cancellation.CourierPenalty = courierPenalty
	return nil
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	j.id = id
	return nil
}

func (j *Job) setEndpoints(pickup, dropoff kernel.Location) error {
	if err := errors.Join(pickup.Validate(), dropoff.Validate()); err != nil {
		return err
	}
	j.pickup = pickup
	j.dropoff = dropoff
	return nil
}

func (j *Job) setPrice(price float64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%v is negative", price))
	}
	j.price = price
	return nil
}

func (j *Job) setWeight(weight float64) error {
	if weight < 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is negative", weight))
	}
	j.weight = weight
	return nil
}

func (j *Job) setUrgency(urgency Urgency) error {
	u, err := ParseUrgency(string(urgency))
	if err != nil {
		return err
	}
	j.urgency = u
	return nil
}
