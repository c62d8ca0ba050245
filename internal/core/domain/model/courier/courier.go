package courier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierIsNotApproved is returned when an unapproved courier tries to work.
	ErrCourierIsNotApproved = errors.New("courier is not approved")
	// ErrCourierIsBusy is returned when a courier already working on a job is assigned another one.
	ErrCourierIsBusy = errors.New("courier is already working on a job")
	// ErrCourierIsOffline is returned when an offline courier is assigned a job.
	ErrCourierIsOffline = errors.New("courier must be online to accept a job")
)

// EligibilityPolicy holds the thresholds a courier must satisfy before a job
// can be offered to them. The search radius is applied separately because it
// depends on the job's pickup point.
type EligibilityPolicy struct {
	MinRating         float64
	LocationFreshness time.Duration
}

// Courier is the aggregate root for a delivery courier.
//
// Business rules:
//   - Courier must have a valid UUID and a non-empty name
//   - New couriers start unapproved, offline and unavailable
//   - Going online requires approval; going offline also makes the courier unavailable
//   - Position updates carry the time they were observed so stale positions can be ignored
//
// Example usage:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Awa Ndiaye", 4.8)
//	if err != nil {
//	    // Handle construction error
//	}
//	c.Approve()
//	_ = c.GoOnline()
//	_ = c.UpdateLocation(position, time.Now())
type Courier struct {
	id       kernel.UUID
	name     string
	approved bool
	online   bool
	// available is false while the courier works on an accepted job
	available bool
	rating    float64

	location  *kernel.Location
	locatedAt time.Time

	totalDeliveries int
	totalEarnings   float64
	balance         float64

	guard guard.ConstructorGuard
}

// Snapshot is the full persisted state of a courier, used to restore the
// aggregate from storage.
type Snapshot struct {
	ID              kernel.UUID
	Name            string
	Approved        bool
	Online          bool
	Available       bool
	Rating          float64
	Location        *kernel.Location
	LocatedAt       time.Time
	TotalDeliveries int
	TotalEarnings   float64
	Balance         float64
}

// NewCourier creates an unapproved, offline courier.
//
// Parameters:
//   - id: unique identifier
//   - name: display name, must not be blank
//   - rating: initial average rating in [MinRating, MaxRating]
//
// Returns:
//   - *Courier: the created courier
//   - error: joined validation errors
func NewCourier(id kernel.UUID, name string, rating float64) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setRating(rating),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier rebuilds a courier from persisted state, re-checking the invariants
// that storage cannot enforce.
func RestoreCourier(s Snapshot) (*Courier, error) {
	c := &Courier{
		approved:        s.Approved,
		online:          s.Online,
		available:       s.Available,
		totalDeliveries: s.TotalDeliveries,
		totalEarnings:   s.TotalEarnings,
		balance:         s.Balance,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(s.ID),
		c.setName(s.Name),
		c.setRating(s.Rating),
	); err != nil {
		return nil, err
	}

	if s.Location != nil {
		if err := s.Location.Validate(); err != nil {
			return nil, err
		}
		loc := *s.Location
		c.location = &loc
		c.locatedAt = s.LocatedAt
	}

	if s.TotalDeliveries < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"total deliveries", fmt.Errorf("%d is negative", s.TotalDeliveries))
	}

	return c, nil
}

// Snapshot returns the courier's state for persistence.
func (c *Courier) Snapshot() Snapshot {
	s := Snapshot{
		ID:              c.id,
		Name:            c.name,
		Approved:        c.approved,
		Online:          c.online,
		Available:       c.available,
		Rating:          c.rating,
		LocatedAt:       c.locatedAt,
		TotalDeliveries: c.totalDeliveries,
		TotalEarnings:   c.totalEarnings,
		Balance:         c.balance,
	}
	if c.location != nil {
		loc := *c.location
		s.Location = &loc
	}
	return s
}

// Validate ensures the courier was created through NewCourier or RestoreCourier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) IsApproved() bool {
	return c.approved
}

func (c *Courier) IsOnline() bool {
	return c.online
}

func (c *Courier) IsAvailable() bool {
	return c.available
}

func (c *Courier) Rating() float64 {
	return c.rating
}

// Location returns the last reported position and false if none was ever reported.
func (c *Courier) Location() (kernel.Location, bool) {
	if c.location == nil {
		return kernel.Location{}, false
	}
	return *c.location, true
}

// LocatedAt returns when the last position was observed. Zero if never.
func (c *Courier) LocatedAt() time.Time {
	return c.locatedAt
}

func (c *Courier) TotalDeliveries() int {
	return c.totalDeliveries
}

func (c *Courier) TotalEarnings() float64 {
	return c.totalEarnings
}

func (c *Courier) Balance() float64 {
	return c.balance
}

// Approve allows the courier to go online and accept jobs.
func (c *Courier) Approve() {
	c.approved = true
}

// GoOnline marks an approved courier as online and available.
func (c *Courier) GoOnline() error {
	if !c.approved {
		return ErrCourierIsNotApproved
	}
	c.online = true
	c.available = true
	return nil
}

// GoOffline marks the courier offline. Offline couriers are never available.
func (c *Courier) GoOffline() {
	c.online = false
	c.available = false
}

// SetAvailable toggles availability. Only online couriers can become available.
func (c *Courier) SetAvailable(available bool) error {
	if available && !c.online {
		return errs.NewValueIsInvalidErrorWithCause("available", errors.New("courier is offline"))
	}
	c.available = available
	return nil
}

// UpdateLocation records the courier's position observed at the given time.
// Positions older than the one already stored are ignored.
func (c *Courier) UpdateLocation(location kernel.Location, observedAt time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if observedAt.IsZero() {
		return errs.NewValueIsRequiredError("observed at")
	}
	if c.location != nil && observedAt.Before(c.locatedAt) {
		return nil
	}

	c.location = &location
	c.locatedAt = observedAt
	return nil
}

// Rate replaces the average rating.
func (c *Courier) Rate(rating float64) error {
	return c.setRating(rating)
}

// IsMatchable reports whether the courier may be offered a job right now:
// approved, online, available, rated at least policy.MinRating and with a
// position no older than policy.LocationFreshness. Couriers that never
// reported a position are not matchable.
func (c *Courier) IsMatchable(policy EligibilityPolicy, now time.Time) bool {
	if !c.approved || !c.online || !c.available {
		return false
	}
	if c.rating < policy.MinRating {
		return false
	}
	if c.location == nil {
		return false
	}
	return now.Sub(c.locatedAt) <= policy.LocationFreshness
}

// DistanceKm returns the haversine distance from the courier's last position
// to target, and false when the courier has no position.
func (c *Courier) DistanceKm(target kernel.Location) (float64, bool) {
	if c.location == nil {
		return 0, false
	}
	d, err := c.location.DistanceKm(target)
	if err != nil {
		return 0, false
	}
	return d, true
}

// AssignJob makes the courier busy with an accepted job.
//
// Returns:
//   - ErrCourierIsNotApproved if the courier is not approved
//   - ErrCourierIsOffline if the courier is not online
//   - ErrCourierIsBusy if the courier is already working on a job
func (c *Courier) AssignJob() error {
	if !c.approved {
		return ErrCourierIsNotApproved
	}
	if !c.online {
		return ErrCourierIsOffline
	}
	if !c.available {
		return ErrCourierIsBusy
	}
	c.available = false
	return nil
}

// ReleaseFromJob makes an online courier available again after a job ends.
func (c *Courier) ReleaseFromJob() {
	c.available = c.online
}

// CompleteDelivery counts a finished delivery and releases the courier.
func (c *Courier) CompleteDelivery() {
	c.totalDeliveries++
	c.ReleaseFromJob()
}

// Credit adds a payout to the balance and to lifetime earnings.
//
// Parameters:
//   - amount: non-negative payout
//
// Example:
//
//	// price 3500 with a 15% commission
//	_ = c.Credit(3500 * (1 - 0.15)) // balance +2975, earnings +2975
func (c *Courier) Credit(amount float64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%v is negative", amount))
	}
	c.balance += amount
	c.totalEarnings += amount
	return nil
}

// Debit removes a penalty from the balance. Lifetime earnings are unchanged and
// the balance may become negative.
func (c *Courier) Debit(amount float64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%v is negative", amount))
	}
	c.balance -= amount
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setRating(rating float64) error {
	if rating < MinRating || rating > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, MinRating, MaxRating)
	}
	c.rating = rating
	return nil
}
