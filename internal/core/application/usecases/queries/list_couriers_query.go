package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrListCouriersQueryIsNotConstructed = errors.New(
	"ListCouriersQuery must be created via NewListCouriersQuery constructor",
)

// ListCouriersQuery retrieves couriers for dispatch monitoring, optionally
// only the ones currently online.
//
// Example:
//
//	query := NewListCouriersQuery(true)
//	couriers, err := handler.Handle(ctx, query)
//	for _, c := range couriers {
//	    fmt.Printf("%s available=%t\n", c.Name, c.Available)
//	}
type ListCouriersQuery struct {
	onlineOnly bool
	guard      guard.ConstructorGuard
}

func NewListCouriersQuery(onlineOnly bool) ListCouriersQuery {
	return ListCouriersQuery{onlineOnly: onlineOnly, guard: guard.NewConstructorGuard()}
}

func (q ListCouriersQuery) Validate() error {
	return q.guard.Validate(ErrListCouriersQueryIsNotConstructed)
}

func (q ListCouriersQuery) OnlineOnly() bool {
	return q.onlineOnly
}

// ListCouriersQueryResponse is one courier row. Location and LocatedAt are
// nil until the courier reports a position.
type ListCouriersQueryResponse struct {
	ID              kernel.UUID
	Name            string
	Approved        bool
	Online          bool
	Available       bool
	Rating          float64
	Location        *kernel.Location
	LocatedAt       *time.Time
	TotalDeliveries int
	TotalEarnings   float64
	Balance         float64
}
