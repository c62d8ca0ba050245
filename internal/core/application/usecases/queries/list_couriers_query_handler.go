package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListCouriersQueryHandler reads couriers straight from the couriers table.
//
// Example:
//
//	handler := NewListCouriersQueryHandler(db)
//	couriers, err := handler.Handle(ctx, NewListCouriersQuery(false))
type ListCouriersQueryHandler struct {
	db *gorm.DB
}

func NewListCouriersQueryHandler(db *gorm.DB) ListCouriersQueryHandler {
	return ListCouriersQueryHandler{db: db}
}

// Handle returns couriers ordered by name, then id.
func (h ListCouriersQueryHandler) Handle(
	ctx context.Context,
	query ListCouriersQuery,
) ([]ListCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]ListCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			approved,
			online,
			available,
			rating,
			location_lat,
			location_lng,
			located_at,
			total_deliveries,
			total_earnings,
			balance
		FROM couriers
		WHERE online OR NOT ?
		ORDER BY name, id
	`, query.OnlineOnly()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var courier ListCouriersQueryResponse
		var id uuid.UUID
		var lat, lng sql.NullFloat64
		var locatedAt sql.NullTime

		err = rows.Scan(
			&id,
			&courier.Name,
			&courier.Approved,
			&courier.Online,
			&courier.Available,
			&courier.Rating,
			&lat,
			&lng,
			&locatedAt,
			&courier.TotalDeliveries,
			&courier.TotalEarnings,
			&courier.Balance,
		)
		if err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		courier.ID = courierID

		if lat.Valid && lng.Valid {
			location, locErr := kernel.NewLocation(lat.Float64, lng.Float64)
			if locErr != nil {
				return nil, locErr
			}
			courier.Location = &location
		}
		if locatedAt.Valid {
			at := locatedAt.Time.UTC()
			courier.LocatedAt = &at
		}

		couriers = append(couriers, courier)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
