// Package courierrepo persists courier aggregates with gorm.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO is the couriers table row.
type CourierDTO struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name            string      `gorm:"type:varchar(255);not null"`
	Approved        bool        `gorm:"not null;index:idx_couriers_matchable,priority:1"`
	Online          bool        `gorm:"not null;index:idx_couriers_matchable,priority:2"`
	Available       bool        `gorm:"not null;index:idx_couriers_matchable,priority:3"`
	Rating          float64     `gorm:"type:numeric(3,2);not null"`
	Location        LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	LocatedAt       *time.Time  `gorm:"type:timestamptz"`
	TotalDeliveries int         `gorm:"not null"`
	TotalEarnings   float64     `gorm:"type:numeric(14,2);not null"`
	Balance         float64     `gorm:"type:numeric(14,2);not null"`
}

func (CourierDTO) TableName() string {
	return "couriers"
}

// LocationDTO holds the last reported position; both columns are NULL until
// the courier sends one.
type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lng *float64 `gorm:"type:double precision"`
}

func fromDomain(c *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:              c.ID().Bytes(),
		Name:            c.Name(),
		Approved:        c.IsApproved(),
		Online:          c.IsOnline(),
		Available:       c.IsAvailable(),
		Rating:          c.Rating(),
		TotalDeliveries: c.TotalDeliveries(),
		TotalEarnings:   c.TotalEarnings(),
		Balance:         c.Balance(),
	}

	if loc, ok := c.Location(); ok {
		lat, lng := loc.Lat(), loc.Lng()
		locatedAt := c.LocatedAt().UTC()
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng}
		dto.LocatedAt = &locatedAt
	}

	return dto
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	snapshot := courier.Snapshot{
		ID:              id,
		Name:            dto.Name,
		Approved:        dto.Approved,
		Online:          dto.Online,
		Available:       dto.Available,
		Rating:          dto.Rating,
		TotalDeliveries: dto.TotalDeliveries,
		TotalEarnings:   dto.TotalEarnings,
		Balance:         dto.Balance,
	}

	if dto.Location.Lat != nil && dto.Location.Lng != nil {
		loc, locErr := kernel.NewLocation(*dto.Location.Lat, *dto.Location.Lng)
		if locErr != nil {
			return nil, locErr
		}
		snapshot.Location = &loc
		if dto.LocatedAt != nil {
			snapshot.LocatedAt = dto.LocatedAt.UTC()
		}
	}

	return courier.RestoreCourier(snapshot)
}
