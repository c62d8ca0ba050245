// Package jobrepo persists job aggregates with gorm, one column per
// timestamped lifecycle state.
package jobrepo

import (
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO is the jobs table row.
type JobDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status    string     `gorm:"type:varchar(32);not null;index:idx_jobs_status_created,priority:1;index:idx_jobs_courier_status,priority:2"`
	Version   int64      `gorm:"not null"`
	CourierID *uuid.UUID `gorm:"type:uuid;index:idx_jobs_courier_status,priority:1"`

	Pickup  PointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff PointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	Price   float64  `gorm:"type:numeric(14,2);not null"`
	Weight  float64  `gorm:"type:numeric(10,3);not null"`
	Urgency string   `gorm:"type:varchar(16);not null"`

	MatchAttempts      int      `gorm:"not null"`
	CancelledBy        *string  `gorm:"type:varchar(16)"`
	CancellationReason *string  `gorm:"type:text"`
	CancellationFee    *float64 `gorm:"type:numeric(14,2)"`
	CourierPenalty     *float64 `gorm:"type:numeric(14,2)"`

	SecurityCode          *string `gorm:"type:char(4);index:idx_jobs_security_code_created,priority:1"`
	SecurityCodeValidated bool    `gorm:"not null;default:false"`

	CreatedAt         time.Time  `gorm:"type:timestamptz;not null;index:idx_jobs_status_created,priority:2;index:idx_jobs_security_code_created,priority:2"`
	StatusChangedAt   time.Time  `gorm:"type:timestamptz;not null"`
	MatchingStartedAt *time.Time `gorm:"type:timestamptz"`
	AcceptedAt        *time.Time `gorm:"type:timestamptz"`
	PickingUpAt       *time.Time `gorm:"type:timestamptz"`
	OnRouteAt         *time.Time `gorm:"type:timestamptz"`
	DeliveredAt       *time.Time `gorm:"type:timestamptz"`
	PaidAt            *time.Time `gorm:"type:timestamptz"`
	CancelledAt       *time.Time `gorm:"type:timestamptz"`
	NoDriverFoundAt   *time.Time `gorm:"type:timestamptz"`
}

func (JobDTO) TableName() string {
	return "jobs"
}

// PointDTO is an embedded coordinate pair.
type PointDTO struct {
	Lat float64 `gorm:"type:double precision;not null"`
	Lng float64 `gorm:"type:double precision;not null"`
}

// timestampColumn returns the column holding the first entry into s, or nil
// for states that are not timestamped.
func (d *JobDTO) timestampColumn(s job.Status) **time.Time {
	//nolint:exhaustive // created uses created_at
	switch s {
	case job.FindingDriver:
		return &d.MatchingStartedAt
	case job.Accepted:
		return &d.AcceptedAt
	case job.PickingUp:
		return &d.PickingUpAt
	case job.OnRoute:
		return &d.OnRouteAt
	case job.Delivered:
		return &d.DeliveredAt
	case job.Paid:
		return &d.PaidAt
	case job.Cancelled:
		return &d.CancelledAt
	case job.NoDriverFound:
		return &d.NoDriverFoundAt
	}
	return nil
}

func fromDomain(j *job.Job) JobDTO {
	dto := JobDTO{
		ID:              j.ID().Bytes(),
		Status:          j.Status().String(),
		Version:         j.Version(),
		Pickup:          PointDTO{Lat: j.Pickup().Lat(), Lng: j.Pickup().Lng()},
		Dropoff:         PointDTO{Lat: j.Dropoff().Lat(), Lng: j.Dropoff().Lng()},
		Price:           j.Price(),
		Weight:          j.Weight(),
		Urgency:         string(j.Urgency()),
		MatchAttempts:   j.MatchAttempts(),
		CreatedAt:       j.CreatedAt().UTC(),
		StatusChangedAt: j.StatusChangedAt().UTC(),

		SecurityCodeValidated: j.SecurityCodeValidated(),
	}

	if code := j.SecurityCode(); code != "" {
		raw := code.String()
		dto.SecurityCode = &raw
	}

	if id := j.CourierID(); id != nil {
		raw := id.Bytes()
		dto.CourierID = &raw
	}

	if c := j.Cancellation(); c != nil {
		by := string(c.By)
		dto.CancelledBy = &by
		dto.CancellationReason = &c.Reason
		dto.CancellationFee = &c.ClientFee
		dto.CourierPenalty = &c.CourierPenalty
	}

	for s, at := range j.Timeline() {
		if col := dto.timestampColumn(s); col != nil {
			utc := at.UTC()
			*col = &utc
		}
	}

	return dto
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := job.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewLocation(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewLocation(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	snapshot := job.Snapshot{
		ID:              id,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Price:           dto.Price,
		Weight:          dto.Weight,
		Urgency:         job.Urgency(dto.Urgency),
		Status:          status,
		CreatedAt:       dto.CreatedAt.UTC(),
		StatusChangedAt: dto.StatusChangedAt.UTC(),
		EnteredAt:       make(map[job.Status]time.Time),
		MatchAttempts:   dto.MatchAttempts,
		Version:         dto.Version,

		SecurityCode:          job.SecurityCode(deref(dto.SecurityCode)),
		SecurityCodeValidated: dto.SecurityCodeValidated,
	}

	if dto.CourierID != nil {
		courierID, idErr := kernel.UUIDFromBytes(dto.CourierID[:])
		if idErr != nil {
			return nil, idErr
		}
		snapshot.CourierID = &courierID
	}

	if dto.CancelledBy != nil {
		by, byErr := job.ParseInitiator(*dto.CancelledBy)
		if byErr != nil {
			return nil, byErr
		}
		snapshot.Cancellation = &job.Cancellation{
			By:             by,
			Reason:         deref(dto.CancellationReason),
			ClientFee:      deref(dto.CancellationFee),
			CourierPenalty: deref(dto.CourierPenalty),
		}
	}

	for _, s := range job.Statuses() {
		if col := dto.timestampColumn(s); col != nil && *col != nil {
			snapshot.EnteredAt[s] = (*col).UTC()
		}
	}

	return job.RestoreJob(snapshot)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
