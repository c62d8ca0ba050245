package courierrepo

import (
	"context"
	"math"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCourierRepository implements ports.CourierRepository using GORM.
type GormCourierRepository struct {
	db *gorm.DB
}

// NewGormCourierRepository binds the repository to db, which is a transaction
// when called from a unit of work.
func NewGormCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// Add saves a new courier.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return pgerr.Translate(r.db.WithContext(ctx).Create(&dto).Error, "courier", aggregate.ID().String())
}

// Update overwrites every column of an existing courier.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "courier", aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", aggregate.ID().String())
	}

	return nil
}

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a courier with SELECT ... FOR UPDATE.
func (r *GormCourierRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormCourierRepository) get(db *gorm.DB, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.Translate(err, "courier", id.String())
	}

	return toDomain(dto)
}

// FindMatchable pre-selects couriers that can take a job: approved, online,
// available, rated at least filter.MinRating, with a position reported since
// filter.LocatedSince and inside the bounding box of the search circle.
// With a search center, results come nearest first (equirectangular
// approximation) so a Limit keeps the closest couriers; ties and
// center-less queries are ordered by id.
func (r *GormCourierRepository) FindMatchable(ctx context.Context, filter ports.CourierFilter) ([]*courier.Courier, error) {
	q := r.db.WithContext(ctx).
		Where("approved AND online AND available").
		Where("rating >= ?", filter.MinRating).
		Where("location_lat IS NOT NULL AND location_lng IS NOT NULL")

	if !filter.LocatedSince.IsZero() {
		q = q.Where("located_at >= ?", filter.LocatedSince)
	}

	if filter.Near.Validate() == nil {
		if filter.RadiusKm > 0 {
			minLat, maxLat, minLng, maxLng := filter.Near.BoundingBox(filter.RadiusKm)
			q = q.Where("location_lat BETWEEN ? AND ?", minLat, maxLat).
				Where("location_lng BETWEEN ? AND ?", minLng, maxLng)
		}
		q = q.Clauses(nearestFirst(filter.Near))
	} else {
		q = q.Order("id")
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var dtos []CourierDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// nearestFirst orders rows by squared planar distance to center, scaling
// longitude by cos(lat) so east-west degrees weigh like north-south ones.
func nearestFirst(center kernel.Location) clause.OrderBy {
	lngScale := math.Cos(center.Lat() * math.Pi / 180)
	return clause.OrderBy{
		Expression: clause.Expr{
			SQL: "power(location_lat - ?, 2) + power((location_lng - ?) * ?, 2), id",
			Vars: []any{center.Lat(), center.Lng(), lngScale},
			WithoutParentheses: true,
		},
	}
}

// FindByIDs loads the given couriers in id order, skipping unknown ids.
func (r *GormCourierRepository) FindByIDs(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error) {
	if len(ids) == 0 {
		return []*courier.Courier{}, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).
		Where("id = ANY(?::uuid[])", pq.Array(raw)).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func toDomainAll(dtos []CourierDTO) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}
