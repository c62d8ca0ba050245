package jobrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements ports.JobRepository using GORM.
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository binds the repository to db, which is a transaction
// when called from a unit of work.
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Add saves a new job.
func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return pgerr.Translate(r.db.WithContext(ctx).Create(&dto).Error, "job", aggregate.ID().String())
}

// Update writes the job only if the stored version still matches the one it
// was loaded with, then advances the aggregate's version.
//
// Example:
//
//	j, _ := repo.GetForUpdate(ctx, id) // version 4
//	_ = j.Apply(tr, opts, now)
//	err := repo.Update(ctx, j)         // UPDATE ... WHERE id = ? AND version = 4, j.Version() == 5
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "job", aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate.ID())
	}

	aggregate.MarkPersisted(dto.Version)
	return nil
}

func (r *GormJobRepository) missingOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&JobDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("job", id.String())
	}
	return errs.NewConcurrentModificationError("job", id.String())
}

// Get retrieves a job by ID.
func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a job with SELECT ... FOR UPDATE. Concurrent
// transitions of the same job queue on this lock.
func (r *GormJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormJobRepository) get(db *gorm.DB, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.Translate(err, "job", id.String())
	}

	return toDomain(dto)
}

// FindByStatusChangedBefore returns up to limit jobs in status whose
// status_changed_at is before the cutoff, oldest first.
func (r *GormJobRepository) FindByStatusChangedBefore(
	ctx context.Context,
	status job.Status,
	before time.Time,
	limit int,
) ([]*job.Job, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("limit", errors.New("must be positive"))
	}

	var dtos []JobDTO
	if err := r.db.WithContext(ctx).
		Where("status = ? AND status_changed_at < ?", status.String(), before.UTC()).
		Order("status_changed_at, id").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	jobs := make([]*job.Job, 0, len(dtos))
	for _, dto := range dtos {
		j, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

// SecurityCodeInUseSince reports whether any job created at or after since
// was issued code.
func (r *GormJobRepository) SecurityCodeInUseSince(ctx context.Context, code job.SecurityCode, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("security_code = ? AND created_at >= ?", code.String(), since.UTC()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
