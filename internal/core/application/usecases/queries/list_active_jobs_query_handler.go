package queries

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListActiveJobsQueryHandler reads job summaries straight from the jobs table.
type ListActiveJobsQueryHandler struct {
	db *gorm.DB
}

func NewListActiveJobsQueryHandler(db *gorm.DB) ListActiveJobsQueryHandler {
	return ListActiveJobsQueryHandler{db: db}
}

// Handle returns active jobs ordered by creation time, then id.
func (h ListActiveJobsQueryHandler) Handle(
	ctx context.Context,
	query ListActiveJobsQuery,
) ([]ListActiveJobsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	terminal := make([]string, 0, 2)
	for _, s := range job.Statuses() {
		if s.IsTerminal() {
			terminal = append(terminal, s.String())
		}
	}

	q := h.db.WithContext(ctx).
		Table("jobs").
		Select("id, status, courier_id, price, urgency, match_attempts, created_at, status_changed_at").
		Where("status NOT IN ?", terminal)
	if query.Status() != job.Unknown {
		q = q.Where("status = ?", query.Status().String())
	}

	rows, err := q.Order("created_at, id").Limit(query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]ListActiveJobsQueryResponse, 0)
	for rows.Next() {
		var (
			summary   ListActiveJobsQueryResponse
			id        uuid.UUID
			courierID uuid.NullUUID
			status    string
			urgency   string
		)

		err = rows.Scan(
			&id,
			&status,
			&courierID,
			&summary.Price,
			&urgency,
			&summary.MatchAttempts,
			&summary.CreatedAt,
			&summary.StatusChangedAt,
		)
		if err != nil {
			return nil, err
		}

		if summary.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if summary.Status, err = job.ParseStatus(status); err != nil {
			return nil, err
		}
		if courierID.Valid {
			cid, idErr := kernel.UUIDFromBytes(courierID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			summary.CourierID = &cid
		}
		summary.Urgency = job.Urgency(urgency)
		summary.CreatedAt = summary.CreatedAt.UTC()
		summary.StatusChangedAt = summary.StatusChangedAt.UTC()

		jobs = append(jobs, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
