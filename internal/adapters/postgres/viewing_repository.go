package postgres_adapter

import (
	"context"
	"fmt"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ViewingRepository struct {
	pool *pgxpool.Pool
}

func NewViewingRepository(pool *pgxpool.Pool) (*ViewingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ViewingRepository{pool: pool}, nil
}

const viewingColumns = `id, property_id, requester_profile_id, owner_profile_id, scheduled_at, message, status,
	decided_at, decision_note, cancelled_by, created_at, updated_at`

// Заметка к заявкам, отклоненным из-за одобрения другой заявки на тот же слот.
const slotTakenNote = "The requested time slot is no longer available"

func scanViewing(row pgx.Row) (*domain.ViewingRequest, error) {
	var v domain.ViewingRequest
	err := row.Scan(
		&v.ID, &v.PropertyID, &v.RequesterProfileID, &v.OwnerProfileID, &v.ScheduledAt, &v.Message, &v.Status,
		&v.DecidedAt, &v.DecisionNote, &v.CancelledBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectViewings(rows pgx.Rows) ([]domain.ViewingRequest, error) {
	defer rows.Close()

	viewings := make([]domain.ViewingRequest, 0)
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan viewing request: %w", err)
		}
		viewings = append(viewings, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during viewing requests iteration: %w", err)
	}
	return viewings, nil
}

func (r *ViewingRepository) Create(ctx context.Context, viewing *domain.ViewingRequest) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "ViewingRepository",
		"method":      "Create",
		"property_id": viewing.PropertyID,
	})

	query := `INSERT INTO viewing_requests (` + viewingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query,
		viewing.ID, viewing.PropertyID, viewing.RequesterProfileID, viewing.OwnerProfileID, viewing.ScheduledAt,
		viewing.Message, viewing.Status, viewing.DecidedAt, viewing.DecisionNote, viewing.CancelledBy,
		viewing.CreatedAt, viewing.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create viewing request", err, nil)
		return mapError(err, "viewing request", "create viewing request")
	}
	return nil
}

func (r *ViewingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ViewingRequest, error) {
	v, err := scanViewing(r.pool.QueryRow(ctx, `SELECT `+viewingColumns+` FROM viewing_requests WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "viewing request", "find viewing request")
	}
	return v, nil
}

func (r *ViewingRepository) HasPending(ctx context.Context, propertyID, requesterID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM viewing_requests
			WHERE property_id = $1 AND requester_profile_id = $2 AND status = 'pending')`,
		propertyID, requesterID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "viewing request", "check pending viewing")
	}
	return exists, nil
}

func (r *ViewingRepository) IsSlotTaken(ctx context.Context, propertyID uuid.UUID, scheduledAt time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM viewing_requests
			WHERE property_id = $1 AND scheduled_at = $2 AND status = 'approved')`,
		propertyID, scheduledAt,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "viewing request", "check viewing slot")
	}
	return exists, nil
}

func (r *ViewingRepository) FindByRequester(ctx context.Context, profileID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	return r.list(ctx, "requester_profile_id", profileID, filter, page)
}

func (r *ViewingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	return r.list(ctx, "property_id", propertyID, filter, page)
}

func (r *ViewingRepository) list(ctx context.Context, column string, id uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	qb := newQueryBuilder()
	qb.addCondition("%s = %s", column, id)
	if filter.Status != nil {
		qb.addCondition("%s = %s", "status", string(*filter.Status))
	}
	where := qb.where()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM viewing_requests `+where, qb.args...).Scan(&total); err != nil {
		return nil, mapError(err, "viewing request", "count viewing requests")
	}

	query := fmt.Sprintf(`SELECT %s FROM viewing_requests %s ORDER BY scheduled_at DESC, id LIMIT %s OFFSET %s`,
		viewingColumns, where, qb.arg(page.Limit), qb.arg(page.Offset))
	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, mapError(err, "viewing request", "query viewing requests")
	}
	items, err := collectViewings(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Paginated[domain.ViewingRequest]{
		Items:      items,
		TotalCount: total,
		Page:       page.Number(),
		PerPage:    page.Limit,
	}, nil
}

// Approve блокирует строку объекта, чтобы одобрения одного слота шли последовательно.
// Частичный уникальный индекс по одобренным слотам страхует от гонок вне этой транзакции.
func (r *ViewingRepository) Approve(ctx context.Context, viewing *domain.ViewingRequest) ([]domain.ViewingRequest, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "ViewingRepository",
		"method":     "Approve",
		"viewing_id": viewing.ID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM properties WHERE id = $1 FOR UPDATE`, viewing.PropertyID).Scan(&locked); err != nil {
		return nil, mapError(err, "property", "lock property")
	}

	var taken bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM viewing_requests
			WHERE property_id = $1 AND scheduled_at = $2 AND status = 'approved' AND id <> $3)`,
		viewing.PropertyID, viewing.ScheduledAt, viewing.ID,
	).Scan(&taken); err != nil {
		return nil, mapError(err, "viewing request", "check viewing slot")
	}
	if taken {
		return nil, domain.NewTimeConflict("this time slot is already booked")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE viewing_requests SET status = 'approved', decided_at = $2, decision_note = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending'`,
		viewing.ID, viewing.DecidedAt, viewing.DecisionNote, viewing.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "viewing request", "approve viewing request")
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NewConflict("viewing request is no longer pending")
	}

	rows, err := tx.Query(ctx,
		`UPDATE viewing_requests SET status = 'declined', decided_at = $4, decision_note = $5, updated_at = $4
		WHERE property_id = $1 AND scheduled_at = $2 AND status = 'pending' AND id <> $3
		RETURNING `+viewingColumns,
		viewing.PropertyID, viewing.ScheduledAt, viewing.ID, viewing.UpdatedAt, slotTakenNote,
	)
	if err != nil {
		return nil, mapError(err, "viewing request", "decline overlapping requests")
	}
	declined, err := collectViewings(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return nil, mapError(err, "viewing request", "commit approval")
	}
	repoLogger.Info("Viewing request approved.", port.Fields{"auto_declined": len(declined)})
	return declined, nil
}

func (r *ViewingRepository) UpdateStatus(ctx context.Context, viewing *domain.ViewingRequest, from domain.ViewingStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE viewing_requests SET status = $3, decided_at = $4, decision_note = $5, cancelled_by = $6, updated_at = $7
		WHERE id = $1 AND status = $2`,
		viewing.ID, from, viewing.Status, viewing.DecidedAt, viewing.DecisionNote, viewing.CancelledBy, viewing.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "viewing request", "update viewing status")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConflict(fmt.Sprintf("viewing request is no longer %s", from))
	}
	return nil
}

func (r *ViewingRepository) CancelStale(ctx context.Context, now time.Time) ([]domain.ViewingRequest, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE viewing_requests SET status = 'cancelled', updated_at = $1
		WHERE status = 'pending' AND scheduled_at < $1
		RETURNING `+viewingColumns,
		now,
	)
	if err != nil {
		return nil, mapError(err, "viewing request", "cancel stale viewing requests")
	}
	return collectViewings(rows)
}
