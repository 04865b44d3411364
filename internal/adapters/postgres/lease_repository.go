package postgres_adapter

import (
	"context"
	"fmt"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaseRepository struct {
	pool *pgxpool.Pool
}

func NewLeaseRepository(pool *pgxpool.Pool) (*LeaseRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &LeaseRepository{pool: pool}, nil
}

const leaseColumns = `id, property_id, room_id, landlord_profile_id, tenant_profile_id, start_date, end_date,
	rent_amount, rent_currency, deposit, payment_due_day, terms, status,
	landlord_signed_at, tenant_signed_at, terminated_at, termination_reason, created_at, updated_at`

func scanLease(row pgx.Row) (*domain.Lease, error) {
	var l domain.Lease
	err := row.Scan(
		&l.ID, &l.PropertyID, &l.RoomID, &l.LandlordProfileID, &l.TenantProfileID, &l.StartDate, &l.EndDate,
		&l.RentAmount, &l.RentCurrency, &l.Deposit, &l.PaymentDueDay, &l.Terms, &l.Status,
		&l.LandlordSignedAt, &l.TenantSignedAt, &l.TerminatedAt, &l.TerminationReason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLeases(rows pgx.Rows) ([]domain.Lease, error) {
	defer rows.Close()

	leases := make([]domain.Lease, 0)
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during leases iteration: %w", err)
	}
	return leases, nil
}

func (r *LeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "LeaseRepository",
		"method":    "Create",
		"lease_id":  lease.ID,
	})

	query := `INSERT INTO leases (` + leaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.pool.Exec(ctx, query,
		lease.ID, lease.PropertyID, lease.RoomID, lease.LandlordProfileID, lease.TenantProfileID,
		lease.StartDate, lease.EndDate, lease.RentAmount, lease.RentCurrency, lease.Deposit, lease.PaymentDueDay,
		lease.Terms, lease.Status, lease.LandlordSignedAt, lease.TenantSignedAt, lease.TerminatedAt,
		lease.TerminationReason, lease.CreatedAt, lease.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create lease", err, nil)
		return mapError(err, "lease", "create lease")
	}
	return nil
}

func (r *LeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	l, err := scanLease(r.pool.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "lease", "find lease")
	}
	return l, nil
}

func (r *LeaseRepository) FindByProfile(ctx context.Context, profileID uuid.UUID, filter domain.LeaseFilter, page domain.Page) (*domain.Paginated[domain.Lease], error) {
	qb := newQueryBuilder()
	switch filter.Role {
	case domain.LeaseRoleTenant:
		qb.addCondition("%s = %s", "tenant_profile_id", profileID)
	case domain.LeaseRoleLandlord:
		qb.addCondition("%s = %s", "landlord_profile_id", profileID)
	default:
		ph := qb.arg(profileID)
		qb.conditions = append(qb.conditions, fmt.Sprintf("(tenant_profile_id = %[1]s OR landlord_profile_id = %[1]s)", ph))
	}
	if filter.Status != nil {
		qb.addCondition("%s = %s", "status", string(*filter.Status))
	}
	where := qb.where()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leases `+where, qb.args...).Scan(&total); err != nil {
		return nil, mapError(err, "lease", "count leases")
	}

	query := fmt.Sprintf(`SELECT %s FROM leases %s ORDER BY created_at DESC, id LIMIT %s OFFSET %s`,
		leaseColumns, where, qb.arg(page.Limit), qb.arg(page.Offset))
	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, mapError(err, "lease", "query leases")
	}
	items, err := collectLeases(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Paginated[domain.Lease]{
		Items:      items,
		TotalCount: total,
		Page:       page.Number(),
		PerPage:    page.Limit,
	}, nil
}

// Update пишет договор, только если строка совпадает с prev. Иначе параллельная
// подпись или расторжение затерли бы друг друга.
func (r *LeaseRepository) Update(ctx context.Context, lease *domain.Lease, prev domain.LeaseVersion) error {
	query := `UPDATE leases SET start_date = $2, end_date = $3, rent_amount = $4, rent_currency = $5, deposit = $6,
		payment_due_day = $7, terms = $8, status = $9, landlord_signed_at = $10, tenant_signed_at = $11,
		terminated_at = $12, termination_reason = $13, updated_at = $14
		WHERE id = $1 AND status = $15 AND updated_at = $16
			AND landlord_signed_at IS NOT DISTINCT FROM $17 AND tenant_signed_at IS NOT DISTINCT FROM $18`

	tag, err := r.pool.Exec(ctx, query,
		lease.ID, lease.StartDate, lease.EndDate, lease.RentAmount, lease.RentCurrency, lease.Deposit,
		lease.PaymentDueDay, lease.Terms, lease.Status, lease.LandlordSignedAt, lease.TenantSignedAt,
		lease.TerminatedAt, lease.TerminationReason, lease.UpdatedAt,
		prev.Status, prev.UpdatedAt, prev.LandlordSignedAt, prev.TenantSignedAt,
	)
	if err != nil {
		return mapError(err, "lease", "update lease")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leases WHERE id = $1)`, lease.ID).Scan(&exists); err != nil {
			return mapError(err, "lease", "check lease")
		}
		if !exists {
			return domain.NewNotFound("lease")
		}
		return domain.NewConflict("lease was changed by another request, reload and retry")
	}
	return nil
}

// HasActiveLease учитывает и подписанные договоры, которые еще не начались.
func (r *LeaseRepository) HasActiveLease(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leases WHERE property_id = $1 AND status IN ('active', 'upcoming'))`,
		propertyID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "lease", "check active leases")
	}
	return exists, nil
}

func (r *LeaseRepository) HasOccupyingLease(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leases WHERE property_id = $1 AND status = 'active')`,
		propertyID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "lease", "check occupying leases")
	}
	return exists, nil
}

func (r *LeaseRepository) FindRefreshable(ctx context.Context) ([]domain.Lease, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE status IN ('upcoming', 'active') ORDER BY start_date`)
	if err != nil {
		return nil, mapError(err, "lease", "query refreshable leases")
	}
	return collectLeases(rows)
}
