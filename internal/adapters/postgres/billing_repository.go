package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BillingRepository struct {
	pool *pgxpool.Pool
}

func NewBillingRepository(pool *pgxpool.Pool) (*BillingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &BillingRepository{pool: pool}, nil
}

const paymentColumns = `id, profile_id, provider_session_id, product, amount, currency, status, created_at, paid_at`

const entitlementsColumns = `profile_id, plus_active, plus_until, file_credits, founder_supporter, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.ProfileID, &p.ProviderSessionID, &p.Product, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanEntitlements(row pgx.Row) (*domain.Entitlements, error) {
	var e domain.Entitlements
	err := row.Scan(&e.ProfileID, &e.PlusActive, &e.PlusUntil, &e.FileCredits, &e.FounderSupporter, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BillingRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		payment.ID, payment.ProfileID, payment.ProviderSessionID, payment.Product, payment.Amount,
		payment.Currency, payment.Status, payment.CreatedAt, payment.PaidAt,
	)
	if err != nil {
		return mapError(err, "payment", "create payment")
	}
	return nil
}

func (r *BillingRepository) FindPaymentBySession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider_session_id = $1`, sessionID))
	if err != nil {
		return nil, mapError(err, "payment", "find payment")
	}
	return p, nil
}

// ConfirmPayment блокирует строку платежа, поэтому повторный вебхук
// и ручная проверка сессии не выдадут права дважды.
func (r *BillingRepository) ConfirmPayment(ctx context.Context, sessionID string, paidAt time.Time) (*domain.Payment, bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "BillingRepository",
		"method":     "ConfirmPayment",
		"session_id": sessionID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	payment, err := scanPayment(tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider_session_id = $1 FOR UPDATE`, sessionID))
	if err != nil {
		return nil, false, mapError(err, "payment", "lock payment")
	}
	if payment.Status == domain.PaymentPaid {
		repoLogger.Debug("Payment already confirmed.", nil)
		return payment, false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE payments SET status = 'paid', paid_at = $2 WHERE id = $1`, payment.ID, paidAt,
	); err != nil {
		return nil, false, mapError(err, "payment", "mark payment paid")
	}
	payment.Status = domain.PaymentPaid
	payment.PaidAt = &paidAt

	if _, err := tx.Exec(ctx,
		`INSERT INTO entitlements (profile_id) VALUES ($1) ON CONFLICT (profile_id) DO NOTHING`, payment.ProfileID,
	); err != nil {
		return nil, false, mapError(err, "entitlements", "init entitlements")
	}
	ent, err := scanEntitlements(tx.QueryRow(ctx,
		`SELECT `+entitlementsColumns+` FROM entitlements WHERE profile_id = $1 FOR UPDATE`, payment.ProfileID))
	if err != nil {
		return nil, false, mapError(err, "entitlements", "lock entitlements")
	}

	ent.Grant(payment.Product, paidAt)
	if _, err := tx.Exec(ctx,
		`UPDATE entitlements SET plus_active = $2, plus_until = $3, file_credits = $4, founder_supporter = $5, updated_at = $6
		WHERE profile_id = $1`,
		ent.ProfileID, ent.PlusActive, ent.PlusUntil, ent.FileCredits, ent.FounderSupporter, ent.UpdatedAt,
	); err != nil {
		return nil, false, mapError(err, "entitlements", "update entitlements")
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Info("Payment confirmed and entitlements granted.", port.Fields{
		"profile_id": payment.ProfileID,
		"product":    payment.Product,
	})
	return payment, true, nil
}

func (r *BillingRepository) MarkPaymentExpired(ctx context.Context, sessionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = 'expired' WHERE provider_session_id = $1 AND status = 'pending'`, sessionID)
	if err != nil {
		return mapError(err, "payment", "expire payment")
	}
	if tag.RowsAffected() == 0 {
		// либо платежа нет, либо он уже в конечном статусе
		if _, err := r.FindPaymentBySession(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *BillingRepository) FindEntitlements(ctx context.Context, profileID uuid.UUID) (*domain.Entitlements, error) {
	ent, err := scanEntitlements(r.pool.QueryRow(ctx,
		`SELECT `+entitlementsColumns+` FROM entitlements WHERE profile_id = $1`, profileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.Entitlements{ProfileID: profileID}, nil
	}
	if err != nil {
		return nil, mapError(err, "entitlements", "find entitlements")
	}
	return ent, nil
}
