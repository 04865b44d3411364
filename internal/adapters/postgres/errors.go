package postgres_adapter

import (
	"errors"
	"fmt"

	"homiio/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Имена индексов, конфликт по которым означает не просто "уже существует".
const (
	constraintApprovedSlot   = "viewing_requests_approved_slot_uniq"
	constraintPendingViewing = "viewing_requests_pending_uniq"
)

// mapError переводит ошибки pgx в ошибки приложения.
// Все, что не распознано, оборачивается с контекстом op.
func mapError(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintApprovedSlot:
				return domain.NewTimeConflict("this time slot is already booked")
			case constraintPendingViewing:
				return domain.NewConflict("you already have a pending viewing request for this property")
			}
			return domain.NewConflict(resource + " already exists")
		case pgForeignKeyViolation:
			return domain.NewValidation("referenced resource does not exist", map[string]string{"reference": pgErr.ConstraintName})
		case pgCheckViolation:
			return domain.NewValidation("value violates "+resource+" constraints", map[string]string{"constraint": pgErr.ConstraintName})
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
