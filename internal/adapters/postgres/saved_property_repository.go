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

type SavedPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewSavedPropertyRepository(pool *pgxpool.Pool) (*SavedPropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &SavedPropertyRepository{pool: pool}, nil
}

// Save идемпотентна, повторное сохранение обновляет заметку.
func (r *SavedPropertyRepository) Save(ctx context.Context, profileID, propertyID uuid.UUID, notes string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO saved_properties (profile_id, property_id, notes) VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, property_id) DO UPDATE SET notes = EXCLUDED.notes`,
		profileID, propertyID, notes,
	)
	if err != nil {
		return mapError(err, "saved property", "save property")
	}
	return nil
}

func (r *SavedPropertyRepository) Remove(ctx context.Context, profileID, propertyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM saved_properties WHERE profile_id = $1 AND property_id = $2`, profileID, propertyID)
	if err != nil {
		return mapError(err, "saved property", "remove saved property")
	}
	return nil
}

// FindSavedIDs не считает удаленные объекты.
func (r *SavedPropertyRepository) FindSavedIDs(ctx context.Context, profileID uuid.UUID, page domain.Page) ([]uuid.UUID, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_properties s JOIN properties p ON p.id = s.property_id
		WHERE s.profile_id = $1 AND p.deleted_at IS NULL`, profileID,
	).Scan(&total)
	if err != nil {
		return nil, 0, mapError(err, "saved property", "count saved properties")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.property_id FROM saved_properties s JOIN properties p ON p.id = s.property_id
		WHERE s.profile_id = $1 AND p.deleted_at IS NULL
		ORDER BY s.created_at DESC, s.property_id
		LIMIT $2 OFFSET $3`,
		profileID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, mapError(err, "saved property", "query saved properties")
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// RecordView обновляет время просмотра и оставляет только последние MaxRecentlyViewed записей.
func (r *SavedPropertyRepository) RecordView(ctx context.Context, profileID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "SavedPropertyRepository",
		"method":      "RecordView",
		"property_id": propertyID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO recently_viewed (profile_id, property_id, viewed_at) VALUES ($1, $2, now())
		ON CONFLICT (profile_id, property_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at`,
		profileID, propertyID,
	); err != nil {
		return mapError(err, "recently viewed", "record view")
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM recently_viewed WHERE profile_id = $1 AND property_id NOT IN (
			SELECT property_id FROM recently_viewed WHERE profile_id = $1 ORDER BY viewed_at DESC LIMIT $2
		)`,
		profileID, domain.MaxRecentlyViewed,
	); err != nil {
		return mapError(err, "recently viewed", "trim recently viewed")
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SavedPropertyRepository) FindRecentIDs(ctx context.Context, profileID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 || limit > domain.MaxRecentlyViewed {
		limit = domain.MaxRecentlyViewed
	}
	rows, err := r.pool.Query(ctx,
		`SELECT property_id FROM recently_viewed WHERE profile_id = $1 ORDER BY viewed_at DESC LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, mapError(err, "recently viewed", "query recently viewed")
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ids iteration: %w", err)
	}
	return ids, nil
}
