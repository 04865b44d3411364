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

// ProfileRepository - реализация ProfileRepositoryPort для PostgreSQL.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) (*ProfileRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ProfileRepository{pool: pool}, nil
}

const profileColumns = `id, oxy_user_id, profile_type, display_name, bio, contact_email, contact_phone,
	avatar_url, details, is_primary, is_active, created_at, updated_at, deleted_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.OxyUserID, &p.Type, &p.DisplayName, &p.Bio, &p.ContactEmail, &p.ContactPhone,
		&p.AvatarURL, &p.Details, &p.IsPrimary, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "ProfileRepository",
		"method":     "Create",
		"profile_id": profile.ID,
	})

	query := `INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULL)`

	repoLogger.Debug("Executing query to create profile.", nil)
	_, err := r.pool.Exec(ctx, query,
		profile.ID, profile.OxyUserID, profile.Type, profile.DisplayName, profile.Bio, profile.ContactEmail,
		profile.ContactPhone, profile.AvatarURL, profile.Details, profile.IsPrimary, profile.IsActive,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create profile", err, nil)
		return mapError(err, "profile", "create profile")
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "profile", "find profile")
	}
	return p, nil
}

func (r *ProfileRepository) FindByUser(ctx context.Context, oxyUserID string) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE oxy_user_id = $1 AND deleted_at IS NULL
		ORDER BY is_primary DESC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, oxyUserID)
	if err != nil {
		return nil, mapError(err, "profile", "query profiles")
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during profiles iteration: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) FindActiveByUser(ctx context.Context, oxyUserID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE oxy_user_id = $1 AND is_active AND deleted_at IS NULL`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, oxyUserID))
	if err != nil {
		return nil, mapError(err, "profile", "find active profile")
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `UPDATE profiles SET display_name = $2, bio = $3, contact_email = $4, contact_phone = $5,
		avatar_url = $6, details = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		profile.ID, profile.DisplayName, profile.Bio, profile.ContactEmail, profile.ContactPhone,
		profile.AvatarURL, profile.Details, profile.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "profile", "update profile")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("profile")
	}
	return nil
}

// SetActive снимает флаг со всех профилей пользователя и ставит на выбранный
// в одной транзакции, чтобы частичный индекс активности не сработал.
func (r *ProfileRepository) SetActive(ctx context.Context, oxyUserID string, profileID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "ProfileRepository",
		"method":     "SetActive",
		"profile_id": profileID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`UPDATE profiles SET is_active = FALSE, updated_at = $2 WHERE oxy_user_id = $1 AND is_active`,
		oxyUserID, now,
	); err != nil {
		return mapError(err, "profile", "deactivate profiles")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE profiles SET is_active = TRUE, updated_at = $3 WHERE id = $1 AND oxy_user_id = $2 AND deleted_at IS NULL`,
		profileID, oxyUserID, now,
	)
	if err != nil {
		return mapError(err, "profile", "activate profile")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("profile")
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	repoLogger.Debug("Profile activated.", nil)
	return nil
}

func (r *ProfileRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET deleted_at = now(), is_active = FALSE, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return mapError(err, "profile", "delete profile")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("profile")
	}
	return nil
}
