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

type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) (*RoomRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &RoomRepository{pool: pool}, nil
}

const roomColumns = `id, property_id, name, room_type, size_sqm, max_occupants, rent_amount, rent_currency,
	amenities, images, status, created_at, updated_at, deleted_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(
		&rm.ID, &rm.PropertyID, &rm.Name, &rm.Type, &rm.SizeSqm, &rm.MaxOccupants, &rm.RentAmount, &rm.RentCurrency,
		&rm.Amenities, &rm.Images, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt, &rm.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	rm.Amenities = nonNil(rm.Amenities)
	rm.Images = nonNil(rm.Images)
	return &rm, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "RoomRepository",
		"method":      "Create",
		"property_id": room.PropertyID,
	})

	query := `INSERT INTO rooms (` + roomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULL)`
	_, err := r.pool.Exec(ctx, query,
		room.ID, room.PropertyID, room.Name, room.Type, room.SizeSqm, room.MaxOccupants, room.RentAmount,
		room.RentCurrency, nonNil(room.Amenities), nonNil(room.Images), room.Status, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create room", err, nil)
		return mapError(err, "room", "create room")
	}
	return nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 AND deleted_at IS NULL`
	rm, err := scanRoom(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "room", "find room")
	}
	return rm, nil
}

func (r *RoomRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		WHERE property_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, mapError(err, "room", "query rooms")
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rooms iteration: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	query := `UPDATE rooms SET name = $2, room_type = $3, size_sqm = $4, max_occupants = $5,
		rent_amount = $6, rent_currency = $7, amenities = $8, images = $9, status = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		room.ID, room.Name, room.Type, room.SizeSqm, room.MaxOccupants, room.RentAmount, room.RentCurrency,
		nonNil(room.Amenities), nonNil(room.Images), room.Status, room.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "room", "update room")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("room")
	}
	return nil
}

func (r *RoomRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err, "room", "delete room")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("room")
	}
	return nil
}
