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
	"github.com/mmcloughlin/geohash"
)

type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) (*PropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PropertyRepository{pool: pool}, nil
}

const propertyColumns = `p.id, p.owner_profile_id, p.title, p.description, p.property_type,
	p.street, p.city, p.state, p.postal_code, p.country, p.latitude, p.longitude, COALESCE(p.geohash, ''),
	p.bedrooms, p.bathrooms, p.square_meters, p.floor,
	p.rent_amount, p.rent_currency, p.payment_frequency, p.deposit, p.utilities_included,
	p.amenities, p.images, p.status, p.available_from, p.is_furnished, p.pets_allowed, p.smoking_allowed,
	p.views_count, p.created_at, p.updated_at, p.deleted_at`

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var (
		p        domain.Property
		lat, lon *float64
	)
	err := row.Scan(
		&p.ID, &p.OwnerProfileID, &p.Title, &p.Description, &p.Type,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.PostalCode, &p.Address.Country,
		&lat, &lon, &p.Geohash,
		&p.Bedrooms, &p.Bathrooms, &p.SquareMeters, &p.Floor,
		&p.Rent.Amount, &p.Rent.Currency, &p.Rent.PaymentFrequency, &p.Rent.Deposit, &p.Rent.UtilitiesIncluded,
		&p.Amenities, &p.Images, &p.Status, &p.AvailableFrom, &p.IsFurnished, &p.PetsAllowed, &p.SmokingAllowed,
		&p.ViewsCount, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		p.Location = &domain.Location{Latitude: *lat, Longitude: *lon}
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

// locationArgs возвращает координаты и geohash для записи в БД.
func locationArgs(l *domain.Location) (lat, lon *float64, hash *string) {
	if l == nil {
		return nil, nil, nil
	}
	h := geohash.EncodeWithPrecision(l.Latitude, l.Longitude, domain.GeohashPrecision)
	return &l.Latitude, &l.Longitude, &h
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PropertyRepository",
		"method":      "Create",
		"property_id": property.ID,
	})

	lat, lon, hash := locationArgs(property.Location)
	query := `INSERT INTO properties (
			id, owner_profile_id, title, description, property_type,
			street, city, state, postal_code, country, latitude, longitude, geohash,
			bedrooms, bathrooms, square_meters, floor,
			rent_amount, rent_currency, payment_frequency, deposit, utilities_included,
			amenities, images, status, available_from, is_furnished, pets_allowed, smoking_allowed,
			views_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, 0, $30, $31)`

	repoLogger.Debug("Executing query to create property.", nil)
	_, err := r.pool.Exec(ctx, query,
		property.ID, property.OwnerProfileID, property.Title, property.Description, property.Type,
		property.Address.Street, property.Address.City, property.Address.State, property.Address.PostalCode, property.Address.Country,
		lat, lon, hash,
		property.Bedrooms, property.Bathrooms, property.SquareMeters, property.Floor,
		property.Rent.Amount, property.Rent.Currency, property.Rent.PaymentFrequency, property.Rent.Deposit, property.Rent.UtilitiesIncluded,
		nonNil(property.Amenities), nonNil(property.Images), property.Status, property.AvailableFrom,
		property.IsFurnished, property.PetsAllowed, property.SmokingAllowed,
		property.CreatedAt, property.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create property", err, nil)
		return mapError(err, "property", "create property")
	}
	if hash != nil {
		property.Geohash = *hash
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = $1 AND p.deleted_at IS NULL`
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "property", "find property")
	}
	return p, nil
}

func (r *PropertyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	result := make([]domain.Property, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = ANY($1) AND p.deleted_at IS NULL`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError(err, "property", "query properties by ids")
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]domain.Property, len(ids))
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		byID[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during properties iteration: %w", err)
	}

	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *PropertyRepository) List(ctx context.Context, filter domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PropertyRepository",
		"method":    "List",
	})

	where, orderBy, args := applyPropertyFilters(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM properties p ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		repoLogger.Error("Failed to count properties", err, nil)
		return nil, mapError(err, "property", "count properties")
	}

	items := make([]domain.Property, 0)
	if total > int64(page.Offset) {
		limitPh := len(args) + 1
		query := fmt.Sprintf(`SELECT %s FROM properties p %s %s LIMIT $%d OFFSET $%d`,
			propertyColumns, where, orderBy, limitPh, limitPh+1)
		rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
		if err != nil {
			repoLogger.Error("Failed to query properties", err, nil)
			return nil, mapError(err, "property", "query properties")
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProperty(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan property: %w", err)
			}
			items = append(items, *p)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error during properties iteration: %w", err)
		}
	}

	repoLogger.Debug("Properties listed.", port.Fields{"total": total, "returned": len(items)})
	return &domain.Paginated[domain.Property]{
		Items:      items,
		TotalCount: total,
		Page:       page.Number(),
		PerPage:    page.Limit,
	}, nil
}

func (r *PropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	lat, lon, hash := locationArgs(property.Location)
	query := `UPDATE properties SET
			title = $2, description = $3, property_type = $4,
			street = $5, city = $6, state = $7, postal_code = $8, country = $9,
			latitude = $10, longitude = $11, geohash = $12,
			bedrooms = $13, bathrooms = $14, square_meters = $15, floor = $16,
			rent_amount = $17, rent_currency = $18, payment_frequency = $19, deposit = $20, utilities_included = $21,
			amenities = $22, images = $23, status = $24, available_from = $25,
			is_furnished = $26, pets_allowed = $27, smoking_allowed = $28, updated_at = $29
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		property.ID, property.Title, property.Description, property.Type,
		property.Address.Street, property.Address.City, property.Address.State, property.Address.PostalCode, property.Address.Country,
		lat, lon, hash,
		property.Bedrooms, property.Bathrooms, property.SquareMeters, property.Floor,
		property.Rent.Amount, property.Rent.Currency, property.Rent.PaymentFrequency, property.Rent.Deposit, property.Rent.UtilitiesIncluded,
		nonNil(property.Amenities), nonNil(property.Images), property.Status, property.AvailableFrom,
		property.IsFurnished, property.PetsAllowed, property.SmokingAllowed, property.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "property", "update property")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("property")
	}
	property.Geohash = ""
	if hash != nil {
		property.Geohash = *hash
	}
	return nil
}

func (r *PropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, status,
	)
	if err != nil {
		return mapError(err, "property", "update property status")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("property")
	}
	return nil
}

func (r *PropertyRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE properties SET views_count = views_count + 1 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err, "property", "increment views")
	}
	return nil
}

func (r *PropertyRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err, "property", "delete property")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("property")
	}
	return nil
}
