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

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) (*NotificationRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &NotificationRepository{pool: pool}, nil
}

const notificationColumns = `id, recipient_profile_id, notification_type, title, message,
	COALESCE(data, '{}'::jsonb), is_read, read_at, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.RecipientProfileID, &n.Type, &n.Title, &n.Message, &n.Data, &n.IsRead, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "NotificationRepository",
		"method":       "Create",
		"recipient_id": n.RecipientProfileID,
		"type":         n.Type,
	})

	data := n.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient_profile_id, notification_type, title, message, data, is_read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.RecipientProfileID, n.Type, n.Title, n.Message, data, n.IsRead, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create notification", err, nil)
		return mapError(err, "notification", "create notification")
	}
	return nil
}

func (r *NotificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page domain.Page) (*domain.Paginated[domain.Notification], error) {
	qb := newQueryBuilder()
	qb.addCondition("%s = %s", "recipient_profile_id", recipientID)
	if unreadOnly {
		qb.conditions = append(qb.conditions, "NOT is_read")
	}
	where := qb.where()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+where, qb.args...).Scan(&total); err != nil {
		return nil, mapError(err, "notification", "count notifications")
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications %s ORDER BY created_at DESC, id LIMIT %s OFFSET %s`,
		notificationColumns, where, qb.arg(page.Limit), qb.arg(page.Offset))
	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, mapError(err, "notification", "query notifications")
	}
	defer rows.Close()

	items := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during notifications iteration: %w", err)
	}

	return &domain.Paginated[domain.Notification]{
		Items:      items,
		TotalCount: total,
		Page:       page.Number(),
		PerPage:    page.Limit,
	}, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_profile_id = $1 AND NOT is_read`, recipientID,
	).Scan(&count)
	if err != nil {
		return 0, mapError(err, "notification", "count unread notifications")
	}
	return count, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "notification", "find notification")
	}
	return n, nil
}

// MarkRead идемпотентна: повторная отметка не меняет read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, now()) WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "notification", "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("notification")
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = now() WHERE recipient_profile_id = $1 AND NOT is_read`,
		recipientID,
	)
	if err != nil {
		return 0, mapError(err, "notification", "mark all notifications read")
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "notification", "delete notification")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("notification")
	}
	return nil
}
