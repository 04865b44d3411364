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

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) (*ChatRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ChatRepository{pool: pool}, nil
}

func scanConversation(row pgx.Row) (*domain.ChatConversation, error) {
	var c domain.ChatConversation
	if err := row.Scan(&c.ID, &c.ProfileID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) CreateConversation(ctx context.Context, c *domain.ChatConversation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_conversations (id, profile_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.ProfileID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "conversation", "create conversation")
	}
	return nil
}

func (r *ChatRepository) FindConversation(ctx context.Context, id uuid.UUID) (*domain.ChatConversation, error) {
	c, err := scanConversation(r.pool.QueryRow(ctx,
		`SELECT id, profile_id, title, created_at, updated_at FROM chat_conversations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "conversation", "find conversation")
	}
	return c, nil
}

func (r *ChatRepository) FindConversations(ctx context.Context, profileID uuid.UUID) ([]domain.ChatConversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, profile_id, title, created_at, updated_at FROM chat_conversations
		WHERE profile_id = $1 ORDER BY updated_at DESC`, profileID)
	if err != nil {
		return nil, mapError(err, "conversation", "query conversations")
	}
	defer rows.Close()

	conversations := make([]domain.ChatConversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during conversations iteration: %w", err)
	}
	return conversations, nil
}

// DeleteConversation удаляет диалог, сообщения уходят каскадом.
func (r *ChatRepository) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_conversations WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "conversation", "delete conversation")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("conversation")
	}
	return nil
}

func (r *ChatRepository) AddMessage(ctx context.Context, m *domain.ChatMessage) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":       "ChatRepository",
		"method":          "AddMessage",
		"conversation_id": m.ConversationID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO chat_messages (id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.CreatedAt,
	); err != nil {
		return mapError(err, "conversation", "add chat message")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE chat_conversations SET updated_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt,
	); err != nil {
		return mapError(err, "conversation", "touch conversation")
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ChatRepository) FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.pool.Query(ctx,
			`SELECT id, conversation_id, role, content, created_at FROM (
				SELECT * FROM chat_messages WHERE conversation_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
			) last ORDER BY created_at ASC, id ASC`,
			conversationID, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, conversation_id, role, content, created_at FROM chat_messages
			WHERE conversation_id = $1 ORDER BY created_at ASC, id ASC`,
			conversationID)
	}
	if err != nil {
		return nil, mapError(err, "conversation", "query chat messages")
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during chat messages iteration: %w", err)
	}
	return messages, nil
}
