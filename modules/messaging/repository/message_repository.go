package repository

import (
	"context"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, application_id, channel, type, recipient, subject, body, status, error, sent_at`

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = uuid.New().String()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, msg.ID, msg.ApplicationID, msg.Channel, msg.Type, msg.Recipient, msg.Subject, msg.Body, msg.Status, msg.Error, msg.SentAt)
	return err
}

func (r *MessageRepository) ListByApplication(ctx context.Context, applicationID string) ([]*model.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages WHERE application_id = $1 ORDER BY sent_at DESC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*model.Message, 0)
	for rows.Next() {
		m := &model.Message{}
		if err := rows.Scan(&m.ID, &m.ApplicationID, &m.Channel, &m.Type, &m.Recipient, &m.Subject, &m.Body, &m.Status, &m.Error, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
