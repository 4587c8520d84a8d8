package repository

import (
	"context"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CandidateReplyRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateReplyRepository(pool *pgxpool.Pool) *CandidateReplyRepository {
	return &CandidateReplyRepository{pool: pool}
}

const candidateReplyColumns = `id, channel, sender, subject, body, candidate_id, application_id, received_at`

func (r *CandidateReplyRepository) Create(ctx context.Context, reply *model.CandidateReply) error {
	reply.ID = uuid.New().String()
	if reply.ReceivedAt.IsZero() {
		reply.ReceivedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO candidate_replies (`+candidateReplyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, reply.ID, reply.Channel, reply.Sender, reply.Subject, reply.Body, reply.CandidateID, reply.ApplicationID, reply.ReceivedAt)
	return err
}

func (r *CandidateReplyRepository) ListByApplication(ctx context.Context, applicationID string) ([]*model.CandidateReply, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+candidateReplyColumns+` FROM candidate_replies WHERE application_id = $1 ORDER BY received_at DESC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := make([]*model.CandidateReply, 0)
	for rows.Next() {
		reply := &model.CandidateReply{}
		if err := rows.Scan(&reply.ID, &reply.Channel, &reply.Sender, &reply.Subject, &reply.Body, &reply.CandidateID, &reply.ApplicationID, &reply.ReceivedAt); err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}
