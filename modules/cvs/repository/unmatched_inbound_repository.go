package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UnmatchedInboundRepository struct {
	pool *pgxpool.Pool
}

func NewUnmatchedInboundRepository(pool *pgxpool.Pool) *UnmatchedInboundRepository {
	return &UnmatchedInboundRepository{pool: pool}
}

const unmatchedInboundColumns = `id, channel, sender, subject, body_snippet, attachment_name,
	file_path, raw_payload, received_at, resolved, resolved_by_application_id, resolved_at`

func scanUnmatchedInbound(row scanner) (*model.UnmatchedInbound, error) {
	u := &model.UnmatchedInbound{}
	err := row.Scan(&u.ID, &u.Channel, &u.Sender, &u.Subject, &u.BodySnippet, &u.AttachmentName,
		&u.FilePath, &u.RawPayload, &u.ReceivedAt, &u.Resolved, &u.ResolvedByApplicationID, &u.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UnmatchedInboundRepository) Create(ctx context.Context, u *model.UnmatchedInbound) error {
	u.ID = uuid.New().String()
	if u.ReceivedAt.IsZero() {
		u.ReceivedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO unmatched_inbounds (`+unmatchedInboundColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.Channel, u.Sender, u.Subject, u.BodySnippet, u.AttachmentName,
		u.FilePath, u.RawPayload, u.ReceivedAt, u.Resolved, u.ResolvedByApplicationID, u.ResolvedAt)
	return err
}

func (r *UnmatchedInboundRepository) GetByID(ctx context.Context, id string) (*model.UnmatchedInbound, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+unmatchedInboundColumns+` FROM unmatched_inbounds WHERE id = $1`, id)
	u, err := scanUnmatchedInbound(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUnmatchedInboundNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UnmatchedInboundRepository) List(ctx context.Context, resolved *bool, limit, offset int) ([]*model.UnmatchedInbound, int, error) {
	where := "1=1"
	args := []any{}
	argN := 1
	if resolved != nil {
		where = "resolved = $1"
		args = append(args, *resolved)
		argN = 2
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM unmatched_inbounds WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	queryArgs := append(append([]any{}, args...), limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM unmatched_inbounds
		WHERE %s
		ORDER BY received_at DESC LIMIT $%d OFFSET $%d
	`, unmatchedInboundColumns, where, argN, argN+1)
	rows, err := r.pool.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.UnmatchedInbound
	for rows.Next() {
		u, err := scanUnmatchedInbound(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Resolve marks an UnmatchedInbound as manually assigned to applicationID, the
// recruiter-driven priority-6 remediation path of the CV Inbox screen.
func (r *UnmatchedInboundRepository) Resolve(ctx context.Context, id, applicationID string) (*model.UnmatchedInbound, error) {
	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, `
		UPDATE unmatched_inbounds
		SET resolved = true, resolved_by_application_id = $2, resolved_at = $3
		WHERE id = $1 AND resolved = false
	`, id, applicationID, now)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		_, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, model.ErrAlreadyResolved
	}
	return r.GetByID(ctx, id)
}
