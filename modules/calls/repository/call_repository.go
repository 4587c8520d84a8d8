package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallRepository struct {
	pool *pgxpool.Pool
}

func NewCallRepository(pool *pgxpool.Pool) *CallRepository {
	return &CallRepository{pool: pool}
}

const callColumns = `id, application_id, attempt_number, status, external_conversation_id,
	external_batch_id, transcript, summary, summary_title, recording_url, duration_seconds,
	initiated_at, ended_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (*model.Call, error) {
	c := &model.Call{}
	err := row.Scan(
		&c.ID, &c.ApplicationID, &c.AttemptNumber, &c.Status, &c.ExternalConversationID,
		&c.ExternalBatchID, &c.Transcript, &c.Summary, &c.SummaryTitle, &c.RecordingURL, &c.DurationSeconds,
		&c.InitiatedAt, &c.EndedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CallRepository) Create(ctx context.Context, call *model.Call) error {
	call.ID = uuid.New().String()
	now := time.Now().UTC()
	call.CreatedAt = now
	call.UpdatedAt = now
	if call.Status == "" {
		call.Status = model.StatusInitiated
	}
	if call.InitiatedAt.IsZero() {
		call.InitiatedAt = now
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO calls (`+callColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, call.ID, call.ApplicationID, call.AttemptNumber, call.Status, call.ExternalConversationID,
		call.ExternalBatchID, call.Transcript, call.Summary, call.SummaryTitle, call.RecordingURL, call.DurationSeconds,
		call.InitiatedAt, call.EndedAt, call.CreatedAt, call.UpdatedAt)
	return err
}

func (r *CallRepository) GetByID(ctx context.Context, id string) (*model.Call, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1`, id)
	c, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCallNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CallRepository) ListByApplication(ctx context.Context, applicationID string) ([]*model.Call, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+` FROM calls WHERE application_id = $1 ORDER BY attempt_number ASC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CallRepository) Apply(ctx context.Context, id string, mutate ports.Mutator) (*model.Call, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1 FOR UPDATE`, id)
	call, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCallNotFound
		}
		return nil, err
	}

	if mutate != nil {
		mutate(call)
	}
	call.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE calls SET status = $2, external_conversation_id = $3, external_batch_id = $4,
			transcript = $5, summary = $6, summary_title = $7, recording_url = $8, duration_seconds = $9,
			ended_at = $10, updated_at = $11
		WHERE id = $1
	`, call.ID, call.Status, call.ExternalConversationID, call.ExternalBatchID,
		call.Transcript, call.Summary, call.SummaryTitle, call.RecordingURL, call.DurationSeconds,
		call.EndedAt, call.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return call, nil
}

func (r *CallRepository) FindByExternalConversationID(ctx context.Context, conversationID string) (*model.Call, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+callColumns+` FROM calls WHERE external_conversation_id = $1
	`, conversationID)
	c, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCallNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CallRepository) BindLatestInitiated(ctx context.Context, applicationID string, conversationID string) (*model.Call, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+callColumns+` FROM calls
		WHERE application_id = $1 AND status = $2 AND external_conversation_id IS NULL
		ORDER BY attempt_number DESC
		LIMIT 1
		FOR UPDATE
	`, applicationID, model.StatusInitiated)
	call, err := scanCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoCandidateForBind
		}
		return nil, err
	}

	call.ExternalConversationID = &conversationID
	call.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE calls SET external_conversation_id = $2, updated_at = $3 WHERE id = $1
	`, call.ID, call.ExternalConversationID, call.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return call, nil
}

func (r *CallRepository) ListStuck(ctx context.Context, threshold time.Time) ([]*model.Call, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+` FROM calls
		WHERE status IN ($1, $2) AND initiated_at < $3 AND external_conversation_id IS NOT NULL
	`, model.StatusInitiated, model.StatusInProgress, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CallRepository) ListOrphanedBatch(ctx context.Context, threshold time.Time) ([]*model.Call, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+` FROM calls
		WHERE status = $1 AND external_conversation_id IS NULL AND external_batch_id IS NOT NULL
			AND initiated_at < $2
	`, model.StatusInitiated, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CallRepository) NextAttemptNumber(ctx context.Context, applicationID string) (int, error) {
	var max *int
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(attempt_number) FROM calls WHERE application_id = $1
	`, applicationID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}
