package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EvaluationRepository struct {
	pool *pgxpool.Pool
}

func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

const evaluationColumns = `id, application_id, call_id, outcome, qualified, score, reasoning,
	criteria, disqualifying_factor, callback_requested, callback_notes, callback_at,
	needs_human, needs_human_notes, raw_response, evaluated_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (*model.Evaluation, error) {
	e := &model.Evaluation{}
	var criteriaJSON []byte
	err := row.Scan(
		&e.ID, &e.ApplicationID, &e.CallID, &e.Outcome, &e.Qualified, &e.Score, &e.Reasoning,
		&criteriaJSON, &e.DisqualifyingFactor, &e.CallbackRequested, &e.CallbackNotes, &e.CallbackAt,
		&e.NeedsHuman, &e.NeedsHumanNotes, &e.RawResponse, &e.EvaluatedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &e.Criteria); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id string) (*model.Evaluation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id)
	e, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEvaluationNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EvaluationRepository) GetByCallID(ctx context.Context, callID string) (*model.Evaluation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE call_id = $1`, callID)
	e, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEvaluationNotFound
		}
		return nil, err
	}
	return e, nil
}

// CreateLocked implements the idempotency contract: row-lock the owning
// Call, re-check for an Evaluation under that lock, and only insert if none is found.
// The re-check closes the TOCTOU window between the service's fast-path pre-check and
// this write — a concurrent webhook + scheduler delivery both converge on whichever
// one wins the lock first.
func (r *EvaluationRepository) CreateLocked(ctx context.Context, callID string, eval *model.Evaluation) (*model.Evaluation, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT id FROM calls WHERE id = $1 FOR UPDATE`, callID); err != nil {
		return nil, false, err
	}

	row := tx.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE call_id = $1`, callID)
	existing, err := scanEvaluation(row)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	eval.ID = uuid.New().String()
	now := time.Now().UTC()
	eval.EvaluatedAt = now
	eval.CreatedAt = now

	criteriaJSON, err := json.Marshal(eval.Criteria)
	if err != nil {
		return nil, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO evaluations (`+evaluationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, eval.ID, eval.ApplicationID, eval.CallID, eval.Outcome, eval.Qualified, eval.Score, eval.Reasoning,
		criteriaJSON, eval.DisqualifyingFactor, eval.CallbackRequested, eval.CallbackNotes, eval.CallbackAt,
		eval.NeedsHuman, eval.NeedsHumanNotes, eval.RawResponse, eval.EvaluatedAt, eval.CreatedAt)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return eval, true, nil
}
