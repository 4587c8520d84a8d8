package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationRepository_GetByCallID(t *testing.T) {
	t.Run("returns evaluation successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		rows := pgxmock.NewRows([]string{
			"id", "application_id", "call_id", "outcome", "qualified", "score", "reasoning",
			"criteria", "disqualifying_factor", "callback_requested", "callback_notes", "callback_at",
			"needs_human", "needs_human_notes", "raw_response", "evaluated_at", "created_at",
		}).AddRow("eval-1", "app-1", "call-1", model.OutcomeQualified, true, 90, "Great fit",
			[]byte(`[]`), nil, false, nil, nil, false, nil, "{}", now, now)

		mock.ExpectQuery("SELECT .* FROM evaluations WHERE call_id").
			WithArgs("call-1").
			WillReturnRows(rows)

		repo := &testEvaluationRepo{mock: mock}
		e, err := repo.GetByCallID(context.Background(), "call-1")

		require.NoError(t, err)
		assert.Equal(t, model.OutcomeQualified, e.Outcome)
		assert.Equal(t, 90, e.Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT .* FROM evaluations WHERE call_id").
			WithArgs("call-x").
			WillReturnError(pgx.ErrNoRows)

		repo := &testEvaluationRepo{mock: mock}
		e, err := repo.GetByCallID(context.Background(), "call-x")

		assert.Nil(t, e)
		assert.Equal(t, model.ErrEvaluationNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEvaluationRepository_CreateLocked(t *testing.T) {
	t.Run("inserts when no evaluation exists for the locked call", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("SELECT id FROM calls WHERE id = \\$1 FOR UPDATE").
			WithArgs("call-1").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectQuery("SELECT .* FROM evaluations WHERE call_id").
			WithArgs("call-1").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec("INSERT INTO evaluations").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		repo := &testEvaluationRepo{mock: mock}
		eval := &model.Evaluation{ApplicationID: "app-1", CallID: "call-1", Outcome: model.OutcomeQualified, Qualified: true, Score: 90, Reasoning: "Great fit"}

		saved, created, err := repo.CreateLocked(context.Background(), "call-1", eval)

		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, saved.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns existing evaluation on a locked race", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		existingRows := pgxmock.NewRows([]string{
			"id", "application_id", "call_id", "outcome", "qualified", "score", "reasoning",
			"criteria", "disqualifying_factor", "callback_requested", "callback_notes", "callback_at",
			"needs_human", "needs_human_notes", "raw_response", "evaluated_at", "created_at",
		}).AddRow("eval-existing", "app-1", "call-1", model.OutcomeQualified, true, 90, "Great fit",
			[]byte(`[]`), nil, false, nil, nil, false, nil, "{}", now, now)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT id FROM calls WHERE id = \\$1 FOR UPDATE").
			WithArgs("call-1").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectQuery("SELECT .* FROM evaluations WHERE call_id").
			WithArgs("call-1").
			WillReturnRows(existingRows)
		mock.ExpectRollback()

		repo := &testEvaluationRepo{mock: mock}
		eval := &model.Evaluation{ApplicationID: "app-1", CallID: "call-1", Outcome: model.OutcomeNotQualified}

		saved, created, err := repo.CreateLocked(context.Background(), "call-1", eval)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "eval-existing", saved.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// testEvaluationRepo mirrors EvaluationRepository's query logic against pgxmock,
// since EvaluationRepository itself is bound to the concrete *pgxpool.Pool type.
type testEvaluationRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testEvaluationRepo) GetByCallID(ctx context.Context, callID string) (*model.Evaluation, error) {
	row := r.mock.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE call_id = $1`, callID)
	e, err := scanEvaluation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrEvaluationNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *testEvaluationRepo) CreateLocked(ctx context.Context, callID string, eval *model.Evaluation) (*model.Evaluation, bool, error) {
	tx, err := r.mock.Begin(ctx)
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
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	eval.ID = "eval-new"
	now := time.Now().UTC()
	eval.EvaluatedAt = now
	eval.CreatedAt = now

	if _, err := tx.Exec(ctx, `INSERT INTO evaluations (`+evaluationColumns+`) VALUES (1)`); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return eval, true, nil
}
