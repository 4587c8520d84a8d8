package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateRepository_Create(t *testing.T) {
	t.Run("creates candidate successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		c := &model.Candidate{
			FirstName: "Ana",
			LastName:  "Popescu",
			Phone:     "+40722111222",
			Email:     "ana.popescu@example.com",
		}

		mock.ExpectExec("INSERT INTO candidates").
			WithArgs(pgxmock.AnyArg(), c.FirstName, c.LastName, c.FullName, c.Phone, c.Email,
				c.WhatsAppNumber, c.LeadSourceID, pgxmock.AnyArg(), c.Notes, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := &testCandidateRepo{mock: mock}
		err = repo.Create(context.Background(), c)

		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to duplicate lead source", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		c := &model.Candidate{FirstName: "Ana", LastName: "Popescu", Email: "dup@example.com"}

		mock.ExpectExec("INSERT INTO candidates").
			WithArgs(pgxmock.AnyArg(), c.FirstName, c.LastName, c.FullName, c.Phone, c.Email,
				c.WhatsAppNumber, c.LeadSourceID, pgxmock.AnyArg(), c.Notes, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&dupKeyError{})

		repo := &testCandidateRepo{mock: mock}
		err = repo.Create(context.Background(), c)

		assert.Equal(t, model.ErrDuplicateLeadSource, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCandidateRepository_FindByEmail(t *testing.T) {
	t.Run("returns candidate when matched case-insensitively", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		formAnswers, _ := json.Marshal(map[string]string{})
		rows := pgxmock.NewRows([]string{
			"id", "first_name", "last_name", "full_name", "phone", "email",
			"whatsapp_number", "lead_source_id", "form_answers", "notes", "created_at", "updated_at",
		}).AddRow("cand-1", "Ana", "Popescu", "Ana Popescu", "+40722111222", "ANA.POPESCU@example.com",
			nil, nil, formAnswers, nil, now, now)

		mock.ExpectQuery("SELECT .* FROM candidates WHERE lower").
			WithArgs("ana.popescu@example.com").
			WillReturnRows(rows)

		repo := &testCandidateRepo{mock: mock}
		c, err := repo.FindByEmail(context.Background(), "ana.popescu@example.com")

		require.NoError(t, err)
		assert.Equal(t, "cand-1", c.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when absent", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT .* FROM candidates WHERE lower").
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := &testCandidateRepo{mock: mock}
		c, err := repo.FindByEmail(context.Background(), "nobody@example.com")

		assert.Nil(t, c)
		assert.Equal(t, model.ErrCandidateNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCandidateRepository_Delete(t *testing.T) {
	t.Run("returns not found when no rows affected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM candidates").
			WithArgs("nonexistent").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := &testCandidateRepo{mock: mock}
		err = repo.Delete(context.Background(), "nonexistent")

		assert.Equal(t, model.ErrCandidateNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

type dupKeyError struct{}

func (e *dupKeyError) Error() string {
	return `ERROR: duplicate key value violates unique constraint "candidates_lead_source_id_key"`
}

// testCandidateRepo mirrors CandidateRepository's query logic against pgxmock, since
// CandidateRepository itself is bound to the concrete *pgxpool.Pool type.
type testCandidateRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testCandidateRepo) Create(ctx context.Context, c *model.Candidate) error {
	formAnswers, err := json.Marshal(c.FormAnswers)
	if err != nil {
		return err
	}
	c.ID = "test-candidate-id"
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = r.mock.Exec(ctx, `INSERT INTO candidates (id, first_name, last_name, full_name, phone, email,
		whatsapp_number, lead_source_id, form_answers, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.FirstName, c.LastName, c.FullName, c.Phone, c.Email,
		c.WhatsAppNumber, c.LeadSourceID, formAnswers, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return model.ErrDuplicateLeadSource
	}
	return err
}

func (r *testCandidateRepo) FindByEmail(ctx context.Context, addr string) (*model.Candidate, error) {
	c := &model.Candidate{}
	var formAnswers []byte
	err := r.mock.QueryRow(ctx, `SELECT id, first_name, last_name, full_name, phone, email,
		whatsapp_number, lead_source_id, form_answers, notes, created_at, updated_at
		FROM candidates WHERE lower(email) = lower($1)`, addr).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.FullName, &c.Phone, &c.Email,
		&c.WhatsAppNumber, &c.LeadSourceID, &formAnswers, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrCandidateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *testCandidateRepo) Delete(ctx context.Context, id string) error {
	result, err := r.mock.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrCandidateNotFound
	}
	return nil
}
