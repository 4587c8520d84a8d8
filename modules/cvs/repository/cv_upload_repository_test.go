package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVUploadRepository_CreateMany(t *testing.T) {
	t.Run("inserts one row per application in a single transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		method := model.MatchExactEmail
		uploads := []*model.CVUpload{
			{ApplicationID: "app-1", FileName: "cv.pdf", FilePath: "cvs/x/cv.pdf", Source: model.SourceEmailAttachment, MatchMethod: &method},
			{ApplicationID: "app-2", FileName: "cv.pdf", FilePath: "cvs/x/cv.pdf", Source: model.SourceEmailAttachment, MatchMethod: &method},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO cv_uploads").
			WithArgs(pgxmock.AnyArg(), "app-1", "cv.pdf", "cvs/x/cv.pdf", model.SourceEmailAttachment, &method, false, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO cv_uploads").
			WithArgs(pgxmock.AnyArg(), "app-2", "cv.pdf", "cvs/x/cv.pdf", model.SourceEmailAttachment, &method, false, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		repo := &testCVUploadRepo{mock: mock}
		err = repo.CreateMany(context.Background(), uploads)

		require.NoError(t, err)
		assert.NotEmpty(t, uploads[0].ID)
		assert.NotEmpty(t, uploads[1].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op for an empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := &testCVUploadRepo{mock: mock}
		err = repo.CreateMany(context.Background(), nil)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCVUploadRepository_GetByID(t *testing.T) {
	t.Run("returns not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT .* FROM cv_uploads WHERE id").
			WithArgs("nonexistent").
			WillReturnError(pgx.ErrNoRows)

		repo := &testCVUploadRepo{mock: mock}
		c, err := repo.GetByID(context.Background(), "nonexistent")

		assert.Nil(t, c)
		assert.Equal(t, model.ErrCVUploadNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// testCVUploadRepo mirrors CVUploadRepository's query logic against pgxmock, since
// CVUploadRepository itself is bound to the concrete *pgxpool.Pool type.
type testCVUploadRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testCVUploadRepo) CreateMany(ctx context.Context, uploads []*model.CVUpload) error {
	if len(uploads) == 0 {
		return nil
	}
	tx, err := r.mock.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, u := range uploads {
		u.ID = uuid.New().String()
		if u.ReceivedAt.IsZero() {
			u.ReceivedAt = now
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO cv_uploads (`+cvUploadColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, u.ID, u.ApplicationID, u.FileName, u.FilePath, u.Source, u.MatchMethod,
			u.NeedsReview, u.ReceivedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *testCVUploadRepo) GetByID(ctx context.Context, id string) (*model.CVUpload, error) {
	row := r.mock.QueryRow(ctx, `SELECT `+cvUploadColumns+` FROM cv_uploads WHERE id = $1`, id)
	c, err := scanCVUpload(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCVUploadNotFound
		}
		return nil, err
	}
	return c, nil
}
