package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CVUploadRepository struct {
	pool *pgxpool.Pool
}

func NewCVUploadRepository(pool *pgxpool.Pool) *CVUploadRepository {
	return &CVUploadRepository{pool: pool}
}

const cvUploadColumns = `id, application_id, file_name, file_path, source, match_method,
	needs_review, received_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCVUpload(row scanner) (*model.CVUpload, error) {
	c := &model.CVUpload{}
	err := row.Scan(&c.ID, &c.ApplicationID, &c.FileName, &c.FilePath, &c.Source,
		&c.MatchMethod, &c.NeedsReview, &c.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateMany writes one CVUpload row per affected application inside a single
// transaction, so all rows from one inbound submission share the same file path and
// match method or none are written at all.
func (r *CVUploadRepository) CreateMany(ctx context.Context, uploads []*model.CVUpload) error {
	if len(uploads) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
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

func (r *CVUploadRepository) GetByID(ctx context.Context, id string) (*model.CVUpload, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cvUploadColumns+` FROM cv_uploads WHERE id = $1`, id)
	c, err := scanCVUpload(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCVUploadNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CVUploadRepository) ListByApplication(ctx context.Context, applicationID string) ([]*model.CVUpload, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cvUploadColumns+` FROM cv_uploads
		WHERE application_id = $1 ORDER BY received_at DESC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CVUpload
	for rows.Next() {
		c, err := scanCVUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListNeedingReview powers the CV Inbox screen's default view (medium
// confidence matches surface for recruiter confirmation).
func (r *CVUploadRepository) ListNeedingReview(ctx context.Context, limit, offset int) ([]*model.CVUpload, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cv_uploads WHERE needs_review = true`).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+cvUploadColumns+` FROM cv_uploads
		WHERE needs_review = true
		ORDER BY received_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.CVUpload
	for rows.Next() {
		c, err := scanCVUpload(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
