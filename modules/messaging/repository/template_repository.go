package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, type, channel, subject, body, active, created_at, updated_at`

func scanTemplate(row interface{ Scan(dest ...any) error }) (*model.MessageTemplate, error) {
	t := &model.MessageTemplate{}
	err := row.Scan(&t.ID, &t.Type, &t.Channel, &t.Subject, &t.Body, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) GetActive(ctx context.Context, msgType model.Type, channel model.Channel) (*model.MessageTemplate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+` FROM message_templates
		WHERE type = $1 AND channel = $2 AND active = true
	`, msgType, channel)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]*model.MessageTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM message_templates ORDER BY type, channel`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*model.MessageTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Upsert replaces any existing template for (type, channel) with tmpl, keyed by the
// unique (type, channel) constraint — there is exactly one row per combination.
func (r *TemplateRepository) Upsert(ctx context.Context, tmpl *model.MessageTemplate) error {
	now := time.Now().UTC()
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	tmpl.UpdatedAt = now

	row := r.pool.QueryRow(ctx, `
		INSERT INTO message_templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (type, channel) DO UPDATE SET
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`, tmpl.ID, tmpl.Type, tmpl.Channel, tmpl.Subject, tmpl.Body, tmpl.Active, now, tmpl.UpdatedAt)

	return row.Scan(&tmpl.CreatedAt)
}
