package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/settings/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	row := r.pool.QueryRow(ctx, `SELECT key, enabled, updated_at FROM system_settings WHERE key = $1`, key)
	s := &model.Setting{}
	if err := row.Scan(&s.Key, &s.Enabled, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SettingRepository) Set(ctx context.Context, key string, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_settings (key, enabled, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET enabled = $2, updated_at = $3
	`, key, enabled, time.Now().UTC())
	return err
}

// EnsureDefault seeds key with enabled if no row exists yet, leaving an operator's prior
// toggle untouched on every later restart.
func (r *SettingRepository) EnsureDefault(ctx context.Context, key string, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_settings (key, enabled, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, key, enabled, time.Now().UTC())
	return err
}
