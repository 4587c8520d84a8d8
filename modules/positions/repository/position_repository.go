package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PositionRepository struct {
	pool *pgxpool.Pool
}

func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `id, title, description, status, qualification_criteria,
	voice_agent_system_prompt, voice_agent_first_message, calling_hour_start, calling_hour_end,
	call_retry_max, call_retry_interval_minutes, follow_up_interval_hours, rejected_cv_timeout_days,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(row scanner) (*model.Position, error) {
	p := &model.Position{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Status, &p.QualificationCriteria,
		&p.VoiceAgentSystemPrompt, &p.VoiceAgentFirstMessage, &p.CallingHourStart, &p.CallingHourEnd,
		&p.CallRetryMax, &p.CallRetryIntervalMins, &p.FollowUpIntervalHours, &p.RejectedCVTimeoutDays,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PositionRepository) Create(ctx context.Context, p *model.Position) error {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.StatusOpen
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO positions (`+positionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.Title, p.Description, p.Status, p.QualificationCriteria,
		p.VoiceAgentSystemPrompt, p.VoiceAgentFirstMessage, p.CallingHourStart, p.CallingHourEnd,
		p.CallRetryMax, p.CallRetryIntervalMins, p.FollowUpIntervalHours, p.RejectedCVTimeoutDays,
		p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PositionRepository) GetByID(ctx context.Context, id string) (*model.Position, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = $1`, id)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPositionNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PositionRepository) List(ctx context.Context, filter ports.ListFilter) ([]*model.Position, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argN))
		args = append(args, *filter.Status)
		argN++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM positions WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s FROM positions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, positionColumns, whereClause, argN, argN+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PositionRepository) Update(ctx context.Context, p *model.Position) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, `
		UPDATE positions SET title = $2, description = $3, status = $4, qualification_criteria = $5,
			voice_agent_system_prompt = $6, voice_agent_first_message = $7, calling_hour_start = $8,
			calling_hour_end = $9, call_retry_max = $10, call_retry_interval_minutes = $11,
			follow_up_interval_hours = $12, rejected_cv_timeout_days = $13, updated_at = $14
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Status, p.QualificationCriteria,
		p.VoiceAgentSystemPrompt, p.VoiceAgentFirstMessage, p.CallingHourStart, p.CallingHourEnd,
		p.CallRetryMax, p.CallRetryIntervalMins, p.FollowUpIntervalHours, p.RejectedCVTimeoutDays, p.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrPositionNotFound
	}
	return nil
}

func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrPositionNotFound
	}
	return nil
}

func (r *PositionRepository) ListOpenForDispatch(ctx context.Context) ([]*model.Position, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+positionColumns+` FROM positions WHERE status = $1`, model.StatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
