package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (id, candidate_id, position_id, status, qualified, score, score_notes,
			cv_received_at, callback_scheduled_at, needs_human_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING reference_number
	`

	app.ID = uuid.New().String()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = model.StatusPendingCall
	}

	err := r.pool.QueryRow(ctx, query,
		app.ID, app.CandidateID, app.PositionID, app.Status, app.Qualified, app.Score, app.ScoreNotes,
		app.CVReceivedAt, app.CallbackScheduledAt, app.NeedsHumanReason, app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ReferenceNumber)
	if err != nil && isUniqueViolation(err) {
		return model.ErrDuplicateApplication
	}
	return err
}

const applicationColumns = `id, reference_number, candidate_id, position_id, status, qualified, score, score_notes,
	cv_received_at, callback_scheduled_at, needs_human_reason, created_at, updated_at`

type appScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row appScanner) (*model.Application, error) {
	app := &model.Application{}
	err := row.Scan(
		&app.ID, &app.ReferenceNumber, &app.CandidateID, &app.PositionID, &app.Status, &app.Qualified, &app.Score, &app.ScoreNotes,
		&app.CVReceivedAt, &app.CallbackScheduledAt, &app.NeedsHumanReason, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// FindByReferenceNumber looks up an Application by the short human-facing number CV
// request emails embed in their subject line.
func (r *ApplicationRepository) FindByReferenceNumber(ctx context.Context, n int) (*model.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE reference_number = $1`, n)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListFilter) ([]*model.Application, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filter.CandidateID != "" {
		where = append(where, fmt.Sprintf("candidate_id = $%d", argN))
		args = append(args, filter.CandidateID)
		argN++
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", argN)
			args = append(args, s)
			argN++
		}
		where = append(where, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Qualified != nil {
		where = append(where, fmt.Sprintf("qualified = $%d", argN))
		args = append(args, *filter.Qualified)
		argN++
	}
	whereClause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM applications WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM applications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, applicationColumns, whereClause, argN, argN+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) ListStatusChanges(ctx context.Context, appID string) ([]*model.StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, from_status, to_status, actor_id, note, changed_at
		FROM status_changes WHERE application_id = $1 ORDER BY changed_at ASC
	`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*model.StatusChange
	for rows.Next() {
		c := &model.StatusChange{}
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.FromStatus, &c.ToStatus, &c.ActorID, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// Transition is the only mutation path for Application.Status. Everything happens in
// one transaction: row lock, caller mutation, status write, audit insert.
func (r *ApplicationRepository) Transition(ctx context.Context, appID string, newStatus model.Status, actorID *string, note *string, mutate ports.Mutator) (*model.Application, *model.StatusChange, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, appID)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, model.ErrApplicationNotFound
		}
		return nil, nil, err
	}

	fromStatus := app.Status
	noop := fromStatus == newStatus && note == nil && mutate == nil
	if noop {
		return app, nil, nil
	}

	if mutate != nil {
		mutate(app)
	}
	app.Status = newStatus
	app.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE applications SET status = $2, qualified = $3, score = $4, score_notes = $5,
			cv_received_at = $6, callback_scheduled_at = $7, needs_human_reason = $8, updated_at = $9
		WHERE id = $1
	`, app.ID, app.Status, app.Qualified, app.Score, app.ScoreNotes,
		app.CVReceivedAt, app.CallbackScheduledAt, app.NeedsHumanReason, app.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	change := &model.StatusChange{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		FromStatus:    fromStatus,
		ToStatus:      newStatus,
		ActorID:       actorID,
		Note:          note,
		ChangedAt:     app.UpdatedAt,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO status_changes (id, application_id, from_status, to_status, actor_id, note, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, change.ID, change.ApplicationID, change.FromStatus, change.ToStatus, change.ActorID, change.Note, change.ChangedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return app, change, nil
}

func (r *ApplicationRepository) BulkTransition(ctx context.Context, ids []string, fromStatuses []model.Status, newStatus model.Status, note *string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	rows, err := tx.Query(ctx, `
		WITH target AS (
			SELECT id, status AS old_status FROM applications
			WHERE id = ANY($3) AND status = ANY($4) AND status != $1
			FOR UPDATE
		)
		UPDATE applications a SET status = $1, updated_at = $2
		FROM target
		WHERE a.id = target.id
		RETURNING a.id, target.old_status
	`, newStatus, now, ids, fromStatuses)
	if err != nil {
		return 0, err
	}

	type changed struct {
		id   string
		from model.Status
	}
	var updated []changed
	for rows.Next() {
		var c changed
		if err := rows.Scan(&c.id, &c.from); err != nil {
			rows.Close()
			return 0, err
		}
		updated = append(updated, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, c := range updated {
		_, err := tx.Exec(ctx, `
			INSERT INTO status_changes (id, application_id, from_status, to_status, actor_id, note, changed_at)
			VALUES ($1, $2, $3, $4, NULL, $5, $6)
		`, uuid.New().String(), c.id, c.from, newStatus, note, now)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(updated), nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
