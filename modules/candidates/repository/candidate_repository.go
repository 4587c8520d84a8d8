package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	cmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CandidateRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

func (r *CandidateRepository) Create(ctx context.Context, c *cmodel.Candidate) error {
	formAnswers, err := json.Marshal(c.FormAnswers)
	if err != nil {
		return err
	}

	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = r.pool.Exec(ctx, `
		INSERT INTO candidates (id, first_name, last_name, full_name, phone, email,
			whatsapp_number, lead_source_id, form_answers, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.FirstName, c.LastName, c.FullName, c.Phone, c.Email,
		c.WhatsAppNumber, c.LeadSourceID, formAnswers, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return cmodel.ErrDuplicateLeadSource
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *CandidateRepository) scanOne(row scanner) (*cmodel.Candidate, error) {
	c := &cmodel.Candidate{}
	var formAnswers []byte
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.FullName, &c.Phone, &c.Email,
		&c.WhatsAppNumber, &c.LeadSourceID, &formAnswers, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(formAnswers) > 0 {
		if err := json.Unmarshal(formAnswers, &c.FormAnswers); err != nil {
			return nil, err
		}
	}
	return c, nil
}

const candidateColumns = `id, first_name, last_name, full_name, phone, email,
	whatsapp_number, lead_source_id, form_answers, notes, created_at, updated_at`

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*cmodel.Candidate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := r.scanOne(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cmodel.ErrCandidateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CandidateRepository) FindByEmail(ctx context.Context, addr string) (*cmodel.Candidate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE lower(email) = lower($1)`, addr)
	c, err := r.scanOne(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cmodel.ErrCandidateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CandidateRepository) List(ctx context.Context, limit, offset int) ([]*cmodel.Candidate, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*cmodel.Candidate
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CandidateRepository) Update(ctx context.Context, c *cmodel.Candidate) error {
	formAnswers, err := json.Marshal(c.FormAnswers)
	if err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()

	result, err := r.pool.Exec(ctx, `
		UPDATE candidates SET first_name = $2, last_name = $3, full_name = $4, phone = $5,
			email = $6, whatsapp_number = $7, lead_source_id = $8, form_answers = $9, notes = $10, updated_at = $11
		WHERE id = $1
	`, c.ID, c.FirstName, c.LastName, c.FullName, c.Phone, c.Email,
		c.WhatsAppNumber, c.LeadSourceID, formAnswers, c.Notes, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return cmodel.ErrDuplicateLeadSource
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return cmodel.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return cmodel.ErrCandidateNotFound
	}
	return nil
}

// ListWithAwaitingCVApplications returns every candidate with at least one Application
// whose status is in the awaiting-CV set, for the fuzzy-name matching pass.
func (r *CandidateRepository) ListWithAwaitingCVApplications(ctx context.Context) ([]*cmodel.Candidate, error) {
	statuses := make([]appmodel.Status, 0, len(appmodel.AwaitingCVStatuses))
	for s := range appmodel.AwaitingCVStatuses {
		statuses = append(statuses, s)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT `+prefixColumns("c", candidateColumns)+`
		FROM candidates c
		JOIN applications a ON a.candidate_id = c.id
		WHERE a.status = ANY($1)
	`, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*cmodel.Candidate
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(strings.Join(strings.Fields(columns), " "), ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(strings.TrimSuffix(p, ","))
	}
	return strings.Join(parts, ", ")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
