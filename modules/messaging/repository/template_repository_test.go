package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRepository_GetActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM message_templates").
		WithArgs(model.TypeCVRequest, model.ChannelEmail).
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "channel", "subject", "body", "active", "created_at", "updated_at"}).
			AddRow("tmpl-1", model.TypeCVRequest, model.ChannelEmail, "Your CV", "Hi {first_name}", true, now, now))

	repo := &testTemplateRepo{mock: mock}
	tmpl, err := repo.GetActive(context.Background(), model.TypeCVRequest, model.ChannelEmail)

	require.NoError(t, err)
	assert.Equal(t, "tmpl-1", tmpl.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO message_templates").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := &testTemplateRepo{mock: mock}
	tmpl := &model.MessageTemplate{Type: model.TypeCVRequest, Channel: model.ChannelWhatsApp, Body: "hi", Active: true}
	err = repo.Upsert(context.Background(), tmpl)

	require.NoError(t, err)
	assert.NotEmpty(t, tmpl.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// testTemplateRepo mirrors TemplateRepository's query logic against pgxmock, since
// TemplateRepository itself is bound to the concrete *pgxpool.Pool type.
type testTemplateRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testTemplateRepo) GetActive(ctx context.Context, msgType model.Type, channel model.Channel) (*model.MessageTemplate, error) {
	row := r.mock.QueryRow(ctx, `SELECT `+templateColumns+` FROM message_templates WHERE type = $1 AND channel = $2 AND active = true`, msgType, channel)
	return scanTemplate(row)
}

func (r *testTemplateRepo) Upsert(ctx context.Context, tmpl *model.MessageTemplate) error {
	now := time.Now().UTC()
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	tmpl.UpdatedAt = now
	row := r.mock.QueryRow(ctx, `INSERT INTO message_templates (`+templateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (type, channel) DO UPDATE SET subject = EXCLUDED.subject RETURNING created_at`,
		tmpl.ID, tmpl.Type, tmpl.Channel, tmpl.Subject, tmpl.Body, tmpl.Active, now, tmpl.UpdatedAt)
	return row.Scan(&tmpl.CreatedAt)
}
