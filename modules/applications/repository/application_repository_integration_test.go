//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/postgres"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newIntegrationPool starts a disposable Postgres container, runs every migration against
// it, and returns a pool pointed at it. Exercises the same golang-migrate path cmd/api
// uses at boot, rather than a hand-maintained test schema that could drift from it.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("recruitflow_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Host: host, Port: port.Port(), User: "test", Password: "test",
		DBName: "recruitflow_test", SSLMode: "disable",
	}

	log, err := logger.New("error", "console")
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(ctx, dbCfg, log, "../../../migrations"))

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedPositionAndCandidate(t *testing.T, pool *pgxpool.Pool, rejectedCVTimeoutDays int) (positionID, candidateID string) {
	t.Helper()
	ctx := context.Background()

	positionID = uuid.New().String()
	_, err := pool.Exec(ctx,
		`INSERT INTO positions (id, title, rejected_cv_timeout_days) VALUES ($1, 'Backend Engineer', $2)`,
		positionID, rejectedCVTimeoutDays,
	)
	require.NoError(t, err)

	candidateID = uuid.New().String()
	_, err = pool.Exec(ctx,
		`INSERT INTO candidates (id, first_name, last_name, full_name) VALUES ($1, 'Jane', 'Doe', 'Jane Doe')`,
		candidateID,
	)
	require.NoError(t, err)
	return positionID, candidateID
}

// TestApplicationRepository_BulkTransition exercises the one method close_stale_rejected
// depends on end to end against a real Postgres instance: a multi-status WHERE ... IN
// clause combined with an UPDATE ... RETURNING count, something a mock can't meaningfully
// verify.
func TestApplicationRepository_BulkTransition(t *testing.T) {
	pool := newIntegrationPool(t)
	repo := NewApplicationRepository(pool)
	ctx := context.Background()

	positionID, candidateID := seedPositionAndCandidate(t, pool, 14)

	app, err := func() (*model.Application, error) {
		a := &model.Application{CandidateID: candidateID, PositionID: positionID, Status: model.StatusAwaitingCVRejected}
		err := repo.Create(ctx, a)
		return a, err
	}()
	require.NoError(t, err)

	other := &model.Application{CandidateID: candidateID, PositionID: positionID, Status: model.StatusQualified}
	require.NoError(t, repo.Create(ctx, other))

	n, err := repo.BulkTransition(ctx,
		[]string{app.ID, other.ID},
		[]model.Status{model.StatusAwaitingCVRejected, model.StatusCVReceivedRejected, model.StatusCVOverdue},
		model.StatusClosed, nil,
	)
	require.NoError(t, err)
	require.Equal(t, 1, n, "only the matching-status application should transition")

	updated, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusClosed, updated.Status)

	untouched, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusQualified, untouched.Status)
}

func TestApplicationRepository_ListFiltersByStatus(t *testing.T) {
	pool := newIntegrationPool(t)
	repo := NewApplicationRepository(pool)
	ctx := context.Background()

	positionID, candidateID := seedPositionAndCandidate(t, pool, 14)

	app := &model.Application{CandidateID: candidateID, PositionID: positionID, Status: model.StatusCVOverdue}
	require.NoError(t, repo.Create(ctx, app))

	results, total, err := repo.List(ctx, ports.ListFilter{Statuses: []model.Status{model.StatusCVOverdue}, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, results, 1)
	require.Equal(t, app.ID, results[0].ID)
}
