package service

import (
	"context"
	"testing"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPositionRepository implements ports.PositionRepository
type MockPositionRepository struct {
	CreateFunc              func(ctx context.Context, p *model.Position) error
	GetByIDFunc             func(ctx context.Context, id string) (*model.Position, error)
	ListFunc                func(ctx context.Context, filter ports.ListFilter) ([]*model.Position, int, error)
	UpdateFunc              func(ctx context.Context, p *model.Position) error
	DeleteFunc              func(ctx context.Context, id string) error
	ListOpenForDispatchFunc func(ctx context.Context) ([]*model.Position, error)
}

func (m *MockPositionRepository) Create(ctx context.Context, p *model.Position) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockPositionRepository) GetByID(ctx context.Context, id string) (*model.Position, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPositionRepository) List(ctx context.Context, filter ports.ListFilter) ([]*model.Position, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *MockPositionRepository) Update(ctx context.Context, p *model.Position) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

func (m *MockPositionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPositionRepository) ListOpenForDispatch(ctx context.Context) ([]*model.Position, error) {
	if m.ListOpenForDispatchFunc != nil {
		return m.ListOpenForDispatchFunc(ctx)
	}
	return nil, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("info", "console")
	require.NoError(t, err)
	return log
}

func validPosition() *model.Position {
	return &model.Position{
		Title:                 "Warehouse Picker",
		Status:                model.StatusOpen,
		CallingHourStart:      9,
		CallingHourEnd:        18,
		CallRetryMax:          3,
		CallRetryIntervalMins: 30,
		FollowUpIntervalHours: 1,
		RejectedCVTimeoutDays: 7,
	}
}

func TestPositionService_Create_RejectsBadCallingWindow(t *testing.T) {
	repo := &MockPositionRepository{}
	svc := NewPositionService(repo, newTestLogger(t))

	p := validPosition()
	p.CallingHourStart, p.CallingHourEnd = 18, 9

	_, err := svc.Create(context.Background(), p)
	assert.ErrorIs(t, err, model.ErrInvalidCallingWindow)
}

func TestPositionService_Create_RejectsNonPositiveTuning(t *testing.T) {
	repo := &MockPositionRepository{}
	svc := NewPositionService(repo, newTestLogger(t))

	p := validPosition()
	p.CallRetryMax = 0

	_, err := svc.Create(context.Background(), p)
	assert.ErrorIs(t, err, model.ErrInvalidTuning)
}

func TestPositionService_Create_Succeeds(t *testing.T) {
	repo := &MockPositionRepository{
		CreateFunc: func(ctx context.Context, p *model.Position) error {
			p.ID = "pos-1"
			return nil
		},
	}
	svc := NewPositionService(repo, newTestLogger(t))

	created, err := svc.Create(context.Background(), validPosition())
	require.NoError(t, err)
	assert.Equal(t, "pos-1", created.ID)
}

func TestPositionService_OpenPositionsForDispatch_LogsMisconfigured(t *testing.T) {
	misconfigured := validPosition()
	misconfigured.ID = "pos-bad"
	misconfigured.CallingHourStart, misconfigured.CallingHourEnd = 18, 9

	ok := validPosition()
	ok.ID = "pos-ok"

	repo := &MockPositionRepository{
		ListOpenForDispatchFunc: func(ctx context.Context) ([]*model.Position, error) {
			return []*model.Position{misconfigured, ok}, nil
		},
	}
	svc := NewPositionService(repo, newTestLogger(t))

	positions, err := svc.OpenPositionsForDispatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestPosition_InCallingWindow(t *testing.T) {
	p := &model.Position{CallingHourStart: 9, CallingHourEnd: 18}
	assert.True(t, p.InCallingWindow(9))
	assert.True(t, p.InCallingWindow(17))
	assert.False(t, p.InCallingWindow(18))
	assert.False(t, p.InCallingWindow(8))
}

func TestPosition_IsMisconfigured(t *testing.T) {
	misconfigured := &model.Position{CallingHourStart: 18, CallingHourEnd: 9}
	assert.True(t, misconfigured.IsMisconfigured())
	assert.False(t, misconfigured.InCallingWindow(12))

	ok := &model.Position{CallingHourStart: 9, CallingHourEnd: 18}
	assert.False(t, ok.IsMisconfigured())
}
