package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockApplicationRepository implements applications/ports.ApplicationRepository
type MockApplicationRepository struct {
	apps map[string]*appmodel.Application
}

func newMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{apps: map[string]*appmodel.Application{}}
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *appmodel.Application) error {
	m.apps[app.ID] = app
	return nil
}
func (m *MockApplicationRepository) GetByID(ctx context.Context, id string) (*appmodel.Application, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, appmodel.ErrApplicationNotFound
	}
	return app, nil
}
func (m *MockApplicationRepository) List(ctx context.Context, filter appports.ListFilter) ([]*appmodel.Application, int, error) {
	return nil, 0, nil
}
func (m *MockApplicationRepository) Delete(ctx context.Context, id string) error { return nil }
func (m *MockApplicationRepository) ListStatusChanges(ctx context.Context, appID string) ([]*appmodel.StatusChange, error) {
	return nil, nil
}
func (m *MockApplicationRepository) Transition(ctx context.Context, appID string, newStatus appmodel.Status, actorID *string, note *string, mutate appports.Mutator) (*appmodel.Application, *appmodel.StatusChange, error) {
	app, ok := m.apps[appID]
	if !ok {
		return nil, nil, appmodel.ErrApplicationNotFound
	}
	from := app.Status
	if mutate != nil {
		mutate(app)
	}
	app.Status = newStatus
	return app, &appmodel.StatusChange{ApplicationID: appID, FromStatus: from, ToStatus: newStatus}, nil
}
func (m *MockApplicationRepository) BulkTransition(ctx context.Context, ids []string, fromStatuses []appmodel.Status, newStatus appmodel.Status, note *string) (int, error) {
	return 0, nil
}

// fakeCallRepository implements ports.CallRepository entirely in memory.
type fakeCallRepository struct {
	calls map[string]*model.Call
}

func newFakeCallRepository() *fakeCallRepository {
	return &fakeCallRepository{calls: map[string]*model.Call{}}
}

func (f *fakeCallRepository) Create(ctx context.Context, call *model.Call) error {
	call.ID = "call-" + call.ApplicationID + "-" + time.Now().UTC().Format("150405.000000000")
	f.calls[call.ID] = call
	return nil
}
func (f *fakeCallRepository) GetByID(ctx context.Context, id string) (*model.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, model.ErrCallNotFound
	}
	return c, nil
}
func (f *fakeCallRepository) ListByApplication(ctx context.Context, applicationID string) ([]*model.Call, error) {
	var out []*model.Call
	for _, c := range f.calls {
		if c.ApplicationID == applicationID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCallRepository) Apply(ctx context.Context, id string, mutate ports.Mutator) (*model.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, model.ErrCallNotFound
	}
	if mutate != nil {
		mutate(c)
	}
	return c, nil
}
func (f *fakeCallRepository) FindByExternalConversationID(ctx context.Context, conversationID string) (*model.Call, error) {
	for _, c := range f.calls {
		if c.ExternalConversationID != nil && *c.ExternalConversationID == conversationID {
			return c, nil
		}
	}
	return nil, model.ErrCallNotFound
}
func (f *fakeCallRepository) BindLatestInitiated(ctx context.Context, applicationID string, conversationID string) (*model.Call, error) {
	for _, c := range f.calls {
		if c.ApplicationID == applicationID && c.Status == model.StatusInitiated && c.ExternalConversationID == nil {
			c.ExternalConversationID = &conversationID
			return c, nil
		}
	}
	return nil, model.ErrNoCandidateForBind
}
func (f *fakeCallRepository) ListStuck(ctx context.Context, threshold time.Time) ([]*model.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) ListOrphanedBatch(ctx context.Context, threshold time.Time) ([]*model.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) NextAttemptNumber(ctx context.Context, applicationID string) (int, error) {
	return 1, nil
}

type fakeVoiceAgentClient struct {
	conversationID string
}

func (f *fakeVoiceAgentClient) InitiateCall(ctx context.Context, subject ports.CallSubject) (string, error) {
	return f.conversationID, nil
}
func (f *fakeVoiceAgentClient) InitiateBatch(ctx context.Context, subjects []ports.CallSubject) (string, error) {
	return "batch-1", nil
}
func (f *fakeVoiceAgentClient) Poll(ctx context.Context, conversationID string) (*ports.CallResult, error) {
	return &ports.CallResult{ExternalConversationID: conversationID, RawStatus: "completed"}, nil
}

func newTestCallService(t *testing.T) (*CallService, *fakeCallRepository, *MockApplicationRepository) {
	t.Helper()
	log, err := logger.New("info", "console")
	require.NoError(t, err)

	callRepo := newFakeCallRepository()
	appRepo := newMockApplicationRepository()
	apps := appservice.NewApplicationService(appRepo, nil, log)
	voiceAgent := &fakeVoiceAgentClient{conversationID: "conv-1"}

	return NewCallService(callRepo, voiceAgent, apps, log), callRepo, appRepo
}

func TestCallService_ApplyResult_CompletedAdvancesToScoring(t *testing.T) {
	svc, callRepo, appRepo := newTestCallService(t)
	appRepo.apps["app-1"] = &appmodel.Application{ID: "app-1", Status: appmodel.StatusCallInProgress}
	callRepo.calls["call-1"] = &model.Call{ID: "call-1", ApplicationID: "app-1", Status: model.StatusInProgress}

	status, completed, err := svc.ApplyResult(context.Background(), "call-1", &ports.CallResult{
		RawStatus:  "completed",
		Transcript: "Agent: hi\n\nUser: hello",
	})

	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, model.StatusCompleted, status)
	assert.Equal(t, appmodel.StatusScoring, appRepo.apps["app-1"].Status)
	assert.NotNil(t, callRepo.calls["call-1"].EndedAt)
}

func TestCallService_ApplyResult_FailedTransitionsApplication(t *testing.T) {
	svc, callRepo, appRepo := newTestCallService(t)
	appRepo.apps["app-2"] = &appmodel.Application{ID: "app-2", Status: appmodel.StatusCallInProgress}
	callRepo.calls["call-2"] = &model.Call{ID: "call-2", ApplicationID: "app-2", Status: model.StatusInProgress}

	status, completed, err := svc.ApplyResult(context.Background(), "call-2", &ports.CallResult{RawStatus: "no_answer"})

	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, model.StatusNoAnswer, status)
	assert.Equal(t, appmodel.StatusCallFailed, appRepo.apps["app-2"].Status)
}

func TestCallService_InitiateSingle(t *testing.T) {
	svc, _, _ := newTestCallService(t)

	call, err := svc.InitiateSingle(context.Background(), ports.CallSubject{ApplicationID: "app-3"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInitiated, call.Status)
	require.NotNil(t, call.ExternalConversationID)
	assert.Equal(t, "conv-1", *call.ExternalConversationID)
}

func TestCallService_BindLateArriving(t *testing.T) {
	svc, callRepo, _ := newTestCallService(t)
	callRepo.calls["call-4"] = &model.Call{ID: "call-4", ApplicationID: "app-4", Status: model.StatusInitiated}

	call, err := svc.BindLateArriving(context.Background(), "app-4", "conv-late")
	require.NoError(t, err)
	require.NotNil(t, call.ExternalConversationID)
	assert.Equal(t, "conv-late", *call.ExternalConversationID)
}
