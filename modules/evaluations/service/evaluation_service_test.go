package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	callmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	callports "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	candmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/ports"
	posmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	posports "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApplicationRepository implements applications/ports.ApplicationRepository.
type fakeApplicationRepository struct {
	apps map[string]*appmodel.Application
}

func (f *fakeApplicationRepository) Create(ctx context.Context, app *appmodel.Application) error {
	f.apps[app.ID] = app
	return nil
}
func (f *fakeApplicationRepository) GetByID(ctx context.Context, id string) (*appmodel.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, appmodel.ErrApplicationNotFound
	}
	return app, nil
}
func (f *fakeApplicationRepository) List(ctx context.Context, filter appports.ListFilter) ([]*appmodel.Application, int, error) {
	return nil, 0, nil
}
func (f *fakeApplicationRepository) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeApplicationRepository) ListStatusChanges(ctx context.Context, appID string) ([]*appmodel.StatusChange, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) Transition(ctx context.Context, appID string, newStatus appmodel.Status, actorID *string, note *string, mutate appports.Mutator) (*appmodel.Application, *appmodel.StatusChange, error) {
	app, ok := f.apps[appID]
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
func (f *fakeApplicationRepository) BulkTransition(ctx context.Context, ids []string, fromStatuses []appmodel.Status, newStatus appmodel.Status, note *string) (int, error) {
	return 0, nil
}

// fakeCallRepository implements calls/ports.CallRepository, returning only a fixed
// Call for GetByID (everything evaluation needs).
type fakeCallRepository struct {
	calls map[string]*callmodel.Call
}

func (f *fakeCallRepository) Create(ctx context.Context, call *callmodel.Call) error { return nil }
func (f *fakeCallRepository) GetByID(ctx context.Context, id string) (*callmodel.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, callmodel.ErrCallNotFound
	}
	return c, nil
}
func (f *fakeCallRepository) ListByApplication(ctx context.Context, applicationID string) ([]*callmodel.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) Apply(ctx context.Context, id string, mutate callports.Mutator) (*callmodel.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) FindByExternalConversationID(ctx context.Context, conversationID string) (*callmodel.Call, error) {
	return nil, callmodel.ErrCallNotFound
}
func (f *fakeCallRepository) BindLatestInitiated(ctx context.Context, applicationID string, conversationID string) (*callmodel.Call, error) {
	return nil, callmodel.ErrNoCandidateForBind
}
func (f *fakeCallRepository) ListStuck(ctx context.Context, threshold time.Time) ([]*callmodel.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) ListOrphanedBatch(ctx context.Context, threshold time.Time) ([]*callmodel.Call, error) {
	return nil, nil
}
func (f *fakeCallRepository) NextAttemptNumber(ctx context.Context, applicationID string) (int, error) {
	return 1, nil
}

// fakeCandidateRepository implements candidates/ports.CandidateRepository.
type fakeCandidateRepository struct {
	candidates map[string]*candmodel.Candidate
}

func (f *fakeCandidateRepository) Create(ctx context.Context, c *candmodel.Candidate) error { return nil }
func (f *fakeCandidateRepository) GetByID(ctx context.Context, id string) (*candmodel.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, candmodel.ErrCandidateNotFound
	}
	return c, nil
}
func (f *fakeCandidateRepository) List(ctx context.Context, limit, offset int) ([]*candmodel.Candidate, int, error) {
	return nil, 0, nil
}
func (f *fakeCandidateRepository) Update(ctx context.Context, c *candmodel.Candidate) error { return nil }
func (f *fakeCandidateRepository) Delete(ctx context.Context, id string) error              { return nil }
func (f *fakeCandidateRepository) FindByEmail(ctx context.Context, addr string) (*candmodel.Candidate, error) {
	return nil, candmodel.ErrCandidateNotFound
}
func (f *fakeCandidateRepository) ListWithAwaitingCVApplications(ctx context.Context) ([]*candmodel.Candidate, error) {
	return nil, nil
}

// fakePositionRepository implements positions/ports.PositionRepository.
type fakePositionRepository struct {
	positions map[string]*posmodel.Position
}

func (f *fakePositionRepository) Create(ctx context.Context, p *posmodel.Position) error { return nil }
func (f *fakePositionRepository) GetByID(ctx context.Context, id string) (*posmodel.Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return nil, posmodel.ErrPositionNotFound
	}
	return p, nil
}
func (f *fakePositionRepository) List(ctx context.Context, filter posports.ListFilter) ([]*posmodel.Position, int, error) {
	return nil, 0, nil
}
func (f *fakePositionRepository) Update(ctx context.Context, p *posmodel.Position) error { return nil }
func (f *fakePositionRepository) Delete(ctx context.Context, id string) error            { return nil }
func (f *fakePositionRepository) ListOpenForDispatch(ctx context.Context) ([]*posmodel.Position, error) {
	return nil, nil
}

// fakeEvaluationRepository implements evaluations/ports.EvaluationRepository.
type fakeEvaluationRepository struct {
	byCall map[string]*model.Evaluation
}

func newFakeEvaluationRepository() *fakeEvaluationRepository {
	return &fakeEvaluationRepository{byCall: map[string]*model.Evaluation{}}
}

func (f *fakeEvaluationRepository) GetByID(ctx context.Context, id string) (*model.Evaluation, error) {
	for _, e := range f.byCall {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, model.ErrEvaluationNotFound
}
func (f *fakeEvaluationRepository) GetByCallID(ctx context.Context, callID string) (*model.Evaluation, error) {
	e, ok := f.byCall[callID]
	if !ok {
		return nil, model.ErrEvaluationNotFound
	}
	return e, nil
}
func (f *fakeEvaluationRepository) CreateLocked(ctx context.Context, callID string, eval *model.Evaluation) (*model.Evaluation, bool, error) {
	if existing, ok := f.byCall[callID]; ok {
		return existing, false, nil
	}
	eval.ID = "eval-" + callID
	f.byCall[callID] = eval
	return eval, true, nil
}

type fakeLLMClient struct {
	text string
	err  error
}

func (f *fakeLLMClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text}, nil
}

type fakeCVTrigger struct {
	calls []string
}

func (f *fakeCVTrigger) SendCVRequest(ctx context.Context, applicationID string, qualified bool) error {
	f.calls = append(f.calls, applicationID)
	return nil
}

func newTestEvaluationService(t *testing.T, llmText string) (*EvaluationService, *fakeApplicationRepository, *fakeEvaluationRepository, *fakeCVTrigger) {
	t.Helper()
	log, err := logger.New("info", "console")
	require.NoError(t, err)

	appRepo := &fakeApplicationRepository{apps: map[string]*appmodel.Application{
		"app-1": {ID: "app-1", CandidateID: "cand-1", PositionID: "pos-1", Status: appmodel.StatusScoring},
	}}
	callRepo := &fakeCallRepository{calls: map[string]*callmodel.Call{
		"call-1": {ID: "call-1", ApplicationID: "app-1", Status: callmodel.StatusCompleted},
	}}
	candidateRepo := &fakeCandidateRepository{candidates: map[string]*candmodel.Candidate{
		"cand-1": {ID: "cand-1", FullName: "Ana Pop", FormAnswers: map[string]string{"license": "yes"}},
	}}
	positionRepo := &fakePositionRepository{positions: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1", QualificationCriteria: "Must have a driver's license."},
	}}
	evalRepo := newFakeEvaluationRepository()
	cvTrigger := &fakeCVTrigger{}
	appSvc := appservice.NewApplicationService(appRepo, nil, log)

	svc := NewEvaluationService(evalRepo, &fakeLLMClient{text: llmText}, callRepo, appRepo, appSvc, candidateRepo, positionRepo, cvTrigger, "claude-sonnet-4-5", 1024, log)
	return svc, appRepo, evalRepo, cvTrigger
}

func TestEvaluationService_Evaluate_Qualified(t *testing.T) {
	llmText := `{"outcome":"qualified","qualified":true,"score":90,"reasoning":"Great fit"}`
	svc, appRepo, _, cvTrigger := newTestEvaluationService(t, llmText)

	eval, err := svc.Evaluate(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeQualified, eval.Outcome)
	assert.Equal(t, appmodel.StatusQualified, appRepo.apps["app-1"].Status)
	assert.Equal(t, []string{"app-1"}, cvTrigger.calls)
}

func TestEvaluationService_Evaluate_NotQualified(t *testing.T) {
	llmText := `{"outcome":"not_qualified","qualified":false,"score":10,"reasoning":"No license"}`
	svc, appRepo, _, cvTrigger := newTestEvaluationService(t, llmText)

	_, err := svc.Evaluate(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, appmodel.StatusNotQualified, appRepo.apps["app-1"].Status)
	assert.Equal(t, []string{"app-1"}, cvTrigger.calls)
}

func TestEvaluationService_Evaluate_NeedsHuman(t *testing.T) {
	llmText := `{"outcome":"needs_human","qualified":false,"score":50,"reasoning":"Ambiguous","needs_human":true,"needs_human_notes":"Conflicting answers"}`
	svc, appRepo, _, _ := newTestEvaluationService(t, llmText)

	_, err := svc.Evaluate(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, appmodel.StatusNeedsHuman, appRepo.apps["app-1"].Status)
	require.NotNil(t, appRepo.apps["app-1"].NeedsHumanReason)
	assert.Equal(t, "Conflicting answers", *appRepo.apps["app-1"].NeedsHumanReason)
}

func TestEvaluationService_Evaluate_IdempotentOnExisting(t *testing.T) {
	llmText := `{"outcome":"qualified","qualified":true,"score":90,"reasoning":"Great fit"}`
	svc, _, evalRepo, cvTrigger := newTestEvaluationService(t, llmText)

	first, err := svc.Evaluate(context.Background(), "call-1")
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), "call-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, evalRepo.byCall, 1)
	assert.Len(t, cvTrigger.calls, 1)
}

func TestEvaluationService_Evaluate_MalformedJSONFails(t *testing.T) {
	svc, _, _, _ := newTestEvaluationService(t, "not json at all, sorry")
	_, err := svc.Evaluate(context.Background(), "call-1")
	assert.Error(t, err)
}
