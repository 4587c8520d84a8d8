package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	candmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	msgmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	posmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	posports "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	settingsmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/model"
	settingsports "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/ports"
	settingsservice "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCandidateRepository struct {
	byID map[string]*candmodel.Candidate
}

func (f *fakeCandidateRepository) Create(ctx context.Context, c *candmodel.Candidate) error { return nil }
func (f *fakeCandidateRepository) GetByID(ctx context.Context, id string) (*candmodel.Candidate, error) {
	c, ok := f.byID[id]
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

var _ candports.CandidateRepository = (*fakeCandidateRepository)(nil)

type fakePositionRepository struct {
	byID map[string]*posmodel.Position
}

func (f *fakePositionRepository) Create(ctx context.Context, p *posmodel.Position) error { return nil }
func (f *fakePositionRepository) GetByID(ctx context.Context, id string) (*posmodel.Position, error) {
	p, ok := f.byID[id]
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

var _ posports.PositionRepository = (*fakePositionRepository)(nil)

type fakeApplicationRepository struct {
	byID   map[string]*appmodel.Application
	closed []string
}

func (f *fakeApplicationRepository) Create(ctx context.Context, app *appmodel.Application) error { return nil }
func (f *fakeApplicationRepository) GetByID(ctx context.Context, id string) (*appmodel.Application, error) {
	app, ok := f.byID[id]
	if !ok {
		return nil, appmodel.ErrApplicationNotFound
	}
	return app, nil
}
func (f *fakeApplicationRepository) FindByReferenceNumber(ctx context.Context, n int) (*appmodel.Application, error) {
	return nil, appmodel.ErrApplicationNotFound
}
func (f *fakeApplicationRepository) List(ctx context.Context, filter appports.ListFilter) ([]*appmodel.Application, int, error) {
	var out []*appmodel.Application
	for _, app := range f.byID {
		if len(filter.Statuses) > 0 && !statusIn(app.Status, filter.Statuses) {
			continue
		}
		out = append(out, app)
	}
	return out, len(out), nil
}
func (f *fakeApplicationRepository) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeApplicationRepository) ListStatusChanges(ctx context.Context, appID string) ([]*appmodel.StatusChange, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) Transition(ctx context.Context, appID string, newStatus appmodel.Status, actorID *string, note *string, mutate appports.Mutator) (*appmodel.Application, *appmodel.StatusChange, error) {
	return nil, nil, nil
}
func (f *fakeApplicationRepository) BulkTransition(ctx context.Context, ids []string, fromStatuses []appmodel.Status, newStatus appmodel.Status, note *string) (int, error) {
	n := 0
	for _, id := range ids {
		app, ok := f.byID[id]
		if !ok || !statusIn(app.Status, fromStatuses) {
			continue
		}
		app.Status = newStatus
		f.closed = append(f.closed, id)
		n++
	}
	return n, nil
}

var _ appports.ApplicationRepository = (*fakeApplicationRepository)(nil)

func statusIn(s appmodel.Status, statuses []appmodel.Status) bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

type fakeSettingRepository struct {
	settings map[string]*settingsmodel.Setting
}

func (f *fakeSettingRepository) Get(ctx context.Context, key string) (*settingsmodel.Setting, error) {
	return f.settings[key], nil
}
func (f *fakeSettingRepository) Set(ctx context.Context, key string, enabled bool) error {
	if f.settings == nil {
		f.settings = map[string]*settingsmodel.Setting{}
	}
	f.settings[key] = &settingsmodel.Setting{Key: key, Enabled: enabled}
	return nil
}
func (f *fakeSettingRepository) EnsureDefault(ctx context.Context, key string, enabled bool) error {
	if _, ok := f.settings[key]; ok {
		return nil
	}
	return f.Set(ctx, key, enabled)
}

var _ settingsports.SettingRepository = (*fakeSettingRepository)(nil)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func testScheduler(t *testing.T, candidates *fakeCandidateRepository, positions *fakePositionRepository) *Scheduler {
	t.Helper()
	return &Scheduler{
		candidates: candidates,
		positions:  positions,
		logger:     newTestLogger(t),
	}
}

func TestBuildSubject_SkipsCandidateWithNoPhone(t *testing.T) {
	candidates := &fakeCandidateRepository{byID: map[string]*candmodel.Candidate{
		"cand-1": {ID: "cand-1", FullName: "Jane Doe", FirstName: "Jane"},
	}}
	position := &posmodel.Position{ID: "pos-1", FollowUpIntervalHours: 24}
	s := testScheduler(t, candidates, &fakePositionRepository{})

	subject, ok := s.buildSubject(context.Background(), &appmodel.Application{ID: "app-1", CandidateID: "cand-1"}, position)
	assert.False(t, ok)
	assert.Equal(t, "", subject.ApplicationID)
}

func TestBuildSubject_SkipsUnknownCandidate(t *testing.T) {
	s := testScheduler(t, &fakeCandidateRepository{byID: map[string]*candmodel.Candidate{}}, &fakePositionRepository{})
	position := &posmodel.Position{ID: "pos-1"}

	_, ok := s.buildSubject(context.Background(), &appmodel.Application{ID: "app-1", CandidateID: "missing"}, position)
	assert.False(t, ok)
}

func TestBuildSubject_Succeeds(t *testing.T) {
	candidates := &fakeCandidateRepository{byID: map[string]*candmodel.Candidate{
		"cand-1": {
			ID: "cand-1", FullName: "Jane Doe", FirstName: "Jane",
			Email: "jane@example.com", Phone: "+15551234567",
			FormAnswers: map[string]string{"years_experience": "5"},
		},
	}}
	position := &posmodel.Position{ID: "pos-1", Title: "Backend Engineer"}
	s := testScheduler(t, candidates, &fakePositionRepository{})

	subject, ok := s.buildSubject(context.Background(), &appmodel.Application{ID: "app-1", CandidateID: "cand-1"}, position)
	require.True(t, ok)
	assert.Equal(t, "app-1", subject.ApplicationID)
	assert.Equal(t, "+15551234567", subject.CandidatePhone)
	assert.Equal(t, "Jane", subject.CandidateFirst)
	assert.Equal(t, position, subject.Position)
	assert.Equal(t, "5", subject.FormAnswers["years_experience"])
}

func TestBuildSubjects_SkipsMissingPositionButKeepsRest(t *testing.T) {
	candidates := &fakeCandidateRepository{byID: map[string]*candmodel.Candidate{
		"cand-1": {ID: "cand-1", Phone: "+15550000001"},
		"cand-2": {ID: "cand-2", Phone: "+15550000002"},
	}}
	positions := &fakePositionRepository{byID: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1"},
	}}
	s := testScheduler(t, candidates, positions)

	apps := []*appmodel.Application{
		{ID: "app-1", CandidateID: "cand-1", PositionID: "pos-1"},
		{ID: "app-2", CandidateID: "cand-2", PositionID: "pos-missing"},
	}
	subjects, matched := s.buildSubjects(context.Background(), apps)
	require.Len(t, subjects, 1)
	require.Len(t, matched, 1)
	assert.Equal(t, "app-1", matched[0].ID)
}

func TestChunkApplications_SplitsIntoEvenGroups(t *testing.T) {
	apps := make([]*appmodel.Application, 5)
	for i := range apps {
		apps[i] = &appmodel.Application{ID: string(rune('a' + i))}
	}
	chunks := chunkApplications(apps, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
	assert.Len(t, chunks[2], 1)
}

func TestChunkApplications_EmptyInput(t *testing.T) {
	assert.Nil(t, chunkApplications(nil, 50))
}

func TestChunkApplications_NonPositiveSizeFallsBackToDefault(t *testing.T) {
	apps := make([]*appmodel.Application, 60)
	for i := range apps {
		apps[i] = &appmodel.Application{ID: string(rune(i))}
	}
	chunks := chunkApplications(apps, 0)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 10)
}

func TestFollowupTransitions_CoverTheQualifiedAwaitingCVChain(t *testing.T) {
	cases := []struct {
		from appmodel.Status
		msg  msgmodel.Type
		next appmodel.Status
	}{
		{appmodel.StatusAwaitingCV, msgmodel.TypeFollowup1, appmodel.StatusCVFollowup1},
		{appmodel.StatusCVFollowup1, msgmodel.TypeFollowup2, appmodel.StatusCVFollowup2},
		{appmodel.StatusCVFollowup2, msgmodel.TypeOverdue, appmodel.StatusCVOverdue},
	}
	for _, c := range cases {
		transition, ok := followupTransitions[c.from]
		require.True(t, ok, "missing transition for %s", c.from)
		assert.Equal(t, c.msg, transition.messageType)
		assert.Equal(t, c.next, transition.next)
	}
	_, ok := followupTransitions[appmodel.StatusCVOverdue]
	assert.False(t, ok, "cv_overdue must be a terminal state for the follow-up job")
}

func TestPollCVInbox_NoopWhenDisabled(t *testing.T) {
	settings := settingsservice.NewSettingService(&fakeSettingRepository{}, newTestLogger(t))
	s := &Scheduler{logger: newTestLogger(t), settings: settings}
	s.pollCVInbox(context.Background())
}

func closeStaleRejectedTestScheduler(t *testing.T, apps *fakeApplicationRepository, positions *fakePositionRepository) *Scheduler {
	t.Helper()
	return &Scheduler{
		apps:      appservice.NewApplicationService(apps, nil, newTestLogger(t)),
		positions: positions,
		logger:    newTestLogger(t),
	}
}

func TestCloseStaleRejected_ClosesAwaitingCVRejectedPastUpdatedAtDeadline(t *testing.T) {
	stale := time.Now().UTC().Add(-48 * time.Hour)
	apps := &fakeApplicationRepository{byID: map[string]*appmodel.Application{
		"app-1": {ID: "app-1", PositionID: "pos-1", Status: appmodel.StatusAwaitingCVRejected, UpdatedAt: stale},
	}}
	positions := &fakePositionRepository{byID: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1", RejectedCVTimeoutDays: 1},
	}}
	s := closeStaleRejectedTestScheduler(t, apps, positions)

	s.closeStaleRejected(context.Background())

	assert.Equal(t, []string{"app-1"}, apps.closed)
	assert.Equal(t, appmodel.StatusClosed, apps.byID["app-1"].Status)
}

func TestCloseStaleRejected_ClosesCVReceivedRejectedPastCVReceivedAtDeadline(t *testing.T) {
	staleReceipt := time.Now().UTC().Add(-48 * time.Hour)
	recentUpdate := time.Now().UTC()
	apps := &fakeApplicationRepository{byID: map[string]*appmodel.Application{
		"app-1": {
			ID: "app-1", PositionID: "pos-1", Status: appmodel.StatusCVReceivedRejected,
			CVReceivedAt: &staleReceipt, UpdatedAt: recentUpdate,
		},
	}}
	positions := &fakePositionRepository{byID: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1", RejectedCVTimeoutDays: 1},
	}}
	s := closeStaleRejectedTestScheduler(t, apps, positions)

	s.closeStaleRejected(context.Background())

	assert.Equal(t, []string{"app-1"}, apps.closed, "cv_received_at, not the recent updated_at, must be the baseline")
	assert.Equal(t, appmodel.StatusClosed, apps.byID["app-1"].Status)
}

func TestCloseStaleRejected_ClosesCVOverduePastUpdatedAtDeadline(t *testing.T) {
	stale := time.Now().UTC().Add(-48 * time.Hour)
	apps := &fakeApplicationRepository{byID: map[string]*appmodel.Application{
		"app-1": {ID: "app-1", PositionID: "pos-1", Status: appmodel.StatusCVOverdue, UpdatedAt: stale},
	}}
	positions := &fakePositionRepository{byID: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1", RejectedCVTimeoutDays: 1},
	}}
	s := closeStaleRejectedTestScheduler(t, apps, positions)

	s.closeStaleRejected(context.Background())

	assert.Equal(t, []string{"app-1"}, apps.closed)
	assert.Equal(t, appmodel.StatusClosed, apps.byID["app-1"].Status)
}

func TestCloseStaleRejected_LeavesApplicationsBeforeTheirDeadline(t *testing.T) {
	recent := time.Now().UTC()
	apps := &fakeApplicationRepository{byID: map[string]*appmodel.Application{
		"app-1": {ID: "app-1", PositionID: "pos-1", Status: appmodel.StatusAwaitingCVRejected, UpdatedAt: recent},
	}}
	positions := &fakePositionRepository{byID: map[string]*posmodel.Position{
		"pos-1": {ID: "pos-1", RejectedCVTimeoutDays: 30},
	}}
	s := closeStaleRejectedTestScheduler(t, apps, positions)

	s.closeStaleRejected(context.Background())

	assert.Empty(t, apps.closed)
	assert.Equal(t, appmodel.StatusAwaitingCVRejected, apps.byID["app-1"].Status)
}
