package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/redis"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	"go.uber.org/zap"
)

// sidebarCacheKey is the single aggregated-counts cache entry invalidated by every
// Application transition. A 60s TTL is tolerated by readers; this service only ever
// deletes the key so the next read recomputes it.
const sidebarCacheKey = "sidebar:application_counts"

type ApplicationService struct {
	repo   ports.ApplicationRepository
	cache  *redis.Client
	logger *logger.Logger
}

func NewApplicationService(repo ports.ApplicationRepository, cache *redis.Client, log *logger.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, cache: cache, logger: log}
}

func (s *ApplicationService) Create(ctx context.Context, candidateID, positionID string) (*model.Application, error) {
	app := &model.Application{
		CandidateID: candidateID,
		PositionID:  positionID,
		Status:      model.StatusPendingCall,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) GetByID(ctx context.Context, id string) (*model.Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ApplicationService) List(ctx context.Context, filter ports.ListFilter) ([]*model.Application, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *ApplicationService) Timeline(ctx context.Context, appID string) ([]*model.StatusChange, error) {
	return s.repo.ListStatusChanges(ctx, appID)
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddNote records a free-text timeline entry with no status change: a StatusChange
// row with from==to.
func (s *ApplicationService) AddNote(ctx context.Context, appID string, actorID *string, note string) (*model.StatusChange, error) {
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	_, change, err := s.repo.Transition(ctx, appID, app.Status, actorID, &note, nil)
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Transition is the generic entry point every named status-change helper below
// delegates to. mutate, if non-nil, composes any adjacent-field update inside the
// same atomic unit as the status change.
func (s *ApplicationService) Transition(ctx context.Context, appID string, newStatus model.Status, actorID *string, note *string, mutate ports.Mutator) (*model.Application, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidStatus, newStatus)
	}
	app, _, err := s.repo.Transition(ctx, appID, newStatus, actorID, note, mutate)
	if err != nil {
		return nil, err
	}
	s.invalidateSidebarCache(ctx)
	return app, nil
}

func (s *ApplicationService) invalidateSidebarCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, sidebarCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate sidebar counts cache", zap.Error(err))
	}
}

// ── Named transition helpers, one per named status change the pipeline supports,
// each composing its adjacent field update and the status change atomically. ──

func (s *ApplicationService) SetCallQueued(ctx context.Context, appID string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusCallQueued, nil, nil, nil)
}

func (s *ApplicationService) SetCallInProgress(ctx context.Context, appID string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusCallInProgress, nil, nil, nil)
}

func (s *ApplicationService) SetCallFailed(ctx context.Context, appID string, note *string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusCallFailed, nil, note, nil)
}

func (s *ApplicationService) SetCallCompletedThenScoring(ctx context.Context, appID string) (*model.Application, error) {
	if _, err := s.Transition(ctx, appID, model.StatusCallCompleted, nil, nil, nil); err != nil {
		return nil, err
	}
	return s.Transition(ctx, appID, model.StatusScoring, nil, nil, nil)
}

// SetQualified atomically records the evaluation outcome and transitions to QUALIFIED.
func (s *ApplicationService) SetQualified(ctx context.Context, appID string, score int, notes string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusQualified, nil, nil, func(app *model.Application) {
		app.Qualified = model.BoolPtr(true)
		app.Score = &score
		app.ScoreNotes = &notes
	})
}

// SetNotQualified atomically records the evaluation outcome and transitions to NOT_QUALIFIED.
func (s *ApplicationService) SetNotQualified(ctx context.Context, appID string, score int, notes string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusNotQualified, nil, nil, func(app *model.Application) {
		app.Qualified = model.BoolPtr(false)
		app.Score = &score
		app.ScoreNotes = &notes
	})
}

// SetCallbackScheduled composes callback_scheduled_at and the CALLBACK_SCHEDULED
// transition in one atomic unit rather than two separate saves.
func (s *ApplicationService) SetCallbackScheduled(ctx context.Context, appID string, at time.Time) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusCallbackScheduled, nil, nil, func(app *model.Application) {
		app.CallbackScheduledAt = &at
	})
}

// SetNeedsHuman composes needs_human_reason and the NEEDS_HUMAN transition atomically.
func (s *ApplicationService) SetNeedsHuman(ctx context.Context, appID string, reason string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusNeedsHuman, nil, nil, func(app *model.Application) {
		app.NeedsHumanReason = &reason
	})
}

// SetAwaitingCV transitions into the qualified or rejected awaiting-CV branch.
func (s *ApplicationService) SetAwaitingCV(ctx context.Context, appID string, rejected bool) (*model.Application, error) {
	target := model.StatusAwaitingCV
	if rejected {
		target = model.StatusAwaitingCVRejected
	}
	return s.Transition(ctx, appID, target, nil, nil, nil)
}

// SetCVReceived composes cv_received_at and the CV-received transition atomically.
func (s *ApplicationService) SetCVReceived(ctx context.Context, appID string, rejected bool, at time.Time) (*model.Application, error) {
	target := model.StatusCVReceived
	if rejected {
		target = model.StatusCVReceivedRejected
	}
	return s.Transition(ctx, appID, target, nil, nil, func(app *model.Application) {
		app.CVReceivedAt = &at
	})
}

func (s *ApplicationService) SetFollowupStatus(ctx context.Context, appID string, status model.Status) (*model.Application, error) {
	return s.Transition(ctx, appID, status, nil, nil, nil)
}

func (s *ApplicationService) SetClosed(ctx context.Context, appID string, note *string) (*model.Application, error) {
	return s.Transition(ctx, appID, model.StatusClosed, nil, note, nil)
}

// BulkFail transitions every application in ids that is still CALL_QUEUED to
// CALL_FAILED, used by dispatch_calls when a batch submission fails outright.
func (s *ApplicationService) BulkFail(ctx context.Context, ids []string, note string) (int, error) {
	n, err := s.repo.BulkTransition(ctx, ids, []model.Status{model.StatusCallQueued}, model.StatusCallFailed, &note)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateSidebarCache(ctx)
	}
	return n, nil
}

// BulkClose silently closes every application in ids that is still in one of
// fromStatuses, used by close_stale_rejected.
func (s *ApplicationService) BulkClose(ctx context.Context, ids []string, fromStatuses []model.Status) (int, error) {
	n, err := s.repo.BulkTransition(ctx, ids, fromStatuses, model.StatusClosed, nil)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateSidebarCache(ctx)
	}
	return n, nil
}
