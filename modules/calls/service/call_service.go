package service

import (
	"context"
	"strconv"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	"go.uber.org/zap"
)

type CallService struct {
	repo       ports.CallRepository
	voiceAgent ports.VoiceAgentClient
	apps       *appservice.ApplicationService
	logger     *logger.Logger
}

func NewCallService(repo ports.CallRepository, voiceAgent ports.VoiceAgentClient, apps *appservice.ApplicationService, log *logger.Logger) *CallService {
	return &CallService{repo: repo, voiceAgent: voiceAgent, apps: apps, logger: log}
}

func (s *CallService) GetByID(ctx context.Context, id string) (*model.Call, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CallService) ListByApplication(ctx context.Context, applicationID string) ([]*model.Call, error) {
	return s.repo.ListByApplication(ctx, applicationID)
}

// FindByConversationID looks a Call up by its bound external conversation id, used by the
// voice-agent webhook to decide whether late-binding is required before applying a result.
func (s *CallService) FindByConversationID(ctx context.Context, conversationID string) (*model.Call, error) {
	return s.repo.FindByExternalConversationID(ctx, conversationID)
}

// InitiateSingle submits one call against subject (the callback queue path) and records
// an INITIATED Call row carrying the returned conversation id.
func (s *CallService) InitiateSingle(ctx context.Context, subject ports.CallSubject) (*model.Call, error) {
	conversationID, err := s.voiceAgent.InitiateCall(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.createInitiated(ctx, subject.ApplicationID, &conversationID, nil)
}

// InitiateBatch submits a chunk of subjects (at most 50, enforced by the caller) and
// records one INITIATED Call row per subject, all sharing the returned batch id — no
// external_conversation_id is known yet; late-binding resolves it later.
func (s *CallService) InitiateBatch(ctx context.Context, subjects []ports.CallSubject) ([]*model.Call, error) {
	batchID, err := s.voiceAgent.InitiateBatch(ctx, subjects)
	if err != nil {
		return nil, err
	}
	calls := make([]*model.Call, 0, len(subjects))
	for _, subject := range subjects {
		call, err := s.createInitiated(ctx, subject.ApplicationID, nil, &batchID)
		if err != nil {
			return calls, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func (s *CallService) createInitiated(ctx context.Context, applicationID string, conversationID, batchID *string) (*model.Call, error) {
	attempt, err := s.repo.NextAttemptNumber(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	call := &model.Call{
		ApplicationID:          applicationID,
		AttemptNumber:          attempt,
		Status:                 model.StatusInitiated,
		ExternalConversationID: conversationID,
		ExternalBatchID:        batchID,
		InitiatedAt:            time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}

// ApplyResult is the single source of truth for "receive call outcome → persist →
// advance pipeline", shared by the webhook handler and the reconciliation poller.
func (s *CallService) ApplyResult(ctx context.Context, callID string, result *ports.CallResult) (model.Status, bool, error) {
	rawStatus := result.RawStatus
	callStatus := model.RawStatus(rawStatus)
	isCompleted := callStatus == model.StatusCompleted

	call, err := s.repo.Apply(ctx, callID, func(call *model.Call) {
		call.Status = callStatus
		if result.Transcript != "" {
			call.Transcript = &result.Transcript
		}
		if result.Summary != "" {
			call.Summary = &result.Summary
		}
		if result.SummaryTitle != "" {
			call.SummaryTitle = &result.SummaryTitle
		}
		if result.RecordingURL != "" {
			call.RecordingURL = &result.RecordingURL
		}
		if result.DurationSeconds > 0 {
			d := result.DurationSeconds
			call.DurationSeconds = &d
		}
		if callStatus.IsTerminal() {
			now := time.Now().UTC()
			call.EndedAt = &now
		}
	})
	if err != nil {
		return "", false, err
	}

	switch {
	case isCompleted:
		if _, err := s.apps.SetCallCompletedThenScoring(ctx, call.ApplicationID); err != nil {
			return callStatus, isCompleted, err
		}
	case callStatus == model.StatusFailed || callStatus == model.StatusNoAnswer || callStatus == model.StatusBusy:
		note := "call ended with status " + string(callStatus)
		if _, err := s.apps.SetCallFailed(ctx, call.ApplicationID, &note); err != nil {
			return callStatus, isCompleted, err
		}
	}

	return callStatus, isCompleted, nil
}

// ApplyResultByConversationID resolves the Call by its bound external conversation id
// before delegating to ApplyResult, used by the voice-agent webhook once late-binding
// (if needed) has completed.
func (s *CallService) ApplyResultByConversationID(ctx context.Context, conversationID string, result *ports.CallResult) (model.Status, bool, error) {
	call, err := s.repo.FindByExternalConversationID(ctx, conversationID)
	if err != nil {
		return "", false, err
	}
	return s.ApplyResult(ctx, call.ID, result)
}

// BindLateArriving handles a webhook delivering a conversation id that has never been
// seen: it is attached to the most recent INITIATED call of the application it was
// submitted for.
func (s *CallService) BindLateArriving(ctx context.Context, applicationID, conversationID string) (*model.Call, error) {
	return s.repo.BindLatestInitiated(ctx, applicationID, conversationID)
}

// ReconcileStuck polls every INITIATED/IN_PROGRESS call older than threshold and applies
// whatever the provider reports through the shared reducer, then escalates orphaned
// batch calls that never received a webhook. It returns the ids of calls that were found
// completed during this pass, so the caller can trigger transcript evaluation for each —
// unlike the webhook path, a reconciled completion has no natural evaluation trigger of
// its own.
func (s *CallService) ReconcileStuck(ctx context.Context, stuckThreshold, orphanThreshold time.Duration) ([]string, error) {
	now := time.Now().UTC()
	var completedCallIDs []string

	stuck, err := s.repo.ListStuck(ctx, now.Add(-stuckThreshold))
	if err != nil {
		return nil, err
	}
	for _, call := range stuck {
		if call.ExternalConversationID == nil {
			continue
		}
		result, err := s.voiceAgent.Poll(ctx, *call.ExternalConversationID)
		if err != nil {
			s.logger.Warn("failed to poll stuck call", zap.String("call_id", call.ID), zap.Error(err))
			continue
		}
		_, isCompleted, err := s.ApplyResult(ctx, call.ID, result)
		if err != nil {
			s.logger.Warn("failed to apply reconciled call result", zap.String("call_id", call.ID), zap.Error(err))
			continue
		}
		if isCompleted {
			completedCallIDs = append(completedCallIDs, call.ID)
		}
	}

	orphaned, err := s.repo.ListOrphanedBatch(ctx, now.Add(-orphanThreshold))
	if err != nil {
		return completedCallIDs, err
	}
	for _, call := range orphaned {
		ended := now
		if _, err := s.repo.Apply(ctx, call.ID, func(call *model.Call) {
			call.Status = model.StatusFailed
			call.EndedAt = &ended
		}); err != nil {
			s.logger.Warn("failed to escalate orphaned batch call", zap.String("call_id", call.ID), zap.Error(err))
			continue
		}
		note := "batch call orphaned: no webhook received within " + strconv.Itoa(int(orphanThreshold.Minutes())) + " minutes"
		if _, err := s.apps.SetCallFailed(ctx, call.ApplicationID, &note); err != nil {
			s.logger.Warn("failed to fail application for orphaned call", zap.String("call_id", call.ID), zap.Error(err))
		}
	}

	return completedCallIDs, nil
}
