package service

import (
	"context"
	"errors"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/apperror"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	callports "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/ports"
	posports "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"go.uber.org/zap"
)

// EvaluationService scores a completed call against its position's qualification
// criteria using an LLM and dispatches the outcome-specific Application transition.
type EvaluationService struct {
	repo       ports.EvaluationRepository
	llmClient  ports.LLMClient
	calls      callports.CallRepository
	apps       appports.ApplicationRepository
	appService *appservice.ApplicationService
	candidates candports.CandidateRepository
	positions  posports.PositionRepository
	cvTrigger  ports.CVRequestTrigger
	model      string
	maxTokens  int64
	logger     *logger.Logger
}

func NewEvaluationService(
	repo ports.EvaluationRepository,
	llmClient ports.LLMClient,
	calls callports.CallRepository,
	apps appports.ApplicationRepository,
	appService *appservice.ApplicationService,
	candidates candports.CandidateRepository,
	positions posports.PositionRepository,
	cvTrigger ports.CVRequestTrigger,
	model string,
	maxTokens int64,
	log *logger.Logger,
) *EvaluationService {
	return &EvaluationService{
		repo:       repo,
		llmClient:  llmClient,
		calls:      calls,
		apps:       apps,
		appService: appService,
		candidates: candidates,
		positions:  positions,
		cvTrigger:  cvTrigger,
		model:      model,
		maxTokens:  maxTokens,
		logger:     log,
	}
}

func (s *EvaluationService) GetByID(ctx context.Context, id string) (*model.Evaluation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EvaluationService) GetByCallID(ctx context.Context, callID string) (*model.Evaluation, error) {
	return s.repo.GetByCallID(ctx, callID)
}

// TriggerEvaluation runs Evaluate for callID, catching and logging every error. This
// is the shared entry point used by both the voice-agent webhook and
// reconcile_stuck_calls — neither caller may fail because scoring failed (the webhook
// would re-deliver, the scheduler would abort the cycle).
func (s *EvaluationService) TriggerEvaluation(ctx context.Context, callID string) {
	eval, err := s.Evaluate(ctx, callID)
	if err != nil {
		s.logger.Error("evaluation failed", zap.String("call_id", callID), zap.Error(err))
		return
	}
	s.logger.Info("evaluation complete",
		zap.String("evaluation_id", eval.ID),
		zap.String("outcome", string(eval.Outcome)),
		zap.String("application_id", eval.ApplicationID))
}

// Evaluate scores the call identified by callID and performs the outcome-specific
// Application transition. Returns the existing Evaluation without calling the LLM if
// one already exists for this call (fast-path idempotency check); a definitive
// re-check happens inside the repository's row lock.
func (s *EvaluationService) Evaluate(ctx context.Context, callID string) (*model.Evaluation, error) {
	if existing, err := s.repo.GetByCallID(ctx, callID); err == nil {
		return existing, nil
	} else if !errors.Is(err, model.ErrEvaluationNotFound) {
		return nil, err
	}

	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	application, err := s.apps.GetByID(ctx, call.ApplicationID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidates.GetByID(ctx, application.CandidateID)
	if err != nil {
		return nil, err
	}
	position, err := s.positions.GetByID(ctx, application.PositionID)
	if err != nil {
		return nil, err
	}

	system := buildSystemPrompt(position.QualificationCriteria)
	formAnswersText := FormatFormAnswers(candidate.FormAnswers)
	transcriptText := "(No transcript available)"
	if call.Transcript != nil && *call.Transcript != "" {
		transcriptText = *call.Transcript
	}
	user := buildUserMessage(formAnswersText, transcriptText)

	resp, err := s.llmClient.Complete(ctx, llm.Request{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    system,
		User:      user,
	})
	if err != nil {
		if errors.Is(err, llm.ErrTruncated) {
			return nil, apperror.Wrap(apperror.KindSchema, err)
		}
		return nil, apperror.Wrap(apperror.KindTransient, err)
	}

	result, err := parseLLMResult(resp.Text)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindSchema, err)
	}

	eval := &model.Evaluation{
		ApplicationID:       application.ID,
		CallID:              callID,
		Outcome:             result.Outcome,
		Qualified:           result.Qualified,
		Score:               result.Score,
		Reasoning:           result.Reasoning,
		Criteria:            result.Criteria,
		DisqualifyingFactor: result.DisqualifyingFactor,
		CallbackRequested:   result.CallbackRequested,
		CallbackNotes:       result.CallbackNotes,
		CallbackAt:          result.CallbackAt,
		NeedsHuman:          result.NeedsHuman,
		NeedsHumanNotes:     result.NeedsHumanNotes,
		RawResponse:         resp.Text,
	}

	saved, created, err := s.repo.CreateLocked(ctx, callID, eval)
	if err != nil {
		return nil, err
	}
	if !created {
		s.logger.Info("evaluation already exists for call — race prevented by row lock",
			zap.String("call_id", callID), zap.String("evaluation_id", saved.ID))
		return saved, nil
	}

	if err := s.dispatchOutcome(ctx, saved); err != nil {
		return saved, err
	}

	if saved.Outcome == model.OutcomeQualified || saved.Outcome == model.OutcomeNotQualified {
		s.triggerCVRequest(ctx, saved.ApplicationID, saved.Outcome == model.OutcomeQualified)
	}

	return saved, nil
}

func (s *EvaluationService) dispatchOutcome(ctx context.Context, eval *model.Evaluation) error {
	switch eval.Outcome {
	case model.OutcomeQualified:
		_, err := s.appService.SetQualified(ctx, eval.ApplicationID, eval.Score, eval.Reasoning)
		return err
	case model.OutcomeNotQualified:
		_, err := s.appService.SetNotQualified(ctx, eval.ApplicationID, eval.Score, eval.Reasoning)
		return err
	case model.OutcomeCallbackRequested:
		if eval.CallbackAt == nil {
			s.logger.Warn("callback_requested outcome carried no parseable callback_at",
				zap.String("application_id", eval.ApplicationID))
			return nil
		}
		_, err := s.appService.SetCallbackScheduled(ctx, eval.ApplicationID, *eval.CallbackAt)
		return err
	case model.OutcomeNeedsHuman:
		reason := "Escalated by LLM evaluation."
		if eval.NeedsHumanNotes != nil && *eval.NeedsHumanNotes != "" {
			reason = *eval.NeedsHumanNotes
		}
		_, err := s.appService.SetNeedsHuman(ctx, eval.ApplicationID, reason)
		return err
	default:
		return nil
	}
}

// triggerCVRequest fires the post-evaluation CV request, logging but never
// propagating a failure back to the caller.
func (s *EvaluationService) triggerCVRequest(ctx context.Context, applicationID string, qualified bool) {
	if s.cvTrigger == nil {
		return
	}
	if err := s.cvTrigger.SendCVRequest(ctx, applicationID, qualified); err != nil {
		s.logger.Error("post-evaluation cv request failed",
			zap.String("application_id", applicationID), zap.Error(err))
	}
}
