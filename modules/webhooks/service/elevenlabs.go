// Package service holds the business logic behind the two inbound webhook endpoints:
// the voice-agent post-call event and the WhatsApp gateway's inbound message event.
// Both are thin — authentication plus dispatch to the owning module's service — since
// the domain logic already lives in calls, evaluations, cvs and messaging.
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	callports "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	callservice "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/service"
	evalservice "github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/service"
	"go.uber.org/zap"
)

// elevenLabsTimestampTolerance bounds the age of a signed webhook before it is
// rejected as a possible replay.
const elevenLabsTimestampTolerance = 300 * time.Second

// ElevenLabsEvent is the post-call-transcription payload shape. ConversationID and the
// rest of the result fields may arrive nested under Data or, on some API versions, at
// the payload root — the root-level ConversationID and ClientData fields cover that.
type ElevenLabsEvent struct {
	Type string              `json:"type"`
	Data ElevenLabsEventData `json:"data"`

	// Root-level mirrors present on some API versions.
	ConversationID string                             `json:"conversation_id"`
	ClientData     *elevenLabsClientInitiationData     `json:"conversation_initiation_client_data"`
}

type ElevenLabsEventData struct {
	ConversationID string                         `json:"conversation_id"`
	Status         string                         `json:"status"`
	Transcript     []ElevenLabsTranscriptTurn      `json:"transcript"`
	Analysis       ElevenLabsAnalysis              `json:"analysis"`
	Metadata       ElevenLabsMetadata              `json:"metadata"`
	RecordingURL   string                          `json:"recording_url"`
	ClientData     *elevenLabsClientInitiationData `json:"conversation_initiation_client_data"`
}

type ElevenLabsTranscriptTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type ElevenLabsAnalysis struct {
	TranscriptSummary string `json:"transcript_summary"`
	CallSummaryTitle  string `json:"call_summary_title"`
}

type ElevenLabsMetadata struct {
	CallDurationSecs int `json:"call_duration_secs"`
}

type elevenLabsClientInitiationData struct {
	UserID string `json:"user_id"`
}

// ElevenLabsWebhookService validates and applies an ElevenLabs post-call event.
type ElevenLabsWebhookService struct {
	calls       *callservice.CallService
	evaluations *evalservice.EvaluationService
	secret      string
	logger      *logger.Logger
}

func NewElevenLabsWebhookService(calls *callservice.CallService, evaluations *evalservice.EvaluationService, secret string, log *logger.Logger) *ElevenLabsWebhookService {
	return &ElevenLabsWebhookService{calls: calls, evaluations: evaluations, secret: secret, logger: log}
}

// ValidateSignature checks the ElevenLabs-Signature header (t={unix},v0={hmac_hex})
// against rawBody. A blank configured secret disables validation entirely, in every
// environment; nothing in the service or its wiring rejects a blank secret in production.
func (s *ElevenLabsWebhookService) ValidateSignature(sigHeader string, rawBody []byte) error {
	if s.secret == "" {
		return nil
	}
	if sigHeader == "" {
		return fmt.Errorf("missing ElevenLabs-Signature header")
	}

	var timestampStr, receivedSig string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestampStr = kv[1]
		case "v0":
			receivedSig = kv[1]
		}
	}
	if timestampStr == "" || receivedSig == "" {
		return fmt.Errorf("ElevenLabs-Signature header missing t= or v0= component")
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("ElevenLabs-Signature timestamp is not an integer")
	}
	age := time.Now().Unix() - timestamp
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > elevenLabsTimestampTolerance {
		return fmt.Errorf("ElevenLabs-Signature timestamp is too old (age=%ds)", age)
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestampStr + "."))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(receivedSig)) {
		return fmt.Errorf("ElevenLabs-Signature HMAC mismatch")
	}
	return nil
}

// Parse decodes the raw webhook body into an ElevenLabsEvent.
func (s *ElevenLabsWebhookService) Parse(rawBody []byte) (*ElevenLabsEvent, error) {
	var event ElevenLabsEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ConversationIDOrRoot returns the conversation id from whichever location it appeared in.
func (e *ElevenLabsEvent) ConversationIDOrRoot() string {
	if e.Data.ConversationID != "" {
		return e.Data.ConversationID
	}
	return e.ConversationID
}

// clientUserID returns the application id embedded at batch-submission time, checking
// the nested Data location first and falling back to the payload root.
func (e *ElevenLabsEvent) clientUserID() string {
	if e.Data.ClientData != nil && e.Data.ClientData.UserID != "" {
		return e.Data.ClientData.UserID
	}
	if e.ClientData != nil && e.ClientData.UserID != "" {
		return e.ClientData.UserID
	}
	return ""
}

// Handle resolves the Call for event (locating it directly, or late-binding it via the
// application id embedded in the batch client data), applies the result, and — if the
// call reached a terminal completed state — fires the scoring evaluation.
// Returns (handled, error): handled is false only when the conversation id could not be
// resolved to any Call, which the caller should still acknowledge with 200.
func (s *ElevenLabsWebhookService) Handle(ctx context.Context, event *ElevenLabsEvent) (bool, error) {
	conversationID := event.ConversationIDOrRoot()
	if conversationID == "" {
		s.logger.Warn("elevenlabs webhook missing conversation_id")
		return false, nil
	}

	call, err := s.calls.FindByConversationID(ctx, conversationID)
	if err != nil {
		applicationID := event.clientUserID()
		if applicationID == "" {
			s.logger.Warn("elevenlabs webhook unknown conversation_id and no client user_id for late-binding",
				zap.String("conversation_id", conversationID))
			return false, nil
		}
		call, err = s.calls.BindLateArriving(ctx, applicationID, conversationID)
		if err != nil {
			s.logger.Warn("elevenlabs webhook late-binding failed",
				zap.String("conversation_id", conversationID), zap.String("application_id", applicationID), zap.Error(err))
			return false, nil
		}
	}

	result := &callports.CallResult{
		ExternalConversationID: conversationID,
		RawStatus:              event.Data.Status,
		Summary:                event.Data.Analysis.TranscriptSummary,
		SummaryTitle:           event.Data.Analysis.CallSummaryTitle,
		RecordingURL:           event.Data.RecordingURL,
		DurationSeconds:        event.Data.Metadata.CallDurationSecs,
	}
	result.Transcript = callservice.FormatTranscript(toTranscriptTurns(event.Data.Transcript))

	_, isCompleted, err := s.calls.ApplyResultByConversationID(ctx, conversationID, result)
	if err != nil {
		return true, err
	}

	s.logger.Info("elevenlabs webhook processed",
		zap.String("conversation_id", conversationID), zap.Bool("is_completed", isCompleted))

	if isCompleted {
		s.evaluations.TriggerEvaluation(ctx, call.ID)
	}
	return true, nil
}

func toTranscriptTurns(turns []ElevenLabsTranscriptTurn) []callservice.TranscriptTurn {
	out := make([]callservice.TranscriptTurn, len(turns))
	for i, t := range turns {
		out[i] = callservice.TranscriptTurn{Role: t.Role, Message: t.Message}
	}
	return out
}
