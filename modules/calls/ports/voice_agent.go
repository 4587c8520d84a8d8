package ports

import (
	"context"

	positionmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
)

// CallSubject bundles the data the voice-agent client needs from an Application without
// importing the applications or candidates service packages directly.
type CallSubject struct {
	ApplicationID  string
	CandidateName  string
	CandidateFirst string
	CandidateEmail string
	CandidatePhone string
	FormAnswers    map[string]string
	Position       *positionmodel.Position
}

// CallResult is the normalised shape of a poll/webhook payload, before the reducer.
type CallResult struct {
	ExternalConversationID string
	RawStatus              string
	Transcript             string
	Summary                string
	SummaryTitle           string
	RecordingURL           string
	DurationSeconds        int
}

// VoiceAgentClient talks to the outbound voice-calling provider. InitiateCall fires a
// single call (used for the callback queue); InitiateBatch submits up to 50 recipients in
// one request (used for the batch queue); Poll fetches the provider's single conversation
// endpoint (/v1/convai/conversations/{id}) for reconcile_stuck_calls and tries no
// alternate endpoints.
type VoiceAgentClient interface {
	InitiateCall(ctx context.Context, subject CallSubject) (externalConversationID string, err error)
	InitiateBatch(ctx context.Context, subjects []CallSubject) (externalBatchID string, err error)
	Poll(ctx context.Context, conversationID string) (*CallResult, error)
}
