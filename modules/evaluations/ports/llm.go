package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
)

// LLMClient is the narrow surface the evaluation adapter needs from a completion
// provider. internal/platform/llm.Client satisfies this structurally.
type LLMClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// CVRequestTrigger fires the post-evaluation outbound CV request. Implemented by the
// messaging module; injected here rather than imported directly so evaluations never
// depends on messaging's transport concerns.
type CVRequestTrigger interface {
	SendCVRequest(ctx context.Context, applicationID string, qualified bool) error
}
