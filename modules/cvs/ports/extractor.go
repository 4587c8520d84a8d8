package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
)

// LLMClient is the narrow slice of internal/platform/llm.Client the content-extraction
// path needs — the same abstraction evaluations/ports.LLMClient declares, duplicated
// here so neither module imports the other.
type LLMClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}
