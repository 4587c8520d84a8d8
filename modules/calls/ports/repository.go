package ports

import (
	"context"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
)

// Mutator is applied to a Call inside the same atomic unit as a status write, mirroring
// applications/ports.Mutator so compound Call updates (status + transcript + ended_at)
// never partially commit.
type Mutator func(call *model.Call)

type CallRepository interface {
	Create(ctx context.Context, call *model.Call) error
	GetByID(ctx context.Context, id string) (*model.Call, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Call, error)

	// Apply atomically mutates the Call row identified by id under a row lock and returns
	// it. Lookups by ExternalConversationID resolve the id first.
	Apply(ctx context.Context, id string, mutate Mutator) (*model.Call, error)

	// FindByExternalConversationID looks a Call up by its bound external id.
	FindByExternalConversationID(ctx context.Context, conversationID string) (*model.Call, error)

	// BindLatestInitiated finds the most recent INITIATED call for applicationID with a
	// null ExternalConversationID, locks its row, sets conversationID on it, and returns
	// it. Used by the webhook's late-binding path. Returns
	// model.ErrNoCandidateForBind if none exists.
	BindLatestInitiated(ctx context.Context, applicationID string, conversationID string) (*model.Call, error)

	// ListStuck returns INITIATED/IN_PROGRESS calls older than threshold with a non-null
	// ExternalConversationID, for reconcile_stuck_calls.
	ListStuck(ctx context.Context, threshold time.Time) ([]*model.Call, error)

	// ListOrphanedBatch returns INITIATED calls with an ExternalBatchID but no
	// ExternalConversationID, older than threshold, for orphan escalation.
	ListOrphanedBatch(ctx context.Context, threshold time.Time) ([]*model.Call, error)

	// NextAttemptNumber returns the next sequential attempt_number for applicationID.
	NextAttemptNumber(ctx context.Context, applicationID string) (int, error)
}
