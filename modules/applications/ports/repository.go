package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
)

// ListFilter narrows Application listing for the operator API and scheduler queries.
type ListFilter struct {
	CandidateID string
	Statuses    []model.Status
	Qualified   *bool
	Limit       int
	Offset      int
}

// Mutator is applied to an Application inside the same atomic unit as its status
// transition, so compound updates (e.g. setting CVReceivedAt when entering
// CV_RECEIVED) can never partially commit. Implementations must not perform I/O.
type Mutator func(app *model.Application)

// ApplicationRepository is the single authority for reading and transitioning
// Application rows. Transition is the only way callers may change Status; there is no
// generic Update method, by design — every status change produces an audit entry.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)

	// FindByReferenceNumber looks up an Application by its short human-facing
	// reference number, the value CV request emails embed in their subject line and
	// the matching cascade's priority 3 extracts back out.
	FindByReferenceNumber(ctx context.Context, n int) (*model.Application, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Application, int, error)
	Delete(ctx context.Context, id string) error
	ListStatusChanges(ctx context.Context, appID string) ([]*model.StatusChange, error)

	// Transition atomically applies mutate (if non-nil) to the Application, sets its
	// Status to newStatus, and appends a StatusChange row. If newStatus equals the
	// current status and mutate is nil and note is nil, this is a no-op. A non-nil
	// note with newStatus == current status records a free-text timeline entry.
	Transition(ctx context.Context, appID string, newStatus model.Status, actorID *string, note *string, mutate Mutator) (*model.Application, *model.StatusChange, error)

	// BulkTransition moves every application in ids whose current status is still in
	// fromStatuses to newStatus, recording one StatusChange row per row actually
	// changed. Used by dispatch_calls' batch-failure path and close_stale_rejected's
	// sweep, where no caller-visible field mutation is needed alongside the status
	// write. Returns the number of applications actually transitioned.
	BulkTransition(ctx context.Context, ids []string, fromStatuses []model.Status, newStatus model.Status, note *string) (int, error)
}
