package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
)

// CandidateRepository persists Candidates and supports the lookup operations the CV
// matching cascade and inbound webhook handlers need (priorities 1-2).
type CandidateRepository interface {
	Create(ctx context.Context, c *model.Candidate) error
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context, limit, offset int) ([]*model.Candidate, int, error)
	Update(ctx context.Context, c *model.Candidate) error
	Delete(ctx context.Context, id string) error

	// FindByEmail returns the candidate whose email matches addr case-insensitively,
	// or model.ErrCandidateNotFound.
	FindByEmail(ctx context.Context, addr string) (*model.Candidate, error)

	// ListWithAwaitingCVApplications returns every candidate that has at least one
	// Application in the awaiting-CV set, for the fuzzy-name pass (priority 4).
	ListWithAwaitingCVApplications(ctx context.Context) ([]*model.Candidate, error)
}
