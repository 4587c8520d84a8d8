package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
)

// EvaluationRepository persists Evaluations and enforces the at-most-one-per-call
// invariant through CreateLocked's row lock on the owning Call.
type EvaluationRepository interface {
	GetByID(ctx context.Context, id string) (*model.Evaluation, error)
	GetByCallID(ctx context.Context, callID string) (*model.Evaluation, error)

	// CreateLocked acquires a row lock on the calls row identified by callID, re-checks
	// for an existing Evaluation under that lock, and only creates eval if none is
	// found. Returns the existing Evaluation (created=false) on a race, or the newly
	// persisted one (created=true).
	CreateLocked(ctx context.Context, callID string, eval *model.Evaluation) (result *model.Evaluation, created bool, err error)
}
