package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
)

type ListFilter struct {
	Status *model.Status
	Limit  int
	Offset int
}

type PositionRepository interface {
	Create(ctx context.Context, p *model.Position) error
	GetByID(ctx context.Context, id string) (*model.Position, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Position, int, error)
	Update(ctx context.Context, p *model.Position) error
	Delete(ctx context.Context, id string) error

	// ListOpenForDispatch returns every OPEN position, for the scheduler's batch and
	// callback queues.
	ListOpenForDispatch(ctx context.Context) ([]*model.Position, error)
}
