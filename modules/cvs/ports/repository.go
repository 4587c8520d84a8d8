package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
)

// CVUploadRepository persists CVUpload rows. CreateMany writes one row per affected
// application as a single atomic batch, all sharing the same file path and match
// method.
type CVUploadRepository interface {
	CreateMany(ctx context.Context, uploads []*model.CVUpload) error
	GetByID(ctx context.Context, id string) (*model.CVUpload, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*model.CVUpload, error)
	ListNeedingReview(ctx context.Context, limit, offset int) ([]*model.CVUpload, int, error)
}

// UnmatchedInboundRepository persists attachments the cascade could not attribute to
// any candidate.
type UnmatchedInboundRepository interface {
	Create(ctx context.Context, u *model.UnmatchedInbound) error
	GetByID(ctx context.Context, id string) (*model.UnmatchedInbound, error)
	List(ctx context.Context, resolved *bool, limit, offset int) ([]*model.UnmatchedInbound, int, error)
	Resolve(ctx context.Context, id, applicationID string) (*model.UnmatchedInbound, error)
}
