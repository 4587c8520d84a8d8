package service

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
)

type CandidateService struct {
	repo   ports.CandidateRepository
	logger *logger.Logger
}

func NewCandidateService(repo ports.CandidateRepository, log *logger.Logger) *CandidateService {
	return &CandidateService{repo: repo, logger: log}
}

func (s *CandidateService) Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	if c.Phone == "" && c.Email == "" {
		return nil, model.ErrMissingContactMethod
	}
	if c.FullName == "" {
		c.FullName = c.FirstName + " " + c.LastName
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CandidateService) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CandidateService) FindByEmail(ctx context.Context, addr string) (*model.Candidate, error) {
	return s.repo.FindByEmail(ctx, addr)
}

func (s *CandidateService) List(ctx context.Context, limit, offset int) ([]*model.Candidate, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *CandidateService) Update(ctx context.Context, c *model.Candidate) error {
	return s.repo.Update(ctx, c)
}

func (s *CandidateService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CandidatesAwaitingCV returns candidates with at least one application pending a CV,
// the pool the fuzzy-name matching pass (priority 4) searches over.
func (s *CandidateService) CandidatesAwaitingCV(ctx context.Context) ([]*model.Candidate, error) {
	return s.repo.ListWithAwaitingCVApplications(ctx)
}
