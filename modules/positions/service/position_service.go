package service

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"go.uber.org/zap"
)

type PositionService struct {
	repo   ports.PositionRepository
	logger *logger.Logger
}

func NewPositionService(repo ports.PositionRepository, log *logger.Logger) *PositionService {
	return &PositionService{repo: repo, logger: log}
}

func (s *PositionService) Create(ctx context.Context, p *model.Position) (*model.Position, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PositionService) GetByID(ctx context.Context, id string) (*model.Position, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PositionService) List(ctx context.Context, filter ports.ListFilter) ([]*model.Position, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *PositionService) Update(ctx context.Context, p *model.Position) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *PositionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// OpenPositionsForDispatch returns OPEN positions, logging a warning for each one whose
// calling-hour window is misconfigured so the scheduler can skip it.
func (s *PositionService) OpenPositionsForDispatch(ctx context.Context) ([]*model.Position, error) {
	positions, err := s.repo.ListOpenForDispatch(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		if p.IsMisconfigured() {
			s.logger.Warn("position has a misconfigured calling-hour window, skipping its applications this cycle",
				zap.String("position_id", p.ID),
				zap.Int("calling_hour_start", p.CallingHourStart),
				zap.Int("calling_hour_end", p.CallingHourEnd))
		}
	}
	return positions, nil
}

func validate(p *model.Position) error {
	if !p.Status.IsValid() {
		return model.ErrInvalidStatus
	}
	if p.CallingHourStart < 0 || p.CallingHourStart > 23 || p.CallingHourEnd < 0 || p.CallingHourEnd > 23 {
		return model.ErrInvalidCallingWindow
	}
	if p.CallingHourStart >= p.CallingHourEnd {
		return model.ErrInvalidCallingWindow
	}
	if p.CallRetryMax <= 0 || p.CallRetryIntervalMins <= 0 || p.FollowUpIntervalHours <= 0 || p.RejectedCVTimeoutDays <= 0 {
		return model.ErrInvalidTuning
	}
	return nil
}
