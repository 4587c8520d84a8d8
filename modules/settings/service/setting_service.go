package service

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/settings/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/settings/ports"
	"go.uber.org/zap"
)

// SettingService reads operator-toggleable switches, falling back to a fixed default
// whenever the repository has no opinion (lookup failure, or a key nobody ever set).
type SettingService struct {
	repo   ports.SettingRepository
	logger *logger.Logger
}

func NewSettingService(repo ports.SettingRepository, log *logger.Logger) *SettingService {
	return &SettingService{repo: repo, logger: log}
}

// Bool returns the persisted value for key, or fallback if no row exists or the lookup
// itself failed — a settings-store outage should never flip a gated job on or off.
func (s *SettingService) Bool(ctx context.Context, key string, fallback bool) bool {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read setting, using fallback", zap.String("key", key), zap.Error(err))
		return fallback
	}
	if setting == nil {
		return fallback
	}
	return setting.Enabled
}

func (s *SettingService) Set(ctx context.Context, key string, enabled bool) error {
	return s.repo.Set(ctx, key, enabled)
}

func (s *SettingService) EnsureDefault(ctx context.Context, key string, enabled bool) error {
	return s.repo.EnsureDefault(ctx, key, enabled)
}

// MailboxPollEnabled reports whether poll_cv_inbox should run its next tick.
func (s *SettingService) MailboxPollEnabled(ctx context.Context, configDefault bool) bool {
	return s.Bool(ctx, model.MailboxPollEnabledKey, configDefault)
}
