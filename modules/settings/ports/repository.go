package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/settings/model"
)

// SettingRepository persists the named boolean switches operators can flip at runtime.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Set(ctx context.Context, key string, enabled bool) error
	EnsureDefault(ctx context.Context, key string, enabled bool) error
}
