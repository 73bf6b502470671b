package settings

import "context"

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound until settings are first saved.
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
