package settings

import (
	"context"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

type SettingsService interface {
	Get(ctx context.Context) (SettingsResponse, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
	ApplyTemplate(ctx context.Context, req ApplyTemplateRequest) (SettingsResponse, error)
	// Policy loads the current settings and goals as one engine snapshot.
	Policy(ctx context.Context) (engine.Policy, error)
}
