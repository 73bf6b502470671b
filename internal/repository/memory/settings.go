package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
)

type settingsRepositoryImpl struct {
	mu      sync.RWMutex
	current *settings.Settings
}

func NewSettingsRepository() settings.SettingsRepository {
	return &settingsRepositoryImpl{}
}

func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return settings.Settings{}, settings.ErrSettingsNotFound
	}
	return *r.current, nil
}

func (r *settingsRepositoryImpl) Save(ctx context.Context, s settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
	r.current = &s
	return nil
}
