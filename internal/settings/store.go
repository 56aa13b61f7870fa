// Package settings persists the page configuration as a JSON file.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
	"viaqris/internal/storage"
)

// DefaultKey is the settings document location inside the data directory.
const DefaultKey = "data/viaQris.json"

// Store implements domain.SettingsRepository.
type Store struct {
	files  *storage.FileStore
	key    string
	logger *infra.Logger
	mu     sync.Mutex
}

func NewStore(files *storage.FileStore, key string, logger *infra.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Store{files: files, key: key, logger: logger}
}

// Load returns the stored settings with defaults for every missing field. A
// missing or unreadable document yields the defaults.
func (s *Store) Load(ctx context.Context) (domain.Settings, error) {
	cfg := domain.DefaultSettings()
	raw, err := s.files.Read(ctx, s.key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cfg, ctxErr
		}
		s.logger.Warn().Err(err).Str("key", s.key).Msg("settings unreadable, using defaults")
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("settings malformed, using defaults")
		return domain.DefaultSettings(), nil
	}
	return cfg, nil
}

// Save merges patch into the current settings and writes the result.
func (s *Store) Save(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Load(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	merged := patch.Apply(current)
	if err := validate(merged); err != nil {
		return domain.Settings{}, err
	}
	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return domain.Settings{}, err
	}
	if _, err := s.files.Write(ctx, s.key, raw); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: save: %w", err)
	}
	return merged, nil
}

func validate(cfg domain.Settings) error {
	switch {
	case cfg.TargetGoal < 0:
		return fmt.Errorf("%w: targetGoal must not be negative", domain.ErrValidation)
	case cfg.FeePercent < 0 || cfg.FeePercent >= 1:
		return fmt.Errorf("%w: feePercent must be in [0, 1)", domain.ErrValidation)
	case cfg.PaymentTolerancePercent < 0 || cfg.PaymentTolerancePercent >= 1:
		return fmt.Errorf("%w: paymentTolerancePercent must be in [0, 1)", domain.ErrValidation)
	case cfg.PaymentToleranceMin < 0:
		return fmt.Errorf("%w: paymentToleranceMin must not be negative", domain.ErrValidation)
	}
	return nil
}

var _ domain.SettingsRepository = (*Store)(nil)
