package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/adapter/source/anilist"
	"github.com/mmcdole/kanshi/internal/adapter/source/kitsu"
	"github.com/mmcdole/kanshi/internal/domain"
)

// SourceConfig contains the configuration needed to create a Loader
type SourceConfig struct {
	Type    adapter.SourceType
	BaseURL string
	Timeout time.Duration
}

// NewLoader creates a Loader based on the provider type.
func NewLoader(cfg *SourceConfig, logger *slog.Logger) (domain.Loader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case adapter.SourceTypeKitsu:
		return kitsu.NewClient(cfg.BaseURL, cfg.Timeout, logger.With("provider", kitsu.Host)), nil

	case adapter.SourceTypeAniList:
		return anilist.NewClient(cfg.BaseURL, cfg.Timeout, logger.With("provider", anilist.Host)), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// NewLoaders creates one Loader per configured provider
func NewLoaders(cfg *adapter.Config, logger *slog.Logger) ([]domain.Loader, error) {
	loaders := make([]domain.Loader, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		l, err := NewLoader(&SourceConfig{
			Type:    p.Type,
			BaseURL: p.BaseURL,
			Timeout: p.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, l)
	}
	return loaders, nil
}
