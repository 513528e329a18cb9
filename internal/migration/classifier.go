package migration

import (
	"context"
	"log/slog"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Classifier sorts list entries into migration buckets by how many
// identifiers on the target provider their record has.
type Classifier struct {
	cache  domain.AnimeCache
	logger *slog.Logger
}

// NewClassifier creates a classifier reading through cache.
func NewClassifier(cache domain.AnimeCache, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cache: cache, logger: logger}
}

// ValidateProviders fails with a configuration error unless both hosts are
// available in the cache.
func (c *Classifier) ValidateProviders(from, to string) error {
	for _, host := range []string{from, to} {
		if !c.cache.HasMetaDataProvider(host) {
			return domain.UnsupportedProviderError(host)
		}
	}
	return nil
}

// InScope returns the entries linked to the source provider, in list order.
// Unlinked rows and rows of other providers are left out.
func InScope(entries []domain.ListEntry, from string) []domain.ListEntry {
	var out []domain.ListEntry
	for _, e := range entries {
		if link := e.GetLink(); !link.IsZero() && link.Host() == from {
			out = append(out, e)
		}
	}
	return out
}

// Classify buckets the in-scope entries in list order. onEntry, when set, is
// called after every processed entry. A loader failure aborts the run.
// Callers check the hosts with ValidateProviders first.
func (c *Classifier) Classify(
	ctx context.Context,
	entries []domain.ListEntry,
	from, to string,
	onEntry func(),
) (domain.Classification, error) {
	var result domain.Classification
	for _, entry := range InScope(entries, from) {
		if err := ctx.Err(); err != nil {
			return domain.Classification{}, err
		}

		targets, err := c.cache.MapToMetaDataProvider(ctx, entry.GetLink(), to)
		if err != nil {
			c.logger.Error("failed to map entry", "error", err, "link", entry.GetLink(), "title", entry.GetTitle())
			return domain.Classification{}, err
		}

		switch len(targets) {
		case 0:
			result.WithoutMapping = append(result.WithoutMapping, entry)
		case 1:
			result.Mappings = append(result.Mappings, domain.Mapping{Entry: entry, Target: targets[0]})
		default:
			result.MultipleMappings = append(result.MultipleMappings, domain.AmbiguousMapping{
				Entry:      entry,
				Candidates: targets,
			})
		}

		if onEntry != nil {
			onEntry()
		}
	}

	c.logger.Debug("classified entries",
		"from", from, "to", to,
		"withoutMapping", len(result.WithoutMapping),
		"multipleMappings", len(result.MultipleMappings),
		"mappings", len(result.Mappings),
	)
	return result, nil
}
