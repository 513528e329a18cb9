package domain

import "context"

// Loader fetches records from one meta data provider.
// Implemented by the clients in adapter/source.
type Loader interface {
	// Hostname returns the provider host this loader serves (e.g. "kitsu.app")
	Hostname() string

	// LoadAnime fetches the record for id. It returns an error wrapping
	// ErrDeadEntry when the provider confirms the anime does not exist.
	LoadAnime(ctx context.Context, id Identifier) (*AnimeRecord, error)
}

// AnimeCache is the identity cache as seen by its consumers.
type AnimeCache interface {
	Fetch(ctx context.Context, id Identifier) (Slot, error)
	Populate(id Identifier, slot Slot) bool
	Clear()
	AvailableMetaDataProviders() []string
	HasMetaDataProvider(host string) bool
	MapToMetaDataProvider(ctx context.Context, id Identifier, host string) ([]Identifier, error)
}

// CachedEntry is one addressable identifier with its live record.
type CachedEntry struct {
	ID     Identifier
	Record *AnimeRecord
}
