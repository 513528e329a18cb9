package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrDeadEntry is returned by a Loader when the provider confirms the
	// identifier does not (or no longer) exist
	ErrDeadEntry = errors.New("anime does not exist on provider")

	// ErrUnsupportedProvider indicates a provider the cache has never seen a record for
	ErrUnsupportedProvider = errors.New("unsupported meta data provider")

	// ErrLoaderFailure indicates a loader error other than a confirmed dead entry
	ErrLoaderFailure = errors.New("loader failure")

	// ErrNoIdentifier indicates an operation on an entry without a link
	ErrNoIdentifier = errors.New("entry has no identifier")

	// ErrDuplicateLoader indicates a second loader registered for the same host
	ErrDuplicateLoader = errors.New("loader already registered for host")

	// ErrMigrationRunning indicates a classification run is already in flight
	ErrMigrationRunning = errors.New("migration check already running")

	// ErrNothingToUndo indicates an empty undo stack
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates an empty redo stack
	ErrNothingToRedo = errors.New("nothing to redo")
)

// UnsupportedProviderError builds the configuration error naming host.
func UnsupportedProviderError(host string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedProvider, host)
}

// LoadError wraps a loader failure for one identifier. It matches
// ErrLoaderFailure with errors.Is and is never memoized by the cache.
type LoadError struct {
	ID  Identifier
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s from %s: %v", e.ID, e.ID.Host(), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoaderFailure }
