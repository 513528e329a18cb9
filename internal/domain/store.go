package domain

// Store handles local persistence (BoltDB + memory).
// The cache is pre-populated from it at start-up; lists are saved after every change.
type Store interface {
	// === Cache slots ===
	GetSlots() (map[Identifier]Slot, bool)
	SaveSlots(slots map[Identifier]Slot) error

	// === Lists ===
	GetList(lt ListType) ([]ListEntry, bool)
	SaveList(lt ListType, entries []ListEntry) error

	// === Invalidation ===
	InvalidateProvider(host string)
	InvalidateSlots()
	InvalidateAll()

	Close() error
}
