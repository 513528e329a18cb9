package domain

// SlotState is the cache state of one Identifier.
type SlotState int

const (
	// SlotUnresolved means no attempt has been made (absence of an entry).
	SlotUnresolved SlotState = iota
	// SlotPresent means a live record is associated.
	SlotPresent
	// SlotDead means the provider confirmed the identifier does not exist.
	SlotDead
)

// String returns a human-readable representation of the slot state
func (s SlotState) String() string {
	switch s {
	case SlotUnresolved:
		return "Unresolved"
	case SlotPresent:
		return "Present"
	case SlotDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// Slot is what the identity cache holds for one Identifier.
// The zero value is Unresolved.
type Slot struct {
	State  SlotState
	Record *AnimeRecord // Set only when State == SlotPresent
}

// Present wraps a live record.
func Present(r *AnimeRecord) Slot { return Slot{State: SlotPresent, Record: r} }

// Dead is the memoized "does not exist" answer.
func Dead() Slot { return Slot{State: SlotDead} }

func (s Slot) IsPresent() bool    { return s.State == SlotPresent && s.Record != nil }
func (s Slot) IsDead() bool       { return s.State == SlotDead }
func (s Slot) IsUnresolved() bool { return s.State == SlotUnresolved }
