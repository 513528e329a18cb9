package domain

// Mapping pairs a list entry with the single target identifier it resolves to.
type Mapping struct {
	Entry  ListEntry
	Target Identifier
}

// AmbiguousMapping is an entry with two or more candidate target identifiers.
// It is surfaced for the user to choose from, never resolved automatically.
type AmbiguousMapping struct {
	Entry      ListEntry
	Candidates []Identifier
}

// Classification holds the three disjoint buckets for one list type.
type Classification struct {
	WithoutMapping   []ListEntry
	MultipleMappings []AmbiguousMapping
	Mappings         []Mapping
}

// IsEmpty reports whether no bucket holds an entry
func (c Classification) IsEmpty() bool {
	return len(c.WithoutMapping) == 0 && len(c.MultipleMappings) == 0 && len(c.Mappings) == 0
}

// MigrationResult is the classification of all three lists for one run.
type MigrationResult struct {
	From  string
	To    string
	Lists map[ListType]Classification
}

// NewMigrationResult creates a result with an empty classification per list type.
func NewMigrationResult(from, to string) MigrationResult {
	lists := make(map[ListType]Classification, len(ListTypes))
	for _, lt := range ListTypes {
		lists[lt] = Classification{}
	}
	return MigrationResult{From: from, To: to, Lists: lists}
}

// IsEmpty reports whether nothing needs migrating
func (r MigrationResult) IsEmpty() bool {
	for _, c := range r.Lists {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Counts returns the bucket sizes summed over all lists.
func (r MigrationResult) Counts() (withoutMapping, multiple, single int) {
	for _, c := range r.Lists {
		withoutMapping += len(c.WithoutMapping)
		multiple += len(c.MultipleMappings)
		single += len(c.Mappings)
	}
	return withoutMapping, multiple, single
}

// Mappings is the replacement to apply per list type: each entry gets the
// target identifier chosen for it.
type Mappings map[ListType][]Mapping

// Unmapped is the set of entries to remove per list type.
type Unmapped map[ListType][]ListEntry

// MigrationProgress reports completed entries of a classification run.
type MigrationProgress struct {
	Finished int
	Total    int
}

// MigrationObserver receives the ordered events of a classification run:
// zero or more OnProgress calls followed by exactly one OnResult or OnFailure.
type MigrationObserver interface {
	OnProgress(progress MigrationProgress)
	OnResult(result MigrationResult)
	OnFailure(err error)
}

// NoOpMigrationObserver discards migration events.
type NoOpMigrationObserver struct{}

func (NoOpMigrationObserver) OnProgress(MigrationProgress) {}
func (NoOpMigrationObserver) OnResult(MigrationResult)     {}
func (NoOpMigrationObserver) OnFailure(error)              {}
