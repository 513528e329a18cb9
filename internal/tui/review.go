package tui

import "github.com/mmcdole/kanshi/internal/domain"

// RowKind is the bucket a review row comes from
type RowKind int

const (
	RowMapped RowKind = iota
	RowAmbiguous
	RowUnmapped
)

// Row is one entry of the review screen.
type Row struct {
	Kind       RowKind
	ListType   domain.ListType
	Entry      domain.ListEntry
	Candidates []domain.Identifier // Target for RowMapped, choices for RowAmbiguous
	Choice     int                 // Chosen candidate of a RowAmbiguous row, -1 = skip
}

// Target returns the identifier the row would migrate to.
func (r Row) Target() (domain.Identifier, bool) {
	switch r.Kind {
	case RowMapped:
		return r.Candidates[0], true
	case RowAmbiguous:
		if r.Choice >= 0 && r.Choice < len(r.Candidates) {
			return r.Candidates[r.Choice], true
		}
	}
	return domain.Identifier{}, false
}

// buildRows flattens a result into review rows, list by list.
// Ambiguous rows start skipped: a candidate must be chosen explicitly.
func buildRows(result domain.MigrationResult) []Row {
	var rows []Row
	for _, lt := range domain.ListTypes {
		c := result.Lists[lt]
		for _, m := range c.Mappings {
			rows = append(rows, Row{Kind: RowMapped, ListType: lt, Entry: m.Entry, Candidates: []domain.Identifier{m.Target}})
		}
		for _, a := range c.MultipleMappings {
			rows = append(rows, Row{Kind: RowAmbiguous, ListType: lt, Entry: a.Entry, Candidates: a.Candidates, Choice: -1})
		}
		for _, e := range c.WithoutMapping {
			rows = append(rows, Row{Kind: RowUnmapped, ListType: lt, Entry: e})
		}
	}
	return rows
}

// mappingsOf collects every row with a target.
func mappingsOf(rows []Row) domain.Mappings {
	mappings := make(domain.Mappings)
	for _, r := range rows {
		if target, ok := r.Target(); ok {
			mappings[r.ListType] = append(mappings[r.ListType], domain.Mapping{Entry: r.Entry, Target: target})
		}
	}
	return mappings
}

// unmappedOf collects every row without a mapping.
func unmappedOf(rows []Row) domain.Unmapped {
	unmapped := make(domain.Unmapped)
	for _, r := range rows {
		if r.Kind == RowUnmapped {
			unmapped[r.ListType] = append(unmapped[r.ListType], r.Entry)
		}
	}
	return unmapped
}

// cycleChoice moves an ambiguous row's choice by delta, passing through skip.
func (r *Row) cycleChoice(delta int) {
	if r.Kind != RowAmbiguous || len(r.Candidates) == 0 {
		return
	}
	n := len(r.Candidates) + 1 // Candidates plus skip
	pos := (r.Choice + 1 + delta) % n
	if pos < 0 {
		pos += n
	}
	r.Choice = pos - 1
}
