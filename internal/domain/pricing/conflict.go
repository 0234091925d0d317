package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConflictRecord describes one existing, more specific price that a write at
// a broader context would otherwise leave untouched.
type ConflictRecord struct {
	EntryID         uuid.UUID
	BookID          uuid.UUID
	BookName        string
	Context         Context
	ProductID       uuid.UUID
	ExistingPrice   decimal.Decimal
	NewPrice        decimal.Decimal
	PriceDifference decimal.Decimal
}

// Detection is the result of checking one (context, product, price) write
type Detection struct {
	Target    Context
	ProductID uuid.UUID
	NewPrice  decimal.Decimal
	Conflicts []ConflictRecord
}

// HasConflicts reports whether any strict descendant holds a price
func (d Detection) HasConflicts() bool {
	return len(d.Conflicts) > 0
}

// FindConflicts filters the active entries of a product down to those that
// live strictly below target. Entries at target itself and entries in
// sibling or ancestor contexts are ignored. The result is ordered by
// specificity, then by context key.
func FindConflicts(target Context, productID uuid.UUID, newPrice decimal.Decimal, entries []ScopedEntry) Detection {
	d := Detection{
		Target:    target,
		ProductID: productID,
		NewPrice:  newPrice,
		Conflicts: make([]ConflictRecord, 0),
	}

	for _, e := range entries {
		if e.Entry.ProductID != productID {
			continue
		}
		if !e.Context.IsStrictChildOf(target) {
			continue
		}
		d.Conflicts = append(d.Conflicts, ConflictRecord{
			EntryID:         e.Entry.ID,
			BookID:          e.Entry.BookID,
			BookName:        e.BookName,
			Context:         e.Context,
			ProductID:       productID,
			ExistingPrice:   e.Entry.BasePrice,
			NewPrice:        newPrice,
			PriceDifference: newPrice.Sub(e.Entry.BasePrice),
		})
	}

	sort.SliceStable(d.Conflicts, func(i, j int) bool {
		a, b := d.Conflicts[i].Context, d.Conflicts[j].Context
		if a.Scope().Specificity() != b.Scope().Specificity() {
			return a.Scope().Specificity() < b.Scope().Specificity()
		}
		return a.Key() < b.Key()
	})

	return d
}
