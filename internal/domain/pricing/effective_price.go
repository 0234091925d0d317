package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EffectivePrice is the price that applies to a product in a requested
// context, along with the book it was taken from.
type EffectivePrice struct {
	ProductID uuid.UUID       `json:"product_id"`
	Requested Context         `json:"-"`
	Source    Context         `json:"-"`
	BookID    uuid.UUID       `json:"book_id"`
	BookName  string          `json:"book_name"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

// PickEffective walks the lineage of requested and returns the first entry
// found, or ErrNoPriceConfigured.
func PickEffective(requested Context, productID uuid.UUID, entries []ScopedEntry) (*EffectivePrice, error) {
	byKey := make(map[Context]ScopedEntry, len(entries))
	for _, e := range entries {
		if e.Entry.ProductID == productID {
			byKey[e.Context] = e
		}
	}

	for _, c := range requested.Lineage() {
		e, ok := byKey[c]
		if !ok {
			continue
		}
		return &EffectivePrice{
			ProductID: productID,
			Requested: requested,
			Source:    c,
			BookID:    e.Entry.BookID,
			BookName:  e.BookName,
			Price:     e.Entry.BasePrice,
			Currency:  e.Currency,
		}, nil
	}

	return nil, ErrNoPriceConfigured
}
