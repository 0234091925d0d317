package pricing

import (
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceEntry is the price of one product inside one book.
// At most one entry exists per (book, product).
type PriceEntry struct {
	shared.BaseEntity
	BookID    uuid.UUID
	ProductID uuid.UUID
	BasePrice decimal.Decimal
}

// NewPriceEntry creates an entry after validating the price
func NewPriceEntry(bookID, productID uuid.UUID, price decimal.Decimal) (*PriceEntry, error) {
	if bookID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Price entry requires a book")
	}
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Price entry requires a product")
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	return &PriceEntry{
		BaseEntity: shared.NewBaseEntity(),
		BookID:     bookID,
		ProductID:  productID,
		BasePrice:  price,
	}, nil
}

// SetPrice replaces the base price
func (e *PriceEntry) SetPrice(price decimal.Decimal) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	e.BasePrice = price
	e.Touch()
	return nil
}

// ValidatePrice rejects negative prices
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ScopedEntry is an entry joined with the book it lives in
type ScopedEntry struct {
	Entry    PriceEntry
	BookName string
	Context  Context
	IsMaster bool
	Currency string
}
