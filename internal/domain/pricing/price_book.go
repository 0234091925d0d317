package pricing

import (
	"strings"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
)

// PriceBook is a named collection of price entries bound to exactly one
// context. Exactly one active book is the master; every other book overrides
// an ancestor context.
type PriceBook struct {
	shared.BaseAggregateRoot
	Name         string
	Context      Context
	ParentBookID *uuid.UUID
	IsMaster     bool
	IsOverride   bool
	IsActive     bool
	Currency     string
}

// NewMasterPriceBook creates the global book
func NewMasterPriceBook(name, currency string) (*PriceBook, error) {
	if err := validateBookName(name); err != nil {
		return nil, err
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	return &PriceBook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Context:           MasterContext(),
		IsMaster:          true,
		IsActive:          true,
		Currency:          cur,
	}, nil
}

// NewOverridePriceBook creates a book for a non-master context. parent is the
// nearest active ancestor book and must sit above ctx in the lattice.
func NewOverridePriceBook(name string, ctx Context, currency string, parent *PriceBook) (*PriceBook, error) {
	if ctx.IsMaster() {
		return nil, ErrInvalidContext.WithMessage("Override price book cannot use the master context")
	}
	if parent == nil {
		return nil, ErrMasterBookMissing
	}
	if !parent.IsActive {
		return nil, ErrInvalidContext.WithMessage("Parent price book %s is not active", parent.ID)
	}
	if !parent.Context.IsAncestorOf(ctx) {
		return nil, ErrInvalidContext.WithMessage("Parent context %s is not an ancestor of %s", parent.Context, ctx)
	}
	if err := validateBookName(name); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = parent.Currency
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	return &PriceBook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Context:           ctx,
		ParentBookID:      &parentID,
		IsOverride:        true,
		IsActive:          true,
		Currency:          cur,
	}, nil
}

// Deactivate retires the book. Its entries stop participating in conflict
// detection and price resolution. The master book cannot be deactivated.
// The repository bumps the version on save.
func (b *PriceBook) Deactivate() error {
	if b.IsMaster {
		return shared.ErrInvalidState.WithMessage("The master price book cannot be deactivated")
	}
	if !b.IsActive {
		return shared.ErrInvalidState.WithMessage("Price book is already inactive")
	}
	b.IsActive = false
	b.Touch()
	return nil
}

// Rename changes the display name
func (b *PriceBook) Rename(name string) error {
	if err := validateBookName(name); err != nil {
		return err
	}
	b.Name = name
	b.Touch()
	return nil
}

// Scope returns the scope of the book's context
func (b *PriceBook) Scope() Scope {
	return b.Context.Scope()
}

func validateBookName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Price book name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Price book name cannot exceed 200 characters")
	}
	return nil
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
		}
	}
	return code, nil
}
