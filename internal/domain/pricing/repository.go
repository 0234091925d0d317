package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBookRepository defines the interface for price book persistence
type PriceBookRepository interface {
	// FindByID finds a book by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PriceBook, error)

	// FindMaster returns the active master book, shared.ErrNotFound if none
	FindMaster(ctx context.Context) (*PriceBook, error)

	// FindActiveByContext returns the active book bound to c
	FindActiveByContext(ctx context.Context, c Context) (*PriceBook, error)

	// FindActiveByContexts returns the active books bound to any of cs
	FindActiveByContexts(ctx context.Context, cs []Context) ([]PriceBook, error)

	// FindAll lists books, optionally only the active ones
	FindAll(ctx context.Context, activeOnly bool) ([]PriceBook, error)

	// Create inserts a book. It returns ErrContextTaken when another active
	// book already holds the same context, without aborting a surrounding
	// transaction.
	Create(ctx context.Context, book *PriceBook) error

	// Save updates a book using optimistic locking on Version
	Save(ctx context.Context, book *PriceBook) error
}

// PriceEntryRepository defines the interface for price entry persistence
type PriceEntryRepository interface {
	// FindByBookAndProduct returns the entry or shared.ErrNotFound
	FindByBookAndProduct(ctx context.Context, bookID, productID uuid.UUID) (*PriceEntry, error)

	// FindActiveByProduct returns every entry of a product that lives in an
	// active book, in a single query
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]ScopedEntry, error)

	// FindActiveByProductInContexts narrows FindActiveByProduct to the given contexts
	FindActiveByProductInContexts(ctx context.Context, productID uuid.UUID, cs []Context) ([]ScopedEntry, error)

	// Upsert inserts or updates the (book, product) entry atomically and
	// returns the stored row
	Upsert(ctx context.Context, entry *PriceEntry) (*PriceEntry, error)

	// UpdatePrice rewrites the price of an existing entry
	UpdatePrice(ctx context.Context, entryID uuid.UUID, price decimal.Decimal) error

	// DeleteByIDs removes entries and returns how many were deleted
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Repositories groups the repositories bound to one unit of work
type Repositories struct {
	Books   PriceBookRepository
	Entries PriceEntryRepository
}

// UnitOfWork runs fn against repositories that commit or roll back together
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
