package models

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBookModel is the persistence model for the PriceBook aggregate.
// ActiveContextKey holds the context key while the book is active and NULL
// afterwards, so its unique index admits one active book per context.
type PriceBookModel struct {
	AggregateModel
	Name             string     `gorm:"type:varchar(200);not null"`
	ZoneID           *uuid.UUID `gorm:"type:uuid;index"`
	SegmentID        *uuid.UUID `gorm:"type:uuid;index"`
	ContextKey       string     `gorm:"type:varchar(100);not null;index"`
	ActiveContextKey *string    `gorm:"type:varchar(100);uniqueIndex:idx_price_books_active_context"`
	ParentBookID     *uuid.UUID `gorm:"type:uuid;index"`
	IsMaster         bool       `gorm:"not null"`
	IsOverride       bool       `gorm:"not null"`
	IsActive         bool       `gorm:"not null;index"`
	Currency         string     `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (PriceBookModel) TableName() string {
	return "price_books"
}

// ToDomain converts the persistence model to a domain PriceBook
func (m *PriceBookModel) ToDomain() *pricing.PriceBook {
	return &pricing.PriceBook{
		BaseAggregateRoot: m.aggregate(),
		Name:              m.Name,
		Context:           pricing.NewContext(m.ZoneID, m.SegmentID),
		ParentBookID:      m.ParentBookID,
		IsMaster:          m.IsMaster,
		IsOverride:        m.IsOverride,
		IsActive:          m.IsActive,
		Currency:          m.Currency,
	}
}

// FromDomain populates the persistence model from a domain PriceBook
func (m *PriceBookModel) FromDomain(b *pricing.PriceBook) {
	m.setAggregate(b.BaseAggregateRoot)
	m.Name = b.Name
	m.ZoneID = b.Context.ZoneRef()
	m.SegmentID = b.Context.SegmentRef()
	m.ContextKey = b.Context.Key()
	m.ActiveContextKey = ActiveKey(b.Context, b.IsActive)
	m.ParentBookID = b.ParentBookID
	m.IsMaster = b.IsMaster
	m.IsOverride = b.IsOverride
	m.IsActive = b.IsActive
	m.Currency = b.Currency
}

// PriceBookModelFromDomain creates a persistence model from a domain PriceBook
func PriceBookModelFromDomain(b *pricing.PriceBook) *PriceBookModel {
	m := &PriceBookModel{}
	m.FromDomain(b)
	return m
}

// ActiveKey returns the unique-index value for a book, nil when inactive
func ActiveKey(c pricing.Context, active bool) *string {
	if !active {
		return nil
	}
	key := c.Key()
	return &key
}

// PriceEntryModel is the persistence model for PriceEntry
type PriceEntryModel struct {
	BaseModel
	BookID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_price_entries_book_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_price_entries_book_product,priority:2;index"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PriceEntryModel) TableName() string {
	return "price_entries"
}

// ToDomain converts the persistence model to a domain PriceEntry
func (m *PriceEntryModel) ToDomain() *pricing.PriceEntry {
	return &pricing.PriceEntry{
		BaseEntity: m.entity(),
		BookID:     m.BookID,
		ProductID:  m.ProductID,
		BasePrice:  m.BasePrice,
	}
}

// PriceEntryModelFromDomain creates a persistence model from a domain PriceEntry
func PriceEntryModelFromDomain(e *pricing.PriceEntry) *PriceEntryModel {
	m := &PriceEntryModel{
		BookID:    e.BookID,
		ProductID: e.ProductID,
		BasePrice: e.BasePrice,
	}
	m.setEntity(e.BaseEntity)
	return m
}

// ScopedEntryRow is the flat result of joining price_entries to price_books
type ScopedEntryRow struct {
	ID        uuid.UUID
	BookID    uuid.UUID
	ProductID uuid.UUID
	BasePrice decimal.Decimal
	BookName  string
	ZoneID    *uuid.UUID
	SegmentID *uuid.UUID
	IsMaster  bool
	Currency  string
}

// ToDomain converts the row to a domain ScopedEntry
func (r ScopedEntryRow) ToDomain() pricing.ScopedEntry {
	e := pricing.PriceEntry{
		BookID:    r.BookID,
		ProductID: r.ProductID,
		BasePrice: r.BasePrice,
	}
	e.ID = r.ID
	return pricing.ScopedEntry{
		Entry:    e,
		BookName: r.BookName,
		Context:  pricing.NewContext(r.ZoneID, r.SegmentID),
		IsMaster: r.IsMaster,
		Currency: r.Currency,
	}
}
