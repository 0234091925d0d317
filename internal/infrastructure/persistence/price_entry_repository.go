package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const scopedEntryColumns = "price_entries.id, price_entries.book_id, price_entries.product_id, price_entries.base_price, " +
	"price_books.name AS book_name, price_books.zone_id, price_books.segment_id, price_books.is_master, price_books.currency"

// GormPriceEntryRepository implements pricing.PriceEntryRepository using GORM
type GormPriceEntryRepository struct {
	db *gorm.DB
}

// NewGormPriceEntryRepository creates a new GormPriceEntryRepository
func NewGormPriceEntryRepository(db *gorm.DB) *GormPriceEntryRepository {
	return &GormPriceEntryRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormPriceEntryRepository) WithTx(tx *gorm.DB) *GormPriceEntryRepository {
	return &GormPriceEntryRepository{db: tx}
}

// FindByBookAndProduct finds the entry of a product in a book
func (r *GormPriceEntryRepository) FindByBookAndProduct(ctx context.Context, bookID, productID uuid.UUID) (*pricing.PriceEntry, error) {
	var model models.PriceEntryModel
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND product_id = ?", bookID, productID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByProduct loads every entry of a product in active books with one join
func (r *GormPriceEntryRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]pricing.ScopedEntry, error) {
	var rows []models.ScopedEntryRow
	err := r.scopedQuery(ctx).
		Where("price_entries.product_id = ? AND price_books.is_active = ?", productID, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toScopedEntries(rows), nil
}

// FindActiveByProductInContexts loads the entries of a product that live in
// the active books of the given contexts
func (r *GormPriceEntryRepository) FindActiveByProductInContexts(ctx context.Context, productID uuid.UUID, cs []pricing.Context) ([]pricing.ScopedEntry, error) {
	if len(cs) == 0 {
		return []pricing.ScopedEntry{}, nil
	}
	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		keys = append(keys, c.Key())
	}

	var rows []models.ScopedEntryRow
	err := r.scopedQuery(ctx).
		Where("price_entries.product_id = ? AND price_books.active_context_key IN ?", productID, keys).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toScopedEntries(rows), nil
}

// Upsert writes the (book, product) entry in a single statement and returns the stored row
func (r *GormPriceEntryRepository) Upsert(ctx context.Context, entry *pricing.PriceEntry) (*pricing.PriceEntry, error) {
	if err := pricing.ValidatePrice(entry.BasePrice); err != nil {
		return nil, err
	}

	model := models.PriceEntryModelFromDomain(entry)
	model.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"base_price", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return nil, err
	}

	return r.FindByBookAndProduct(ctx, entry.BookID, entry.ProductID)
}

// UpdatePrice rewrites the price of one entry
func (r *GormPriceEntryRepository) UpdatePrice(ctx context.Context, entryID uuid.UUID, price decimal.Decimal) error {
	if err := pricing.ValidatePrice(price); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.PriceEntryModel{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"base_price": price,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes entries by ID
func (r *GormPriceEntryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.PriceEntryModel{})
	return result.RowsAffected, result.Error
}

func (r *GormPriceEntryRepository) scopedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("price_entries").
		Select(scopedEntryColumns).
		Joins("JOIN price_books ON price_books.id = price_entries.book_id")
}

func toScopedEntries(rows []models.ScopedEntryRow) []pricing.ScopedEntry {
	entries := make([]pricing.ScopedEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.ToDomain()
	}
	return entries
}

// Ensure GormPriceEntryRepository implements PriceEntryRepository
var _ pricing.PriceEntryRepository = (*GormPriceEntryRepository)(nil)
