package persistence

import (
	"context"
	"testing"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPriceEntryRepository_Upsert(t *testing.T) {
	db := setupPricingTestDB(t)
	books := NewGormPriceBookRepository(db)
	entries := NewGormPriceEntryRepository(db)
	ctx := context.Background()

	master := createMaster(t, books)
	productID := uuid.New()

	first := upsertPrice(t, entries, master.ID, productID, "100")
	assert.True(t, first.BasePrice.Equal(decimal.NewFromInt(100)))

	t.Run("second write updates in place", func(t *testing.T) {
		second := upsertPrice(t, entries, master.ID, productID, "125.50")
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, second.BasePrice.Equal(decimal.RequireFromString("125.50")))

		var count int64
		require.NoError(t, db.Table("price_entries").Where("product_id = ?", productID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		entry := &pricing.PriceEntry{BookID: master.ID, ProductID: productID, BasePrice: decimal.NewFromInt(-1)}
		_, err := entries.Upsert(ctx, entry)
		assert.ErrorIs(t, err, pricing.ErrNegativePrice)
	})
}

func TestGormPriceEntryRepository_FindActiveByProduct(t *testing.T) {
	db := setupPricingTestDB(t)
	books := NewGormPriceBookRepository(db)
	entries := NewGormPriceEntryRepository(db)
	ctx := context.Background()

	zone, segment := uuid.New(), uuid.New()
	productID, otherProduct := uuid.New(), uuid.New()

	master := createMaster(t, books)
	zoneBook := createOverride(t, books, pricing.ZoneContext(zone), master)
	cellBook := createOverride(t, books, pricing.ZoneSegmentContext(zone, segment), zoneBook)
	retired := createOverride(t, books, pricing.SegmentContext(segment), master)

	upsertPrice(t, entries, master.ID, productID, "100")
	upsertPrice(t, entries, zoneBook.ID, productID, "110")
	upsertPrice(t, entries, cellBook.ID, productID, "90")
	upsertPrice(t, entries, retired.ID, productID, "80")
	upsertPrice(t, entries, master.ID, otherProduct, "5")

	require.NoError(t, retired.Deactivate())
	require.NoError(t, books.Save(ctx, retired))

	t.Run("joins book context and skips inactive books", func(t *testing.T) {
		scoped, err := entries.FindActiveByProduct(ctx, productID)
		require.NoError(t, err)
		require.Len(t, scoped, 3)

		byContext := make(map[pricing.Context]pricing.ScopedEntry)
		for _, e := range scoped {
			byContext[e.Context] = e
		}
		cell, ok := byContext[pricing.ZoneSegmentContext(zone, segment)]
		require.True(t, ok)
		assert.True(t, cell.Entry.BasePrice.Equal(decimal.NewFromInt(90)))
		assert.Equal(t, cellBook.Name, cell.BookName)
		assert.Equal(t, "USD", cell.Currency)
		assert.True(t, byContext[pricing.MasterContext()].IsMaster)
	})

	t.Run("narrowed to a lineage", func(t *testing.T) {
		scoped, err := entries.FindActiveByProductInContexts(ctx, productID, pricing.ZoneContext(zone).Lineage())
		require.NoError(t, err)
		assert.Len(t, scoped, 2)

		price, err := pricing.PickEffective(pricing.ZoneContext(zone), productID, scoped)
		require.NoError(t, err)
		assert.True(t, price.Price.Equal(decimal.NewFromInt(110)))
	})
}

func TestGormPriceEntryRepository_UpdateAndDelete(t *testing.T) {
	db := setupPricingTestDB(t)
	books := NewGormPriceBookRepository(db)
	entries := NewGormPriceEntryRepository(db)
	ctx := context.Background()

	master := createMaster(t, books)
	book := createOverride(t, books, pricing.SegmentContext(uuid.New()), master)
	productID := uuid.New()
	entry := upsertPrice(t, entries, book.ID, productID, "80")

	require.NoError(t, entries.UpdatePrice(ctx, entry.ID, decimal.NewFromInt(120)))
	updated, err := entries.FindByBookAndProduct(ctx, book.ID, productID)
	require.NoError(t, err)
	assert.True(t, updated.BasePrice.Equal(decimal.NewFromInt(120)))

	assert.ErrorIs(t, entries.UpdatePrice(ctx, uuid.New(), decimal.NewFromInt(1)), shared.ErrNotFound)
	assert.ErrorIs(t, entries.UpdatePrice(ctx, entry.ID, decimal.NewFromInt(-1)), pricing.ErrNegativePrice)

	deleted, err := entries.DeleteByIDs(ctx, []uuid.UUID{entry.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = entries.FindByBookAndProduct(ctx, book.ID, productID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	deleted, err = entries.DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
