package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupPricingTestDB creates a private in-memory SQLite database with the
// pricing schema. A single connection keeps every statement on the same
// in-memory database, transactions included.
func setupPricingTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.PriceBookModel{},
		&models.PriceEntryModel{},
		&models.ProductModel{},
		&models.ZoneModel{},
		&models.SegmentModel{},
	))
	return db
}

func createMaster(t *testing.T, repo *GormPriceBookRepository) *pricing.PriceBook {
	master, err := pricing.NewMasterPriceBook("Master Price Book", "USD")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), master))
	return master
}

func createOverride(t *testing.T, repo *GormPriceBookRepository, c pricing.Context, parent *pricing.PriceBook) *pricing.PriceBook {
	book, err := pricing.NewOverridePriceBook("Book "+c.Key(), c, "", parent)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), book))
	return book
}

func upsertPrice(t *testing.T, repo *GormPriceEntryRepository, bookID, productID uuid.UUID, price string) *pricing.PriceEntry {
	entry, err := pricing.NewPriceEntry(bookID, productID, decimal.RequireFromString(price))
	require.NoError(t, err)
	stored, err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	return stored
}
