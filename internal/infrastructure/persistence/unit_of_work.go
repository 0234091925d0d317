package persistence

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"gorm.io/gorm"
)

// GormUnitOfWork runs pricing work inside a database transaction
type GormUnitOfWork struct {
	db            *gorm.DB
	transactional bool
}

// NewGormUnitOfWork creates a unit of work. With transactional false the
// callback runs against the plain connection and each statement commits on
// its own.
func NewGormUnitOfWork(db *gorm.DB, transactional bool) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, transactional: transactional}
}

// Do runs fn and commits when it returns nil
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos pricing.Repositories) error) error {
	if !u.transactional {
		return fn(ctx, repositoriesFor(u.db))
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repositoriesFor(tx))
	})
}

// Repositories returns repositories bound to the plain connection
func (u *GormUnitOfWork) Repositories() pricing.Repositories {
	return repositoriesFor(u.db)
}

func repositoriesFor(db *gorm.DB) pricing.Repositories {
	return pricing.Repositories{
		Books:   NewGormPriceBookRepository(db),
		Entries: NewGormPriceEntryRepository(db),
	}
}

var _ pricing.UnitOfWork = (*GormUnitOfWork)(nil)
