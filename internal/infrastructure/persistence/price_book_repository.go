package persistence

import (
	"context"
	"errors"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPriceBookRepository implements pricing.PriceBookRepository using GORM
type GormPriceBookRepository struct {
	db *gorm.DB
}

// NewGormPriceBookRepository creates a new GormPriceBookRepository
func NewGormPriceBookRepository(db *gorm.DB) *GormPriceBookRepository {
	return &GormPriceBookRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormPriceBookRepository) WithTx(tx *gorm.DB) *GormPriceBookRepository {
	return &GormPriceBookRepository{db: tx}
}

// FindByID finds a price book by its ID
func (r *GormPriceBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.PriceBook, error) {
	var model models.PriceBookModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindMaster returns the active master book
func (r *GormPriceBookRepository) FindMaster(ctx context.Context) (*pricing.PriceBook, error) {
	var model models.PriceBookModel
	err := r.db.WithContext(ctx).
		Where("is_master = ? AND is_active = ?", true, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByContext finds the active book bound to a context
func (r *GormPriceBookRepository) FindActiveByContext(ctx context.Context, c pricing.Context) (*pricing.PriceBook, error) {
	var model models.PriceBookModel
	if err := r.db.WithContext(ctx).Where("active_context_key = ?", c.Key()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByContexts finds the active books bound to any of the contexts
func (r *GormPriceBookRepository) FindActiveByContexts(ctx context.Context, cs []pricing.Context) ([]pricing.PriceBook, error) {
	if len(cs) == 0 {
		return []pricing.PriceBook{}, nil
	}

	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		keys = append(keys, c.Key())
	}

	var bookModels []models.PriceBookModel
	if err := r.db.WithContext(ctx).Where("active_context_key IN ?", keys).Find(&bookModels).Error; err != nil {
		return nil, err
	}
	return toDomainBooks(bookModels), nil
}

// FindAll lists books, most general context first
func (r *GormPriceBookRepository) FindAll(ctx context.Context, activeOnly bool) ([]pricing.PriceBook, error) {
	query := r.db.WithContext(ctx).Model(&models.PriceBookModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var bookModels []models.PriceBookModel
	if err := query.Order("is_master DESC").Order("context_key ASC").Order("created_at ASC").Find(&bookModels).Error; err != nil {
		return nil, err
	}
	return toDomainBooks(bookModels), nil
}

// Create inserts a book. A clash on the active context is reported as
// pricing.ErrContextTaken (or ErrMasterBookExists for the master) without
// raising a database error.
func (r *GormPriceBookRepository) Create(ctx context.Context, book *pricing.PriceBook) error {
	model := models.PriceBookModelFromDomain(book)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "active_context_key"}},
			DoNothing: true,
		}).
		Create(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if book.IsMaster {
			return pricing.ErrMasterBookExists
		}
		return pricing.ErrContextTaken
	}
	return nil
}

// Save updates a book with optimistic locking
func (r *GormPriceBookRepository) Save(ctx context.Context, book *pricing.PriceBook) error {
	currentVersion := book.Version
	book.IncrementVersion()

	model := models.PriceBookModelFromDomain(book)
	result := r.db.WithContext(ctx).
		Model(&models.PriceBookModel{}).
		Where("id = ? AND version = ?", book.ID, currentVersion).
		Updates(map[string]any{
			"name":               model.Name,
			"active_context_key": model.ActiveContextKey,
			"is_active":          model.IsActive,
			"currency":           model.Currency,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&models.PriceBookModel{}).Where("id = ?", book.ID).Count(&count)
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict.WithMessage("Price book was modified by another transaction")
	}
	return nil
}

func toDomainBooks(bookModels []models.PriceBookModel) []pricing.PriceBook {
	books := make([]pricing.PriceBook, len(bookModels))
	for i := range bookModels {
		books[i] = *bookModels[i].ToDomain()
	}
	return books
}

// Ensure GormPriceBookRepository implements PriceBookRepository
var _ pricing.PriceBookRepository = (*GormPriceBookRepository)(nil)
