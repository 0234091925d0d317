package persistence

import (
	"context"
	"errors"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReferenceLookup resolves products, zones and segments from the tables
// their owning subsystems maintain in the same database
type GormReferenceLookup struct {
	db *gorm.DB
}

// NewGormReferenceLookup creates a new GormReferenceLookup
func NewGormReferenceLookup(db *gorm.DB) *GormReferenceLookup {
	return &GormReferenceLookup{db: db}
}

// GetProduct finds a product by ID
func (l *GormReferenceLookup) GetProduct(ctx context.Context, id uuid.UUID) (*pricing.Product, error) {
	var model models.ProductModel
	if err := l.first(ctx, &model, id); err != nil {
		return nil, notFoundAs(err, "Product %s not found", id)
	}
	return model.ToDomain(), nil
}

// GetZone finds a pricing zone by ID
func (l *GormReferenceLookup) GetZone(ctx context.Context, id uuid.UUID) (*pricing.Zone, error) {
	var model models.ZoneModel
	if err := l.first(ctx, &model, id); err != nil {
		return nil, notFoundAs(err, "Zone %s not found", id)
	}
	return model.ToDomain(), nil
}

// GetSegment finds a customer segment by ID
func (l *GormReferenceLookup) GetSegment(ctx context.Context, id uuid.UUID) (*pricing.Segment, error) {
	var model models.SegmentModel
	if err := l.first(ctx, &model, id); err != nil {
		return nil, notFoundAs(err, "Segment %s not found", id)
	}
	return model.ToDomain(), nil
}

func (l *GormReferenceLookup) first(ctx context.Context, dest any, id uuid.UUID) error {
	return l.db.WithContext(ctx).First(dest, "id = ?", id).Error
}

func notFoundAs(err error, format string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound.WithMessage(format, id)
	}
	return err
}

var (
	_ pricing.CatalogLookup = (*GormReferenceLookup)(nil)
	_ pricing.ZoneLookup    = (*GormReferenceLookup)(nil)
	_ pricing.SegmentLookup = (*GormReferenceLookup)(nil)
)
