package models

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
)

// Reference tables owned by neighbouring subsystems. Pricing only reads them.

// ProductModel is a read-only projection of the catalog products table
type ProductModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Code string    `gorm:"type:varchar(50);not null"`
	Name string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a pricing Product
func (m *ProductModel) ToDomain() *pricing.Product {
	return &pricing.Product{ID: m.ID, Code: m.Code, Name: m.Name}
}

// ZoneModel is a read-only projection of the pricing zones table
type ZoneModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"type:varchar(100);not null"`
	CurrencyCode string    `gorm:"type:varchar(3)"`
}

// TableName returns the table name for GORM
func (ZoneModel) TableName() string {
	return "pricing_zones"
}

// ToDomain converts the model to a pricing Zone
func (m *ZoneModel) ToDomain() *pricing.Zone {
	return &pricing.Zone{ID: m.ID, Name: m.Name, CurrencyCode: m.CurrencyCode}
}

// SegmentModel is a read-only projection of the customer segments table
type SegmentModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (SegmentModel) TableName() string {
	return "customer_segments"
}

// ToDomain converts the model to a pricing Segment
func (m *SegmentModel) ToDomain() *pricing.Segment {
	return &pricing.Segment{ID: m.ID, Name: m.Name}
}
