package router

import "github.com/erp/pricing/internal/interfaces/http/handler"

// PricingRoutes builds the /pricing route group
func PricingRoutes(h *handler.PricingHandler) *DomainGroup {
	return NewDomainGroup("pricing", "/pricing").
		POST("/updates", h.ApplyUpdates).
		POST("/updates/preview", h.PreviewUpdates).
		GET("/effective", h.GetEffectivePrice).
		POST("/effective/bulk", h.BulkEffectivePrices).
		GET("/books", h.ListBooks).
		POST("/books/:id/deactivate", h.DeactivateBook).
		GET("/strategies", h.ListStrategies)
}
