package handler

import (
	"context"
	"strconv"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PriceUpdater applies and previews batches of price changes
type PriceUpdater interface {
	Apply(ctx context.Context, req pricingapp.ApplyUpdateRequest) (*pricingapp.BatchResult, error)
	Preview(ctx context.Context, req pricingapp.ApplyUpdateRequest) (*pricingapp.PreviewResult, error)
}

// EffectivePriceResolver resolves prices through the context lineage
type EffectivePriceResolver interface {
	Resolve(ctx context.Context, zoneID, segmentID *uuid.UUID, productID uuid.UUID) (*pricingapp.EffectivePriceResponse, error)
	ResolveMany(ctx context.Context, zoneID, segmentID *uuid.UUID, productIDs []uuid.UUID) ([]pricingapp.BulkEffectivePrice, error)
}

// BookAdministrator lists and deactivates price books
type BookAdministrator interface {
	ListBooks(ctx context.Context, activeOnly bool) ([]pricingapp.BookResponse, error)
	DeactivateBook(ctx context.Context, id uuid.UUID) (*pricingapp.BookResponse, error)
}

// StrategyLister lists the registered conflict resolution strategies
type StrategyLister interface {
	Strategies() []pricingapp.StrategyResponse
}

// PricingHandler handles price override API endpoints
type PricingHandler struct {
	BaseHandler
	updates       PriceUpdater
	effective     EffectivePriceResolver
	books         BookAdministrator
	strategies    StrategyLister
	maxBatchItems int
}

// NewPricingHandler creates a new PricingHandler. maxBatchItems <= 0 leaves
// only the binding limit in place.
func NewPricingHandler(
	updates PriceUpdater,
	effective EffectivePriceResolver,
	books BookAdministrator,
	strategies StrategyLister,
	maxBatchItems int,
) *PricingHandler {
	return &PricingHandler{
		updates:       updates,
		effective:     effective,
		books:         books,
		strategies:    strategies,
		maxBatchItems: maxBatchItems,
	}
}

// EffectivePriceQuery are the query parameters of GetEffectivePrice
type EffectivePriceQuery struct {
	ProductID string `form:"product_id" binding:"required,uuid"`
	ZoneID    string `form:"zone_id" binding:"omitempty,uuid"`
	SegmentID string `form:"segment_id" binding:"omitempty,uuid"`
}

// ApplyUpdates godoc
// @ID           applyPriceUpdates
// @Summary      Apply a batch of price changes
// @Description  Writes each item to its context's book. Items whose change would override child prices are resolved with the requested strategy; under ASK they are skipped and reported.
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.ApplyUpdateRequest true "Price changes"
// @Success      200 {object} dto.Response{data=pricingapp.BatchResult}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /pricing/updates [post]
func (h *PricingHandler) ApplyUpdates(c *gin.Context) {
	req, ok := h.bindUpdateRequest(c)
	if !ok {
		return
	}

	result, err := h.updates.Apply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PreviewUpdates godoc
// @ID           previewPriceUpdates
// @Summary      Preview the conflicts of a batch
// @Description  Runs conflict detection for every item without writing anything
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.ApplyUpdateRequest true "Price changes"
// @Success      200 {object} dto.Response{data=pricingapp.PreviewResult}
// @Failure      400 {object} dto.Response
// @Router       /pricing/updates/preview [post]
func (h *PricingHandler) PreviewUpdates(c *gin.Context) {
	req, ok := h.bindUpdateRequest(c)
	if !ok {
		return
	}

	result, err := h.updates.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *PricingHandler) bindUpdateRequest(c *gin.Context) (pricingapp.ApplyUpdateRequest, bool) {
	var req pricingapp.ApplyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return req, false
	}
	if h.maxBatchItems > 0 && len(req.Items) > h.maxBatchItems {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   "items",
			Message: "Must contain at most " + strconv.Itoa(h.maxBatchItems) + " items",
		}})
		return req, false
	}
	return req, true
}

// GetEffectivePrice godoc
// @ID           getEffectivePrice
// @Summary      Resolve the effective price of a product
// @Description  Walks zone+segment, zone, segment and master books and returns the first price found
// @Tags         pricing
// @Produce      json
// @Param        product_id query string true  "Product ID" format(uuid)
// @Param        zone_id    query string false "Zone ID" format(uuid)
// @Param        segment_id query string false "Segment ID" format(uuid)
// @Success      200 {object} dto.Response{data=pricingapp.EffectivePriceResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /pricing/effective [get]
func (h *PricingHandler) GetEffectivePrice(c *gin.Context) {
	var q EffectivePriceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	// binding already checked the formats
	productID := uuid.MustParse(q.ProductID)
	var details []dto.ValidationDetail
	zoneID, err := parseOptionalUUID(q.ZoneID)
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: "zone_id", Message: "Must be a non-nil UUID"})
	}
	segmentID, err := parseOptionalUUID(q.SegmentID)
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: "segment_id", Message: "Must be a non-nil UUID"})
	}
	if len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	price, err := h.effective.Resolve(c.Request.Context(), zoneID, segmentID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, price)
}

// BulkEffectivePrices godoc
// @ID           bulkEffectivePrices
// @Summary      Resolve effective prices for several products
// @Description  Products without a price carry a per-item error instead of failing the call
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.BulkEffectivePriceRequest true "Context and products"
// @Success      200 {object} dto.Response{data=[]pricingapp.BulkEffectivePrice}
// @Failure      400 {object} dto.Response
// @Router       /pricing/effective/bulk [post]
func (h *PricingHandler) BulkEffectivePrices(c *gin.Context) {
	var req pricingapp.BulkEffectivePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	results, err := h.effective.ResolveMany(c.Request.Context(), req.ZoneID, req.SegmentID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// ListBooks godoc
// @ID           listPriceBooks
// @Summary      List price books
// @Tags         pricing
// @Produce      json
// @Param        active_only query bool false "Only active books (default true)"
// @Success      200 {object} dto.Response{data=[]pricingapp.BookResponse}
// @Router       /pricing/books [get]
func (h *PricingHandler) ListBooks(c *gin.Context) {
	activeOnly := true
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.ValidationError(c, []dto.ValidationDetail{{Field: "active_only", Message: "Must be a boolean"}})
			return
		}
		activeOnly = v
	}

	books, err := h.books.ListBooks(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, books)
}

// DeactivateBook godoc
// @ID           deactivatePriceBook
// @Summary      Deactivate an override price book
// @Description  The context falls back to its ancestors afterwards. The master book cannot be deactivated.
// @Tags         pricing
// @Produce      json
// @Param        id path string true "Price book ID" format(uuid)
// @Success      200 {object} dto.Response{data=pricingapp.BookResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /pricing/books/{id}/deactivate [post]
func (h *PricingHandler) DeactivateBook(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	book, err := h.books.DeactivateBook(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// ListStrategies godoc
// @ID           listResolutionStrategies
// @Summary      List conflict resolution strategies
// @Tags         pricing
// @Produce      json
// @Success      200 {object} dto.Response{data=[]pricingapp.StrategyResponse}
// @Router       /pricing/strategies [get]
func (h *PricingHandler) ListStrategies(c *gin.Context) {
	h.Success(c, h.strategies.Strategies())
}
