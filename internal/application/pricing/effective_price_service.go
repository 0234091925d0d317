package pricing

import (
	"context"
	"errors"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBulkConcurrency = 8

// EffectivePriceService is the read path. It walks the lineage of the
// requested context, most specific first, through a read-through cache.
type EffectivePriceService struct {
	entries     pricing.PriceEntryRepository
	cache       pricing.EffectivePriceCache
	metrics     CacheMetrics
	logger      *zap.Logger
	concurrency int
}

// EffectivePriceOption configures an EffectivePriceService
type EffectivePriceOption func(*EffectivePriceService)

// WithBulkConcurrency bounds the parallel lookups of ResolveMany
func WithBulkConcurrency(n int) EffectivePriceOption {
	return func(s *EffectivePriceService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithCacheMetrics records cache hits and misses
func WithCacheMetrics(m CacheMetrics) EffectivePriceOption {
	return func(s *EffectivePriceService) {
		s.metrics = m
	}
}

// NewEffectivePriceService creates a new EffectivePriceService. cache may be nil.
func NewEffectivePriceService(
	entries pricing.PriceEntryRepository,
	cache pricing.EffectivePriceCache,
	logger *zap.Logger,
	opts ...EffectivePriceOption,
) *EffectivePriceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EffectivePriceService{
		entries:     entries,
		cache:       cache,
		logger:      logger,
		concurrency: defaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the price that applies to productID in (zoneID, segmentID).
// It fails with pricing.ErrNoPriceConfigured when no lineage context has one.
func (s *EffectivePriceService) Resolve(ctx context.Context, zoneID, segmentID *uuid.UUID, productID uuid.UUID) (*EffectivePriceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "effective_price", "resolve")
	defer span.End()

	requested, err := pricing.ContextFor(zoneID, segmentID, false)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, productID.String(),
		telemetry.SpanAttrContextKey, requested.Key(),
	)

	price, err := s.resolve(ctx, requested, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrEffectiveScope, price.Source.Scope().String())
	telemetry.SetOK(span)
	return ToEffectivePriceResponse(price), nil
}

// ResolveMany resolves several products in one context concurrently.
// Results keep the input order; a product without a price carries an error
// instead of failing the call.
func (s *EffectivePriceService) ResolveMany(ctx context.Context, zoneID, segmentID *uuid.UUID, productIDs []uuid.UUID) ([]BulkEffectivePrice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "effective_price", "resolve_many")
	defer span.End()

	requested, err := pricing.ContextFor(zoneID, segmentID, false)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrContextKey, requested.Key(),
		telemetry.SpanAttrItemCount, len(productIDs),
	)

	out := make([]BulkEffectivePrice, len(productIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, productID := range productIDs {
		g.Go(func() error {
			out[i].ProductID = productID
			price, err := s.resolve(gctx, requested, productID)
			if err != nil {
				var de *shared.DomainError
				if errors.As(err, &de) {
					out[i].Error = &ResultError{Code: de.Code, Message: de.Message}
					return nil
				}
				return err
			}
			out[i].Price = ToEffectivePriceResponse(price)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return out, nil
}

func (s *EffectivePriceService) resolve(ctx context.Context, requested pricing.Context, productID uuid.UUID) (*pricing.EffectivePrice, error) {
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Product ID is required")
	}

	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, requested, productID)
		if err != nil {
			s.logger.Warn("Effective price cache read failed",
				zap.String("context", requested.Key()),
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, hit)
		}
		if hit {
			return cached, nil
		}
	}

	entries, err := s.entries.FindActiveByProductInContexts(ctx, productID, requested.Lineage())
	if err != nil {
		return nil, err
	}

	price, err := pricing.PickEffective(requested, productID, entries)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, price); err != nil {
			s.logger.Warn("Effective price cache write failed",
				zap.String("context", requested.Key()),
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
	}
	return price, nil
}
