package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PriceUpdateService is the write path. It routes each item to the book of
// its context, detects and resolves child conflicts, upserts the entry and
// invalidates cached effective prices.
type PriceUpdateService struct {
	uow         pricing.UnitOfWork
	books       *BookService
	detector    *ConflictDetector
	engine      *ResolutionEngine
	strategies  StrategyProvider
	catalog     pricing.CatalogLookup
	invalidator pricing.CacheInvalidator
	metrics     UpdateMetrics
	logger      *zap.Logger
}

// NewPriceUpdateService creates a new PriceUpdateService.
// catalog, invalidator and metrics may be nil.
func NewPriceUpdateService(
	uow pricing.UnitOfWork,
	books *BookService,
	detector *ConflictDetector,
	engine *ResolutionEngine,
	strategies StrategyProvider,
	catalog pricing.CatalogLookup,
	invalidator pricing.CacheInvalidator,
	metrics UpdateMetrics,
	logger *zap.Logger,
) *PriceUpdateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceUpdateService{
		uow:         uow,
		books:       books,
		detector:    detector,
		engine:      engine,
		strategies:  strategies,
		catalog:     catalog,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
	}
}

// itemOutcome is the per-item result before it is folded into the batch
type itemOutcome struct {
	result    ItemResult
	failure   *ItemFailure
	conflicts []pricing.ConflictRecord
	decision  *pricing.ResolutionPlan
	warning   string
}

// Apply processes a batch. Items are independent: one failing or needing a
// decision does not stop the others. Only a missing master book aborts the
// whole batch. Once started, the batch ignores cancellation of ctx.
func (s *PriceUpdateService) Apply(ctx context.Context, req ApplyUpdateRequest) (*BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, "price_update", "apply")
	defer span.End()

	if len(req.Items) == 0 {
		err := shared.ErrInvalidInput.WithMessage("At least one update item is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	strategy, err := s.resolveStrategy(req.Strategy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	requestCtx, perItem, requestErr := s.classify(req)
	if requestErr != nil && !perItem {
		telemetry.RecordError(span, requestErr)
		return nil, requestErr
	}
	shape := pricing.ClassifyUpdate(requestCtx, len(req.Items), perItem)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrShape, shape.String(),
		telemetry.SpanAttrStrategy, strategy.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)

	if err := s.requireMaster(ctx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &BatchResult{
		Shape:     shape.String(),
		Strategy:  strategy.String(),
		Conflicts: make([]ConflictResponse, 0),
		Items:     make([]ItemResult, 0, len(req.Items)),
		Failures:  make([]ItemFailure, 0),
	}

	var batchErr error
	telemetry.WithProfilingLabels(ctx, func(ctx context.Context) {
		batchErr = s.applyItems(ctx, span, req, requestCtx, requestErr, perItem, strategy, result)
	}, telemetry.ProfilingLabelOperation, "price_update.apply", telemetry.ProfilingLabelShape, shape.String())
	if batchErr != nil {
		telemetry.RecordError(span, batchErr)
		return nil, batchErr
	}
	result.Success = result.UpdatedCount > 0

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordBatch(ctx, shape.String(),
			result.UpdatedCount, result.SkippedCount, result.FailedCount, result.ConflictsDetected, elapsed)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUpdatedCount, result.UpdatedCount,
		telemetry.SpanAttrSkippedCount, result.SkippedCount,
		telemetry.SpanAttrFailedCount, result.FailedCount,
		telemetry.SpanAttrConflictCount, result.ConflictsDetected,
	)
	telemetry.SetOK(span)

	s.logger.Info("Applied price update batch",
		zap.String("shape", shape.String()),
		zap.String("strategy", strategy.String()),
		zap.Int("items", len(req.Items)),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("conflicts", result.ConflictsDetected),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// Preview runs conflict detection for every item without writing anything
func (s *PriceUpdateService) Preview(ctx context.Context, req ApplyUpdateRequest) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "price_update", "preview")
	defer span.End()

	if len(req.Items) == 0 {
		err := shared.ErrInvalidInput.WithMessage("At least one update item is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	requestCtx, perItem, requestErr := s.classify(req)
	if requestErr != nil && !perItem {
		telemetry.RecordError(span, requestErr)
		return nil, requestErr
	}
	shape := pricing.ClassifyUpdate(requestCtx, len(req.Items), perItem)

	result := &PreviewResult{
		Shape:           shape.String(),
		Items:           make([]PreviewItem, 0, len(req.Items)),
		Failures:        make([]ItemFailure, 0),
		ValidStrategies: strategyNames(pricing.DecisiveStrategies()),
	}

	err := s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		for _, item := range req.Items {
			target, err := s.itemContext(req, item, requestCtx, requestErr, perItem)
			if err != nil {
				result.Failures = append(result.Failures, newItemFailure(target, item, err))
				continue
			}
			if err := validateItem(item); err != nil {
				result.Failures = append(result.Failures, newItemFailure(target, item, err))
				continue
			}

			detection, err := s.detector.Detect(ctx, repos, target, item.ProductID, item.NewPrice)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, PreviewItem{
				ProductID:    item.ProductID,
				ZoneID:       target.ZoneRef(),
				SegmentID:    target.SegmentRef(),
				NewPrice:     item.NewPrice,
				HasConflicts: detection.HasConflicts(),
				Conflicts:    ToConflictResponses(detection.Conflicts),
			})
			result.ConflictsDetected += len(detection.Conflicts)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.HasConflicts = result.ConflictsDetected > 0
	telemetry.SetAttributes(span,
		telemetry.SpanAttrShape, shape.String(),
		telemetry.SpanAttrConflictCount, result.ConflictsDetected,
	)
	telemetry.SetOK(span)
	return result, nil
}

// applyItem handles one item. Errors other than a missing master are
// converted into an item failure.
func (s *PriceUpdateService) applyItem(
	ctx context.Context,
	target pricing.Context,
	item UpdateItem,
	strategy pricing.ResolutionStrategy,
) (itemOutcome, error) {
	out := itemOutcome{
		result: ItemResult{
			ProductID: item.ProductID,
			ZoneID:    target.ZoneRef(),
			SegmentID: target.SegmentRef(),
			Price:     item.NewPrice,
		},
	}

	fail := func(err error) (itemOutcome, error) {
		if errors.Is(err, pricing.ErrMasterBookMissing) {
			return out, err
		}
		f := newItemFailure(target, item, err)
		out.failure = &f
		out.result.Status = ItemFailed
		out.result.Reason = f.Reason
		return out, nil
	}

	if err := validateItem(item); err != nil {
		return fail(err)
	}
	if s.catalog != nil {
		if _, err := s.catalog.GetProduct(ctx, item.ProductID); err != nil {
			return fail(err)
		}
	}

	var written *pricing.PriceEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		detection, err := s.detector.Detect(ctx, repos, target, item.ProductID, item.NewPrice)
		if err != nil {
			return err
		}
		out.conflicts = detection.Conflicts

		if detection.HasConflicts() {
			current, err := s.currentTargetPrice(ctx, repos, target, item.ProductID)
			if err != nil {
				return err
			}
			resolved, err := s.engine.Resolve(ctx, repos, strategy, pricing.ResolutionInput{
				Target:             target,
				ProductID:          item.ProductID,
				NewPrice:           item.NewPrice,
				CurrentTargetPrice: current,
				Conflicts:          detection.Conflicts,
			})
			if err != nil {
				return err
			}
			out.result.Strategy = resolved.Plan.Strategy.String()
			if !resolved.Plan.WriteTarget {
				out.decision = &resolved.Plan
				return nil
			}
			out.result.DeletedCount = resolved.Deleted
			out.result.AdjustedCount = resolved.Adjusted
		}

		book, _, err := s.books.EnsureBook(ctx, repos, target)
		if err != nil {
			return err
		}
		entry, err := pricing.NewPriceEntry(book.ID, item.ProductID, item.NewPrice)
		if err != nil {
			return err
		}
		written, err = repos.Entries.Upsert(ctx, entry)
		return err
	})
	if err != nil {
		return fail(err)
	}

	if len(out.conflicts) > 0 {
		out.result.Conflicts = ToConflictResponses(out.conflicts)
	}

	if written == nil {
		out.result.Status = ItemSkipped
		out.result.Reason = "Conflicting child prices require a resolution strategy"
		return out, nil
	}

	bookID := written.BookID
	out.result.Status = ItemUpdated
	out.result.BookID = &bookID
	out.result.Price = written.BasePrice
	out.warning = s.invalidate(ctx, target, item.ProductID)
	return out, nil
}

// currentTargetPrice reads the entry already stored at target without
// creating the book. nil means there is no price to scale from.
func (s *PriceUpdateService) currentTargetPrice(
	ctx context.Context,
	repos pricing.Repositories,
	target pricing.Context,
	productID uuid.UUID,
) (*decimal.Decimal, error) {
	var (
		book *pricing.PriceBook
		err  error
	)
	if target.IsMaster() {
		book, _, err = s.books.EnsureBook(ctx, repos, target)
	} else {
		book, err = s.books.FindBook(ctx, repos, target)
	}
	if err != nil || book == nil {
		return nil, err
	}

	entry, err := repos.Entries.FindByBookAndProduct(ctx, book.ID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	price := entry.BasePrice
	return &price, nil
}

// invalidate notifies the cache and returns a warning instead of failing
func (s *PriceUpdateService) invalidate(ctx context.Context, target pricing.Context, productID uuid.UUID) string {
	if s.invalidator == nil {
		return ""
	}
	req := pricing.InvalidationFor(target, productID)
	if err := s.invalidator.Invalidate(ctx, req); err != nil {
		s.logger.Warn("Failed to invalidate effective price cache",
			zap.String("scope", string(req.Scope)),
			zap.Stringp("zone_id", uuidString(target.ZoneRef())),
			zap.Stringp("segment_id", uuidString(target.SegmentRef())),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return fmt.Sprintf("cache invalidation failed for product %s in context %s: %v", productID, target, err)
	}
	return ""
}

// requireMaster aborts the batch up front when there is no master book
func (s *PriceUpdateService) requireMaster(ctx context.Context) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		_, _, err := s.books.EnsureBook(ctx, repos, pricing.MasterContext())
		return err
	})
}

func (s *PriceUpdateService) resolveStrategy(name string) (pricing.ResolutionStrategy, error) {
	if strings.TrimSpace(name) == "" {
		if d := s.strategies.DefaultResolutionStrategy(); d != "" {
			return d, nil
		}
		return pricing.StrategyAsk, nil
	}
	policy, err := s.strategies.GetResolutionPolicy(name)
	if err != nil {
		return "", err
	}
	return policy.Strategy(), nil
}

// classify returns the request-level context and whether items carry
// their own contexts. A malformed request context is an error only when
// every item inherits it; otherwise it fails the inheriting items.
func (s *PriceUpdateService) classify(req ApplyUpdateRequest) (pricing.Context, bool, error) {
	requestCtx, ctxErr := pricing.ContextFor(req.ZoneID, req.SegmentID, req.ApplyToAllSegments)

	for _, item := range req.Items {
		if item.ZoneID != nil || item.SegmentID != nil {
			return requestCtx, true, ctxErr
		}
	}
	return requestCtx, false, ctxErr
}

// applyItems runs every item in order, recording outcomes into result
func (s *PriceUpdateService) applyItems(
	ctx context.Context,
	span trace.Span,
	req ApplyUpdateRequest,
	requestCtx pricing.Context,
	requestErr error,
	perItem bool,
	strategy pricing.ResolutionStrategy,
	result *BatchResult,
) error {
	for _, item := range req.Items {
		var out itemOutcome
		target, err := s.itemContext(req, item, requestCtx, requestErr, perItem)
		if err != nil {
			out = rejectedItem(target, item, err)
		} else if out, err = s.applyItem(ctx, target, item, strategy); err != nil {
			// only a missing master escapes applyItem
			return err
		}

		if n := len(out.conflicts); n > 0 {
			telemetry.AddEvent(span, "conflicts_detected",
				telemetry.SpanAttrProductID, item.ProductID.String(),
				telemetry.SpanAttrContextKey, target.Key(),
				telemetry.SpanAttrConflictCount, n,
			)
		}
		result.Items = append(result.Items, out.result)
		result.ConflictsDetected += len(out.conflicts)
		result.Conflicts = append(result.Conflicts, ToConflictResponses(out.conflicts)...)
		if out.warning != "" {
			result.Warnings = append(result.Warnings, out.warning)
		}

		switch out.result.Status {
		case ItemUpdated:
			result.UpdatedCount++
		case ItemSkipped:
			result.SkippedCount++
			if out.decision != nil && out.decision.RequiresDecision {
				result.RequiresResolution = true
				result.ValidStrategies = strategyNames(out.decision.ValidStrategies)
			}
		case ItemFailed:
			result.FailedCount++
			result.Failures = append(result.Failures, *out.failure)
		}
	}
	return nil
}

// itemContext picks the target of one item. An item that names a zone or
// segment replaces the request context entirely; other items inherit it
// along with requestErr.
func (s *PriceUpdateService) itemContext(req ApplyUpdateRequest, item UpdateItem, requestCtx pricing.Context, requestErr error, perItem bool) (pricing.Context, error) {
	if !perItem || (item.ZoneID == nil && item.SegmentID == nil) {
		return requestCtx, requestErr
	}
	return pricing.ContextFor(item.ZoneID, item.SegmentID, req.ApplyToAllSegments)
}

// rejectedItem reports an item whose target context is malformed
func rejectedItem(target pricing.Context, item UpdateItem, err error) itemOutcome {
	f := newItemFailure(target, item, err)
	return itemOutcome{
		result: ItemResult{
			ProductID: item.ProductID,
			ZoneID:    target.ZoneRef(),
			SegmentID: target.SegmentRef(),
			Price:     item.NewPrice,
			Status:    ItemFailed,
			Reason:    f.Reason,
		},
		failure: &f,
	}
}

func validateItem(item UpdateItem) error {
	if item.ProductID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Product ID is required")
	}
	return pricing.ValidatePrice(item.NewPrice)
}

func newItemFailure(target pricing.Context, item UpdateItem, err error) ItemFailure {
	code, reason := "INTERNAL_ERROR", err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	return ItemFailure{
		ProductID:      item.ProductID,
		ZoneID:         target.ZoneRef(),
		SegmentID:      target.SegmentRef(),
		AttemptedPrice: item.NewPrice,
		Code:           code,
		Reason:         reason,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
