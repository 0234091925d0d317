package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookConfig holds the master book defaults
type BookConfig struct {
	MasterBookName  string
	DefaultCurrency string
}

// BookService resolves, creates and administers price books
type BookService struct {
	uow         pricing.UnitOfWork
	lookups     ReferenceLookup
	invalidator pricing.CacheInvalidator
	cfg         BookConfig
	logger      *zap.Logger
}

// NewBookService creates a new BookService. lookups and invalidator may be nil.
func NewBookService(
	uow pricing.UnitOfWork,
	lookups ReferenceLookup,
	invalidator pricing.CacheInvalidator,
	cfg BookConfig,
	logger *zap.Logger,
) *BookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MasterBookName == "" {
		cfg.MasterBookName = "Master Price Book"
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	return &BookService{
		uow:         uow,
		lookups:     lookups,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      logger,
	}
}

// EnsureBook returns the active book for target, creating it under the
// nearest active ancestor book when it does not exist yet. The bool reports
// whether this call created it. A concurrent creator winning the race is not
// an error; its book is returned instead.
func (s *BookService) EnsureBook(ctx context.Context, repos pricing.Repositories, target pricing.Context) (*pricing.PriceBook, bool, error) {
	if target.IsMaster() {
		master, err := repos.Books.FindMaster(ctx)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, false, pricing.ErrMasterBookMissing
			}
			return nil, false, err
		}
		return master, false, nil
	}

	book, err := s.FindBook(ctx, repos, target)
	if err != nil {
		return nil, false, err
	}
	if book != nil {
		return book, false, nil
	}

	parent, err := s.nearestAncestor(ctx, repos, target)
	if err != nil {
		return nil, false, err
	}

	name, currency, err := s.describe(ctx, target)
	if err != nil {
		return nil, false, err
	}

	book, err = pricing.NewOverridePriceBook(name, target, currency, parent)
	if err != nil {
		return nil, false, err
	}

	if err := repos.Books.Create(ctx, book); err != nil {
		if !errors.Is(err, pricing.ErrContextTaken) {
			return nil, false, fmt.Errorf("failed to create price book: %w", err)
		}
		existing, ferr := repos.Books.FindActiveByContext(ctx, target)
		if ferr != nil {
			return nil, false, fmt.Errorf("failed to reload price book after concurrent create: %w", ferr)
		}
		return existing, false, nil
	}

	s.logger.Info("Created price book",
		zap.String("book_id", book.ID.String()),
		zap.String("name", book.Name),
		zap.String("context", target.Key()),
		zap.String("parent_book_id", parent.ID.String()),
	)
	return book, true, nil
}

// FindBook returns the active book bound to target, or nil when there is none
func (s *BookService) FindBook(ctx context.Context, repos pricing.Repositories, target pricing.Context) (*pricing.PriceBook, error) {
	book, err := repos.Books.FindActiveByContext(ctx, target)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

func (s *BookService) nearestAncestor(ctx context.Context, repos pricing.Repositories, target pricing.Context) (*pricing.PriceBook, error) {
	ancestors := target.Ancestors()
	books, err := repos.Books.FindActiveByContexts(ctx, ancestors)
	if err != nil {
		return nil, err
	}

	byContext := make(map[pricing.Context]*pricing.PriceBook, len(books))
	for i := range books {
		byContext[books[i].Context] = &books[i]
	}
	for _, c := range ancestors {
		if b, ok := byContext[c]; ok {
			return b, nil
		}
	}
	return nil, pricing.ErrMasterBookMissing
}

// describe builds the display name of a new book and picks its currency.
// An empty currency means "inherit from the parent".
func (s *BookService) describe(ctx context.Context, target pricing.Context) (string, string, error) {
	var zoneName, segmentName, currency string

	if target.HasZone() {
		zoneName = target.ZoneID.String()
		if s.lookups != nil {
			zone, err := s.lookups.GetZone(ctx, target.ZoneID)
			if err != nil {
				return "", "", err
			}
			zoneName = zone.Name
			currency = zone.CurrencyCode
		}
	}
	if target.HasSegment() {
		segmentName = target.SegmentID.String()
		if s.lookups != nil {
			segment, err := s.lookups.GetSegment(ctx, target.SegmentID)
			if err != nil {
				return "", "", err
			}
			segmentName = segment.Name
		}
	}

	switch target.Scope() {
	case pricing.ScopeZone:
		return fmt.Sprintf("Price Book - %s", zoneName), currency, nil
	case pricing.ScopeSegment:
		return fmt.Sprintf("Price Book - %s", segmentName), currency, nil
	default:
		return fmt.Sprintf("Price Book - %s / %s", zoneName, segmentName), currency, nil
	}
}

// BootstrapMaster creates the master book when none is active. It is safe
// to call on every start and from several instances at once.
func (s *BookService) BootstrapMaster(ctx context.Context) (*BookResponse, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "bootstrap_master")
	defer span.End()

	var (
		master  *pricing.PriceBook
		created bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		existing, err := repos.Books.FindMaster(ctx)
		if err == nil {
			master = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		book, err := pricing.NewMasterPriceBook(s.cfg.MasterBookName, s.cfg.DefaultCurrency)
		if err != nil {
			return err
		}
		if err := repos.Books.Create(ctx, book); err != nil {
			if !errors.Is(err, pricing.ErrMasterBookExists) {
				return err
			}
			existing, ferr := repos.Books.FindMaster(ctx)
			if ferr != nil {
				return ferr
			}
			master = existing
			return nil
		}
		master, created = book, true
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, false, fmt.Errorf("failed to bootstrap master price book: %w", err)
	}

	if created {
		s.logger.Info("Created master price book",
			zap.String("book_id", master.ID.String()),
			zap.String("currency", master.Currency),
		)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrBookID, master.ID.String())
	telemetry.SetOK(span)
	resp := ToBookResponse(master)
	return &resp, created, nil
}

// ListBooks lists price books, most general first
func (s *BookService) ListBooks(ctx context.Context, activeOnly bool) ([]BookResponse, error) {
	var books []pricing.PriceBook
	err := s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		var err error
		books, err = repos.Books.FindAll(ctx, activeOnly)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = ToBookResponse(&books[i])
	}
	return out, nil
}

// DeactivateBook retires an override book. Its entries stop taking part in
// detection and resolution, so every cached price below its context is dropped.
func (s *BookService) DeactivateBook(ctx context.Context, id uuid.UUID) (*BookResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "deactivate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBookID, id.String())

	var book *pricing.PriceBook
	err := s.uow.Do(ctx, func(ctx context.Context, repos pricing.Repositories) error {
		var err error
		book, err = repos.Books.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := book.Deactivate(); err != nil {
			return err
		}
		return repos.Books.Save(ctx, book)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Deactivated price book",
		zap.String("book_id", book.ID.String()),
		zap.String("context", book.Context.Key()),
	)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, pricing.InvalidationForContext(book.Context)); err != nil {
			s.logger.Warn("Failed to invalidate effective prices after deactivation",
				zap.String("book_id", book.ID.String()),
				zap.Error(err),
			)
		}
	}

	telemetry.SetOK(span)
	resp := ToBookResponse(book)
	return &resp, nil
}
