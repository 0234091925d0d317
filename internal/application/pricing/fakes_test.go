package pricing

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for the gorm repositories
type memStore struct {
	mu      sync.Mutex
	books   map[uuid.UUID]pricing.PriceBook
	entries map[uuid.UUID]pricing.PriceEntry

	// beforeCreate runs inside Create, before the uniqueness check
	beforeCreate func(book *pricing.PriceBook)
	// entryQueries counts FindActiveByProduct calls
	entryQueries int
}

func newMemStore() *memStore {
	return &memStore{
		books:   make(map[uuid.UUID]pricing.PriceBook),
		entries: make(map[uuid.UUID]pricing.PriceEntry),
	}
}

func (s *memStore) repos() pricing.Repositories {
	return pricing.Repositories{
		Books:   &memBookRepo{s: s},
		Entries: &memEntryRepo{s: s},
	}
}

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context, repos pricing.Repositories) error) error {
	return fn(ctx, s.repos())
}

func (s *memStore) seedMaster(t *testing.T) *pricing.PriceBook {
	t.Helper()
	b, err := pricing.NewMasterPriceBook("Master Price Book", "USD")
	require.NoError(t, err)
	require.NoError(t, s.repos().Books.Create(context.Background(), b))
	return b
}

func (s *memStore) seedBook(t *testing.T, c pricing.Context, parent *pricing.PriceBook) *pricing.PriceBook {
	t.Helper()
	b, err := pricing.NewOverridePriceBook("Price Book - "+c.Key(), c, "", parent)
	require.NoError(t, err)
	require.NoError(t, s.repos().Books.Create(context.Background(), b))
	return b
}

func (s *memStore) seedEntry(t *testing.T, book *pricing.PriceBook, productID uuid.UUID, price string) *pricing.PriceEntry {
	t.Helper()
	e, err := pricing.NewPriceEntry(book.ID, productID, decimal.RequireFromString(price))
	require.NoError(t, err)
	stored, err := s.repos().Entries.Upsert(context.Background(), e)
	require.NoError(t, err)
	return stored
}

// priceAt returns the entry price of productID in the active book of c
func (s *memStore) priceAt(c pricing.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if !b.IsActive || b.Context != c {
			continue
		}
		for _, e := range s.entries {
			if e.BookID == b.ID && e.ProductID == productID {
				return e.BasePrice, true
			}
		}
	}
	return decimal.Zero, false
}

func (s *memStore) activeBook(c pricing.Context) *pricing.PriceBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.IsActive && b.Context == c {
			return &b
		}
	}
	return nil
}

type memBookRepo struct{ s *memStore }

func (r *memBookRepo) FindByID(_ context.Context, id uuid.UUID) (*pricing.PriceBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

func (r *memBookRepo) FindMaster(_ context.Context) (*pricing.PriceBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.IsActive && b.IsMaster {
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBookRepo) FindActiveByContext(_ context.Context, c pricing.Context) (*pricing.PriceBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.IsActive && b.Context == c {
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBookRepo) FindActiveByContexts(_ context.Context, cs []pricing.Context) ([]pricing.PriceBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]pricing.PriceBook, 0)
	for _, b := range r.s.books {
		for _, c := range cs {
			if b.IsActive && b.Context == c {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (r *memBookRepo) FindAll(_ context.Context, activeOnly bool) ([]pricing.PriceBook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]pricing.PriceBook, 0, len(r.s.books))
	for _, b := range r.s.books {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scope().Specificity() < out[j].Scope().Specificity()
	})
	return out, nil
}

func (r *memBookRepo) Create(_ context.Context, book *pricing.PriceBook) error {
	if hook := r.s.beforeCreate; hook != nil {
		r.s.beforeCreate = nil
		hook(book)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.IsActive && b.Context == book.Context {
			if book.IsMaster {
				return pricing.ErrMasterBookExists
			}
			return pricing.ErrContextTaken
		}
	}
	r.s.books[book.ID] = *book
	return nil
}

func (r *memBookRepo) Save(_ context.Context, book *pricing.PriceBook) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.books[book.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if cur.Version != book.Version {
		return shared.ErrConcurrencyConflict
	}
	book.IncrementVersion()
	r.s.books[book.ID] = *book
	return nil
}

type memEntryRepo struct{ s *memStore }

func (r *memEntryRepo) FindByBookAndProduct(_ context.Context, bookID, productID uuid.UUID) (*pricing.PriceEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.BookID == bookID && e.ProductID == productID {
			return &e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) FindActiveByProduct(_ context.Context, productID uuid.UUID) ([]pricing.ScopedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entryQueries++
	return r.scoped(productID, nil), nil
}

func (r *memEntryRepo) FindActiveByProductInContexts(_ context.Context, productID uuid.UUID, cs []pricing.Context) ([]pricing.ScopedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.scoped(productID, cs), nil
}

func (r *memEntryRepo) scoped(productID uuid.UUID, cs []pricing.Context) []pricing.ScopedEntry {
	out := make([]pricing.ScopedEntry, 0)
	for _, e := range r.s.entries {
		if e.ProductID != productID {
			continue
		}
		b, ok := r.s.books[e.BookID]
		if !ok || !b.IsActive {
			continue
		}
		if cs != nil && !containsContext(cs, b.Context) {
			continue
		}
		out = append(out, pricing.ScopedEntry{
			Entry:    e,
			BookName: b.Name,
			Context:  b.Context,
			IsMaster: b.IsMaster,
			Currency: b.Currency,
		})
	}
	return out
}

func containsContext(cs []pricing.Context, c pricing.Context) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

func (r *memEntryRepo) Upsert(_ context.Context, entry *pricing.PriceEntry) (*pricing.PriceEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, e := range r.s.entries {
		if e.BookID == entry.BookID && e.ProductID == entry.ProductID {
			e.BasePrice = entry.BasePrice
			e.UpdatedAt = time.Now()
			r.s.entries[id] = e
			return &e, nil
		}
	}
	r.s.entries[entry.ID] = *entry
	stored := *entry
	return &stored, nil
}

func (r *memEntryRepo) UpdatePrice(_ context.Context, entryID uuid.UUID, price decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[entryID]
	if !ok {
		return shared.ErrNotFound
	}
	e.BasePrice = price
	r.s.entries[entryID] = e
	return nil
}

func (r *memEntryRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.s.entries[id]; ok {
			delete(r.s.entries, id)
			n++
		}
	}
	return n, nil
}

// MockReferenceLookup mocks the catalog, zone and segment lookups
type MockReferenceLookup struct {
	mock.Mock
}

func (m *MockReferenceLookup) GetProduct(ctx context.Context, id uuid.UUID) (*pricing.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Product), args.Error(1)
}

func (m *MockReferenceLookup) GetZone(ctx context.Context, id uuid.UUID) (*pricing.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Zone), args.Error(1)
}

func (m *MockReferenceLookup) GetSegment(ctx context.Context, id uuid.UUID) (*pricing.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Segment), args.Error(1)
}

// MockInvalidator mocks the cache invalidation transport
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, req pricing.InvalidationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// spyMetrics records what the services report
type spyMetrics struct {
	mu          sync.Mutex
	batches     []string
	updated     int
	skipped     int
	failed      int
	conflicts   int
	resolutions map[string]int
	hits        int
	misses      int
}

func newSpyMetrics() *spyMetrics {
	return &spyMetrics{resolutions: make(map[string]int)}
}

func (m *spyMetrics) RecordBatch(_ context.Context, shape string, updated, skipped, failed, conflicts int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, shape)
	m.updated += updated
	m.skipped += skipped
	m.failed += failed
	m.conflicts += conflicts
}

func (m *spyMetrics) RecordResolution(_ context.Context, strategy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions[strategy]++
}

func (m *spyMetrics) RecordCacheLookup(_ context.Context, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// testEnv wires the services over a memStore
type testEnv struct {
	store       *memStore
	lookups     *MockReferenceLookup
	invalidator *MockInvalidator
	metrics     *spyMetrics
	books       *BookService
	engine      *ResolutionEngine
	updates     *PriceUpdateService
	effective   *EffectivePriceService
}

// newTestEnv builds the services. Lookups answer for any zone or segment;
// invalidation succeeds unless a test overrides it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry, err := strategy.NewRegistryWithDefaults("ASK")
	require.NoError(t, err)

	store := newMemStore()
	lookups := new(MockReferenceLookup)
	lookups.On("GetZone", mock.Anything, mock.Anything).Return(&pricing.Zone{Name: "North", CurrencyCode: "EUR"}, nil).Maybe()
	lookups.On("GetSegment", mock.Anything, mock.Anything).Return(&pricing.Segment{Name: "Wholesale"}, nil).Maybe()
	lookups.On("GetProduct", mock.Anything, mock.Anything).Return(&pricing.Product{Name: "Widget"}, nil).Maybe()

	invalidator := new(MockInvalidator)
	metrics := newSpyMetrics()
	logger := zap.NewNop()

	books := NewBookService(store, lookups, invalidator, BookConfig{}, logger)
	engine := NewResolutionEngine(registry, metrics, logger)
	updates := NewPriceUpdateService(store, books, NewConflictDetector(), engine, registry, lookups, invalidator, metrics, logger)
	effective := NewEffectivePriceService(store.repos().Entries, nil, logger, WithCacheMetrics(metrics))

	return &testEnv{
		store:       store,
		lookups:     lookups,
		invalidator: invalidator,
		metrics:     metrics,
		books:       books,
		engine:      engine,
		updates:     updates,
		effective:   effective,
	}
}

func (e *testEnv) allowInvalidation() {
	e.invalidator.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}
