// Package integration runs the pricing service against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/erp/pricing/internal/infrastructure/migration"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pricingTables lists every table the tests write, children first
var pricingTables = []string{"price_entries", "price_books", "products", "pricing_zones", "customer_segments"}

// postgresContainer is started once per package run and torn down by
// CleanupSharedContainer from TestMain.
var postgresContainer struct {
	sync.Mutex
	c   *tcpostgres.PostgresContainer
	dsn string
}

// TestDB is one test's connection to the shared database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	t     *testing.T
}

// NewSharedTestDB connects to the package's PostgreSQL container, starting
// and migrating it on first use. Data persists between tests; call
// CleanTables to start from an empty schema.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := sharedDSN(t)

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, SqlDB: sqlDB, t: t}
}

func sharedDSN(t *testing.T) string {
	postgresContainer.Lock()
	defer postgresContainer.Unlock()
	if postgresContainer.c != nil {
		return postgresContainer.dsn
	}

	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pricing_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// the migrator closes the handle it is given
	migrateDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(migrateDB, migration.EmbeddedSource(), nil)
	require.NoError(t, err)
	require.NoError(t, m.Up(), "apply migrations")
	_ = m.Close()

	postgresContainer.c, postgresContainer.dsn = c, dsn
	return dsn
}

// CleanupSharedContainer stops the container. Call it from TestMain.
func CleanupSharedContainer() {
	postgresContainer.Lock()
	defer postgresContainer.Unlock()
	if postgresContainer.c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgresContainer.c.Terminate(ctx)
	postgresContainer.c, postgresContainer.dsn = nil, ""
}

// CleanTables truncates every pricing table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range pricingTables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table+" CASCADE").Error, "truncate %s", table)
	}
}

// CreateProduct inserts a catalog product
func (tdb *TestDB) CreateProduct(code string) uuid.UUID {
	return tdb.insert(`INSERT INTO products (id, code, name) VALUES (?, ?, ?)`, code, "Product "+code)
}

// CreateZone inserts a pricing zone priced in currency
func (tdb *TestDB) CreateZone(name, currency string) uuid.UUID {
	return tdb.insert(`INSERT INTO pricing_zones (id, name, currency_code) VALUES (?, ?, ?)`, name, currency)
}

// CreateSegment inserts a customer segment
func (tdb *TestDB) CreateSegment(name string) uuid.UUID {
	return tdb.insert(`INSERT INTO customer_segments (id, name) VALUES (?, ?)`, name)
}

// insert runs stmt with a fresh ID as its first parameter and returns the ID
func (tdb *TestDB) insert(stmt string, args ...any) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	require.NoError(tdb.t, tdb.DB.Exec(stmt, append([]any{id}, args...)...).Error)
	return id
}
