package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/migration"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence/models"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testLogger is silent unless TEST_DB_DEBUG is set
func testLogger() logger.Interface {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Silent)
}

// NewSQLiteDB opens a private in-memory SQLite database with the registry
// schema. A single connection keeps every statement on the same database;
// SQLite serialises writers, so row locks are trivially granted.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := persistence.GormConfig(testLogger())
	cfg.PrepareStmt = false

	db, err := gorm.Open(sqlite.Open("file::memory:"), cfg)
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate SQLite schema")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// PostgresDB is a throwaway PostgreSQL container with the SQL migrations applied
type PostgresDB struct {
	DB        *gorm.DB
	DSN       string
	Container *tcpostgres.PostgresContainer
}

// NewPostgresDB starts PostgreSQL 16 in a container and applies the
// migrations directory. Skipped under -short.
func NewPostgresDB(t *testing.T) *PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("sidesa_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	applyMigrations(t, dsn)

	db, err := gorm.Open(gormpostgres.Open(dsn), persistence.GormConfig(testLogger()))
	require.NoError(t, err, "Failed to connect to PostgreSQL")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &PostgresDB{DB: db, DSN: dsn, Container: container}
}

// applyMigrations runs every up migration on a dedicated connection, which
// the migrator closes.
func applyMigrations(t *testing.T, dsn string) {
	t.Helper()

	path := migrationsPath(t)
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	m, err := migration.New(sqlDB, path, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Up(), "Failed to apply migrations")
}

func migrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to locate testutil source")

	path := migration.FindPath(filepath.Dir(file))
	require.NotEmpty(t, path, "migrations directory not found")
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
