package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormConfig(t *testing.T) {
	cfg := GormConfig(logger.Default.LogMode(logger.Silent))

	assert.True(t, cfg.TranslateError)
	assert.True(t, cfg.SkipDefaultTransaction)
	assert.True(t, cfg.PrepareStmt)
}

// newPingMonitoredDatabase wraps a sqlmock connection that records pings
func newPingMonitoredDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return &Database{DB: db}, mock
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		database, mock := newPingMonitoredDatabase(t)
		mock.ExpectPing()

		assert.NoError(t, database.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		database, mock := newPingMonitoredDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.Error(t, database.Ping(context.Background()))
	})
}

func TestDatabase_SQLAndClose(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	database := &Database{DB: db}

	pool, err := database.SQL()
	require.NoError(t, err)
	assert.Same(t, mockDB, pool)

	require.NoError(t, database.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
