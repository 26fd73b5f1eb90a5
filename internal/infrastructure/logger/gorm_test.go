package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const lockSQL = `UPDATE "family_cards" SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NULL`

func fixedSQL(rows int64) func() (string, int64) {
	return func() (string, int64) { return lockSQL, rows }
}

func TestGormLogger_LogMode(t *testing.T) {
	base, _ := newObservedLogger()
	gl := NewGormLogger(base, gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)

	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("slow lock wait logs at warn", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), fixedSQL(1), nil)

		entries := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, lockSQL, entries[0].ContextMap()["sql"])
	})

	t.Run("errors log at error with request id", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Error)
		ctx := context.WithValue(context.Background(), requestIDKey, "req-9")

		gl.Trace(ctx, time.Now(), fixedSQL(0), errors.New("relation \"family_cards\" does not exist"))

		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("lock contention logs at warn", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), fixedSQL(0), &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})

		assert.Zero(t, recorded.FilterMessage("SQL Error").Len())
		entries := recorded.FilterMessage("SQL lock contention").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "lock_timeout", entries[0].ContextMap()["contention"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), fixedSQL(0), gormlogger.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now().Add(-time.Second), fixedSQL(1), errors.New("x"))

		assert.Zero(t, recorded.Len())
	})

	t.Run("info level logs queries at debug", func(t *testing.T) {
		base, recorded := newObservedLogger()
		gl := NewGormLogger(base, gormlogger.Info, WithSlowThreshold(0))

		gl.Trace(context.Background(), time.Now(), fixedSQL(1), nil)

		entries := recorded.FilterMessage("SQL Query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	})
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	base, _ := newObservedLogger()

	sql, params := NewGormLogger(base, gormlogger.Info).ParamsFilter(context.Background(), lockSQL, "3201010101010001")
	assert.Equal(t, lockSQL, sql)
	assert.Nil(t, params)

	_, params = NewGormLogger(base, gormlogger.Info, WithFullSQL(true)).ParamsFilter(context.Background(), lockSQL, "3201010101010001")
	assert.Equal(t, []any{"3201010101010001"}, params)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
