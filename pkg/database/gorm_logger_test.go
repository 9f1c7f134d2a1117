package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/linkboard/config"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })
	return logs
}

func sqlOf(s string) func() (string, int64) {
	return func() (string, int64) { return s, 1 }
}

func TestGormLogger_Trace(t *testing.T) {
	logs := observe(t)
	ctx := context.Background()
	l := NewGormLogger(gormlogger.Warn)

	l.Trace(ctx, time.Now(), sqlOf("SELECT 1"), nil)
	assert.Zero(t, logs.Len(), "fast query is quiet at warn")

	l.Trace(ctx, time.Now(), sqlOf("SELECT * FROM user"), gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "record not found is not an error")

	l.Trace(ctx, time.Now(), sqlOf("INSERT INTO user"), errors.New("disk full"))
	l.Trace(ctx, time.Now().Add(-time.Second), sqlOf("SELECT * FROM post"), nil)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "INSERT INTO user", entries[0].ContextMap()["sql"])
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "slow sql", entries[1].Message)

	l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), sqlOf("SELECT 1"), nil)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sqlOf("INSERT"), errors.New("boom"))
	assert.Zero(t, logs.Len())
}

func TestGormLogger_Printf(t *testing.T) {
	logs := observe(t)
	l := NewGormLogger(gormlogger.Warn)

	l.Info(context.Background(), "hidden %d", 1)
	l.Warn(context.Background(), "pool %s", "low")
	l.Error(context.Background(), "lost %s", "connection")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "pool low", entries[0].Message)
	assert.Equal(t, "lost connection", entries[1].Message)
	assert.Equal(t, "gorm", entries[1].ContextMap()["component"])
}

func TestInitDB_SQLErrorsGoToZap(t *testing.T) {
	logs := observe(t)
	db, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1}})
	require.NoError(t, err)
	defer Close(db)

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)
	failed := logs.FilterMessage("sql failed").All()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ContextMap()["sql"], "missing_table")
}
