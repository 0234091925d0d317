package logger

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
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func traceQuery(l gormlogger.Interface, ctx context.Context, begin time.Time, err error) {
	l.Trace(ctx, begin, func() (string, int64) {
		return `SELECT * FROM "price_books" WHERE is_master = true`, 1
	}, err)
}

func TestGormLogger_Options(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)

	switched := gl.LogMode(gormlogger.Info).(*GormLogger)
	assert.Equal(t, gormlogger.Info, switched.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"error", gormlogger.Error, nil, time.Now(), errors.New("deadlock"), "SQL Error"},
		{"not found ignored", gormlogger.Error, nil, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"not found logged", gormlogger.Error, []GormLoggerOption{WithIgnoreRecordNotFoundError(false)}, time.Now(), gormlogger.ErrRecordNotFound, "SQL Error"},
		{"slow", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(time.Millisecond)}, time.Now().Add(-time.Second), nil, "SLOW SQL >= 1ms"},
		{"query", gormlogger.Info, nil, time.Now(), nil, "SQL Query"},
		{"silent", gormlogger.Silent, nil, time.Now(), errors.New("ignored"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, tt.opts...)

			traceQuery(gl, context.Background(), tt.begin, tt.err)

			if tt.wantMsg == "" {
				assert.Empty(t, recorded.All())
				return
			}
			require.Len(t, recorded.All(), 1)
			assert.Equal(t, tt.wantMsg, recorded.All()[0].Message)
		})
	}
}

func TestGormLogger_TraceCarriesRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-sql")
	traceQuery(gl, ctx, time.Now(), nil)

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "req-sql", recorded.All()[0].ContextMap()["request_id"])
}

func TestGormLogger_Messages(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "suppressed %s", "info")
	gl.Warn(context.Background(), "migrating %d tables", 2)
	gl.Error(context.Background(), "failed")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "migrating 2 tables", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Warn,
		"debug":   gormlogger.Info,
		"unknown": gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}

func TestGormLogger_TraceRecordsOperation(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `  UPDATE "price_entries" SET "base_price"=110`, 3
	}, nil)

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "update", fields["operation"])
	assert.Equal(t, int64(3), fields["rows"])
}
