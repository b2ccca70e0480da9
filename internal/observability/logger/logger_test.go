package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/civitas/internal/observability/obscontext"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithGuildID(ctx, "guild-1")

	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "guild-1", fields["guild_id"])
	_, hasActor := fields["actor_id"]
	assert.False(t, hasActor)
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        10 * time.Millisecond,
		IgnoreRecordNotFound: true,
	})

	sql := func() (string, int64) { return "SELECT * FROM sales WHERE id = ?", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("gorm.query").FilterField(zap.Bool("slow", true)).Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	errs := logs.FilterMessage("gorm.query").FilterField(zap.String("operation", "SELECT")).All()
	assert.Len(t, errs, 2)
	assert.Equal(t, zapcore.ErrorLevel, errs[1].Level)
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "UPDATE", statementKind("  update sales set status = ?"))
	assert.Equal(t, "SELECT", statementKind("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "OTHER", statementKind("CREATE TABLE t (id int)"))
}

func TestGinMiddlewareSetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))

	var gotGuild, gotActor string
	r.GET("/v1/guilds/:guild_id/ping", func(c *gin.Context) {
		gotGuild = obscontext.GuildIDFromContext(c.Request.Context())
		gotActor = obscontext.ActorIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/guilds/g-1/ping", nil)
	req.Header.Set("X-Actor-ID", "u-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "g-1", gotGuild)
	assert.Equal(t, "u-1", gotActor)
	assert.Equal(t, 1, logs.FilterMessage("http_request").Len())
}
