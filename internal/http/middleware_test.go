package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KoBrAIbrahim/originalBrand/internal/auth"
	"github.com/KoBrAIbrahim/originalBrand/internal/cache"
	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLog_CarriesRequestAndTraceIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	st := store.NewMemoryStore()
	router := NewRouter(RouterConfig{AdminSecret: testSecret},
		NewProductHandler(catalog.NewService(st, cache.NoopCache{}, log), log),
		NewOrdersHandler(ledger.NewLedger(st, cache.NoopCache{}, log), log),
		log)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestAdminAuth_RejectsNonAdminRole(t *testing.T) {
	srv := newTestServer(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.AdminClaims{Role: "viewer"}).SignedString(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
