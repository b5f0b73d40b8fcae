package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/auth"
	"github.com/KoBrAIbrahim/originalBrand/internal/cache"
	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/stats"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	st := store.NewMemoryStore()

	products := NewProductHandler(catalog.NewService(st, cache.NoopCache{}, log), log)
	orders := NewOrdersHandler(ledger.NewLedger(st, cache.NoopCache{}, log), log)

	token, err := auth.IssueAdminToken(testSecret, "owner", time.Hour)
	require.NoError(t, err)

	return &testServer{
		handler: NewRouter(RouterConfig{AdminSecret: testSecret, RequestTimeout: 5 * time.Second}, products, orders, log),
		token:   token,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createProduct(t *testing.T, sizes domain.Sizes) AdminProductResponse {
	t.Helper()
	purchase := decimal.RequireFromString("30")
	rec := s.do(t, http.MethodPost, "/api/v1/admin/products", catalog.ProductInput{
		Name:          "Denim jacket",
		Description:   "Stone washed",
		Category:      domain.CategoryJackets,
		Colors:        []string{"blue"},
		PurchasePrice: &purchase,
		SellPrice:     decimal.RequireFromString("100"),
		Sizes:         sizes,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[AdminProductResponse](t, rec)
}

func (s *testServer) createOrder(t *testing.T, productID, size string, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/orders", ledger.CreateOrderInput{
		Customer: domain.Customer{
			Name:        "Lina",
			FullAddress: "Main street 4",
			City:        "Nablus",
			Town:        "Rafidia",
			WhatsApp:    "+970 59 123 4567",
		},
		Items: []ledger.OrderLine{{ProductID: productID, Size: size, Color: "blue", Quantity: quantity}},
	}, false)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/admin/orders", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := auth.IssueAdminToken([]byte("other-secret"), "intruder", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := auth.IssueAdminToken(testSecret, "owner", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProducts_PublicViewHidesPurchasePrice(t *testing.T) {
	srv := newTestServer(t)
	created := srv.createProduct(t, domain.Sizes{"M": 2, "L": 0})
	require.NotNil(t, created.PurchasePrice)

	rec := srv.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "purchase_price")
	product := decode[ProductResponse](t, rec)
	assert.Equal(t, []string{"M"}, product.AvailableSizes)
	assert.True(t, decimal.NewFromInt(100).Equal(product.EffectivePrice))
}

func TestProducts_ListByCategoryAndSearch(t *testing.T) {
	srv := newTestServer(t)
	srv.createProduct(t, domain.Sizes{"M": 1})

	rec := srv.do(t, http.MethodGet, "/api/v1/products?category=jackets&q=denim", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ListProductsResponse](t, rec).Count)

	rec = srv.do(t, http.MethodGet, "/api/v1/products?category=shoes", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[ListProductsResponse](t, rec).Count)

	rec = srv.do(t, http.MethodGet, "/api/v1/products?category=hats", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_SaleLifecycle(t *testing.T) {
	srv := newTestServer(t)
	created := srv.createProduct(t, domain.Sizes{"M": 1})

	rec := srv.do(t, http.MethodPost, "/api/v1/admin/products/"+created.ID+"/sale", SaleRequest{SalePrice: decimal.NewFromInt(80)}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	onSale := decode[AdminProductResponse](t, rec)
	assert.True(t, onSale.OnSale)
	assert.True(t, decimal.NewFromInt(80).Equal(onSale.EffectivePrice))

	rec = srv.do(t, http.MethodPost, "/api/v1/admin/products/"+created.ID+"/sale", SaleRequest{SalePrice: decimal.NewFromInt(150)}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID+"/sale", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[AdminProductResponse](t, rec).OnSale)
}

func TestProducts_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products/missing", nil, false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
}

func TestOrders_AcceptDebitsStock(t *testing.T) {
	srv := newTestServer(t)
	product := srv.createProduct(t, domain.Sizes{"M": 5})

	rec := srv.createOrder(t, product.ID, "M", 2)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[domain.Order](t, rec)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "0591234567", order.Customer.WhatsApp)

	rec = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", UpdateStatusRequest{Status: domain.OrderStatusAccepted}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.OrderStatusAccepted, decode[domain.Order](t, rec).Status)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/"+product.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[ProductResponse](t, rec).Sizes["M"])

	rec = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", UpdateStatusRequest{Status: domain.OrderStatusRejected}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/"+product.ID, nil, false)
	assert.Equal(t, 5, decode[ProductResponse](t, rec).Sizes["M"])

	rec = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", UpdateStatusRequest{Status: domain.OrderStatusAccepted}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, rec).Code)
}

func TestOrders_CreateOverStockReturnsDetails(t *testing.T) {
	srv := newTestServer(t)
	product := srv.createProduct(t, domain.Sizes{"M": 1})

	rec := srv.createOrder(t, product.ID, "M", 3)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "stock_unavailable", resp.Code)
	require.NotNil(t, resp.Details)
	assert.Equal(t, product.ID, resp.Details.ProductID)
	assert.Equal(t, "M", resp.Details.Size)
	assert.Equal(t, 3, resp.Details.Requested)
	assert.Equal(t, 1, resp.Details.Available)
}

func TestOrders_InvalidRequests(t *testing.T) {
	srv := newTestServer(t)
	product := srv.createProduct(t, domain.Sizes{"M": 1})

	tests := []struct {
		name   string
		rec    func() *httptest.ResponseRecorder
		status int
	}{
		{
			name:   "zero quantity",
			rec:    func() *httptest.ResponseRecorder { return srv.createOrder(t, product.ID, "M", 0) },
			status: http.StatusBadRequest,
		},
		{
			name: "malformed body",
			rec: func() *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{"))
				rec := httptest.NewRecorder()
				srv.handler.ServeHTTP(rec, req)
				return rec
			},
			status: http.StatusBadRequest,
		},
		{
			name: "oversized body",
			rec: func() *httptest.ResponseRecorder {
				body := `{"customer":{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}}`
				req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
				rec := httptest.NewRecorder()
				srv.handler.ServeHTTP(rec, req)
				return rec
			},
			status: http.StatusRequestEntityTooLarge,
		},
		{
			name: "quantity above limit",
			rec: func() *httptest.ResponseRecorder {
				return srv.createOrder(t, product.ID, "M", ledger.MaxLineQuantity+1)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown status filter",
			rec: func() *httptest.ResponseRecorder {
				return srv.do(t, http.MethodGet, "/api/v1/admin/orders?status=shipped", nil, true)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown stats period",
			rec: func() *httptest.ResponseRecorder {
				return srv.do(t, http.MethodGet, "/api/v1/admin/stats?period=year", nil, true)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "missing order",
			rec: func() *httptest.ResponseRecorder {
				return srv.do(t, http.MethodDelete, "/api/v1/admin/orders/missing", nil, true)
			},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.rec().Code)
		})
	}
}

func TestOrders_EditListAndStats(t *testing.T) {
	srv := newTestServer(t)
	product := srv.createProduct(t, domain.Sizes{"M": 5})

	rec := srv.createOrder(t, product.ID, "M", 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[domain.Order](t, rec)

	rec = srv.do(t, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/items", EditItemsRequest{
		Items: []ledger.OrderLine{{ProductID: product.ID, Size: "M", Color: "blue", Quantity: 2}},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decimal.NewFromInt(200).Equal(decode[domain.Order](t, rec).TotalPrice))

	rec = srv.do(t, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", UpdateStatusRequest{Status: domain.OrderStatusAccepted}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/admin/orders?status=accepted", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ListOrdersResponse](t, rec).Count)

	rec = srv.do(t, http.MethodGet, "/api/v1/admin/stats?period=today", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[stats.Report](t, rec)
	assert.Equal(t, 1, report.Accepted)
	assert.True(t, decimal.NewFromInt(200).Equal(report.TotalRevenue))

	rec = srv.do(t, http.MethodDelete, "/api/v1/admin/orders/"+order.ID, nil, true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/"+product.ID, nil, false)
	assert.Equal(t, 5, decode[ProductResponse](t, rec).Sizes["M"])
}
