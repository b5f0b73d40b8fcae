package http

import (
	"context"
	"net/http"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/stats"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderLedger is the order surface the handlers need.
type OrderLedger interface {
	CreateOrder(ctx context.Context, in ledger.CreateOrderInput) (*domain.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error)
	EditOrderItems(ctx context.Context, orderID string, items []ledger.OrderLine) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	Stats(ctx context.Context, period string) (*stats.Report, error)
}

type OrdersHandler struct {
	ledger OrderLedger
	log    *zap.Logger
}

func NewOrdersHandler(l OrderLedger, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{ledger: l, log: log}
}

type ListOrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
	Count  int             `json:"count"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type EditItemsRequest struct {
	Items []ledger.OrderLine `json:"items"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateOrderInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	order, err := h.ledger.CreateOrder(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/admin/orders?status=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ledger.ListOrders(r.Context(), domain.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Count: len(orders)})
}

// GetOrder handles GET /api/v1/admin/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ledger.GetOrder(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/v1/admin/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	orderID := chi.URLParam(r, "order_id")
	order, err := h.ledger.SetOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	logger.FromContext(r.Context(), h.log).Info("order status set by admin",
		zap.String("order_id", orderID),
		zap.String("status", order.Status.String()),
		zap.String("admin", adminFromContext(r.Context())))
	respondJSON(w, http.StatusOK, order)
}

// EditItems handles PUT /api/v1/admin/orders/{order_id}/items
func (h *OrdersHandler) EditItems(w http.ResponseWriter, r *http.Request) {
	var req EditItemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	order, err := h.ledger.EditOrderItems(r.Context(), chi.URLParam(r, "order_id"), req.Items)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/admin/orders/{order_id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteOrder(r.Context(), chi.URLParam(r, "order_id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/admin/stats?period=
func (h *OrdersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Stats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
