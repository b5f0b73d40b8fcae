package grpc

import (
	"context"
	"errors"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/stats"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OrderLedger is the order surface the service needs.
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

var _ OrdersServiceServer = (*OrdersHandler)(nil)

func NewOrdersHandler(l OrderLedger, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{ledger: l, log: log}
}

func (h *OrdersHandler) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderReply, error) {
	order, err := h.ledger.CreateOrder(ctx, ledger.CreateOrderInput{Customer: req.Customer, Items: req.Items})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &OrderReply{Order: order}, nil
}

func (h *OrdersHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderReply, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := h.ledger.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &OrderReply{Order: order}, nil
}

func (h *OrdersHandler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersReply, error) {
	orders, err := h.ledger.ListOrders(ctx, req.Status)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return &ListOrdersReply{Orders: orders, Count: len(orders)}, nil
}

func (h *OrdersHandler) SetOrderStatus(ctx context.Context, req *SetOrderStatusRequest) (*OrderReply, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := h.ledger.SetOrderStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	logger.FromContext(ctx, h.log).Info("order status set by admin",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status.String()),
		zap.String("admin", adminFromContext(ctx)))
	return &OrderReply{Order: order}, nil
}

func (h *OrdersHandler) EditOrderItems(ctx context.Context, req *EditOrderItemsRequest) (*OrderReply, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := h.ledger.EditOrderItems(ctx, req.OrderID, req.Items)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &OrderReply{Order: order}, nil
}

func (h *OrdersHandler) DeleteOrder(ctx context.Context, req *DeleteOrderRequest) (*DeleteOrderReply, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	if err := h.ledger.DeleteOrder(ctx, req.OrderID); err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &DeleteOrderReply{}, nil
}

func (h *OrdersHandler) Stats(ctx context.Context, req *StatsRequest) (*StatsReply, error) {
	report, err := h.ledger.Stats(ctx, req.Period)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &StatsReply{Report: report}, nil
}

// toStatus maps ledger and store errors to gRPC status codes.
func (h *OrdersHandler) toStatus(ctx context.Context, err error) error {
	var stockErr *ledger.StockUnavailableError

	switch {
	case errors.As(err, &stockErr):
		return status.Error(codes.FailedPrecondition, stockErr.Error())
	case errors.Is(err, ledger.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, store.ErrStorageUnavailable):
		logger.FromContext(ctx, h.log).Error("storage unavailable", zap.Error(err))
		return status.Error(codes.Unavailable, "storage is unavailable, try again later")
	default:
		logger.FromContext(ctx, h.log).Error("unhandled error", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
