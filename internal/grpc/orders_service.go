package grpc

import (
	"context"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/stats"
	"google.golang.org/grpc"
)

const OrdersServiceName = "storefront.orders.v1.OrdersService"

type CreateOrderRequest struct {
	Customer domain.Customer    `json:"customer"`
	Items    []ledger.OrderLine `json:"items"`
}

type GetOrderRequest struct {
	OrderID string `json:"order_id"`
}

type ListOrdersRequest struct {
	Status domain.OrderStatus `json:"status,omitempty"`
}

type SetOrderStatusRequest struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

type EditOrderItemsRequest struct {
	OrderID string             `json:"order_id"`
	Items   []ledger.OrderLine `json:"items"`
}

type DeleteOrderRequest struct {
	OrderID string `json:"order_id"`
}

type StatsRequest struct {
	Period string `json:"period,omitempty"`
}

type OrderReply struct {
	Order *domain.Order `json:"order"`
}

type ListOrdersReply struct {
	Orders []*domain.Order `json:"orders"`
	Count  int             `json:"count"`
}

type DeleteOrderReply struct{}

type StatsReply struct {
	Report *stats.Report `json:"report"`
}

// OrdersServiceServer is the server API of the orders service.
type OrdersServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*OrderReply, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderReply, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersReply, error)
	SetOrderStatus(context.Context, *SetOrderStatusRequest) (*OrderReply, error)
	EditOrderItems(context.Context, *EditOrderItemsRequest) (*OrderReply, error)
	DeleteOrder(context.Context, *DeleteOrderRequest) (*DeleteOrderReply, error)
	Stats(context.Context, *StatsRequest) (*StatsReply, error)
}

var OrdersServiceDesc = grpc.ServiceDesc{
	ServiceName: OrdersServiceName,
	HandlerType: (*OrdersServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateOrder", OrdersServiceServer.CreateOrder),
		unaryMethod("GetOrder", OrdersServiceServer.GetOrder),
		unaryMethod("ListOrders", OrdersServiceServer.ListOrders),
		unaryMethod("SetOrderStatus", OrdersServiceServer.SetOrderStatus),
		unaryMethod("EditOrderItems", OrdersServiceServer.EditOrderItems),
		unaryMethod("DeleteOrder", OrdersServiceServer.DeleteOrder),
		unaryMethod("Stats", OrdersServiceServer.Stats),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterOrdersServiceServer(s grpc.ServiceRegistrar, srv OrdersServiceServer) {
	s.RegisterService(&OrdersServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + OrdersServiceName + "/" + method
}

func unaryMethod[Req, Reply any](name string, call func(OrdersServiceServer, context.Context, *Req) (*Reply, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrdersServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrdersServiceServer), ctx, req.(*Req))
			})
		},
	}
}

// OrdersServiceClient calls the orders service over a client connection.
type OrdersServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrdersServiceClient(cc grpc.ClientConnInterface) *OrdersServiceClient {
	return &OrdersServiceClient{cc: cc}
}

func (c *OrdersServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	return invoke[OrderReply](ctx, c.cc, "CreateOrder", in, opts)
}

func (c *OrdersServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	return invoke[OrderReply](ctx, c.cc, "GetOrder", in, opts)
}

func (c *OrdersServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersReply, error) {
	return invoke[ListOrdersReply](ctx, c.cc, "ListOrders", in, opts)
}

func (c *OrdersServiceClient) SetOrderStatus(ctx context.Context, in *SetOrderStatusRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	return invoke[OrderReply](ctx, c.cc, "SetOrderStatus", in, opts)
}

func (c *OrdersServiceClient) EditOrderItems(ctx context.Context, in *EditOrderItemsRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	return invoke[OrderReply](ctx, c.cc, "EditOrderItems", in, opts)
}

func (c *OrdersServiceClient) DeleteOrder(ctx context.Context, in *DeleteOrderRequest, opts ...grpc.CallOption) (*DeleteOrderReply, error) {
	return invoke[DeleteOrderReply](ctx, c.cc, "DeleteOrder", in, opts)
}

func (c *OrdersServiceClient) Stats(ctx context.Context, in *StatsRequest, opts ...grpc.CallOption) (*StatsReply, error) {
	return invoke[StatsReply](ctx, c.cc, "Stats", in, opts)
}

func invoke[Reply any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
