package grpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type ServerConfig struct {
	AdminSecret []byte
}

// NewServer builds the gRPC server for the orders service. Placing an order
// is public; every other method needs an admin token.
func NewServer(cfg ServerConfig, orders OrdersServiceServer, log *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RequestLoggingInterceptor(log),
			AdminAuthInterceptor(cfg.AdminSecret,
				fullMethod("CreateOrder"),
				healthpb.Health_Check_FullMethodName,
			),
		),
	)

	RegisterOrdersServiceServer(srv, orders)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(OrdersServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)

	return srv
}
