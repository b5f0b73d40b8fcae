package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/auth"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDKey = "x-request-id"

type adminKey struct{}

// RequestLoggingInterceptor tags the context with the caller's request id
// (or a new one) and writes one log line per call.
func RequestLoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := firstMetadata(ctx, requestIDKey)
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}
		ctx = logger.WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)

		logger.FromContext(ctx, log).Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// AdminAuthInterceptor requires an admin bearer token in the "authorization"
// metadata on every method except the public ones.
func AdminAuthInterceptor(secret []byte, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = true
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if public[info.FullMethod] {
			return handler(ctx, req)
		}

		tokenString, ok := strings.CutPrefix(firstMetadata(ctx, "authorization"), "Bearer ")
		if !ok || tokenString == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		subject, err := auth.VerifyAdminToken(secret, tokenString)
		switch {
		case errors.Is(err, auth.ErrNotAdmin):
			return nil, status.Error(codes.PermissionDenied, err.Error())
		case err != nil:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, adminKey{}, subject), req)
	}
}

func adminFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(adminKey{}).(string); ok {
		return subject
	}
	return ""
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
