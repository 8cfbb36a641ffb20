package jwtauth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that resolves
// the caller's user through g before invoking the handler
func UnaryServerInterceptor[U any](g *Guard[U]) grpc.UnaryServerInterceptor {
	cfg := g.codec.Config()

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()

		// Generate request ID for correlation
		requestID := uuid.New().String()

		var token string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			token = extractTokenFromMetadata(md)
		}

		a, err := g.authenticate(ctx, token)
		logSecurityEvent(cfg.Logger(), newAuthEvent("grpc", requestID, token, a.subject, a.stage, err, time.Since(startTime)))

		if err != nil {
			if IsUnauthorized(err) {
				// Best effort: the challenge is advisory and the status code carries the verdict
				_ = grpc.SetHeader(ctx, metadata.Pairs("www-authenticate", ChallengeValue))
				return nil, status.Error(codes.Unauthenticated, UnauthorizedMessage)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, status.FromContextError(ctxErr).Err()
			}
			return nil, status.Error(codes.Internal, "authentication is temporarily unavailable")
		}

		ctx = WithUser(ctx, a.user)
		ctx = WithRequestID(ctx, requestID)

		return handler(ctx, req)
	}
}
