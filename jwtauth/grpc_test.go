package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TestUnaryServerInterceptor tests gRPC authentication outcomes
func TestUnaryServerInterceptor(t *testing.T) {
	now := time.Now()
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))
	interceptor := UnaryServerInterceptor(guard)
	info := &grpc.UnaryServerInfo{FullMethod: "/blog.Posts/List"}

	valid := mustEncodeAs(t, guard.Codec(), "42")

	tests := []struct {
		name         string
		md           metadata.MD
		expectedCode codes.Code
	}{
		{name: "Valid token", md: metadata.Pairs("authorization", "Bearer "+valid), expectedCode: codes.OK},
		{name: "No metadata", md: nil, expectedCode: codes.Unauthenticated},
		{name: "No authorization", md: metadata.Pairs("x-other", "1"), expectedCode: codes.Unauthenticated},
		{name: "Wrong scheme", md: metadata.Pairs("authorization", "Token "+valid), expectedCode: codes.Unauthenticated},
		{name: "Invalid token", md: metadata.Pairs("authorization", "Bearer nope"), expectedCode: codes.Unauthenticated},
		{name: "Unknown user", md: metadata.Pairs("authorization", "Bearer "+mustEncodeAs(t, guard.Codec(), "9")), expectedCode: codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			var handlerUser *testUser
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerUser = MustGetUser[testUser](ctx)
				return "ok", nil
			}

			resp, err := interceptor(ctx, nil, info, handler)

			if got := status.Code(err); got != tt.expectedCode {
				t.Fatalf("expected code %s, got %s (%v)", tt.expectedCode, got, err)
			}
			if tt.expectedCode != codes.OK {
				if resp != nil {
					t.Errorf("expected nil response, got %v", resp)
				}
				if handlerUser != nil {
					t.Error("handler should not run for rejected calls")
				}
				if msg := status.Convert(err).Message(); msg != UnauthorizedMessage {
					t.Errorf("expected fixed message, got %q", msg)
				}
				return
			}
			if handlerUser == nil || handlerUser.ID != 42 {
				t.Errorf("expected user 42 in handler context, got %+v", handlerUser)
			}
		})
	}
}

// TestUnaryServerInterceptorStoreFailure tests that store errors map to Internal
func TestUnaryServerInterceptorStoreFailure(t *testing.T) {
	now := time.Now()
	guard := newTestGuard(t, &now, UserLookupFunc[testUser](func(ctx context.Context, id int64) (*testUser, error) {
		return nil, errors.New("store offline")
	}))
	interceptor := UnaryServerInterceptor(guard)

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer "+mustEncodeAs(t, guard.Codec(), "42")))

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Error("handler should not run")
		return nil, nil
	})

	if got := status.Code(err); got != codes.Internal {
		t.Errorf("expected Internal, got %s", got)
	}
}

// TestUnaryServerInterceptorCancelled tests that a cancelled call reports Canceled
func TestUnaryServerInterceptorCancelled(t *testing.T) {
	now := time.Now()
	guard := newTestGuard(t, &now, memoryUsers(testUser{ID: 42}))
	interceptor := UnaryServerInterceptor(guard)

	ctx, cancel := context.WithCancel(metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer "+mustEncodeAs(t, guard.Codec(), "42"))))
	cancel()

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Error("handler should not run")
		return nil, nil
	})

	if got := status.Code(err); got != codes.Canceled {
		t.Errorf("expected Canceled, got %s", got)
	}
}
