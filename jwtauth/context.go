package jwtauth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	userContextKey      contextKey = "github.com/Wang-tianhao/vibrant-blog-go/jwtauth:user"
	requestIDContextKey contextKey = "github.com/Wang-tianhao/vibrant-blog-go/jwtauth:request_id"
)

// WithUser stores the authenticated user in the request context.
// The value lives only as long as the request; it is never cached elsewhere.
func WithUser[U any](ctx context.Context, user *U) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil, false if no user is present or it has a different type.
func GetUser[U any](ctx context.Context) (*U, bool) {
	user, ok := ctx.Value(userContextKey).(*U)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// MustGetUser retrieves the user from context and panics if not present.
// Use only behind JWTAuth or UnaryServerInterceptor.
func MustGetUser[U any](ctx context.Context) *U {
	user, ok := GetUser[U](ctx)
	if !ok {
		panic("jwtauth: user not found in context")
	}
	return user
}

// WithRequestID stores a request ID in context for correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
