package jwtauth

import (
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

// parseBearer splits "Bearer <token>" and returns the token.
// The scheme is matched case-insensitively.
func parseBearer(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header not found")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header format, expected 'Bearer <token>'")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}

	return token, nil
}

// extractTokenFromHeader extracts the bearer token from the Authorization header
func extractTokenFromHeader(r *http.Request) (string, error) {
	return parseBearer(r.Header.Get("Authorization"))
}

// extractTokenFromCookie extracts the token from a cookie
func extractTokenFromCookie(r *http.Request, cookieName string) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", fmt.Errorf("cookie not found: %w", err)
	}

	token := strings.TrimSpace(cookie.Value)
	if token == "" {
		return "", fmt.Errorf("cookie value is empty")
	}

	return token, nil
}

// extractToken extracts the token from an HTTP request.
// Checks the Authorization header first, then falls back to the cookie if configured.
// An empty result means no usable token was presented.
func extractToken(r *http.Request, cfg *Config) string {
	token, err := extractTokenFromHeader(r)
	if err == nil {
		return token
	}

	if cfg.CookieName() != "" {
		if token, err := extractTokenFromCookie(r, cfg.CookieName()); err == nil {
			return token
		}
	}

	return ""
}

// extractTokenFromMetadata extracts the bearer token from gRPC metadata
func extractTokenFromMetadata(md metadata.MD) string {
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}

	token, err := parseBearer(values[0])
	if err != nil {
		return ""
	}
	return token
}
