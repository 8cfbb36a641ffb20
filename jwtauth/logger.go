package jwtauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success" or "failure"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	Transport     string        // "http" or "grpc"
	UserID        string        // Subject resolved on success
	Algorithm     string        // Algorithm named in the token header
	Stage         Stage         // Terminal state: user_resolved or rejected
	FailedAt      Stage         // Last state reached before rejection
	FailureReason string        // Error code (on failure)
	Cause         string        // Internal cause, never sent to clients
	TokenPreview  string        // Redacted token preview
	Latency       time.Duration // Authentication latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.EventType),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("transport", e.Transport),
		slog.String("stage", string(e.Stage)),
		slog.String("algorithm", e.Algorithm),
		slog.String("token", redactToken(e.TokenPreview)),
		slog.Duration("latency", e.Latency),
	}
	if e.UserID != "" {
		attrs = append(attrs, slog.String("user_id", e.UserID))
	}
	if e.EventType == "failure" {
		attrs = append(attrs,
			slog.String("failed_at", string(e.FailedAt)),
			slog.String("failure_reason", e.FailureReason),
			slog.String("cause", e.Cause),
		)
	}
	return slog.GroupValue(attrs...)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *slog.Logger, event SecurityEvent) {
	if logger == nil {
		return // Logging disabled
	}

	if event.EventType == "failure" {
		logger.Warn("authentication failed", "auth_event", event)
	} else {
		logger.Info("authentication succeeded", "auth_event", event)
	}
}

// newAuthEvent builds the event for one finished authentication attempt
func newAuthEvent(transport, requestID, token, userID string, reached Stage, err error, latency time.Duration) SecurityEvent {
	event := SecurityEvent{
		EventType:    "success",
		Timestamp:    time.Now(),
		RequestID:    requestID,
		Transport:    transport,
		UserID:       userID,
		Algorithm:    extractAlgorithmFromToken(token),
		Stage:        StageUserResolved,
		TokenPreview: token,
		Latency:      latency,
	}
	if err != nil {
		event.EventType = "failure"
		event.UserID = ""
		event.Stage = StageRejected
		event.FailedAt = reached
		event.FailureReason = getErrorCode(err)
		event.Cause = rootCause(err)
	}
	return event
}

// rootCause returns the message of the innermost wrapped error
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// getErrorCode extracts the error code from a validation error
func getErrorCode(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return string(valErr.Code)
	}
	return "UNKNOWN"
}

// extractAlgorithmFromToken extracts the algorithm from a JWT token header
// Returns MALFORMED if extraction fails (token will be logged as invalid anyway)
func extractAlgorithmFromToken(token string) string {
	if token == "" {
		return ""
	}

	// JWT format: header.payload.signature
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return "MALFORMED"
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "MALFORMED"
	}

	var header map[string]interface{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "MALFORMED"
	}

	if alg, ok := header["alg"].(string); ok {
		return alg
	}

	return "MALFORMED"
}
