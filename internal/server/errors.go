package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/logger"
	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeConflict        = "conflict"
	CodeTooManyRequests = "too_many_requests"
	CodeServerError     = "server_error"
)

func abortWith(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message, Details: details})
}

func forbidden(c *gin.Context, message string) {
	abortWith(c, http.StatusForbidden, CodeForbidden, message, "")
}

func notFound(c *gin.Context, resource string) {
	abortWith(c, http.StatusNotFound, CodeNotFound, resource+" not found", "")
}

func validationError(c *gin.Context, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	abortWith(c, http.StatusUnprocessableEntity, CodeValidationError, "validation failed", details)
}

func conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, CodeConflict, message, "")
}

func tooManyRequests(c *gin.Context) {
	abortWith(c, http.StatusTooManyRequests, CodeTooManyRequests, "too many login attempts, try again later", "")
}

// serverError logs the cause through the request logger and answers with a generic 500
func serverError(c *gin.Context, fallback *slog.Logger, err error) {
	logger.FromContext(c.Request.Context(), fallback).ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	abortWith(c, http.StatusInternalServerError, CodeServerError, "internal server error", "")
}

// storeError maps a storage error for resource onto a response
func storeError(c *gin.Context, fallback *slog.Logger, resource string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		notFound(c, resource)
	case errors.Is(err, store.ErrForbidden):
		forbidden(c, "not authorized to perform requested action")
	case errors.Is(err, store.ErrAlreadyExists):
		conflict(c, resource+" already exists")
	case errors.Is(err, store.ErrInvalidInput):
		validationError(c, err)
	default:
		serverError(c, fallback, err)
	}
}
