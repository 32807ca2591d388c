package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	apperrors "careerpilot/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
)

// ErrorKind classifies gateway failures so callers can decide between
// fallback, degradation, and request rejection.
type ErrorKind string

const (
	// KindTimeout means the stage deadline elapsed before a response.
	KindTimeout ErrorKind = "timeout"
	// KindUnavailable means the backend refused or failed the call,
	// including an open circuit breaker.
	KindUnavailable ErrorKind = "unavailable"
	// KindInvalidSchema means the backend answered but the payload did
	// not match the stage's response schema.
	KindInvalidSchema ErrorKind = "invalid_schema"
	// KindInvalidRequest means the request itself was rejected and a
	// retry cannot help.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// Error is the typed failure returned by Gateway.Invoke.
type Error struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway %s failed (%s): %s: %v", e.Stage, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway %s failed (%s): %s", e.Stage, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AppError converts a typed gateway failure into the application error
// shape used at API boundaries.
func (e *Error) AppError() *apperrors.AppError {
	code := apperrors.ErrCodeGatewayUnavailable
	switch e.Kind {
	case KindTimeout:
		code = apperrors.ErrCodeGatewayTimeout
	case KindInvalidSchema:
		code = apperrors.ErrCodeInvalidSchema
	case KindInvalidRequest:
		code = apperrors.ErrCodeInvalidRequest
	}
	return apperrors.NewGatewayError(code, e.Message, e.Cause).
		WithContext("stage", string(e.Stage))
}

// AsError extracts a gateway Error from an error chain.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// classify wraps an arbitrary provider error into a typed gateway
// Error for the given stage.
func classify(stage Stage, err error) *Error {
	if err == nil {
		return nil
	}
	if gwErr, ok := AsError(err); ok {
		return gwErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Stage: stage, Message: "stage deadline elapsed", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Stage: stage, Message: "request canceled", Cause: err}
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Kind: KindUnavailable, Stage: stage, Message: "circuit breaker rejected the call", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Stage: stage, Message: "network timeout", Cause: err}
		}
		return &Error{Kind: KindUnavailable, Stage: stage, Message: "network failure", Cause: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable:
			return &Error{Kind: KindUnavailable, Stage: stage, Message: fmt.Sprintf("backend returned HTTP %d", apiErr.Code), Cause: err}
		case http.StatusGatewayTimeout:
			return &Error{Kind: KindTimeout, Stage: stage, Message: "backend gateway timeout", Cause: err}
		default:
			return &Error{Kind: KindInvalidRequest, Stage: stage, Message: fmt.Sprintf("backend rejected the request with HTTP %d", apiErr.Code), Cause: err}
		}
	}

	return &Error{Kind: KindUnavailable, Stage: stage, Message: "generation failed", Cause: err}
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// An open breaker fails fast; retrying inside the same call would
	// just burn the backoff budget.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
