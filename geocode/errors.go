// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// GeocodingError describes why a provider could not be consulted.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests per second.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded daily or billing quota exhausted.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request did not finish in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the endpoint or resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport failure or provider outage.
	ErrorTypeNetworkError
	// ErrorTypeDenied missing, invalid or restricted credential.
	ErrorTypeDenied
	// ErrorTypeMalformed the response could not be decoded.
	ErrorTypeMalformed
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:        "unknown",
	ErrorTypeRateLimit:      "rate_limit",
	ErrorTypeQuotaExceeded:  "quota_exceeded",
	ErrorTypeTimeout:        "timeout",
	ErrorTypeNotFound:       "not_found",
	ErrorTypeInvalidRequest: "invalid_request",
	ErrorTypeNetworkError:   "network",
	ErrorTypeDenied:         "denied",
	ErrorTypeMalformed:      "malformed",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// IsRateLimitError reports whether err was caused by request rate limiting.
func IsRateLimitError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether err was caused by an exhausted quota.
func IsQuotaExceededError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "over_daily_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether err was caused by a timeout.
func IsTimeoutError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps a non-200 HTTP status to a GeocodingError.
func ClassifyHTTPError(statusCode int, _ string) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusUnauthorized:
		return &GeocodingError{
			Type:    ErrorTypeDenied,
			Message: "request not authorized",
		}
	case http.StatusBadRequest:
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound:
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "endpoint not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

// ClassifyAPIStatus maps a Google Maps "status" field other than OK and
// ZERO_RESULTS to a GeocodingError.
func ClassifyAPIStatus(status, message string) *GeocodingError {
	geoErr := &GeocodingError{Message: "google maps status: " + status}
	if message != "" {
		geoErr.Message += " (" + message + ")"
	}

	switch status {
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		geoErr.Type = ErrorTypeQuotaExceeded
	case "REQUEST_DENIED":
		geoErr.Type = ErrorTypeDenied
	case "INVALID_REQUEST":
		geoErr.Type = ErrorTypeInvalidRequest
	case "NOT_FOUND":
		geoErr.Type = ErrorTypeNotFound
	case "UNKNOWN_ERROR":
		geoErr.Type = ErrorTypeNetworkError
	default:
		geoErr.Type = ErrorTypeUnknown
	}

	return geoErr
}

// ClassifyError wraps any error returned while consulting a provider into a
// GeocodingError. Errors that already are GeocodingErrors are returned as is.
func ClassifyError(err error) *GeocodingError {
	if err == nil {
		return nil
	}

	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr
	}

	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	case errors.As(err, &netErr):
		return &GeocodingError{Type: ErrorTypeNetworkError, Message: "request failed", Err: err}
	default:
		return &GeocodingError{Type: ErrorTypeUnknown, Message: "request failed", Err: err}
	}
}
