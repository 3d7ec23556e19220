// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("google maps returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "quota exceeded error type",
			err:  &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded"},
			want: true,
		},
		{
			name: "error message contains over_query_limit",
			err:  errors.New("google maps status: OVER_QUERY_LIMIT"),
			want: true,
		},
		{
			name: "error message contains over_daily_limit",
			err:  errors.New("google maps status: OVER_DAILY_LIMIT"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &GeocodingError{Type: ErrorTypeTimeout, Message: "timeout"},
			want: true,
		},
		{
			name: "wrapped context deadline",
			err:  fmt.Errorf("geocoding: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "error message contains timeout",
			err:  errors.New("request timeout after 10 seconds"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsTimeoutError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   ErrorType
	}{
		{"429 too many requests", 429, ErrorTypeRateLimit},
		{"403 forbidden", 403, ErrorTypeQuotaExceeded},
		{"401 unauthorized", 401, ErrorTypeDenied},
		{"400 bad request", 400, ErrorTypeInvalidRequest},
		{"404 not found", 404, ErrorTypeNotFound},
		{"503 service unavailable", 503, ErrorTypeNetworkError},
		{"502 bad gateway", 502, ErrorTypeNetworkError},
		{"504 gateway timeout", 504, ErrorTypeNetworkError},
		{"500 internal server error", 500, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHTTPError(tt.statusCode, "")
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPError() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestClassifyAPIStatus(t *testing.T) {
	tests := []struct {
		status   string
		wantType ErrorType
	}{
		{"OVER_QUERY_LIMIT", ErrorTypeQuotaExceeded},
		{"OVER_DAILY_LIMIT", ErrorTypeQuotaExceeded},
		{"REQUEST_DENIED", ErrorTypeDenied},
		{"INVALID_REQUEST", ErrorTypeInvalidRequest},
		{"NOT_FOUND", ErrorTypeNotFound},
		{"UNKNOWN_ERROR", ErrorTypeNetworkError},
		{"SOMETHING_NEW", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := ClassifyAPIStatus(tt.status, "The provided API key is invalid.")
			if got.Type != tt.wantType {
				t.Errorf("ClassifyAPIStatus() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	geoErr := &GeocodingError{Type: ErrorTypeDenied, Message: "denied"}

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"already classified", fmt.Errorf("outer: %w", geoErr), ErrorTypeDenied},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}, ErrorTypeNetworkError},
		{"plain", errors.New("boom"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got.Type != tt.wantType {
				t.Errorf("ClassifyError() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}

func TestGeocodingErrorUnwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	geoErr := &GeocodingError{
		Type:    ErrorTypeNetworkError,
		Message: "request failed",
		Err:     innerErr,
	}

	if !errors.Is(geoErr, innerErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if geoErr.Error() != "request failed: inner error" {
		t.Errorf("Error() = %q", geoErr.Error())
	}
}

func TestErrorTypeString(t *testing.T) {
	if got := ErrorTypeQuotaExceeded.String(); got != "quota_exceeded" {
		t.Errorf("String() = %q, want quota_exceeded", got)
	}

	if got := ErrorType(99).String(); got != "ErrorType(99)" {
		t.Errorf("String() = %q, want ErrorType(99)", got)
	}
}
