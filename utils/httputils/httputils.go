// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for working with HTTP.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

const redacted = "REDACTED"

/////////////////////////////////////////
/// RoundTrippers

// LoggingRoundTripper dumps every HTTP transaction to Writer.
// Query parameters listed in RedactParams never reach the output.
type LoggingRoundTripper struct {
	Transport    http.RoundTripper
	Writer       io.Writer
	DumpBody     bool
	RedactParams []string
}

func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 2048, 512

	for i, line := range lines {
		if i >= maxLines {
			break
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "…")
	}

	for i, line := range lines {
		if len(line) > maxChars {
			lines[i] = line[0:maxChars] + "…"
		}
	}

	return lines
}

// RedactQuery replaces the values of the given query parameters.
func RedactQuery(u *url.URL, params []string) string {
	if u == nil {
		return ""
	}

	if len(params) == 0 || u.RawQuery == "" {
		return u.String()
	}

	q := u.Query()

	for _, p := range params {
		if q.Has(p) {
			q.Set(p, redacted)
		}
	}

	clone := *u
	clone.RawQuery = q.Encode()

	return clone.String()
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	text := string(dump)
	if len(t.RedactParams) > 0 && req.URL.RawQuery != "" {
		text = strings.Replace(text, req.URL.RequestURI(), requestURI(req.URL, t.RedactParams), 1)
	}

	lines := abbreviate(strings.Split(text, "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func requestURI(u *url.URL, params []string) string {
	parsed, err := url.Parse(RedactQuery(u, params))
	if err != nil {
		return u.Path
	}

	return parsed.RequestURI()
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')

	_, err = fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) transport() http.RoundTripper {
	if t.Transport == nil {
		return http.DefaultTransport
	}

	return t.Transport
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.transport().RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.transport().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if len(t.Headers) == 0 {
		return transport.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return transport.RoundTrip(req)
}
