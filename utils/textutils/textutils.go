// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils normalizes free text typed or transcribed from callers.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing,
// collapsing whitespace and trimming.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.ToLower(s),
	)

	return CollapseSpaces(s)
}

// CollapseSpaces trims s and replaces every run of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Sanitize prepares user input for an outbound lookup: NFC normalized,
// control characters dropped, whitespace collapsed and at most maxRunes long.
func Sanitize(s string, maxRunes int) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFC,
			runes.Remove(runes.Predicate(func(r rune) bool {
				return unicode.IsControl(r) && !unicode.IsSpace(r)
			})),
		),
		s,
	)

	s = CollapseSpaces(s)

	if maxRunes > 0 {
		if r := []rune(s); len(r) > maxRunes {
			s = strings.TrimSpace(string(r[:maxRunes]))
		}
	}

	return s
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
