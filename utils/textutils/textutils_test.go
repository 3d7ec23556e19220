// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerASCIIFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"123  Main\tSt", "123 main st"},
		{"Áéíóú", "aeiou"},
		{"Ñandú", "nandu"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, LowerASCIIFolding(tc.input))
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"trim and collapse", "  123   Main St,\n Springfield ", 500, "123 Main St, Springfield"},
		{"control characters", "123 Main\x00 St\x07", 500, "123 Main St"},
		{"keeps accents", "Calle Ñandú 12", 500, "Calle Ñandú 12"},
		{"truncates by rune", "Ñandú Ñandú", 5, "Ñandú"},
		{"no limit", strings.Repeat("a", 10), 0, strings.Repeat("a", 10)},
		{"only whitespace", " \t\n ", 500, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Sanitize(tc.input, tc.max))
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{100, "100"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}
