package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "identical", a: "item", b: "item", expected: 0},
		{name: "both empty", a: "", b: "", expected: 0},
		{name: "one empty", a: "", b: "root", expected: 4},
		{name: "single substitution", a: "item", b: "itym", expected: 1},
		{name: "transposition costs two", a: "item", b: "itme", expected: 2},
		{name: "insertion", a: "item", b: "items", expected: 1},
		{name: "deletion", a: "items", b: "item", expected: 1},
		{name: "unrelated", a: "user", b: "document", expected: 6},
		{name: "symmetric", a: "abc", b: "abcdef", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.b, tt.a))
		})
	}
}

func TestFindBestMatch(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		openTags    []string
		maxDistance int
		expected    int
	}{
		{
			name:        "empty stack",
			target:      "item",
			openTags:    nil,
			maxDistance: 2,
			expected:    -1,
		},
		{
			name:        "exact match",
			target:      "item",
			openTags:    []string{"root", "item"},
			maxDistance: 2,
			expected:    1,
		},
		{
			name:        "case insensitive exact match",
			target:      "item",
			openTags:    []string{"root", "Item"},
			maxDistance: 2,
			expected:    1,
		},
		{
			name:        "typo within threshold",
			target:      "itme",
			openTags:    []string{"root", "item"},
			maxDistance: 2,
			expected:    1,
		},
		{
			name:        "beyond threshold",
			target:      "zzzz",
			openTags:    []string{"root", "item"},
			maxDistance: 2,
			expected:    -1,
		},
		{
			name:        "innermost preferred on tie",
			target:      "itemx",
			openTags:    []string{"itema", "itemb"},
			maxDistance: 2,
			expected:    1,
		},
		{
			name:        "exact match short circuits past closer typo",
			target:      "root",
			openTags:    []string{"root", "roots"},
			maxDistance: 2,
			expected:    0,
		},
		{
			name:        "zero threshold requires exact",
			target:      "itme",
			openTags:    []string{"item"},
			maxDistance: 0,
			expected:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindBestMatch(tt.target, tt.openTags, tt.maxDistance))
		})
	}
}
