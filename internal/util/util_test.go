package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimQuotes(tt.input))
		})
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no escaped quotes", "hello", "hello"},
		{"single escaped quote", `he""llo`, `he"llo`},
		{"multiple escaped quotes", `a""b""c`, `a"b"c`},
		{"consecutive escaped", `a""""b`, `a""b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FixEscapeQuotes(tt.input))
		})
	}
}

func TestCleanArgs(t *testing.T) {
	args := []string{`"7"`, ` 1 `, `"say ""hi"""`, ""}
	got := CleanArgs(args)

	assert.Equal(t, []string{"7", "1", `say "hi`, ""}, got)
	assert.Equal(t, got, args, "cleaned in place")
}

func TestArgOr(t *testing.T) {
	args := []string{"a", ""}
	assert.Equal(t, "a", ArgOr(args, 0, "x"))
	assert.Equal(t, "x", ArgOr(args, 1, "x"))
	assert.Equal(t, "x", ArgOr(args, 5, "x"))
	assert.Equal(t, "x", ArgOr(nil, -1, "x"))
}
