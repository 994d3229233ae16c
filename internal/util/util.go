// Package util provides small string helpers shared by the parser and host.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArgs trims surrounding quotes and whitespace from every argument and
// unescapes doubled quotes. The input slice is modified in place and returned.
func CleanArgs(args []string) []string {
	for i, v := range args {
		args[i] = FixEscapeQuotes(TrimQuotes(strings.TrimSpace(v)))
	}
	return args
}

// ArgOr returns args[i], or def when the argument is absent or empty.
func ArgOr(args []string, i int, def string) string {
	if i < 0 || i >= len(args) || args[i] == "" {
		return def
	}
	return args[i]
}
