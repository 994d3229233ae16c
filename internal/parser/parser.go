// Package parser turns positional host arguments into typed match commands.
package parser

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/biocommander/engine/internal/util"
)

// Parser converts []string args into command structs. It holds no match
// state and is safe for concurrent use.
type Parser struct {
	logger *slog.Logger

	// defaultScenario names the map used when :NEW:MATCH: omits one
	defaultScenario string
}

// NewParser creates a parser. defaultScenario is used by ParseNewMatch.
func NewParser(logger *slog.Logger, defaultScenario string) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:          logger,
		defaultScenario: defaultScenario,
	}
}

// parseUintFromFloat accepts "32" as well as "32.00": hosts that forward
// JSON numbers send every number as a float.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f >= math.MaxUint64 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole non-negative number", s)
	}
	return uint64(f), nil
}

// parseUint parses field s into the wire width of T.
func parseUint[T uint8 | uint16 | uint32](s, field string) (T, error) {
	v, err := parseUintFromFloat(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if limit := uint64(^T(0)); v > limit {
		return 0, fmt.Errorf("invalid %s: %d out of range (max %d)", field, v, limit)
	}
	return T(v), nil
}

func parseUint8(s, field string) (uint8, error) { return parseUint[uint8](s, field) }

func parseUint32(s, field string) (uint32, error) { return parseUint[uint32](s, field) }

func requireArgs(data []string, n int, command string) error {
	if len(data) < n {
		return fmt.Errorf("%s: expected %d args, got %d", command, n, len(data))
	}
	return nil
}

// clean unquotes a copy of data, leaving the caller's slice untouched.
func clean(data []string) []string {
	return util.CleanArgs(append([]string(nil), data...))
}
