// Package parser turns raw source files (JSON arrays, delimited CSV, HTML
// snapshots) into normalized places. Each parser is eager: source files are
// small and bounded, so the whole record list is produced in one call.
//
// Failure policy: a malformed record is skipped with a warning naming the
// record and the reason; only an unreadable source file is returned as an
// error, aborting that source alone.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// toFloat coerces the loosely-typed numeric fields government JSON exports
// carry (numbers, numeric strings, or null) into a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case nil:
		return 0, false
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(n)), 64)
		return f, err == nil
	}
}

// parseCoord parses a coordinate cell; empty strings are "absent", not
// malformed.
func parseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func skipRecord(source, name, reason string) {
	zap.L().Warn("parser: skipping record",
		zap.String("source", source),
		zap.String("name", name),
		zap.String("reason", reason),
	)
}
