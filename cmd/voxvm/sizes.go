package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseSize parses a --init-* size flag value: a decimal number followed
// by an optional B/KB/MB/GB suffix. No library in the retrieval pack
// offers a humanize-style size parser (none of the example repos import
// one), so this is a small from-scratch helper rather than a gap left on
// the standard library by choice.
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size value")
	}

	suffixes := []struct {
		suffix string
		mult   uint64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}
	for _, sx := range suffixes {
		if strings.HasSuffix(strings.ToUpper(s), sx.suffix) {
			numPart := s[:len(s)-len(sx.suffix)]
			n, err := strconv.ParseUint(strings.TrimSpace(numPart), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("malformed size %q: %w", s, err)
			}
			return n * sx.mult, nil
		}
	}
	return strconv.ParseUint(s, 10, 64)
}
