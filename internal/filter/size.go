package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// SetMinSize excludes files smaller than n bytes. Zero disables the bound.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize excludes files larger than n bytes. Zero disables the bound.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

func (c *Chain) sizeOK(n int64) bool {
	if c.minSize > 0 && n < c.minSize {
		return false
	}
	if c.maxSize > 0 && n > c.maxSize {
		return false
	}
	return true
}

var sizeSuffixes = map[string]int64{
	"B": 1,
	"K": 1024,
	"M": 1024 * 1024,
	"G": 1024 * 1024 * 1024,
	"T": 1024 * 1024 * 1024 * 1024,
}

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T (case-insensitive),
// with powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	numStr := s
	if m, ok := sizeSuffixes[strings.ToUpper(s[len(s)-1:])]; ok {
		multiplier = m
		numStr = s[:len(s)-1]
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	return int64(f * float64(multiplier)), nil
}
