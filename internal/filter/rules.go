package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads filter rules from a file and appends them to the chain
// in file order. One rule per line: "+ pattern" includes, "- pattern"
// excludes, and an unprefixed pattern excludes like rsync's shorthand.
// Lines that are empty or start with # are ignored.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		pattern, include, ok := parseRule(sc.Text())
		if !ok {
			continue
		}
		add := c.AddExclude
		if include {
			add = c.AddInclude
		}
		if err := add(pattern); err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, line, err)
		}
	}
	return sc.Err()
}

// parseRule splits one rule line into its pattern and direction. The
// third return is false for blank lines and # comments.
func parseRule(raw string) (pattern string, include, ok bool) {
	line := strings.TrimSpace(raw)
	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return "", false, false
	case strings.HasPrefix(line, "+ "):
		return strings.TrimSpace(line[2:]), true, true
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), false, true
	default:
		return line, false, true
	}
}
