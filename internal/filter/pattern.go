package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is a compiled glob pattern that can match paths.
type compiledPattern struct {
	re       *regexp.Regexp
	original string
	anchored bool // matches from the upload root rather than any suffix
	dirOnly  bool // pattern ends with /
}

// compilePattern converts an rsync-style glob pattern into a compiled
// matcher. A trailing / restricts the pattern to directories. A leading /
// anchors it to the upload root; a pattern containing / anywhere is anchored
// too, while a bare pattern matches basenames at any depth.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	body, err := globBody(pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", cp.original, err)
	}

	expr := "(^|/)" + body + "$"
	if cp.anchored {
		expr = "^" + body + "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", cp.original, err)
	}
	cp.re = re
	return cp, nil
}

// match tests whether a relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(relPath)
}

// globToRegex compiles a glob into a full-path regexp anchored at both ends.
func globToRegex(glob string) (*regexp.Regexp, error) {
	body, err := globBody(glob)
	if err != nil {
		return nil, err
	}
	return regexp.Compile("^" + body + "$")
}

// globBody translates glob syntax into a regexp fragment. A single * stops
// at path separators, ** crosses them, ? is one character except /, and
// character classes pass through with a leading ! rewritten to ^.
func globBody(glob string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(glob); {
		switch c := glob[i]; c {
		case '*':
			switch {
			case strings.HasPrefix(glob[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 3
			case strings.HasPrefix(glob[i:], "**"):
				b.WriteString(".*")
				i += 2
			default:
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				return "", fmt.Errorf("unclosed character class at offset %d", i)
			}
			cls := glob[i+1 : end]
			if strings.HasPrefix(cls, "!") {
				cls = "^" + cls[1:]
			}
			b.WriteString("[" + cls + "]")
			i = end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String(), nil
}

// classEnd returns the index of the ] closing the class opened at start, or
// -1 when the class never closes. A ] right after the opener (or after a
// leading !) is a literal member, not the terminator.
func classEnd(glob string, start int) int {
	i := start + 1
	if i < len(glob) && glob[i] == '!' {
		i++
	}
	if i < len(glob) && glob[i] == ']' {
		i++
	}
	for ; i < len(glob); i++ {
		if glob[i] == ']' {
			return i
		}
	}
	return -1
}
