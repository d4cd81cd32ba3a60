package policy

import (
	"fmt"
	"strings"
)

// sqlWords are tokens that may legitimately appear in a caller-supplied
// filter without naming a column. Matching is case-insensitive.
var sqlWords = toSet([]string{
	"and", "or", "not", "is", "null", "in", "like", "glob", "between",
	"escape", "asc", "desc", "collate", "binary", "nocase", "cast",
	"as", "integer", "text",
})

// ValidateSelection scans a caller-supplied filter (or sort) expression and
// rejects it if any identifier it names is outside the read allow-list. The
// scan is lexical, not a full SQL parse: identifiers are bare words that are
// not SQL keywords, or double-quoted tokens (SQLite resolves "..." as a
// column reference when one exists); single-quoted string literals, numbers
// and parameter markers are skipped. An empty expression is valid.
func ValidateSelection(expr string) error {
	i := 0
	n := len(expr)
	for i < n {
		c := expr[i]
		switch {
		case c == '\'':
			end, err := scanQuoted(expr, i)
			if err != nil {
				return err
			}
			i = end
		case c == '"':
			end, err := scanQuoted(expr, i)
			if err != nil {
				return err
			}
			name := strings.ReplaceAll(expr[i+1:end-1], `""`, `"`)
			if !readAllowedSet[name] {
				return fmt.Errorf("column %q is not allowed in selections", name)
			}
			i = end
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(expr[i]) {
				i++
			}
			word := expr[start:i]
			if sqlWords[strings.ToLower(word)] {
				continue
			}
			if !readAllowedSet[word] {
				return fmt.Errorf("column %q is not allowed in selections", word)
			}
		default:
			// Operators, digits, whitespace, parens and '?' markers carry no
			// column names.
			i++
		}
	}
	return nil
}

// scanQuoted returns the index just past a quoted literal starting at i.
// Doubled quote characters escape themselves, per SQL.
func scanQuoted(expr string, i int) (int, error) {
	quote := expr[i]
	i++
	for i < len(expr) {
		if expr[i] == quote {
			if i+1 < len(expr) && expr[i+1] == quote {
				i += 2
				continue
			}
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated quoted literal in selection")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
