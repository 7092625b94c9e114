// Package search matches compiled queries against a loaded conversation
// corpus and produces ordered hit lists.
package search

import (
	"fmt"
	"regexp"
)

// InvalidPatternError reports a user-supplied regex that failed to compile.
// It is surfaced to the caller before any conversation is scanned.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// Compile turns a user query into a reusable matcher. When isRegex is
// false the query is treated as literal text with all metacharacters
// escaped. Case-insensitive matching is the default.
func Compile(query string, isRegex, caseSensitive bool) (*regexp.Regexp, error) {
	expr := query
	if !isRegex {
		expr = regexp.QuoteMeta(query)
	}
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: query, Err: err}
	}
	return re, nil
}
