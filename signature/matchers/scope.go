package matchers

import (
	"github.com/viant/parsly"
)

type scope struct{}

// Match matches the C++ scope separator "::". A single colon is not a
// signature token and is left for the caller to report.
func (m *scope) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	if pos+1 >= cursor.InputSize {
		return 0
	}
	if input[pos] == ':' && input[pos+1] == ':' {
		return 2
	}
	return 0
}

// NewScope creates a scope separator matcher
func NewScope() parsly.Matcher {
	return &scope{}
}
