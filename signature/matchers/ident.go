package matchers

import (
	"github.com/viant/parsly"
)

type ident struct{}

// Match matches a C-style identifier: a letter or underscore followed by
// letters, digits and underscores.
func (m *ident) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || !isIdentStart(input[pos]) {
		return 0
	}
	matched++
	for i := pos + 1; i < size; i++ {
		if !isIdentPart(input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isIdentStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || b >= '0' && b <= '9'
}

// NewIdent creates an identifier matcher
func NewIdent() parsly.Matcher {
	return &ident{}
}
