package matchers

import (
	"bytes"

	"github.com/viant/parsly"
)

type keyword struct {
	word []byte
}

// Match matches the keyword only at a word boundary, so "const" never
// swallows the head of "constant".
func (m *keyword) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	end := pos + len(m.word)
	if end > cursor.InputSize {
		return 0
	}
	if !bytes.Equal(input[pos:end], m.word) {
		return 0
	}
	if end < cursor.InputSize && isIdentPart(input[end]) {
		return 0
	}
	return len(m.word)
}

// NewKeyword creates a word-boundary aware keyword matcher
func NewKeyword(word string) parsly.Matcher {
	return &keyword{word: []byte(word)}
}
