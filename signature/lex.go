package signature

import (
	"unicode/utf8"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"

	"github.com/docbind/docbind/signature/matchers"
)

const (
	whitespaceToken int = iota
	constToken
	identToken
	scopeToken
	dotToken
	lAngleToken
	rAngleToken
	lBracketToken
	rBracketToken
	commaToken
	starToken
	ampToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())

// constMatcher must be tried before identMatcher so the keyword wins at
// word boundaries.
var constMatcher = parsly.NewToken(constToken, "Const", matchers.NewKeyword("const"))
var identMatcher = parsly.NewToken(identToken, "Identifier", matchers.NewIdent())
var scopeMatcher = parsly.NewToken(scopeToken, "Scope separator", matchers.NewScope())
var dotMatcher = parsly.NewToken(dotToken, "Dot separator", matcher.NewByte('.'))
var lAngleMatcher = parsly.NewToken(lAngleToken, "Template open", matcher.NewByte('<'))
var rAngleMatcher = parsly.NewToken(rAngleToken, "Template close", matcher.NewByte('>'))
var lBracketMatcher = parsly.NewToken(lBracketToken, "Bracket open", matcher.NewByte('['))
var rBracketMatcher = parsly.NewToken(rBracketToken, "Bracket close", matcher.NewByte(']'))
var commaMatcher = parsly.NewToken(commaToken, "Comma", matcher.NewByte(','))
var starMatcher = parsly.NewToken(starToken, "Pointer", matcher.NewByte('*'))
var ampMatcher = parsly.NewToken(ampToken, "Reference", matcher.NewByte('&'))

var kindForToken = map[int]Kind{
	constToken:    KindConst,
	identToken:    KindIdent,
	scopeToken:    KindScope,
	dotToken:      KindDot,
	lAngleToken:   KindLAngle,
	rAngleToken:   KindRAngle,
	lBracketToken: KindLBracket,
	rBracketToken: KindRBracket,
	commaToken:    KindComma,
	starToken:     KindStar,
	ampToken:      KindAmp,
}

// Tokenize splits a raw signature into tokens. Unrecognized characters
// never abort the scan: each is recorded as a LexError and skipped so the
// remainder still tokenizes.
func Tokenize(text string) ([]Token, []LexError) {
	var tokens []Token
	var lexErrs []LexError

	cursor := parsly.NewCursor("", []byte(text), 0)
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(
			whitespaceMatcher, constMatcher, identMatcher, scopeMatcher,
			dotMatcher, lAngleMatcher, rAngleMatcher, lBracketMatcher,
			rBracketMatcher, commaMatcher, starMatcher, ampMatcher,
		)
		switch matched.Code {
		case parsly.EOF:
			return tokens, lexErrs
		case parsly.Invalid:
			r, size := utf8.DecodeRune(cursor.Input[cursor.Pos:])
			lexErrs = append(lexErrs, LexError{Rune: r, Offset: cursor.Pos})
			cursor.Pos += size
		case whitespaceToken:
			// skipped
		default:
			tokens = append(tokens, Token{
				Kind: kindForToken[matched.Code],
				Text: matched.Text(cursor),
			})
		}
	}
	return tokens, lexErrs
}
