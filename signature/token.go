package signature

import "fmt"

// Kind classifies a lexical token.
type Kind int

const (
	KindIdent Kind = iota
	KindConst
	KindScope
	KindDot
	KindLAngle
	KindRAngle
	KindLBracket
	KindRBracket
	KindComma
	KindStar
	KindAmp
)

var kindNames = map[Kind]string{
	KindIdent:    "identifier",
	KindConst:    "'const'",
	KindScope:    "'::'",
	KindDot:      "'.'",
	KindLAngle:   "'<'",
	KindRAngle:   "'>'",
	KindLBracket: "'['",
	KindRBracket: "']'",
	KindComma:    "','",
	KindStar:     "'*'",
	KindAmp:      "'&'",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit of a type signature.
type Token struct {
	Kind Kind
	Text string
}

// LexError records a character the tokenizer could not classify. The scan
// continues past it, so one garbled cell never hides the rest of a
// signature.
type LexError struct {
	Rune   rune
	Offset int
}

func (e LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at offset %d", e.Rune, e.Offset)
}

// BenignLexErrors reports whether every recorded stray is one that real
// documentation signatures legitimately contain: digits, from array
// dimensions (quint8[16]) and numeric template parameters, and parentheses,
// from stray call notation in member tables. Callers treat a benign-only
// error list as a clean tokenization.
func BenignLexErrors(errs []LexError) bool {
	for _, e := range errs {
		if !benignStray(e.Rune) {
			return false
		}
	}
	return true
}

func benignStray(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return r == '(' || r == ')'
}
