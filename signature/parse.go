package signature

import (
	"strings"

	"github.com/docbind/docbind/errors"
)

// Parse builds the structured form of a raw C++/Qt type signature.
//
// The tokenizer tolerates benign strays (see BenignLexErrors); anything
// else fails the parse. Callers recover by falling back to CleanTypeText
// rather than propagating the error.
func Parse(text string) (*Type, error) {
	tokens, lexErrs := Tokenize(text)
	if !BenignLexErrors(lexErrs) {
		return nil, errors.Wrapf(errors.ErrParseFailure, "signature %q contains unexpected characters", text)
	}
	if len(tokens) == 0 {
		return nil, errors.Wrapf(errors.ErrParseFailure, "signature %q has no tokens", text)
	}
	p := &parser{tokens: tokens}
	return p.parseType()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) accept(kind Kind) bool {
	if tok, ok := p.peek(); ok && tok.Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind Kind) (Token, error) {
	tok, ok := p.peek()
	if !ok {
		return Token{}, errors.Wrapf(errors.ErrParseFailure, "expected %v, found end of signature", kind)
	}
	if tok.Kind != kind {
		return Token{}, errors.Wrapf(errors.ErrParseFailure, "expected %v, found %q", kind, tok.Text)
	}
	p.pos++
	return tok, nil
}

// parseType consumes one complete type. Tokens past the type, such as a
// trailing parameter name in a signature cell, are left unconsumed and
// ignored.
func (p *parser) parseType() (*Type, error) {
	t := &Type{}

	for p.accept(KindConst) {
		t.IsConst = true
	}

	if err := p.parseQualifiedName(t); err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok && tok.Kind == KindLAngle {
		if err := p.parseTemplateArgs(t); err != nil {
			return nil, err
		}
	}

	p.parseSuffix(t)
	return t, nil
}

// parseQualifiedName reads an identifier path separated by "::" or ".".
// The last segment is the base type; any preceding segments form the
// namespace, canonically joined with "::" whichever separator the source
// used.
func (p *parser) parseQualifiedName(t *Type) error {
	first, err := p.expect(KindIdent)
	if err != nil {
		return err
	}
	segments := []string{first.Text}

	for {
		tok, ok := p.peek()
		if !ok || (tok.Kind != KindScope && tok.Kind != KindDot) {
			break
		}
		p.pos++
		ident, err := p.expect(KindIdent)
		if err != nil {
			return err
		}
		segments = append(segments, ident.Text)
	}

	t.BaseType = segments[len(segments)-1]
	if len(segments) > 1 {
		t.Namespace = strings.Join(segments[:len(segments)-1], "::")
	}
	return nil
}

// parseTemplateArgs splits the argument list on commas at nesting depth one
// and recursively parses each argument through the full pipeline, so
// qualifiers inside arguments are honored identically to top level.
// Arguments that do not parse (numeric template parameters, mostly) are
// dropped; a list with no surviving arguments leaves the type plain.
func (p *parser) parseTemplateArgs(t *Type) error {
	if _, err := p.expect(KindLAngle); err != nil {
		return err
	}

	depth := 1
	var current []Token
	var args [][]Token
	flush := func() {
		if len(current) > 0 {
			args = append(args, current)
			current = nil
		}
	}

	for depth > 0 {
		tok, ok := p.next()
		if !ok {
			return errors.Wrap(errors.ErrParseFailure, "unclosed template argument list")
		}
		switch tok.Kind {
		case KindLAngle:
			depth++
			current = append(current, tok)
		case KindRAngle:
			depth--
			if depth == 0 {
				flush()
			} else {
				current = append(current, tok)
			}
		case KindComma:
			if depth == 1 {
				flush()
			} else {
				current = append(current, tok)
			}
		default:
			current = append(current, tok)
		}
	}

	for _, argTokens := range args {
		arg, err := Parse(renderTokens(argTokens))
		if err != nil {
			continue
		}
		t.TemplateArgs = append(t.TemplateArgs, arg)
	}
	return nil
}

// parseSuffix consumes trailing qualifiers in any order and multiplicity:
// pointer and reference markers, postfix const, and balanced bracket groups
// marking arrays. An unbalanced bracket group ends the suffix without
// failing the parse.
func (p *parser) parseSuffix(t *Type) {
	for {
		tok, ok := p.peek()
		if !ok {
			return
		}
		switch tok.Kind {
		case KindStar:
			t.IsPointer = true
			p.pos++
		case KindAmp:
			t.IsReference = true
			p.pos++
		case KindConst:
			t.IsConst = true
			p.pos++
		case KindLBracket:
			if !p.consumeBracketGroup() {
				return
			}
			t.IsArray = true
		default:
			return
		}
	}
}

// consumeBracketGroup advances past one balanced [...] group. It reports
// false, consuming nothing, when the group never closes.
func (p *parser) consumeBracketGroup() bool {
	start := p.pos
	depth := 0
	for ; p.pos < len(p.tokens); p.pos++ {
		switch p.tokens[p.pos].Kind {
		case KindLBracket:
			depth++
		case KindRBracket:
			depth--
			if depth == 0 {
				p.pos++
				return true
			}
		}
	}
	p.pos = start
	return false
}

func renderTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}
