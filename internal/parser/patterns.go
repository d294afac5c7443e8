package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// parsePattern parses one pattern. Bare identifiers bind; variant and
// struct forms are distinguished by their argument shape, mirroring the
// call/instantiation split in expressions.
func (p *Parser) parsePattern() (ast.PatID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return p.arenas.Pats.NewWildcard(tok.Span), true

	case token.IntLit:
		p.advance()
		return p.arenas.Pats.NewLiteral(tok.Span, ast.LitInt, p.intern(tok.Text)), true

	case token.FloatLit:
		p.advance()
		return p.arenas.Pats.NewLiteral(tok.Span, ast.LitFloat, p.intern(tok.Text)), true

	case token.Minus:
		// Negative literal pattern.
		minus := p.advance()
		num := p.lx.Peek()
		if num.Kind != token.IntLit && num.Kind != token.FloatLit {
			p.report(diag.SynExpectPattern, p.diagSpan(), "expected numeric literal after '-'")
			return ast.NoPatID, false
		}
		p.advance()
		kind := ast.LitInt
		if num.Kind == token.FloatLit {
			kind = ast.LitFloat
		}
		return p.arenas.Pats.NewLiteral(minus.Span.Cover(num.Span), kind, p.intern("-"+num.Text)), true

	case token.StringLit:
		p.advance()
		return p.arenas.Pats.NewLiteral(tok.Span, ast.LitString, p.intern(decodeString(tok.Text))), true

	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Pats.NewLiteral(tok.Span, ast.LitBool, p.intern(tok.Text)), true

	case token.KwNone:
		p.advance()
		return p.arenas.Pats.NewLiteral(tok.Span, ast.LitNone, source.NoStringID), true

	case token.LBracket:
		return p.parseListPattern()

	case token.Ident:
		return p.parseNamePattern()
	}

	p.report(diag.SynExpectPattern, p.diagSpan(),
		"expected pattern, got "+tok.Kind.String())
	return ast.NoPatID, false
}

// parseNamePattern handles bindings, enum variants, and struct patterns,
// all of which start with an identifier.
func (p *Parser) parseNamePattern() (ast.PatID, bool) {
	first, firstSpan, _ := p.parseIdent()
	path := []source.StringID{first}
	pathSpan := firstSpan

	for p.at(token.Dot) {
		p.advance()
		seg, segSpan, ok := p.parsePathSegment()
		if !ok {
			return ast.NoPatID, false
		}
		path = append(path, seg)
		pathSpan = pathSpan.Cover(segSpan)
	}

	if !p.at(token.LParen) {
		if len(path) > 1 {
			// Qualified name without arguments: payload-free variant.
			return p.arenas.Pats.NewEnumVariant(pathSpan, path, pathSpan, nil), true
		}
		return p.arenas.Pats.NewBinding(firstSpan, first), true
	}

	p.advance() // (
	var args []ast.PatID
	var fields []ast.PatStructField
	for !p.at(token.RParen) {
		if p.at(token.Ident) {
			// May be a struct field `name: pat` or a nested binding.
			name, nameSpan, _ := p.parseIdent()
			if p.at(token.Colon) {
				p.advance()
				sub, ok := p.parsePattern()
				if !ok {
					return ast.NoPatID, false
				}
				fields = append(fields, ast.PatStructField{Name: name, NameSpan: nameSpan, Pattern: sub})
			} else if p.at(token.LParen) || p.at(token.Dot) {
				// Nested variant pattern; re-parse from the name.
				sub, ok := p.parseNamePatternFrom(name, nameSpan)
				if !ok {
					return ast.NoPatID, false
				}
				args = append(args, sub)
			} else {
				args = append(args, p.arenas.Pats.NewBinding(nameSpan, name))
			}
		} else {
			sub, ok := p.parsePattern()
			if !ok {
				return ast.NoPatID, false
			}
			args = append(args, sub)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' in pattern")
	if !ok {
		return ast.NoPatID, false
	}
	span := pathSpan.Cover(end.Span)

	if len(fields) > 0 {
		if len(args) > 0 {
			p.report(diag.SynExpectPattern, span,
				"struct pattern takes 'field: pattern' entries only")
		}
		if len(path) > 1 {
			p.report(diag.SynExpectPattern, span, "struct pattern name cannot be qualified")
		}
		return p.arenas.Pats.NewStruct(span, first, firstSpan, fields), true
	}
	return p.arenas.Pats.NewEnumVariant(span, path, pathSpan, args), true
}

// parseNamePatternFrom continues a name pattern whose first segment is
// already consumed.
func (p *Parser) parseNamePatternFrom(first source.StringID, firstSpan source.Span) (ast.PatID, bool) {
	path := []source.StringID{first}
	pathSpan := firstSpan
	for p.at(token.Dot) {
		p.advance()
		seg, segSpan, ok := p.parsePathSegment()
		if !ok {
			return ast.NoPatID, false
		}
		path = append(path, seg)
		pathSpan = pathSpan.Cover(segSpan)
	}

	if !p.at(token.LParen) {
		return p.arenas.Pats.NewEnumVariant(pathSpan, path, pathSpan, nil), true
	}
	p.advance()
	var args []ast.PatID
	for !p.at(token.RParen) {
		sub, ok := p.parsePattern()
		if !ok {
			return ast.NoPatID, false
		}
		args = append(args, sub)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' in pattern")
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Pats.NewEnumVariant(pathSpan.Cover(end.Span), path, pathSpan, args), true
}

// parsePathSegment reads one dotted-path segment in a pattern. None is a
// keyword but also names Option's empty variant, so it is accepted here.
func (p *Parser) parsePathSegment() (source.StringID, source.Span, bool) {
	if p.at(token.KwNone) {
		tok := p.advance()
		return p.intern(tok.Text), tok.Span, true
	}
	return p.parseIdent()
}

// parseListPattern parses `[p, q, ..rest, r]` with at most one rest slot.
func (p *Parser) parseListPattern() (ast.PatID, bool) {
	open := p.advance()

	data := ast.PatListData{}
	for !p.at(token.RBracket) {
		if p.at(token.DotDot) {
			restTok := p.advance()
			if data.HasRest {
				p.report(diag.SynRestPatternPosition, restTok.Span,
					"list pattern allows a single '..rest'")
			}
			data.HasRest = true
			data.RestIndex = uint32(len(data.Elems))
			data.RestSpan = restTok.Span
			if p.at(token.Ident) {
				name, nameSpan, _ := p.parseIdent()
				data.RestName = name
				data.RestSpan = restTok.Span.Cover(nameSpan)
			}
		} else {
			elem, ok := p.parsePattern()
			if !ok {
				return ast.NoPatID, false
			}
			data.Elems = append(data.Elems, elem)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after list pattern")
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Pats.NewList(open.Span.Cover(end.Span), data), true
}
