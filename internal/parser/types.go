package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// parseType parses a type expression: a possibly-qualified name with
// optional `[args]`, or a function type `fn(T, U) -> R`.
func (p *Parser) parseType() (ast.TypeID, bool) {
	if p.at(token.KwFn) {
		return p.parseFnType()
	}
	if p.at(token.KwNone) {
		// `None` doubles as the unit type annotation.
		tok := p.advance()
		return p.arenas.Types.NewName(tok.Span, []source.StringID{p.intern(tok.Text)}, tok.Span, nil), true
	}

	first, firstSpan, ok := p.parseIdent()
	if !ok {
		p.report(diag.SynExpectType, p.diagSpan(), "expected type")
		return ast.NoTypeID, false
	}
	path := []source.StringID{first}
	pathSpan := firstSpan
	for p.at(token.Dot) {
		p.advance()
		seg, segSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoTypeID, false
		}
		path = append(path, seg)
		pathSpan = pathSpan.Cover(segSpan)
	}

	var args []ast.TypeID
	span := pathSpan
	if p.at(token.LBracket) {
		p.advance()
		for !p.at(token.RBracket) {
			arg, ok := p.parseType()
			if !ok {
				return ast.NoTypeID, false
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after type arguments")
		if !ok {
			return ast.NoTypeID, false
		}
		span = span.Cover(end.Span)
	}

	return p.arenas.Types.NewName(span, path, pathSpan, args), true
}

func (p *Parser) parseFnType() (ast.TypeID, bool) {
	fnTok := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynExpectType, "expected '(' in function type"); !ok {
		return ast.NoTypeID, false
	}
	var params []ast.TypeID
	for !p.at(token.RParen) {
		param, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		params = append(params, param)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' in function type")
	if !ok {
		return ast.NoTypeID, false
	}
	span := fnTok.Span.Cover(end.Span)

	ret := ast.NoTypeID
	if p.at(token.Arrow) {
		p.advance()
		ret, ok = p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		span = span.Cover(p.lastSpan)
	}
	return p.arenas.Types.NewFn(span, params, ret), true
}
