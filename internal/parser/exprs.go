package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// parseExpr parses a full expression, including the trailing conditional
// form `then if cond else els`.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	then, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoExprID, false
	}
	if !p.at(token.KwIf) {
		return then, true
	}

	start := p.arenas.Exprs.Get(then).Span
	p.advance()
	cond, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else' in conditional expression"); !ok {
		return ast.NoExprID, false
	}
	els, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewIf(start.Cover(p.lastSpan), cond, then, els), true
}

// parseBinaryExpr is the precedence climber. minPrec cuts off operators
// that belong to an enclosing level.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		kind := p.lx.Peek().Kind
		prec := binaryPrec(kind)
		if prec < 0 || prec < minPrec {
			return left, true
		}
		p.advance()

		op := binaryOp(kind)
		if kind == token.KwIs && p.at(token.KwNot) {
			p.advance()
			op = ast.BinIsNot
		}

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}

		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		if kind == token.DotDot || kind == token.DotDotEq {
			left = p.arenas.Exprs.NewRange(span, left, right, kind == token.DotDotEq)
		} else {
			left = p.arenas.Exprs.NewBinary(span, op, left, right)
		}
	}
}

func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	switch p.lx.Peek().Kind {
	case token.Minus, token.Plus, token.KwNot:
		tok := p.advance()
		op, _ := unaryOp(tok.Kind)
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		span := tok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
		return p.arenas.Exprs.NewUnary(span, op, operand), true

	case token.KwAwait:
		tok := p.advance()
		value, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		span := tok.Span.Cover(p.arenas.Exprs.Get(value).Span)
		return p.arenas.Exprs.NewAwait(span, value), true

	case token.KwSpawn:
		tok := p.advance()
		value, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		span := tok.Span.Cover(p.arenas.Exprs.Get(value).Span)
		return p.arenas.Exprs.NewSpawn(span, value), true
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		switch p.lx.Peek().Kind {
		case token.LParen:
			expr, ok = p.parseCallOrInit(expr)
			if !ok {
				return ast.NoExprID, false
			}
		case token.Dot:
			p.advance()
			field, fieldSpan, ok := p.parseIdent()
			if !ok {
				return ast.NoExprID, false
			}
			span := p.arenas.Exprs.Get(expr).Span.Cover(fieldSpan)
			expr = p.arenas.Exprs.NewMember(span, expr, field, fieldSpan)
		case token.LBracket:
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after index")
			if !ok {
				return ast.NoExprID, false
			}
			span := p.arenas.Exprs.Get(expr).Span.Cover(end.Span)
			expr = p.arenas.Exprs.NewIndex(span, expr, index)
		default:
			return expr, true
		}
	}
}

// parseCallOrInit disambiguates `f(a, b)` from `Name(field: v)`. A
// `name: value` argument marks the keyword-style struct instantiation
// form; mixing positional arguments into it is an error.
func (p *Parser) parseCallOrInit(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // (

	var args []ast.ExprID
	var fields []ast.StructInitField
	for !p.at(token.RParen) {
		arg, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if ident, isIdent := p.arenas.Exprs.Ident(arg); isIdent && p.at(token.Colon) {
			nameSpan := p.arenas.Exprs.Get(arg).Span
			p.advance()
			value, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			fields = append(fields, ast.StructInitField{
				Name:     ident.Name,
				NameSpan: nameSpan,
				Value:    value,
			})
		} else {
			args = append(args, arg)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after arguments")
	if !ok {
		return ast.NoExprID, false
	}
	span := p.arenas.Exprs.Get(target).Span.Cover(end.Span)

	if len(fields) == 0 {
		return p.arenas.Exprs.NewCall(span, target, args), true
	}

	if len(args) > 0 {
		p.report(diag.SynPositionalStructInit, span,
			"struct instantiation takes keyword arguments only")
	}
	path, pathSpan, ok := p.exprToPath(target)
	if !ok {
		p.report(diag.SynUnexpectedToken, p.arenas.Exprs.Get(target).Span,
			"struct instantiation needs a type name")
		return ast.NoExprID, false
	}
	typ := p.arenas.Types.NewName(pathSpan, path, pathSpan, nil)
	return p.arenas.Exprs.NewStructInit(span, typ, fields), true
}

// exprToPath flattens an ident or member chain into a dotted name path.
func (p *Parser) exprToPath(id ast.ExprID) ([]source.StringID, source.Span, bool) {
	expr := p.arenas.Exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := p.arenas.Exprs.Ident(id)
		return []source.StringID{ident.Name}, expr.Span, true
	case ast.ExprMember:
		member, _ := p.arenas.Exprs.Member(id)
		base, span, ok := p.exprToPath(member.Target)
		if !ok {
			return nil, source.Span{}, false
		}
		return append(base, member.Field), span.Cover(expr.Span), true
	default:
		return nil, source.Span{}, false
	}
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.intern(tok.Text)), true

	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitInt, p.intern(tok.Text)), true

	case token.FloatLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitFloat, p.intern(tok.Text)), true

	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitString, p.intern(decodeString(tok.Text))), true

	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitBool, p.intern(tok.Text)), true

	case token.KwNone:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitNone, source.NoStringID), true

	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'")
		return inner, true

	case token.LBracket:
		return p.parseListOrComprehension()

	case token.LBrace:
		return p.parseDict()

	case token.FStringStart:
		return p.parseFString()

	case token.KwLambda:
		return p.parseLambda()

	case token.KwMatch:
		return p.parseMatchExpr()
	}

	p.report(diag.SynExpectExpression, p.diagSpan(),
		"expected expression, got "+tok.Kind.String())
	return ast.NoExprID, false
}

func (p *Parser) parseListOrComprehension() (ast.ExprID, bool) {
	open := p.advance()
	if p.at(token.RBracket) {
		end := p.advance()
		return p.arenas.Exprs.NewList(open.Span.Cover(end.Span), nil), true
	}

	first, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	if p.at(token.KwFor) {
		p.advance()
		pat, ok := p.parsePattern()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' in comprehension"); !ok {
			return ast.NoExprID, false
		}
		iter, ok := p.parseBinaryExpr(0)
		if !ok {
			return ast.NoExprID, false
		}
		cond := ast.NoExprID
		if p.at(token.KwIf) {
			p.advance()
			cond, ok = p.parseBinaryExpr(0)
			if !ok {
				return ast.NoExprID, false
			}
		}
		end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after comprehension")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewComprehension(open.Span.Cover(end.Span), first, pat, iter, cond), true
	}

	elems := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		elem, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, elem)
	}
	end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after list elements")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewList(open.Span.Cover(end.Span), elems), true
}

func (p *Parser) parseDict() (ast.ExprID, bool) {
	open := p.advance()
	var entries []ast.DictEntry
	for !p.at(token.RBrace) {
		key, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' between dict key and value"); !ok {
			return ast.NoExprID, false
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		entries = append(entries, ast.DictEntry{Key: key, Value: value})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	end, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}' after dict entries")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewDict(open.Span.Cover(end.Span), entries), true
}

// parseLambda parses `lambda a, b: body`. Lambda parameters carry no
// annotations; their types are inferred.
func (p *Parser) parseLambda() (ast.ExprID, bool) {
	lambdaTok := p.advance()

	var params []ast.FnParam
	for p.at(token.Ident) {
		name, nameSpan, _ := p.parseIdent()
		params = append(params, ast.FnParam{Name: name, NameSpan: nameSpan})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' before lambda body"); !ok {
		return ast.NoExprID, false
	}
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	span := lambdaTok.Span.Cover(p.arenas.Exprs.Get(body).Span)
	return p.arenas.Exprs.NewLambda(span, params, body), true
}

// parseMatchExpr parses the expression form of match: each case arm's
// body is a single expression on the arm's line.
func (p *Parser) parseMatchExpr() (ast.ExprID, bool) {
	matchTok := p.advance()
	subject, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after match subject"); !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected newline after ':'"); !ok {
		return ast.NoExprID, false
	}
	if !p.at(token.Indent) {
		p.report(diag.SynMissingBlock, p.diagSpan(), "expected indented case arms")
		return ast.NoExprID, false
	}
	p.advance()

	var arms []ast.MatchExprArm
	for !p.atOr(token.Dedent, token.EOF) {
		caseTok, ok := p.expect(token.KwCase, diag.SynExpectCaseArm, "expected 'case'")
		if !ok {
			p.resyncStmt()
			continue
		}
		pat, ok := p.parsePattern()
		if !ok {
			p.resyncStmt()
			continue
		}
		guard := ast.NoExprID
		if p.at(token.KwIf) {
			p.advance()
			guard, ok = p.parseBinaryExpr(0)
			if !ok {
				p.resyncStmt()
				continue
			}
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after case pattern"); !ok {
			p.resyncStmt()
			continue
		}
		value, ok := p.parseExpr()
		if !ok {
			p.resyncStmt()
			continue
		}
		p.expectNewline()
		arms = append(arms, ast.MatchExprArm{
			Span:    caseTok.Span.Cover(p.lastSpan),
			Pattern: pat,
			Guard:   guard,
			Value:   value,
		})
	}
	if p.at(token.Dedent) {
		p.advance()
	}
	if len(arms) == 0 {
		p.report(diag.SynExpectCaseArm, matchTok.Span, "match needs at least one case arm")
		return ast.NoExprID, false
	}

	return p.arenas.Exprs.NewMatch(matchTok.Span.Cover(p.lastSpan), subject, arms), true
}
