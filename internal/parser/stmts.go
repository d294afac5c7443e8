package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwBreak:
		tok := p.advance()
		p.expectNewline()
		return p.arenas.Stmts.NewBreak(tok.Span), true
	case token.KwContinue:
		tok := p.advance()
		p.expectNewline()
		return p.arenas.Stmts.NewContinue(tok.Span), true
	case token.KwPass:
		tok := p.advance()
		p.expectNewline()
		return p.arenas.Stmts.NewPass(tok.Span), true
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwMatch:
		return p.parseMatchStmt()
	default:
		if p.startsExpr() {
			return p.parseExprOrAssignStmt()
		}
		p.report(diag.SynUnexpectedToken, p.diagSpan(),
			"expected statement, got "+p.lx.Peek().Kind.String())
		return ast.NoStmtID, false
	}
}

// parseLetStmt parses `let pattern [: type] = expr`.
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	letTok := p.advance()

	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoStmtID, false
	}

	typ := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		typ, ok = p.parseType()
		if !ok {
			return ast.NoStmtID, false
		}
	}

	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in let binding"); !ok {
		return ast.NoStmtID, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	p.expectNewline()

	return p.arenas.Stmts.NewLet(letTok.Span.Cover(p.lastSpan), pat, typ, value), true
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()
	value := ast.NoExprID
	if p.startsExpr() {
		var ok bool
		value, ok = p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	p.expectNewline()
	return p.arenas.Stmts.NewReturn(retTok.Span.Cover(p.lastSpan), value), true
}

// parseExprOrAssignStmt parses an expression and promotes it to an
// assignment when `=` or an augmented form follows.
func (p *Parser) parseExprOrAssignStmt() (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	target, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}

	if op, isAssign := assignOp(p.lx.Peek().Kind); isAssign {
		p.advance()
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		p.expectNewline()
		return p.arenas.Stmts.NewAssign(start.Cover(p.lastSpan), target, op, value), true
	}

	p.expectNewline()
	return p.arenas.Stmts.NewExpr(start.Cover(p.lastSpan), target), true
}

// parseIfStmt parses if/elif/else; elif chains become nested ifs.
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}

	els := ast.NoStmtID
	switch p.lx.Peek().Kind {
	case token.KwElif:
		els, ok = p.parseIfStmt()
		if !ok {
			return ast.NoStmtID, false
		}
	case token.KwElse:
		p.advance()
		els, ok = p.parseBlock()
		if !ok {
			return ast.NoStmtID, false
		}
	}

	return p.arenas.Stmts.NewIf(ifTok.Span.Cover(p.lastSpan), cond, then, els), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewWhile(whileTok.Span.Cover(p.lastSpan), cond, body), true
}

// parseForStmt parses `for pattern in iterable:`.
func (p *Parser) parseForStmt() (ast.StmtID, bool) {
	forTok := p.advance()
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' in for loop"); !ok {
		return ast.NoStmtID, false
	}
	iter, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewFor(forTok.Span.Cover(p.lastSpan), pat, iter, body), true
}

// parseMatchStmt parses a match with case-arm blocks.
func (p *Parser) parseMatchStmt() (ast.StmtID, bool) {
	matchTok := p.advance()
	subject, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after match subject"); !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected newline after ':'"); !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.Indent) {
		p.report(diag.SynMissingBlock, p.diagSpan(), "expected indented case arms")
		return ast.NoStmtID, false
	}
	p.advance()

	var arms []ast.MatchArm
	for !p.atOr(token.Dedent, token.EOF) {
		arm, ok := p.parseMatchArm()
		if !ok {
			p.resyncStmt()
			continue
		}
		arms = append(arms, arm)
	}
	if p.at(token.Dedent) {
		p.advance()
	}
	if len(arms) == 0 {
		p.report(diag.SynExpectCaseArm, matchTok.Span, "match needs at least one case arm")
		return ast.NoStmtID, false
	}

	return p.arenas.Stmts.NewMatch(matchTok.Span.Cover(p.lastSpan), subject, arms), true
}

// parseMatchArm parses `case pattern [if guard]:` and its block body.
func (p *Parser) parseMatchArm() (ast.MatchArm, bool) {
	caseTok, ok := p.expect(token.KwCase, diag.SynExpectCaseArm, "expected 'case'")
	if !ok {
		return ast.MatchArm{}, false
	}
	pat, ok := p.parsePattern()
	if !ok {
		return ast.MatchArm{}, false
	}
	guard := ast.NoExprID
	if p.at(token.KwIf) {
		p.advance()
		guard, ok = p.parseBinaryExpr(0)
		if !ok {
			return ast.MatchArm{}, false
		}
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.MatchArm{}, false
	}
	return ast.MatchArm{
		Span:    caseTok.Span.Cover(p.lastSpan),
		Pattern: pat,
		Guard:   guard,
		Body:    body,
	}, true
}
