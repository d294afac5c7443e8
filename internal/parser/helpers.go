package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// advance eats the next token and remembers its span for diagnostics.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	p.afterDedent = tok.Kind == token.Dedent
	return tok
}

// diagSpan picks the best span to point a diagnostic at: the next token,
// or the position right after the last consumed token at EOF.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect consumes a token of kind k or reports code.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	p.opts.CurrentErrors++
	if p.opts.Enough() {
		return
	}
	p.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
}

func (p *Parser) intern(s string) source.StringID {
	return p.arenas.Strings.Intern(s)
}

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.intern(tok.Text), tok.Span, true
	}
	p.report(diag.SynExpectIdentifier, p.diagSpan(), "expected identifier, got "+p.lx.Peek().Kind.String())
	return source.NoStringID, p.diagSpan(), false
}

// expectNewline terminates a simple statement. Anything else on the line
// is reported once and skipped to the next line boundary.
func (p *Parser) expectNewline() {
	if p.afterDedent {
		// The closing DEDENT of a match expression already ended the
		// line; the cursor sits on the next statement.
		return
	}
	if p.at(token.Newline) {
		p.advance()
		return
	}
	if p.atOr(token.EOF, token.Dedent) {
		return
	}
	p.report(diag.SynExpectNewline, p.diagSpan(), "expected end of line")
	for !p.atOr(token.Newline, token.EOF, token.Dedent) {
		p.advance()
	}
	if p.at(token.Newline) {
		p.advance()
	}
}

// parseBlock parses `: NEWLINE INDENT stmt+ DEDENT` after a header.
// A header without an indented body is a syntax error.
func (p *Parser) parseBlock() (ast.StmtID, bool) {
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' to open a block"); !ok {
		return ast.NoStmtID, false
	}
	start := p.diagSpan()
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected newline after ':'"); !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.Indent) {
		p.report(diag.SynMissingBlock, p.diagSpan(), "expected an indented block")
		return ast.NoStmtID, false
	}
	p.advance()

	var stmts []ast.StmtID
	for !p.atOr(token.Dedent, token.EOF) {
		stmt, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, stmt)
	}
	end := p.diagSpan()
	if p.at(token.Dedent) {
		p.advance()
	}
	return p.arenas.Stmts.NewBlock(start.Cover(end), stmts), true
}

// resyncStmt drops tokens until the next statement boundary inside the
// current block, balancing nested INDENT/DEDENT pairs on the way.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.Indent:
			depth++
		case token.Dedent:
			if depth == 0 {
				return
			}
			depth--
		case token.Newline:
			p.advance()
			if depth == 0 {
				return
			}
			continue
		}
		p.advance()
	}
}

// startsExpr reports whether the next token can begin an expression.
func (p *Parser) startsExpr() bool {
	switch p.lx.Peek().Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit,
		token.FStringStart, token.KwTrue, token.KwFalse, token.KwNone,
		token.LParen, token.LBracket, token.LBrace,
		token.Minus, token.Plus, token.KwNot,
		token.KwAwait, token.KwSpawn, token.KwLambda, token.KwMatch:
		return true
	default:
		return false
	}
}
