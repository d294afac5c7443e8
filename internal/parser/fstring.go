package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

// parseFString assembles an interpolated string from its framed token
// sub-stream: text chunks and `{expr}` placeholders in source order.
func (p *Parser) parseFString() (ast.ExprID, bool) {
	start := p.advance() // FStringStart
	var parts []ast.FStringPart

	for {
		switch p.lx.Peek().Kind {
		case token.FStringText:
			tok := p.advance()
			parts = append(parts, ast.FStringPart{
				Text: p.intern(decodeFStringText(tok.Text)),
				Expr: ast.NoExprID,
			})

		case token.FStringExprStart:
			p.advance()
			expr, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			if _, ok := p.expect(token.FStringExprEnd, diag.SynUnexpectedToken,
				"expected '}' after f-string placeholder"); !ok {
				return ast.NoExprID, false
			}
			parts = append(parts, ast.FStringPart{Expr: expr})

		case token.FStringEnd:
			end := p.advance()
			return p.arenas.Exprs.NewFString(start.Span.Cover(end.Span), parts), true

		default:
			p.report(diag.SynUnexpectedToken, p.diagSpan(), "malformed f-string")
			return ast.NoExprID, false
		}
	}
}
