package lexer

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

// scanString consumes a single-line string literal. The token text keeps the
// quotes and raw escapes; decoding happens at parse time.
func (lx *Lexer) scanString() token.Token {
	m := lx.cursor.Mark()
	quote := lx.cursor.Bump()

	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(m)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		}
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.checkEscape()
			continue
		}
		if b == quote {
			sp := lx.cursor.SpanFrom(m)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		}
	}
}

// checkEscape validates the byte after a backslash. The cursor sits on it.
func (lx *Lexer) checkEscape() {
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		return // the unterminated-string path reports
	}
	escStart := lx.cursor.Off - 1
	b := lx.cursor.Bump()
	switch b {
	case 'n', 't', 'r', '0', '\\', '\'', '"', '{', '}':
	default:
		sp := lx.span(escStart, lx.cursor.Off)
		lx.report(diag.LexBadEscape, sp, "unknown escape sequence "+lx.text(sp))
	}
}
