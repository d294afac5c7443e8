package lexer

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

// scanFString lexes a whole interpolated string into a framed sub-stream:
//
//	FSTRING_START FSTRING_TEXT* (FSTRING_EXPR_START tok* FSTRING_EXPR_END)* ... FSTRING_END
//
// All tokens after the first are queued on pending, so Next keeps returning
// one token at a time. `{{` and `}}` stay inside text chunks; the parser
// unescapes them together with backslash escapes.
func (lx *Lexer) scanFString() token.Token {
	m := lx.cursor.Mark()
	lx.cursor.Bump() // f
	quote := lx.cursor.Bump()
	start := token.Token{Kind: token.FStringStart, Span: lx.cursor.SpanFrom(m), Text: lx.text(lx.cursor.SpanFrom(m))}

	textStart := lx.cursor.Off
	flushText := func() {
		if lx.cursor.Off > textStart {
			sp := lx.span(textStart, lx.cursor.Off)
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringText, Span: sp, Text: lx.text(sp)})
		}
	}

	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			flushText()
			sp := lx.cursor.SpanFrom(m)
			lx.report(diag.LexUnterminatedFString, sp, "unterminated f-string")
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringEnd, Span: lx.emptySpan()})
			return start
		}

		b := lx.cursor.Peek()
		switch b {
		case quote:
			flushText()
			qs := lx.cursor.Off
			lx.cursor.Bump()
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringEnd, Span: lx.span(qs, lx.cursor.Off)})
			return start

		case '\\':
			lx.cursor.Bump()
			lx.checkEscape()

		case '{':
			if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '{' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				continue
			}
			flushText()
			bs := lx.cursor.Off
			lx.cursor.Bump()
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringExprStart, Span: lx.span(bs, lx.cursor.Off), Text: "{"})
			if !lx.scanFStringExpr(m) {
				return start
			}
			textStart = lx.cursor.Off

		case '}':
			if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '}' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				continue
			}
			sp := lx.span(lx.cursor.Off, lx.cursor.Off+1)
			lx.report(diag.LexUnbalancedDelimiter, sp, "single '}' in f-string; use '}}' for a literal brace")
			lx.cursor.Bump()
			flushText()
			textStart = lx.cursor.Off

		default:
			lx.cursor.Bump()
		}
	}
}

// scanFStringExpr queues the tokens of one `{...}` placeholder up to the
// matching close brace. Reports and bails on newline or EOF.
func (lx *Lexer) scanFStringExpr(fm Mark) bool {
	depth := 0
	for {
		lx.skipInlineSpace()
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.report(diag.LexUnterminatedFString, lx.cursor.SpanFrom(fm), "unterminated placeholder in f-string")
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringExprEnd, Span: lx.emptySpan()})
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringEnd, Span: lx.emptySpan()})
			return false
		}
		if lx.cursor.Peek() == '}' && depth == 0 {
			bs := lx.cursor.Off
			lx.cursor.Bump()
			lx.pending = append(lx.pending, token.Token{Kind: token.FStringExprEnd, Span: lx.span(bs, lx.cursor.Off), Text: "}"})
			return true
		}
		tok := lx.scanToken()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		lx.pending = append(lx.pending, tok)
	}
}
