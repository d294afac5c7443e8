package lexer

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	m := lx.cursor.Mark()

	mk := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(m)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}

	switch {
	case lx.try2('=', '='):
		return mk(token.EqEq)
	case lx.try2('!', '='):
		return mk(token.BangEq)
	case lx.try2('<', '='):
		return mk(token.LtEq)
	case lx.try2('>', '='):
		return mk(token.GtEq)
	case lx.try2('+', '='):
		return mk(token.PlusAssign)
	case lx.try2('-', '='):
		return mk(token.MinusAssign)
	case lx.try2('*', '='):
		return mk(token.StarAssign)
	case lx.try2('/', '='):
		return mk(token.SlashAssign)
	case lx.try2('%', '='):
		return mk(token.PercentAssign)
	case lx.try2('-', '>'):
		return mk(token.Arrow)
	case lx.try2('.', '.'):
		if lx.cursor.Eat('=') {
			return mk(token.DotDotEq)
		}
		return mk(token.DotDot)
	}

	b := lx.cursor.Bump()
	switch b {
	case '+':
		return mk(token.Plus)
	case '-':
		return mk(token.Minus)
	case '*':
		return mk(token.Star)
	case '/':
		return mk(token.Slash)
	case '%':
		return mk(token.Percent)
	case '=':
		return mk(token.Assign)
	case '<':
		return mk(token.Lt)
	case '>':
		return mk(token.Gt)
	case '(':
		lx.brackets++
		return mk(token.LParen)
	case ')':
		lx.closeBracket()
		return mk(token.RParen)
	case '[':
		lx.brackets++
		return mk(token.LBracket)
	case ']':
		lx.closeBracket()
		return mk(token.RBracket)
	case '{':
		lx.brackets++
		return mk(token.LBrace)
	case '}':
		lx.closeBracket()
		return mk(token.RBrace)
	case ',':
		return mk(token.Comma)
	case '.':
		return mk(token.Dot)
	case ':':
		return mk(token.Colon)
	default:
		tok := mk(token.Invalid)
		lx.report(diag.LexUnknownChar, tok.Span, fmt.Sprintf("unexpected character %q", rune(b)))
		return tok
	}
}

func (lx *Lexer) closeBracket() {
	if lx.brackets > 0 {
		lx.brackets--
	}
}
