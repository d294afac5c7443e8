package lexer

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/token"
)

func (lx *Lexer) scanNumber() token.Token {
	m := lx.cursor.Mark()

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X') {
		return lx.scanRadixNumber(m, isHex, "hexadecimal")
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'b' || b1 == 'B') {
		return lx.scanRadixNumber(m, func(b byte) bool { return b == '0' || b == '1' }, "binary")
	}

	kind := token.IntLit
	lx.scanDigitRun(m)

	// Fractional part. A dot is part of the number only when a digit
	// follows, so `0..10` stays a range expression.
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.scanDigitRun(m)
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		if _, b1, ok := lx.cursor.Peek2(); ok && (isDec(b1) || ((b1 == '+' || b1 == '-') && lx.hasDigitAt(lx.cursor.Off+2))) {
			kind = token.FloatLit
			lx.cursor.Bump()
			if p := lx.cursor.Peek(); p == '+' || p == '-' {
				lx.cursor.Bump()
			}
			lx.scanDigitRun(m)
		}
	}

	// A letter glued onto a number is never valid: `1abc`, `0xg`.
	if isIdentStartByte(lx.cursor.Peek()) {
		for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexBadNumber, sp, "invalid numeric literal "+lx.text(sp))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}

	sp := lx.cursor.SpanFrom(m)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

// scanRadixNumber consumes a 0x / 0b literal after the cursor has been
// positioned on the leading zero.
func (lx *Lexer) scanRadixNumber(m Mark, isDigit func(byte) bool, radix string) token.Token {
	lx.cursor.Bump() // 0
	lx.cursor.Bump() // x or b
	digits := 0
	trailingUnderscore := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isDigit(b) {
			digits++
			trailingUnderscore = false
			lx.cursor.Bump()
			continue
		}
		if b == '_' {
			trailingUnderscore = true
			lx.cursor.Bump()
			continue
		}
		break
	}
	bad := digits == 0 || trailingUnderscore
	// A digit outside the radix, or a glued letter, poisons the literal.
	if isIdentContinueByte(lx.cursor.Peek()) {
		bad = true
		for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(m)
	if bad {
		lx.report(diag.LexBadNumber, sp, "invalid "+radix+" literal "+lx.text(sp))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}
}

// scanDigitRun consumes decimal digits with interior underscores.
func (lx *Lexer) scanDigitRun(m Mark) {
	trailingUnderscore := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isDec(b) {
			trailingUnderscore = false
			lx.cursor.Bump()
			continue
		}
		if b == '_' {
			trailingUnderscore = true
			lx.cursor.Bump()
			continue
		}
		break
	}
	if trailingUnderscore {
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexBadNumber, sp, "numeric literal ends with '_'")
	}
}

func (lx *Lexer) hasDigitAt(off uint32) bool {
	return off < lx.cursor.Limit && isDec(lx.file.Content[off])
}
