package lexer

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// Lexer turns one source file into a token stream. Indentation structure is
// made explicit: every logical line ends with Newline, and block nesting is
// framed by Indent/Dedent pairs synthesized from the indent stack.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options

	look    *token.Token  // 1-token lookahead buffer
	pending []token.Token // queued structural / f-string tokens

	// indents is the stack of open indentation widths; indents[0] == 0.
	indents     []uint32
	atLineStart bool
	brackets    int  // ( [ { nesting depth; newlines are ignored inside
	needNewline bool // a non-layout token was emitted since the last Newline
	done        bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:        file,
		cursor:      NewCursor(file),
		opts:        opts,
		indents:     []uint32{0},
		atLineStart: true,
	}
}

// Next returns the next token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	tok := lx.next()
	if !tok.IsLayout() && tok.Kind != token.EOF {
		lx.needNewline = true
	}
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) next() token.Token {
	for {
		if len(lx.pending) > 0 {
			tok := lx.pending[0]
			lx.pending = lx.pending[1:]
			return tok
		}

		if lx.atLineStart && lx.brackets == 0 {
			lx.scanLineStart()
			if len(lx.pending) > 0 {
				continue
			}
		}

		if lx.cursor.EOF() {
			return lx.finish()
		}

		lx.skipInlineSpace()
		ch := lx.cursor.Peek()

		if ch == '#' {
			lx.skipComment()
			continue
		}

		if ch == '\n' {
			lx.cursor.Bump()
			if lx.brackets > 0 {
				continue
			}
			lx.atLineStart = true
			if !lx.needNewline {
				// Nothing emitted on this line (recovery path); swallow.
				continue
			}
			lx.needNewline = false
			return token.Token{
				Kind: token.Newline,
				Span: source.Span{File: lx.file.ID, Start: lx.cursor.Off - 1, End: lx.cursor.Off},
				Text: "\n",
			}
		}

		if lx.cursor.EOF() {
			return lx.finish()
		}

		return lx.scanToken()
	}
}

// finish emits the synthetic end-of-stream sequence: a final Newline if a
// logical line is still open, one Dedent per open indent level, then EOF.
func (lx *Lexer) finish() token.Token {
	if lx.needNewline {
		lx.needNewline = false
		lx.atLineStart = true
		return token.Token{Kind: token.Newline, Span: lx.emptySpan()}
	}
	if !lx.done {
		for len(lx.indents) > 1 {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.pending = append(lx.pending, token.Token{Kind: token.Dedent, Span: lx.emptySpan()})
		}
		lx.done = true
		if len(lx.pending) > 0 {
			tok := lx.pending[0]
			lx.pending = lx.pending[1:]
			return tok
		}
	}
	return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
}

// scanToken dispatches on the current byte. The caller has already skipped
// whitespace and layout.
func (lx *Lexer) scanToken() token.Token {
	ch := lx.cursor.Peek()

	switch {
	case ch == 'f' && lx.isQuoteAfterPrefix():
		return lx.scanFString()

	case isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()

	case isDec(ch):
		return lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		return lx.scanNumber()

	case ch == '"' || ch == '\'':
		return lx.scanString()

	default:
		return lx.scanOperatorOrPunct()
	}
}

func (lx *Lexer) skipInlineSpace() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == ' ' || b == '\t' || b == '\r' {
			lx.cursor.Bump()
			continue
		}
		break
	}
}

func (lx *Lexer) skipComment() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}

// isNumberAfterDot checks the ".5" case: a dot directly followed by a digit.
func (lx *Lexer) isNumberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}

// isQuoteAfterPrefix checks the f-string case: 'f' directly followed by a
// quote character.
func (lx *Lexer) isQuoteAfterPrefix() bool {
	_, b1, ok := lx.cursor.Peek2()
	return ok && (b1 == '"' || b1 == '\'')
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// scanLineStart runs the indentation algorithm at the start of a logical
// line: it measures leading spaces, consumes blank and comment-only lines,
// and queues Indent/Dedent tokens against the indent stack.
func (lx *Lexer) scanLineStart() {
	for {
		lineStart := lx.cursor.Off
		width := uint32(0)
		sawTab := false

		for !lx.cursor.EOF() {
			b := lx.cursor.Peek()
			if b == ' ' {
				width++
				lx.cursor.Bump()
				continue
			}
			if b == '\t' {
				if !sawTab {
					sp := source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off + 1}
					lx.report(diag.LexTabIndent, sp, "tab character in indentation; use spaces")
					sawTab = true
				}
				width++
				lx.cursor.Bump()
				continue
			}
			break
		}

		if lx.cursor.EOF() {
			lx.atLineStart = false
			return
		}

		switch lx.cursor.Peek() {
		case '\n':
			// Blank line: no tokens, no indentation effect.
			lx.cursor.Bump()
			continue
		case '#':
			lx.skipComment()
			continue
		}

		lx.applyIndent(lineStart, width)
		lx.atLineStart = false
		return
	}
}

func (lx *Lexer) applyIndent(lineStart, width uint32) {
	top := lx.indents[len(lx.indents)-1]
	switch {
	case width > top:
		lx.indents = append(lx.indents, width)
		lx.pending = append(lx.pending, token.Token{
			Kind: token.Indent,
			Span: source.Span{File: lx.file.ID, Start: lineStart + top, End: lineStart + width},
		})
	case width < top:
		for width < lx.indents[len(lx.indents)-1] {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.pending = append(lx.pending, token.Token{
				Kind: token.Dedent,
				Span: source.Span{File: lx.file.ID, Start: lineStart + width, End: lineStart + width},
			})
		}
		if width != lx.indents[len(lx.indents)-1] {
			sp := source.Span{File: lx.file.ID, Start: lineStart, End: lineStart + width}
			lx.report(diag.LexInconsistentIndent, sp, "inconsistent indentation: no enclosing block at this level")
			// Recover by opening a level at the offending width.
			lx.indents = append(lx.indents, width)
			lx.pending = append(lx.pending, token.Token{
				Kind: token.Indent,
				Span: sp,
			})
		}
	}
}
