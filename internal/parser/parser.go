package parser

import (
	"slices"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/lexer"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget is spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File ast.FileID
}

// Parser holds the state for one file. Tokens are consumed exactly once
// through a single forward cursor with one-token lookahead.
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span
	// afterDedent marks that the last consumed token was a DEDENT; a
	// block-form match expression ends its statement's line that way.
	afterDedent bool
}

// ParseFile parses one file into the shared builder.
func ParseFile(src *source.File, arenas *ast.Builder, opts Options) Result {
	lx := lexer.New(src, lexer.Options{Reporter: opts.Reporter})
	p := Parser{
		lx:     lx,
		arenas: arenas,
		file:   arenas.NewFile(source.Span{File: src.ID}, src.ID),
		opts:   opts,
	}
	p.parseItems()
	return Result{File: p.file}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
		} else {
			p.arenas.PushItem(p.file, itemID)
		}
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lastSpan)
}

// parseItem dispatches on the first token of a top-level construct.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	pub := false
	pubSpan := source.Span{}
	if p.at(token.KwPub) {
		pub = true
		pubSpan = p.advance().Span
	}

	switch p.lx.Peek().Kind {
	case token.KwUse:
		return p.parseUseItem(pub)
	case token.KwType:
		return p.parseTypeAliasItem(pub)
	case token.KwStruct:
		return p.parseStructItem(pub)
	case token.KwEnum:
		return p.parseEnumItem(pub)
	case token.KwFn:
		return p.parseFnItem(pub)
	case token.KwLet:
		if pub {
			p.report(diag.SynUnexpectedToken, pubSpan, "'pub' is not allowed on let bindings")
		}
		stmt, ok := p.parseLetStmt()
		if !ok {
			return ast.NoItemID, false
		}
		return p.arenas.Items.NewStmt(p.arenas.Stmts.Get(stmt).Span, stmt), true
	default:
		if pub {
			p.report(diag.SynUnexpectedToken, p.diagSpan(), "expected declaration after 'pub'")
			return ast.NoItemID, false
		}
		if p.startsExpr() {
			stmt, ok := p.parseExprOrAssignStmt()
			if !ok {
				return ast.NoItemID, false
			}
			return p.arenas.Items.NewStmt(p.arenas.Stmts.Get(stmt).Span, stmt), true
		}
		p.report(diag.SynUnexpectedTopLevel, p.diagSpan(),
			"unexpected top-level construct; expected use, type, struct, enum, fn, let, or an expression")
		return ast.NoItemID, false
	}
}

// resyncTop skips to the start of the next plausible top-level item:
// a starter keyword at column zero, i.e. after a NEWLINE with no open
// indentation.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.Indent:
			depth++
		case token.Dedent:
			if depth > 0 {
				depth--
			}
		case token.Newline:
			p.advance()
			if depth == 0 && isTopLevelStarter(p.lx.Peek().Kind) {
				return
			}
			continue
		}
		p.advance()
	}
}

func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwUse, token.KwType, token.KwStruct, token.KwEnum,
		token.KwFn, token.KwLet, token.KwPub:
		return true
	default:
		return false
	}
}
