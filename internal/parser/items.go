package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

// parseUseItem parses `use a.b.c [as x]`.
func (p *Parser) parseUseItem(pub bool) (ast.ItemID, bool) {
	useTok := p.advance()

	var path []source.StringID
	first, firstSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	path = append(path, first)
	pathSpan := firstSpan
	for p.at(token.Dot) {
		p.advance()
		seg, segSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		path = append(path, seg)
		pathSpan = pathSpan.Cover(segSpan)
	}

	alias := source.NoStringID
	if p.at(token.KwAs) {
		p.advance()
		alias, _, ok = p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
	}
	p.expectNewline()

	return p.arenas.Items.NewUse(useTok.Span.Cover(p.lastSpan), ast.ItemUseData{
		Path:     path,
		PathSpan: pathSpan,
		Alias:    alias,
		Pub:      pub,
	}), true
}

// parseTypeAliasItem parses `type Name[T] = Target`.
func (p *Parser) parseTypeAliasItem(pub bool) (ast.ItemID, bool) {
	typeTok := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	typeParams := p.parseTypeParams()
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in type alias"); !ok {
		return ast.NoItemID, false
	}
	target, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	p.expectNewline()

	return p.arenas.Items.NewTypeAlias(typeTok.Span.Cover(p.lastSpan), ast.ItemTypeAliasData{
		Name:       name,
		NameSpan:   nameSpan,
		TypeParams: typeParams,
		Target:     target,
		Pub:        pub,
	}), true
}

// parseTypeParams parses an optional `[T, U]` list.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.at(token.LBracket) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for {
		name, sp, ok := p.parseIdent()
		if !ok {
			break
		}
		params = append(params, ast.TypeParam{Name: name, Span: sp})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after type parameters")
	return params
}

// parseStructItem parses a struct declaration: an indented block of
// `name: type` fields and fn methods.
func (p *Parser) parseStructItem(pub bool) (ast.ItemID, bool) {
	structTok := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	typeParams := p.parseTypeParams()

	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after struct name"); !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected newline after ':'"); !ok {
		return ast.NoItemID, false
	}
	if !p.at(token.Indent) {
		p.report(diag.SynMissingBlock, p.diagSpan(), "expected an indented struct body")
		return ast.NoItemID, false
	}
	p.advance()

	var fields []ast.StructField
	var methods []ast.ItemID
	for !p.atOr(token.Dedent, token.EOF) {
		switch p.lx.Peek().Kind {
		case token.KwPass:
			p.advance()
			p.expectNewline()
		case token.KwFn:
			method, ok := p.parseFnItem(false)
			if !ok {
				p.resyncStmt()
				continue
			}
			methods = append(methods, method)
		case token.Ident:
			fieldName, fieldSpan, _ := p.parseIdent()
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
				p.resyncStmt()
				continue
			}
			fieldType, ok := p.parseType()
			if !ok {
				p.resyncStmt()
				continue
			}
			p.expectNewline()
			fields = append(fields, ast.StructField{Name: fieldName, NameSpan: fieldSpan, Type: fieldType})
		default:
			p.report(diag.SynUnexpectedToken, p.diagSpan(), "expected field or method in struct body")
			p.resyncStmt()
		}
	}
	if p.at(token.Dedent) {
		p.advance()
	}

	return p.arenas.Items.NewStruct(structTok.Span.Cover(p.lastSpan), ast.ItemStructData{
		Name:       name,
		NameSpan:   nameSpan,
		TypeParams: typeParams,
		Fields:     fields,
		Methods:    methods,
		Pub:        pub,
	}), true
}

// parseEnumItem parses an enum declaration. Each variant line is either a
// bare name or `Name: (T, ...)` / `Name(T, ...)` for payload variants.
func (p *Parser) parseEnumItem(pub bool) (ast.ItemID, bool) {
	enumTok := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	typeParams := p.parseTypeParams()

	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after enum name"); !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected newline after ':'"); !ok {
		return ast.NoItemID, false
	}
	if !p.at(token.Indent) {
		p.report(diag.SynMissingBlock, p.diagSpan(), "expected an indented list of variants")
		return ast.NoItemID, false
	}
	p.advance()

	var variants []ast.EnumVariant
	for !p.atOr(token.Dedent, token.EOF) {
		variant, ok := p.parseEnumVariant()
		if !ok {
			p.resyncStmt()
			continue
		}
		variants = append(variants, variant)
	}
	if p.at(token.Dedent) {
		p.advance()
	}

	return p.arenas.Items.NewEnum(enumTok.Span.Cover(p.lastSpan), ast.ItemEnumData{
		Name:       name,
		NameSpan:   nameSpan,
		TypeParams: typeParams,
		Variants:   variants,
		Pub:        pub,
	}), true
}

func (p *Parser) parseEnumVariant() (ast.EnumVariant, bool) {
	var name source.StringID
	var nameSpan source.Span
	// `None` is a keyword but a legal variant name.
	if p.at(token.KwNone) {
		tok := p.advance()
		name, nameSpan = p.intern(tok.Text), tok.Span
	} else {
		var ok bool
		name, nameSpan, ok = p.parseIdent()
		if !ok {
			return ast.EnumVariant{}, false
		}
	}

	var payloads []ast.TypeID
	if p.at(token.Colon) {
		p.advance()
	}
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) {
			typ, ok := p.parseType()
			if !ok {
				return ast.EnumVariant{}, false
			}
			payloads = append(payloads, typ)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after variant payload"); !ok {
			return ast.EnumVariant{}, false
		}
	}
	p.expectNewline()
	return ast.EnumVariant{Name: name, NameSpan: nameSpan, Payloads: payloads}, true
}

// parseFnItem parses `fn name[T](params) -> Ret:` and its body.
func (p *Parser) parseFnItem(pub bool) (ast.ItemID, bool) {
	fnTok := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	typeParams := p.parseTypeParams()

	params, ok := p.parseFnParams()
	if !ok {
		return ast.NoItemID, false
	}

	ret := ast.NoTypeID
	if p.at(token.Arrow) {
		p.advance()
		ret, ok = p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
	}

	body, ok := p.parseBlock()
	if !ok {
		return ast.NoItemID, false
	}

	return p.arenas.Items.NewFn(fnTok.Span.Cover(p.lastSpan), ast.ItemFnData{
		Name:       name,
		NameSpan:   nameSpan,
		TypeParams: typeParams,
		Params:     params,
		Ret:        ret,
		Body:       body,
		Pub:        pub,
	}), true
}

// parseFnParams parses `(name: type [= default], ...)`. Once one parameter
// declares a default, all following parameters must too.
func (p *Parser) parseFnParams() ([]ast.FnParam, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to open parameter list"); !ok {
		return nil, false
	}

	var params []ast.FnParam
	sawDefault := false
	for !p.at(token.RParen) {
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return nil, false
		}

		typ := ast.NoTypeID
		if p.at(token.Colon) {
			p.advance()
			typ, ok = p.parseType()
			if !ok {
				return nil, false
			}
		}

		def := ast.NoExprID
		if p.at(token.Assign) {
			p.advance()
			def, ok = p.parseExpr()
			if !ok {
				return nil, false
			}
			sawDefault = true
		} else if sawDefault {
			p.report(diag.SynDefaultParamOrder, nameSpan,
				"parameter without a default follows a parameter with one")
		}

		params = append(params, ast.FnParam{Name: name, NameSpan: nameSpan, Type: typ, Default: def})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after parameters"); !ok {
		return nil, false
	}
	return params, true
}
