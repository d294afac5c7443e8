package symbols

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

// walkItem is the body pass: scopes are built and every identifier
// reference is bound to a declaration.
func (fr *fileResolver) walkItem(id ast.ItemID) {
	item := fr.builder.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFn:
		if fn, ok := fr.builder.Items.Fn(id); ok {
			fr.walkFn(id, fn)
		}
	case ast.ItemStruct:
		if st, ok := fr.builder.Items.Struct(id); ok {
			fr.walkStruct(id, st, item.Span)
		}
	case ast.ItemEnum:
		if en, ok := fr.builder.Items.Enum(id); ok {
			fr.walkEnum(id, en, item.Span)
		}
	case ast.ItemTypeAlias:
		if alias, ok := fr.builder.Items.TypeAlias(id); ok {
			fr.walkTypeAlias(id, alias, item.Span)
		}
	case ast.ItemStmt:
		if wrap, ok := fr.builder.Items.Stmt(id); ok {
			if let, ok := fr.builder.Stmts.Let(wrap.Stmt); ok {
				// Bindings were installed in the declaration pass.
				fr.walkTypeExpr(let.Type)
				fr.walkExpr(let.Value)
				return
			}
			fr.walkStmt(wrap.Stmt)
		}
	}
}

func (fr *fileResolver) walkFn(id ast.ItemID, fn *ast.ItemFnData) {
	owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id}
	scope := fr.resolver.Enter(ScopeFunction, owner, fn.NameSpan)
	fr.declareTypeParams(id, fn.TypeParams)
	fr.declareFnParams(id, fn.Params)
	fr.walkTypeExpr(fn.Ret)
	fr.walkStmt(fn.Body)
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) walkStruct(id ast.ItemID, st *ast.ItemStructData, span source.Span) {
	owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id}
	scope := fr.resolver.Enter(ScopeType, owner, span)
	fr.declareTypeParams(id, st.TypeParams)
	for _, field := range st.Fields {
		fr.walkTypeExpr(field.Type)
	}
	for i, methodID := range st.Methods {
		method, ok := fr.builder.Items.Fn(methodID)
		if !ok {
			continue
		}
		symID, declared := fr.resolver.Declare(Symbol{
			Name: method.Name,
			Kind: SymbolFunction,
			Span: method.NameSpan,
			Decl: SymbolDecl{
				SourceFile: fr.sourceFile, ASTFile: fr.fileID,
				Item: methodID, Index: uint32(i),
			},
		})
		if declared {
			fr.result.ItemSyms[methodID] = symID
			fr.result.MethodSyms[id] = append(fr.result.MethodSyms[id], symID)
		}
		fr.walkFn(methodID, method)
	}
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) walkEnum(id ast.ItemID, en *ast.ItemEnumData, span source.Span) {
	owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id}
	scope := fr.resolver.Enter(ScopeType, owner, span)
	fr.declareTypeParams(id, en.TypeParams)
	for _, variant := range en.Variants {
		for _, payload := range variant.Payloads {
			fr.walkTypeExpr(payload)
		}
	}
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) walkTypeAlias(id ast.ItemID, alias *ast.ItemTypeAliasData, span source.Span) {
	owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id}
	scope := fr.resolver.Enter(ScopeType, owner, span)
	fr.declareTypeParams(id, alias.TypeParams)
	fr.walkTypeExpr(alias.Target)
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) declareTypeParams(id ast.ItemID, params []ast.TypeParam) {
	for i, tp := range params {
		symID, ok := fr.resolver.Declare(Symbol{
			Name: tp.Name,
			Kind: SymbolTypeParam,
			Span: tp.Span,
			Decl: SymbolDecl{
				SourceFile: fr.sourceFile, ASTFile: fr.fileID,
				Item: id, Index: uint32(i),
			},
		})
		if ok {
			fr.result.TypeParamSyms[id] = append(fr.result.TypeParamSyms[id], symID)
		}
	}
}

func (fr *fileResolver) declareFnParams(id ast.ItemID, params []ast.FnParam) {
	for i, param := range params {
		fr.walkTypeExpr(param.Type)
		fr.walkExpr(param.Default)
		symID, ok := fr.resolver.Declare(Symbol{
			Name: param.Name,
			Kind: SymbolParam,
			Span: param.NameSpan,
			Decl: SymbolDecl{
				SourceFile: fr.sourceFile, ASTFile: fr.fileID,
				Item: id, Index: uint32(i),
			},
		})
		if ok {
			fr.result.ParamSyms[id] = append(fr.result.ParamSyms[id], symID)
		}
	}
}

func (fr *fileResolver) walkStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	stmt := fr.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := fr.builder.Stmts.Block(id)
		owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Stmt: id}
		scope := fr.resolver.Enter(ScopeBlock, owner, stmt.Span)
		for _, child := range block.Stmts {
			fr.walkStmt(child)
		}
		fr.resolver.Leave(scope)

	case ast.StmtLet:
		let, _ := fr.builder.Stmts.Let(id)
		fr.walkTypeExpr(let.Type)
		fr.walkExpr(let.Value)
		fr.declarePattern(let.Pattern, id)

	case ast.StmtAssign:
		assign, _ := fr.builder.Stmts.Assign(id)
		fr.walkExpr(assign.Target)
		fr.walkExpr(assign.Value)

	case ast.StmtExpr:
		expr, _ := fr.builder.Stmts.Expr(id)
		fr.walkExpr(expr.Value)

	case ast.StmtReturn:
		ret, _ := fr.builder.Stmts.Return(id)
		fr.walkExpr(ret.Value)

	case ast.StmtIf:
		ifStmt, _ := fr.builder.Stmts.If(id)
		fr.walkExpr(ifStmt.Cond)
		fr.walkStmt(ifStmt.Then)
		fr.walkStmt(ifStmt.Else)

	case ast.StmtWhile:
		while, _ := fr.builder.Stmts.While(id)
		fr.walkExpr(while.Cond)
		fr.walkStmt(while.Body)

	case ast.StmtFor:
		forStmt, _ := fr.builder.Stmts.For(id)
		fr.walkExpr(forStmt.Iter)
		owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Stmt: id}
		scope := fr.resolver.Enter(ScopeBlock, owner, stmt.Span)
		fr.declarePattern(forStmt.Pattern, id)
		fr.walkStmt(forStmt.Body)
		fr.resolver.Leave(scope)

	case ast.StmtMatch:
		match, _ := fr.builder.Stmts.Match(id)
		fr.walkExpr(match.Subject)
		for _, arm := range match.Arms {
			owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Stmt: id}
			scope := fr.resolver.Enter(ScopeBlock, owner, arm.Span)
			fr.declarePattern(arm.Pattern, id)
			fr.walkExpr(arm.Guard)
			fr.walkStmt(arm.Body)
			fr.resolver.Leave(scope)
		}
	}
}

func (fr *fileResolver) walkExpr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	expr := fr.builder.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := fr.builder.Exprs.Ident(id)
		symID, ok := fr.resolver.Lookup(ident.Name)
		if !ok {
			fr.reportf(diag.NameUndefined, expr.Span,
				"undefined symbol '%s'", fr.builder.Strings.MustLookup(ident.Name))
			return
		}
		fr.result.ExprSyms[id] = symID

	case ast.ExprBinary:
		bin, _ := fr.builder.Exprs.Binary(id)
		fr.walkExpr(bin.Left)
		fr.walkExpr(bin.Right)

	case ast.ExprUnary:
		un, _ := fr.builder.Exprs.Unary(id)
		fr.walkExpr(un.Operand)

	case ast.ExprCall:
		call, _ := fr.builder.Exprs.Call(id)
		fr.walkExpr(call.Target)
		for _, arg := range call.Args {
			fr.walkExpr(arg)
		}

	case ast.ExprMember:
		fr.walkMember(id, expr.Span)

	case ast.ExprIndex:
		idx, _ := fr.builder.Exprs.Index(id)
		fr.walkExpr(idx.Target)
		fr.walkExpr(idx.Index)

	case ast.ExprStructInit:
		init, _ := fr.builder.Exprs.StructInit(id)
		fr.walkTypeExpr(init.Type)
		for _, field := range init.Fields {
			fr.walkExpr(field.Value)
		}

	case ast.ExprList:
		list, _ := fr.builder.Exprs.List(id)
		for _, elem := range list.Elems {
			fr.walkExpr(elem)
		}

	case ast.ExprDict:
		dict, _ := fr.builder.Exprs.Dict(id)
		for _, entry := range dict.Entries {
			fr.walkExpr(entry.Key)
			fr.walkExpr(entry.Value)
		}

	case ast.ExprComprehension:
		comp, _ := fr.builder.Exprs.Comprehension(id)
		fr.walkExpr(comp.Iter)
		owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Expr: id}
		scope := fr.resolver.Enter(ScopeBlock, owner, expr.Span)
		fr.declarePattern(comp.Pattern, ast.NoStmtID)
		fr.walkExpr(comp.Cond)
		fr.walkExpr(comp.Elem)
		fr.resolver.Leave(scope)

	case ast.ExprRange:
		rng, _ := fr.builder.Exprs.Range(id)
		fr.walkExpr(rng.Start)
		fr.walkExpr(rng.End)

	case ast.ExprIf:
		ifExpr, _ := fr.builder.Exprs.If(id)
		fr.walkExpr(ifExpr.Cond)
		fr.walkExpr(ifExpr.Then)
		fr.walkExpr(ifExpr.Else)

	case ast.ExprMatch:
		match, _ := fr.builder.Exprs.Match(id)
		fr.walkExpr(match.Subject)
		for _, arm := range match.Arms {
			owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Expr: id}
			scope := fr.resolver.Enter(ScopeBlock, owner, arm.Span)
			fr.declarePattern(arm.Pattern, ast.NoStmtID)
			fr.walkExpr(arm.Guard)
			fr.walkExpr(arm.Value)
			fr.resolver.Leave(scope)
		}

	case ast.ExprAwait:
		await, _ := fr.builder.Exprs.Await(id)
		fr.walkExpr(await.Value)

	case ast.ExprSpawn:
		spawn, _ := fr.builder.Exprs.Spawn(id)
		fr.walkExpr(spawn.Value)

	case ast.ExprLambda:
		lam, _ := fr.builder.Exprs.Lambda(id)
		owner := ScopeOwner{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Expr: id}
		scope := fr.resolver.Enter(ScopeFunction, owner, expr.Span)
		for i, param := range lam.Params {
			symID, ok := fr.resolver.Declare(Symbol{
				Name: param.Name,
				Kind: SymbolParam,
				Span: param.NameSpan,
				Decl: SymbolDecl{
					SourceFile: fr.sourceFile, ASTFile: fr.fileID,
					Expr: id, Index: uint32(i),
				},
			})
			if ok {
				fr.result.LambdaParamSyms[id] = append(fr.result.LambdaParamSyms[id], symID)
			}
		}
		fr.walkExpr(lam.Body)
		fr.resolver.Leave(scope)

	case ast.ExprFString:
		fstr, _ := fr.builder.Exprs.FString(id)
		for _, part := range fstr.Parts {
			fr.walkExpr(part.Expr)
		}
	}
}

// walkMember resolves `module.member` accesses eagerly; field, method, and
// variant accesses stay unresolved until types are known.
func (fr *fileResolver) walkMember(id ast.ExprID, span source.Span) {
	member, _ := fr.builder.Exprs.Member(id)
	fr.walkExpr(member.Target)

	target := fr.builder.Exprs.Get(member.Target)
	if target == nil || target.Kind != ast.ExprIdent {
		return
	}
	targetSym := fr.result.Table.Symbols.Get(fr.result.ExprSyms[member.Target])
	if targetSym == nil || targetSym.Kind != SymbolImport {
		return
	}
	if fr.modules == nil {
		return
	}
	exported, ok := fr.modules.Export(targetSym.Module, member.Field)
	if !ok {
		fr.reportf(diag.NameUnknownMember, member.FieldSpan,
			"module '%s' has no member '%s'",
			targetSym.Module, fr.builder.Strings.MustLookup(member.Field))
		return
	}
	fr.result.ExprSyms[id] = exported
}

// walkTypeExpr binds a type annotation to its declaration.
func (fr *fileResolver) walkTypeExpr(id ast.TypeID) {
	if !id.IsValid() {
		return
	}
	typeExpr := fr.builder.Types.Get(id)
	if typeExpr == nil {
		return
	}
	switch typeExpr.Kind {
	case ast.TypeExprName:
		name, _ := fr.builder.Types.Name(id)
		fr.resolveTypeName(id, name)
		for _, arg := range name.Args {
			fr.walkTypeExpr(arg)
		}
	case ast.TypeExprFn:
		fn, _ := fr.builder.Types.Fn(id)
		for _, param := range fn.Params {
			fr.walkTypeExpr(param)
		}
		fr.walkTypeExpr(fn.Ret)
	}
}

func (fr *fileResolver) resolveTypeName(id ast.TypeID, name *ast.TypeNameData) {
	if len(name.Path) == 0 {
		return
	}
	head := name.Path[0]
	headText := fr.builder.Strings.MustLookup(head)
	if headText == "None" {
		// Unit type annotation; no declaration to bind.
		return
	}

	mask := KindMaskTypes | SymbolImport.Mask()
	symID, ok := fr.resolver.LookupMasked(head, mask)
	if !ok {
		fr.reportf(diag.NameUndefined, name.PathSpan, "undefined type '%s'", headText)
		return
	}
	sym := fr.result.Table.Symbols.Get(symID)

	if len(name.Path) == 1 {
		if sym.Kind == SymbolImport {
			fr.reportf(diag.NameNotAType, name.PathSpan, "'%s' is a module, not a type", headText)
			return
		}
		fr.result.TypeSyms[id] = symID
		return
	}

	if sym.Kind != SymbolImport {
		fr.reportf(diag.NameUnknownModule, name.PathSpan,
			"'%s' is not a module; qualified types require an imported module", headText)
		return
	}
	if fr.modules == nil {
		return
	}
	memberName := name.Path[len(name.Path)-1]
	exported, found := fr.modules.Export(sym.Module, memberName)
	if !found {
		fr.reportf(diag.NameUnknownMember, name.PathSpan,
			"module '%s' has no member '%s'",
			sym.Module, fr.builder.Strings.MustLookup(memberName))
		return
	}
	if exp := fr.result.Table.Symbols.Get(exported); exp != nil && !exp.Kind.IsType() {
		fr.reportf(diag.NameNotAType, name.PathSpan,
			"'%s' is not a type", fr.builder.Strings.MustLookup(memberName))
		return
	}
	fr.result.TypeSyms[id] = exported
}

// declarePattern installs every binding a pattern introduces into the
// current scope. Wildcards and literals bind nothing.
func (fr *fileResolver) declarePattern(id ast.PatID, stmt ast.StmtID) {
	if !id.IsValid() {
		return
	}
	pat := fr.builder.Pats.Get(id)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatBinding:
		bind, _ := fr.builder.Pats.Binding(id)
		symID, ok := fr.resolver.Declare(Symbol{
			Name: bind.Name,
			Kind: SymbolLet,
			Span: pat.Span,
			Decl: SymbolDecl{
				SourceFile: fr.sourceFile, ASTFile: fr.fileID,
				Stmt: stmt, Pat: id,
			},
		})
		if ok {
			fr.result.BindSyms[id] = symID
		}

	case ast.PatEnumVariant:
		variant, _ := fr.builder.Pats.EnumVariant(id)
		if len(variant.Path) > 1 {
			fr.resolvePatternHead(id, variant.Path[0], variant.PathSpan)
		}
		for _, arg := range variant.Args {
			fr.declarePattern(arg, stmt)
		}

	case ast.PatStruct:
		st, _ := fr.builder.Pats.Struct(id)
		fr.resolvePatternHead(id, st.Name, pat.Span)
		shorthand := make([]SymbolID, len(st.Fields))
		for i, field := range st.Fields {
			if field.Pattern.IsValid() {
				fr.declarePattern(field.Pattern, stmt)
				continue
			}
			symID, ok := fr.resolver.Declare(Symbol{
				Name: field.Name,
				Kind: SymbolLet,
				Span: field.NameSpan,
				Decl: SymbolDecl{
					SourceFile: fr.sourceFile, ASTFile: fr.fileID,
					Stmt: stmt, Pat: id, Index: uint32(i),
				},
			})
			if ok {
				shorthand[i] = symID
			}
		}
		fr.result.FieldSyms[id] = shorthand

	case ast.PatList:
		list, _ := fr.builder.Pats.List(id)
		for _, elem := range list.Elems {
			fr.declarePattern(elem, stmt)
		}
		if list.HasRest && list.RestName != source.NoStringID {
			symID, ok := fr.resolver.Declare(Symbol{
				Name: list.RestName,
				Kind: SymbolLet,
				Span: list.RestSpan,
				Decl: SymbolDecl{
					SourceFile: fr.sourceFile, ASTFile: fr.fileID,
					Stmt: stmt, Pat: id,
				},
			})
			if ok {
				fr.result.RestSyms[id] = symID
			}
		}
	}
}

// resolvePatternHead binds the named head of a variant or struct pattern.
// Bare single-segment variant heads are resolved later against the
// scrutinee's type.
func (fr *fileResolver) resolvePatternHead(id ast.PatID, head source.StringID, span source.Span) {
	symID, ok := fr.resolver.LookupMasked(head, KindMaskTypes)
	if !ok {
		fr.reportf(diag.NameUndefined, span,
			"undefined type '%s'", fr.builder.Strings.MustLookup(head))
		return
	}
	fr.result.PatSyms[id] = symID
}
