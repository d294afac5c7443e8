package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// typeExpr infers the type of one expression and records it.
func (tc *typeChecker) typeExpr(id ast.ExprID) types.TypeID {
	if !id.IsValid() {
		return tc.types.Builtins().Unit
	}
	t := tc.typeExprUncached(id)
	tc.result.ExprTypes[id] = t
	return t
}

func (tc *typeChecker) typeExprUncached(id ast.ExprID) types.TypeID {
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return tc.freshVar()
	}
	b := tc.types.Builtins()
	switch expr.Kind {
	case ast.ExprIdent:
		return tc.typeIdent(id)

	case ast.ExprLit:
		lit, _ := tc.builder.Exprs.Literal(id)
		return tc.literalType(lit.Kind)

	case ast.ExprBinary:
		bin, _ := tc.builder.Exprs.Binary(id)
		return tc.typeBinary(id, bin)

	case ast.ExprUnary:
		un, _ := tc.builder.Exprs.Unary(id)
		return tc.typeUnary(id, un)

	case ast.ExprCall:
		call, _ := tc.builder.Exprs.Call(id)
		return tc.typeCall(id, call)

	case ast.ExprMember:
		member, _ := tc.builder.Exprs.Member(id)
		return tc.typeMember(id, member)

	case ast.ExprIndex:
		idx, _ := tc.builder.Exprs.Index(id)
		return tc.typeIndex(id, idx)

	case ast.ExprStructInit:
		init, _ := tc.builder.Exprs.StructInit(id)
		return tc.typeStructInit(id, init)

	case ast.ExprList:
		list, _ := tc.builder.Exprs.List(id)
		elem := tc.freshVar()
		for _, e := range list.Elems {
			et := tc.typeExpr(e)
			tc.unify(elem, et, tc.builder.Exprs.Get(e).Span)
		}
		return tc.types.List(elem)

	case ast.ExprDict:
		dict, _ := tc.builder.Exprs.Dict(id)
		key, val := tc.freshVar(), tc.freshVar()
		for _, entry := range dict.Entries {
			kt := tc.typeExpr(entry.Key)
			vt := tc.typeExpr(entry.Value)
			tc.unify(key, kt, tc.builder.Exprs.Get(entry.Key).Span)
			tc.unify(val, vt, tc.builder.Exprs.Get(entry.Value).Span)
		}
		return tc.types.Dict(key, val)

	case ast.ExprComprehension:
		comp, _ := tc.builder.Exprs.Comprehension(id)
		iterT := tc.typeExpr(comp.Iter)
		elemT := tc.iterableElem(iterT, tc.builder.Exprs.Get(comp.Iter).Span)
		tc.checkPattern(comp.Pattern, elemT)
		if comp.Cond.IsValid() {
			condT := tc.typeExpr(comp.Cond)
			tc.expectBool(condT, tc.builder.Exprs.Get(comp.Cond).Span)
		}
		return tc.types.List(tc.typeExpr(comp.Elem))

	case ast.ExprRange:
		rng, _ := tc.builder.Exprs.Range(id)
		startT := tc.typeExpr(rng.Start)
		endT := tc.typeExpr(rng.End)
		tc.unify(b.Int, startT, tc.builder.Exprs.Get(rng.Start).Span)
		tc.unify(b.Int, endT, tc.builder.Exprs.Get(rng.End).Span)
		return b.Range

	case ast.ExprIf:
		ifExpr, _ := tc.builder.Exprs.If(id)
		condT := tc.typeExpr(ifExpr.Cond)
		tc.expectBool(condT, tc.builder.Exprs.Get(ifExpr.Cond).Span)
		thenT := tc.typeExpr(ifExpr.Then)
		elseT := tc.typeExpr(ifExpr.Else)
		tc.unify(thenT, elseT, tc.builder.Exprs.Get(ifExpr.Else).Span)
		return thenT

	case ast.ExprMatch:
		return tc.typeMatchExpr(id)

	case ast.ExprAwait:
		await, _ := tc.builder.Exprs.Await(id)
		valT := tc.typeExpr(await.Value)
		walked := tc.subst.Walk(tc.types, valT)
		t, ok := tc.types.Lookup(walked)
		switch {
		case ok && t.Kind == types.KindTask:
			return t.Elem
		case ok && t.Kind == types.KindVar:
			elem := tc.freshVar()
			tc.subst.Bind(walked, tc.types.Task(elem))
			return elem
		default:
			tc.report(diag.TypeBadAwait, expr.Span,
				"await expects a Task, found %s", tc.format(valT))
			return tc.freshVar()
		}

	case ast.ExprSpawn:
		spawn, _ := tc.builder.Exprs.Spawn(id)
		return tc.types.Task(tc.typeExpr(spawn.Value))

	case ast.ExprLambda:
		lam, _ := tc.builder.Exprs.Lambda(id)
		paramSyms := tc.syms.LambdaParamSyms[id]
		params := make([]types.TypeID, len(lam.Params))
		for i, param := range lam.Params {
			if param.Type.IsValid() {
				params[i] = tc.resolveTypeExpr(param.Type)
			} else {
				params[i] = tc.freshVar()
			}
			if i < len(paramSyms) {
				tc.result.DeclTypes[paramSyms[i]] = params[i]
			}
		}
		return tc.types.Fn(params, tc.typeExpr(lam.Body))

	case ast.ExprFString:
		fstr, _ := tc.builder.Exprs.FString(id)
		for _, part := range fstr.Parts {
			if part.Expr.IsValid() {
				tc.typeExpr(part.Expr) // any type; stringified at runtime
			}
		}
		return b.Str

	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) literalType(kind ast.ExprLitKind) types.TypeID {
	b := tc.types.Builtins()
	switch kind {
	case ast.LitInt:
		return b.Int
	case ast.LitFloat:
		return b.Float
	case ast.LitString:
		return b.Str
	case ast.LitBool:
		return b.Bool
	case ast.LitNone:
		return tc.types.Option(tc.freshVar())
	default:
		return b.Invalid
	}
}

func (tc *typeChecker) typeIdent(id ast.ExprID) types.TypeID {
	expr := tc.builder.Exprs.Get(id)
	symID, ok := tc.syms.ExprSyms[id]
	if !ok {
		// The resolver already reported the undefined name.
		return tc.freshVar()
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil {
		return tc.freshVar()
	}
	switch sym.Kind {
	case symbols.SymbolLet, symbols.SymbolParam:
		t, ok := tc.result.DeclTypes[symID]
		if !ok {
			// Forward reference to a top-level let checked later.
			t = tc.freshVar()
			tc.result.DeclTypes[symID] = t
		}
		return t
	case symbols.SymbolFunction:
		return tc.fnValueType(id, symID, sym)
	case symbols.SymbolImport:
		tc.report(diag.TypeMismatch, expr.Span, "'%s' is a module, not a value",
			tc.syms.Table.Strings.MustLookup(sym.Name))
		return tc.freshVar()
	default:
		tc.report(diag.TypeMismatch, expr.Span, "'%s' is a type, not a value",
			tc.syms.Table.Strings.MustLookup(sym.Name))
		return tc.freshVar()
	}
}

// fnValueType yields the type of a function name in value position. A
// generic function is instantiated with fresh variables per mention.
func (tc *typeChecker) fnValueType(at ast.ExprID, symID symbols.SymbolID, sym *symbols.Symbol) types.TypeID {
	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		return tc.builtinFnType(sym.Name)
	}
	sig := tc.ensureFnSig(symID)
	if sig == nil {
		return tc.freshVar()
	}
	if len(sig.TypeParams) == 0 {
		return tc.types.Fn(sig.Params, sig.Ret)
	}
	fresh := make([]types.TypeID, len(sig.TypeParams))
	for i := range fresh {
		fresh[i] = tc.freshVar()
	}
	tc.result.Instances[at] = FnInstance{Sym: symID, TypeArgs: fresh}
	mapping := paramMapping(sig.TypeParams, fresh)
	params := make([]types.TypeID, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = tc.instantiate(p, mapping)
	}
	return tc.types.Fn(params, tc.instantiate(sig.Ret, mapping))
}

func (tc *typeChecker) builtinFnType(name source.StringID) types.TypeID {
	b := tc.types.Builtins()
	switch name {
	case tc.names.printName, tc.names.printlnName:
		return tc.types.Fn([]types.TypeID{tc.freshVar()}, b.Unit)
	case tc.names.lenName:
		return tc.types.Fn([]types.TypeID{tc.freshVar()}, b.Int)
	case tc.names.someName:
		v := tc.freshVar()
		return tc.types.Fn([]types.TypeID{v}, tc.types.Option(v))
	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeIndex(id ast.ExprID, idx *ast.ExprIndexData) types.TypeID {
	b := tc.types.Builtins()
	targetT := tc.typeExpr(idx.Target)
	indexT := tc.typeExpr(idx.Index)
	indexSpan := tc.builder.Exprs.Get(idx.Index).Span
	walked := tc.subst.Walk(tc.types, targetT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		return tc.freshVar()
	}
	switch t.Kind {
	case types.KindList:
		tc.unify(b.Int, indexT, indexSpan)
		return t.Elem
	case types.KindDict:
		tc.unify(t.Elem, indexT, indexSpan)
		return t.Elem2
	case types.KindStr:
		tc.unify(b.Int, indexT, indexSpan)
		return b.Str
	case types.KindVar:
		// Unconstrained receiver; commit to a list, the common case.
		elem := tc.freshVar()
		tc.subst.Bind(walked, tc.types.List(elem))
		tc.unify(b.Int, indexT, indexSpan)
		return elem
	default:
		tc.report(diag.TypeNotIndexable, tc.builder.Exprs.Get(id).Span,
			"type %s cannot be indexed", tc.format(targetT))
		return tc.freshVar()
	}
}

// iterableElem yields the element type produced by iterating a value.
func (tc *typeChecker) iterableElem(iterT types.TypeID, span source.Span) types.TypeID {
	b := tc.types.Builtins()
	walked := tc.subst.Walk(tc.types, iterT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		return tc.freshVar()
	}
	switch t.Kind {
	case types.KindList:
		return t.Elem
	case types.KindRange:
		return b.Int
	case types.KindDict:
		return t.Elem // iteration yields keys
	case types.KindStr:
		return b.Str
	case types.KindVar:
		elem := tc.freshVar()
		tc.subst.Bind(walked, tc.types.List(elem))
		return elem
	default:
		tc.report(diag.TypeNotIterable, span,
			"type %s is not iterable", tc.format(iterT))
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeMatchExpr(id ast.ExprID) types.TypeID {
	match, _ := tc.builder.Exprs.Match(id)
	subjectT := tc.typeExpr(match.Subject)
	result := tc.freshVar()
	views := make([]armView, len(match.Arms))
	for i, arm := range match.Arms {
		tc.checkPattern(arm.Pattern, subjectT)
		if arm.Guard.IsValid() {
			guardT := tc.typeExpr(arm.Guard)
			tc.expectBool(guardT, tc.builder.Exprs.Get(arm.Guard).Span)
		}
		valT := tc.typeExpr(arm.Value)
		tc.unify(result, valT, tc.builder.Exprs.Get(arm.Value).Span)
		views[i] = armView{Pattern: arm.Pattern, Guarded: arm.Guard.IsValid()}
	}
	tc.checkExhaustive(subjectT, views, tc.builder.Exprs.Get(id).Span)
	return result
}
