package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

func (tc *typeChecker) typeCall(id ast.ExprID, call *ast.ExprCallData) types.TypeID {
	span := tc.builder.Exprs.Get(id).Span

	// Direct calls of a named function keep the symbol for lowering and
	// honor default parameter values.
	if _, ok := tc.builder.Exprs.Ident(call.Target); ok {
		if symID, bound := tc.syms.ExprSyms[call.Target]; bound {
			sym := tc.syms.Table.Symbols.Get(symID)
			if sym != nil && sym.Kind == symbols.SymbolFunction {
				return tc.typeDirectCall(id, call, symID, sym, span)
			}
			if sym != nil && (sym.Kind == symbols.SymbolStruct || sym.Kind == symbols.SymbolEnum) {
				tc.report(diag.TypeNotCallable, span,
					"'%s' is a type; construct it with named fields",
					tc.syms.Table.Strings.MustLookup(sym.Name))
				tc.typeArgs(call.Args)
				return tc.freshVar()
			}
		}
	}

	targetT := tc.typeExpr(call.Target)
	if symID, ok := tc.memberSyms[call.Target]; ok {
		tc.result.CallTargets[id] = symID
	}
	return tc.typeFnValueCall(call, targetT, span)
}

// typeDirectCall checks a call whose target resolved to a function symbol.
func (tc *typeChecker) typeDirectCall(id ast.ExprID, call *ast.ExprCallData, symID symbols.SymbolID, sym *symbols.Symbol, span source.Span) types.TypeID {
	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		return tc.typeBuiltinCall(id, call, sym.Name, span)
	}
	sig := tc.ensureFnSig(symID)
	if sig == nil {
		tc.typeArgs(call.Args)
		return tc.freshVar()
	}
	tc.result.CallTargets[id] = symID

	name := tc.syms.Table.Strings.MustLookup(sym.Name)
	if len(call.Args) < sig.Required || len(call.Args) > len(sig.Params) {
		tc.reportArgCount(span, name, sig.Required, len(sig.Params), len(call.Args))
		tc.typeArgs(call.Args)
		return tc.freshVar()
	}

	mapping := map[types.TypeID]types.TypeID(nil)
	if len(sig.TypeParams) > 0 {
		fresh := make([]types.TypeID, len(sig.TypeParams))
		for i := range fresh {
			fresh[i] = tc.freshVar()
		}
		tc.result.Instances[id] = FnInstance{Sym: symID, TypeArgs: fresh}
		mapping = paramMapping(sig.TypeParams, fresh)
	}
	for i, arg := range call.Args {
		argT := tc.typeExpr(arg)
		want := tc.instantiate(sig.Params[i], mapping)
		tc.unify(want, argT, tc.builder.Exprs.Get(arg).Span)
	}
	return tc.instantiate(sig.Ret, mapping)
}

// typeFnValueCall checks a call through a function-typed value: lambdas,
// parameters, methods, and variant constructors.
func (tc *typeChecker) typeFnValueCall(call *ast.ExprCallData, targetT types.TypeID, span source.Span) types.TypeID {
	walked := tc.subst.Walk(tc.types, targetT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		tc.typeArgs(call.Args)
		return tc.freshVar()
	}
	switch t.Kind {
	case types.KindFn:
		info, _ := tc.types.FnInfo(walked)
		if len(call.Args) != len(info.Params) {
			tc.report(diag.TypeWrongArgCount, span,
				"expected %d argument(s), found %d", len(info.Params), len(call.Args))
			tc.typeArgs(call.Args)
			return info.Ret
		}
		for i, arg := range call.Args {
			argT := tc.typeExpr(arg)
			tc.unify(info.Params[i], argT, tc.builder.Exprs.Get(arg).Span)
		}
		return info.Ret
	case types.KindVar:
		// Calling an unconstrained value pins it to a function type.
		params := make([]types.TypeID, len(call.Args))
		for i, arg := range call.Args {
			params[i] = tc.typeExpr(arg)
		}
		ret := tc.freshVar()
		tc.subst.Bind(walked, tc.types.Fn(params, ret))
		return ret
	default:
		tc.report(diag.TypeNotCallable, span,
			"value of type %s is not callable", tc.format(targetT))
		tc.typeArgs(call.Args)
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeBuiltinCall(id ast.ExprID, call *ast.ExprCallData, name source.StringID, span source.Span) types.TypeID {
	b := tc.types.Builtins()
	switch name {
	case tc.names.printName, tc.names.printlnName:
		if len(call.Args) != 1 {
			tc.reportArgCount(span, tc.syms.Table.Strings.MustLookup(name), 1, 1, len(call.Args))
		}
		tc.typeArgs(call.Args) // any single value; stringified at runtime
		return b.Unit

	case tc.names.lenName:
		if len(call.Args) != 1 {
			tc.reportArgCount(span, "len", 1, 1, len(call.Args))
			tc.typeArgs(call.Args)
			return b.Int
		}
		argT := tc.typeExpr(call.Args[0])
		walked := tc.subst.Walk(tc.types, argT)
		t, ok := tc.types.Lookup(walked)
		if ok {
			switch t.Kind {
			case types.KindList, types.KindDict, types.KindStr:
			case types.KindVar:
				tc.subst.Bind(walked, tc.types.List(tc.freshVar()))
			default:
				tc.report(diag.TypeMismatch, tc.builder.Exprs.Get(call.Args[0]).Span,
					"len expects a list, dict, or str, found %s", tc.format(argT))
			}
		}
		return b.Int

	case tc.names.someName:
		if len(call.Args) != 1 {
			tc.reportArgCount(span, "Some", 1, 1, len(call.Args))
			tc.typeArgs(call.Args)
			return tc.types.Option(tc.freshVar())
		}
		tc.result.VariantRefs[id] = VariantRef{Tag: OptionTagSome}
		return tc.types.Option(tc.typeExpr(call.Args[0]))

	default:
		tc.typeArgs(call.Args)
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeArgs(args []ast.ExprID) {
	for _, arg := range args {
		tc.typeExpr(arg)
	}
}

func (tc *typeChecker) reportArgCount(span source.Span, name string, required, max, got int) {
	if required == max {
		tc.report(diag.TypeWrongArgCount, span,
			"'%s' expects %d argument(s), found %d", name, required, got)
		return
	}
	tc.report(diag.TypeWrongArgCount, span,
		"'%s' expects %d to %d arguments, found %d", name, required, max, got)
}
