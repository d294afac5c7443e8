package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

func (tc *typeChecker) typeMember(id ast.ExprID, member *ast.ExprMemberData) types.TypeID {
	// Module members were bound by the resolver.
	if symID, ok := tc.syms.ExprSyms[id]; ok {
		return tc.typeModuleMember(id, symID)
	}

	// Enum.Variant names a constructor, not a field access.
	if targetSym, ok := tc.identSymbol(member.Target); ok {
		if targetSym.kind == symbols.SymbolEnum {
			return tc.typeVariantAccess(id, targetSym.id, targetSym.sym, member)
		}
		if targetSym.kind == symbols.SymbolStruct || targetSym.kind == symbols.SymbolTypeAlias {
			tc.report(diag.TypeUnknownField, member.FieldSpan,
				"'%s' has no static member '%s'",
				tc.syms.Table.Strings.MustLookup(targetSym.sym.Name),
				tc.syms.Table.Strings.MustLookup(member.Field))
			return tc.freshVar()
		}
	}

	targetT := tc.typeExpr(member.Target)
	walked := tc.subst.Walk(tc.types, targetT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		return tc.freshVar()
	}
	switch t.Kind {
	case types.KindStruct:
		return tc.typeFieldAccess(id, walked, t, member)
	case types.KindVar:
		tc.report(diag.TypeAmbiguous, tc.builder.Exprs.Get(member.Target).Span,
			"cannot infer the receiver type; add a type annotation")
		return tc.freshVar()
	default:
		tc.report(diag.TypeUnknownField, member.FieldSpan,
			"type %s has no member '%s'",
			tc.format(targetT), tc.syms.Table.Strings.MustLookup(member.Field))
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeModuleMember(id ast.ExprID, symID symbols.SymbolID) types.TypeID {
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil {
		return tc.freshVar()
	}
	span := tc.builder.Exprs.Get(id).Span
	switch sym.Kind {
	case symbols.SymbolFunction:
		tc.memberSyms[id] = symID
		return tc.fnValueType(id, symID, sym)
	case symbols.SymbolLet:
		t, ok := tc.result.DeclTypes[symID]
		if !ok {
			t = tc.freshVar()
			tc.result.DeclTypes[symID] = t
		}
		return t
	default:
		tc.report(diag.TypeMismatch, span, "'%s' is a type, not a value",
			tc.syms.Table.Strings.MustLookup(sym.Name))
		return tc.freshVar()
	}
}

type identSym struct {
	id   symbols.SymbolID
	sym  *symbols.Symbol
	kind symbols.SymbolKind
}

func (tc *typeChecker) identSymbol(expr ast.ExprID) (identSym, bool) {
	if _, ok := tc.builder.Exprs.Ident(expr); !ok {
		return identSym{}, false
	}
	symID, ok := tc.syms.ExprSyms[expr]
	if !ok {
		return identSym{}, false
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil {
		return identSym{}, false
	}
	return identSym{id: symID, sym: sym, kind: sym.Kind}, true
}

// typeVariantAccess handles `Enum.Variant`: a payload-free variant is a
// value of the enum, a payloaded one is its constructor function.
func (tc *typeChecker) typeVariantAccess(id ast.ExprID, enumSym symbols.SymbolID, sym *symbols.Symbol, member *ast.ExprMemberData) types.TypeID {
	enumName := tc.syms.Table.Strings.MustLookup(sym.Name)

	if sym.Flags&symbols.SymbolFlagBuiltin != 0 && sym.Name == tc.names.optionName {
		switch member.Field {
		case tc.names.someName:
			tc.result.VariantRefs[id] = VariantRef{Tag: OptionTagSome}
			v := tc.freshVar()
			return tc.types.Fn([]types.TypeID{v}, tc.types.Option(v))
		case tc.names.noneName:
			tc.result.VariantRefs[id] = VariantRef{Tag: OptionTagNone}
			return tc.types.Option(tc.freshVar())
		default:
			tc.report(diag.NameUnknownMember, member.FieldSpan,
				"enum 'Option' has no variant '%s'",
				tc.syms.Table.Strings.MustLookup(member.Field))
			return tc.freshVar()
		}
	}

	info := tc.ensureEnum(enumSym)
	if info == nil {
		return tc.freshVar()
	}
	tag := -1
	for i, variant := range info.Variants {
		if variant.Name == member.Field {
			tag = i
			break
		}
	}
	if tag < 0 {
		tc.report(diag.NameUnknownMember, member.FieldSpan,
			"enum '%s' has no variant '%s'",
			enumName, tc.syms.Table.Strings.MustLookup(member.Field))
		return tc.freshVar()
	}
	tc.result.VariantRefs[id] = VariantRef{Enum: enumSym, Tag: uint32(tag)}

	fresh := make([]types.TypeID, len(info.TypeParams))
	for i := range fresh {
		fresh[i] = tc.freshVar()
	}
	mapping := paramMapping(info.TypeParams, fresh)
	enumT := tc.types.Enum(uint32(enumSym), fresh)
	payloads := info.Variants[tag].Payloads
	if len(payloads) == 0 {
		return enumT
	}
	params := make([]types.TypeID, len(payloads))
	for i, p := range payloads {
		params[i] = tc.instantiate(p, mapping)
	}
	return tc.types.Fn(params, enumT)
}

// typeFieldAccess resolves a field or method on a struct instance.
func (tc *typeChecker) typeFieldAccess(id ast.ExprID, instance types.TypeID, t types.Type, member *ast.ExprMemberData) types.TypeID {
	structSym := symbols.SymbolID(t.Decl)
	info := tc.ensureStruct(structSym)
	if info == nil {
		tc.report(diag.TypeUnknownField, member.FieldSpan,
			"type %s has no member '%s'",
			tc.format(instance), tc.syms.Table.Strings.MustLookup(member.Field))
		return tc.freshVar()
	}
	mapping := paramMapping(info.TypeParams, tc.types.Args(instance))

	for _, field := range info.Fields {
		if field.Name == member.Field {
			return tc.instantiate(field.Type, mapping)
		}
	}
	if methodSym, ok := info.Methods[member.Field]; ok {
		return tc.typeBoundMethod(id, methodSym, instance, mapping, member)
	}
	tc.report(diag.TypeUnknownField, member.FieldSpan,
		"struct %s has no field or method '%s'",
		tc.format(instance), tc.syms.Table.Strings.MustLookup(member.Field))
	return tc.freshVar()
}

// typeBoundMethod builds the bound method type: the self parameter is
// consumed by the receiver and dropped from the call signature.
func (tc *typeChecker) typeBoundMethod(id ast.ExprID, methodSym symbols.SymbolID, instance types.TypeID, mapping map[types.TypeID]types.TypeID, member *ast.ExprMemberData) types.TypeID {
	sig := tc.result.FnSigs[methodSym]
	if sig == nil {
		sig = tc.ensureMethodSig(methodSym, symbols.NoSymbolID, nil)
	}
	if sig == nil {
		return tc.freshVar()
	}
	tc.memberSyms[id] = methodSym

	full := mapping
	if len(sig.TypeParams) > 0 {
		fresh := make([]types.TypeID, len(sig.TypeParams))
		for i := range fresh {
			fresh[i] = tc.freshVar()
		}
		tc.result.Instances[id] = FnInstance{Sym: methodSym, TypeArgs: fresh}
		full = make(map[types.TypeID]types.TypeID, len(mapping)+len(fresh))
		for k, v := range mapping {
			full[k] = v
		}
		for i, p := range sig.TypeParams {
			full[p] = fresh[i]
		}
	}

	params := sig.Params
	if tc.methodTakesSelf(sig) {
		recvT := tc.instantiate(params[0], full)
		tc.unify(recvT, instance, member.FieldSpan)
		params = params[1:]
	}
	inst := make([]types.TypeID, len(params))
	for i, p := range params {
		inst[i] = tc.instantiate(p, full)
	}
	return tc.types.Fn(inst, tc.instantiate(sig.Ret, full))
}

func (tc *typeChecker) methodTakesSelf(sig *FnSig) bool {
	fn, ok := tc.builder.Items.Fn(sig.Item)
	if !ok || len(fn.Params) == 0 {
		return false
	}
	return fn.Params[0].Name == tc.names.selfName
}

func (tc *typeChecker) typeStructInit(id ast.ExprID, init *ast.ExprStructInitData) types.TypeID {
	span := tc.builder.Exprs.Get(id).Span
	symID, ok := tc.syms.TypeSyms[init.Type]
	if !ok {
		tc.typeInitValues(init)
		return tc.freshVar()
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil {
		tc.typeInitValues(init)
		return tc.freshVar()
	}
	if sym.Kind != symbols.SymbolStruct || sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		tc.report(diag.TypeMismatch, span, "'%s' is not a struct",
			tc.syms.Table.Strings.MustLookup(sym.Name))
		tc.typeInitValues(init)
		return tc.freshVar()
	}
	info := tc.ensureStruct(symID)
	if info == nil {
		tc.typeInitValues(init)
		return tc.freshVar()
	}

	args := tc.initTypeArgs(init.Type, info, span)
	mapping := paramMapping(info.TypeParams, args)
	instance := tc.types.Struct(uint32(symID), args)

	declared := make(map[source.StringID]types.TypeID, len(info.Fields))
	for _, field := range info.Fields {
		declared[field.Name] = field.Type
	}
	seen := make(map[source.StringID]bool, len(init.Fields))
	for _, field := range init.Fields {
		valT := tc.typeExpr(field.Value)
		if seen[field.Name] {
			tc.report(diag.TypeDuplicateField, field.NameSpan,
				"field '%s' given more than once",
				tc.syms.Table.Strings.MustLookup(field.Name))
			continue
		}
		seen[field.Name] = true
		fieldT, declaredField := declared[field.Name]
		if !declaredField {
			tc.report(diag.TypeExtraField, field.NameSpan,
				"struct %s has no field '%s'",
				tc.format(instance), tc.syms.Table.Strings.MustLookup(field.Name))
			continue
		}
		tc.unify(tc.instantiate(fieldT, mapping), valT,
			tc.builder.Exprs.Get(field.Value).Span)
	}
	for _, field := range info.Fields {
		if !seen[field.Name] {
			tc.report(diag.TypeMissingField, span,
				"missing field '%s' in %s initialization",
				tc.syms.Table.Strings.MustLookup(field.Name), tc.format(instance))
		}
	}
	return instance
}

// initTypeArgs resolves explicit type arguments of a struct initialization
// or mints fresh variables so they can be inferred from field values.
func (tc *typeChecker) initTypeArgs(typeExpr ast.TypeID, info *StructInfo, span source.Span) []types.TypeID {
	name, ok := tc.builder.Types.Name(typeExpr)
	if !ok || len(name.Args) == 0 {
		fresh := make([]types.TypeID, len(info.TypeParams))
		for i := range fresh {
			fresh[i] = tc.freshVar()
		}
		return fresh
	}
	if len(name.Args) != len(info.TypeParams) {
		tc.report(diag.TypeWrongTypeArgCount, span,
			"expected %d type argument(s), found %d", len(info.TypeParams), len(name.Args))
		fresh := make([]types.TypeID, len(info.TypeParams))
		for i := range fresh {
			fresh[i] = tc.freshVar()
		}
		return fresh
	}
	args := make([]types.TypeID, len(name.Args))
	for i, arg := range name.Args {
		args[i] = tc.resolveTypeExpr(arg)
	}
	return args
}

func (tc *typeChecker) typeInitValues(init *ast.ExprStructInitData) {
	for _, field := range init.Fields {
		tc.typeExpr(field.Value)
	}
}
