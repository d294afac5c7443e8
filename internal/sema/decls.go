package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Variant tags of the built-in Option enum.
const (
	OptionTagSome uint32 = 0
	OptionTagNone uint32 = 1
)

// builtinNames caches interned StringIDs for prelude names so builtin
// symbols can be recognized without repeated text lookups.
type builtinNames struct {
	intName, floatName, boolName, strName source.StringID
	listName, dictName                    source.StringID
	optionName, taskName                  source.StringID
	someName, noneName                    source.StringID
	printName, printlnName, lenName       source.StringID
	selfName                              source.StringID
}

func (tc *typeChecker) internNames() {
	tc.names = internBuiltinNames(tc.syms.Table.Strings)
}

func internBuiltinNames(s *source.Interner) builtinNames {
	return builtinNames{
		intName:     s.Intern("int"),
		floatName:   s.Intern("float"),
		boolName:    s.Intern("bool"),
		strName:     s.Intern("str"),
		listName:    s.Intern("list"),
		dictName:    s.Intern("dict"),
		optionName:  s.Intern("Option"),
		taskName:    s.Intern("Task"),
		someName:    s.Intern("Some"),
		noneName:    s.Intern("None"),
		printName:   s.Intern("print"),
		printlnName: s.Intern("println"),
		lenName:     s.Intern("len"),
		selfName:    s.Intern("self"),
	}
}

// WarmNames pre-interns the prelude names the checker touches. A driver
// checking files in parallel calls this once first, so the shared
// interner sees only reads during the fan-out.
func WarmNames(s *source.Interner) {
	internBuiltinNames(s)
}

type aliasInfo struct {
	TypeParams []types.TypeID
	Target     types.TypeID
}

// declareAll runs the signature pass over the file's items. Struct, enum,
// alias, and function declarations become semantic types before any body
// is checked.
func (tc *typeChecker) declareAll(items []ast.ItemID) {
	tc.internNames()
	for _, id := range items {
		item := tc.builder.Items.Get(id)
		if item == nil {
			continue
		}
		sym := tc.syms.ItemSyms[id]
		switch item.Kind {
		case ast.ItemStruct:
			tc.ensureStruct(sym)
		case ast.ItemEnum:
			tc.ensureEnum(sym)
		case ast.ItemTypeAlias:
			tc.ensureAlias(sym)
		case ast.ItemFn:
			tc.ensureFnSig(sym)
		}
	}
}

// rigidParams interns the rigid type parameters of a generic declaration
// and binds each parameter symbol to its own type.
func (tc *typeChecker) rigidParams(item ast.ItemID, owner symbols.SymbolID, count int) []types.TypeID {
	if count == 0 {
		return nil
	}
	tpSyms := tc.syms.TypeParamSyms[item]
	params := make([]types.TypeID, count)
	for i := range params {
		if i < len(tpSyms) {
			p := tc.types.Param(uint32(tpSyms[i]), uint32(i))
			tc.result.DeclTypes[tpSyms[i]] = p
			params[i] = p
			continue
		}
		// Declared in another file; identity by owner and index.
		params[i] = tc.types.Param(uint32(owner), uint32(i))
	}
	return params
}

// ensureStruct lazily builds StructInfo. Lazy construction lets bodies
// reference structs declared in other files of the same build, since all
// files share one AST builder.
func (tc *typeChecker) ensureStruct(symID symbols.SymbolID) *StructInfo {
	if !symID.IsValid() {
		return nil
	}
	if info, ok := tc.result.Structs[symID]; ok {
		return info
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil || sym.Kind != symbols.SymbolStruct {
		return nil
	}
	st, ok := tc.builder.Items.Struct(sym.Decl.Item)
	if !ok {
		return nil // prelude builtin, handled by name
	}
	info := &StructInfo{
		Item:    sym.Decl.Item,
		Methods: make(map[source.StringID]symbols.SymbolID),
	}
	tc.result.Structs[symID] = info
	info.TypeParams = tc.rigidParams(sym.Decl.Item, symID, len(st.TypeParams))
	for _, field := range st.Fields {
		info.Fields = append(info.Fields, FieldInfo{
			Name: field.Name,
			Type: tc.resolveTypeExpr(field.Type),
		})
	}
	methodSyms := tc.syms.MethodSyms[sym.Decl.Item]
	for i, methodID := range st.Methods {
		fn, ok := tc.builder.Items.Fn(methodID)
		if !ok || i >= len(methodSyms) {
			continue
		}
		info.Methods[fn.Name] = methodSyms[i]
		tc.ensureMethodSig(methodSyms[i], symID, info)
	}
	return info
}

func (tc *typeChecker) ensureEnum(symID symbols.SymbolID) *EnumInfo {
	if !symID.IsValid() {
		return nil
	}
	if info, ok := tc.result.Enums[symID]; ok {
		return info
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil || sym.Kind != symbols.SymbolEnum {
		return nil
	}
	en, ok := tc.builder.Items.Enum(sym.Decl.Item)
	if !ok {
		return nil
	}
	info := &EnumInfo{Item: sym.Decl.Item}
	tc.result.Enums[symID] = info
	info.TypeParams = tc.rigidParams(sym.Decl.Item, symID, len(en.TypeParams))
	for _, variant := range en.Variants {
		vi := VariantInfo{Name: variant.Name}
		for _, payload := range variant.Payloads {
			vi.Payloads = append(vi.Payloads, tc.resolveTypeExpr(payload))
		}
		info.Variants = append(info.Variants, vi)
	}
	return info
}

func (tc *typeChecker) ensureAlias(symID symbols.SymbolID) *aliasInfo {
	if !symID.IsValid() {
		return nil
	}
	if info, ok := tc.aliases[symID]; ok {
		return info
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil || sym.Kind != symbols.SymbolTypeAlias {
		return nil
	}
	alias, ok := tc.builder.Items.TypeAlias(sym.Decl.Item)
	if !ok {
		return nil
	}
	if tc.aliasBusy[symID] {
		tc.report(diag.TypeMismatch, sym.Span, "type alias '%s' refers to itself",
			tc.syms.Table.Strings.MustLookup(sym.Name))
		return nil
	}
	tc.aliasBusy[symID] = true
	info := &aliasInfo{
		TypeParams: tc.rigidParams(sym.Decl.Item, symID, len(alias.TypeParams)),
	}
	info.Target = tc.resolveTypeExpr(alias.Target)
	delete(tc.aliasBusy, symID)
	tc.aliases[symID] = info
	return info
}

// ensureFnSig builds a free function's signature.
func (tc *typeChecker) ensureFnSig(symID symbols.SymbolID) *FnSig {
	return tc.ensureMethodSig(symID, symbols.NoSymbolID, nil)
}

// ensureMethodSig builds a function or method signature. For methods, a
// bare first parameter named self takes the receiver struct instance type.
func (tc *typeChecker) ensureMethodSig(symID, recv symbols.SymbolID, recvInfo *StructInfo) *FnSig {
	if !symID.IsValid() {
		return nil
	}
	if sig, ok := tc.result.FnSigs[symID]; ok {
		return sig
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil || sym.Kind != symbols.SymbolFunction {
		return nil
	}
	fn, ok := tc.builder.Items.Fn(sym.Decl.Item)
	if !ok {
		return nil // prelude builtin
	}
	sig := &FnSig{Item: sym.Decl.Item, Recv: recv}
	tc.result.FnSigs[symID] = sig
	sig.TypeParams = tc.rigidParams(sym.Decl.Item, symID, len(fn.TypeParams))

	paramSyms := tc.syms.ParamSyms[sym.Decl.Item]
	sig.Required = len(fn.Params)
	for i, param := range fn.Params {
		var t types.TypeID
		switch {
		case param.Type.IsValid():
			t = tc.resolveTypeExpr(param.Type)
		case i == 0 && recv.IsValid() && param.Name == tc.names.selfName:
			t = tc.types.Struct(uint32(recv), recvInfo.TypeParams)
		default:
			t = tc.freshVar()
		}
		sig.Params = append(sig.Params, t)
		if i < len(paramSyms) {
			tc.result.DeclTypes[paramSyms[i]] = t
		}
		if param.Default.IsValid() && sig.Required == len(fn.Params) {
			sig.Required = i
		}
	}
	if fn.Ret.IsValid() {
		sig.Ret = tc.resolveTypeExpr(fn.Ret)
	} else {
		sig.Ret = tc.types.Builtins().Unit
	}
	tc.result.DeclTypes[symID] = tc.types.Fn(sig.Params, sig.Ret)
	return sig
}

// resolveTypeExpr converts a syntactic type annotation into a semantic
// type. Generic declarations yield rigid parameters, not variables.
func (tc *typeChecker) resolveTypeExpr(id ast.TypeID) types.TypeID {
	if !id.IsValid() {
		return tc.freshVar()
	}
	te := tc.builder.Types.Get(id)
	if te == nil {
		return tc.freshVar()
	}
	switch te.Kind {
	case ast.TypeExprFn:
		fn, _ := tc.builder.Types.Fn(id)
		params := make([]types.TypeID, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = tc.resolveTypeExpr(p)
		}
		ret := tc.types.Builtins().Unit
		if fn.Ret.IsValid() {
			ret = tc.resolveTypeExpr(fn.Ret)
		}
		return tc.types.Fn(params, ret)
	case ast.TypeExprName:
		name, _ := tc.builder.Types.Name(id)
		return tc.resolveTypeName(id, name, te.Span)
	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) resolveTypeName(id ast.TypeID, name *ast.TypeNameData, span source.Span) types.TypeID {
	if len(name.Path) == 1 && name.Path[0] == tc.names.noneName {
		tc.checkTypeArgCount(span, "None", 0, len(name.Args))
		return tc.types.Builtins().Unit
	}
	symID, ok := tc.syms.TypeSyms[id]
	if !ok {
		// The resolver already reported the bad name.
		return tc.freshVar()
	}
	sym := tc.syms.Table.Symbols.Get(symID)
	if sym == nil {
		return tc.freshVar()
	}

	args := make([]types.TypeID, len(name.Args))
	for i, arg := range name.Args {
		args[i] = tc.resolveTypeExpr(arg)
	}

	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		return tc.builtinType(sym.Name, args, span)
	}

	switch sym.Kind {
	case symbols.SymbolTypeParam:
		tc.checkTypeArgCount(span, tc.declName(uint32(symID)), 0, len(args))
		if t, ok := tc.result.DeclTypes[symID]; ok {
			return t
		}
		return tc.types.Param(uint32(symID), sym.Decl.Index)
	case symbols.SymbolStruct:
		st, ok := tc.builder.Items.Struct(sym.Decl.Item)
		if !ok {
			return tc.freshVar()
		}
		if !tc.checkTypeArgCount(span, tc.declName(uint32(symID)), len(st.TypeParams), len(args)) {
			return tc.freshVar()
		}
		return tc.types.Struct(uint32(symID), args)
	case symbols.SymbolEnum:
		en, ok := tc.builder.Items.Enum(sym.Decl.Item)
		if !ok {
			return tc.freshVar()
		}
		if !tc.checkTypeArgCount(span, tc.declName(uint32(symID)), len(en.TypeParams), len(args)) {
			return tc.freshVar()
		}
		return tc.types.Enum(uint32(symID), args)
	case symbols.SymbolTypeAlias:
		info := tc.ensureAlias(symID)
		if info == nil {
			return tc.freshVar()
		}
		if !tc.checkTypeArgCount(span, tc.declName(uint32(symID)), len(info.TypeParams), len(args)) {
			return tc.freshVar()
		}
		return tc.instantiate(info.Target, paramMapping(info.TypeParams, args))
	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) builtinType(name source.StringID, args []types.TypeID, span source.Span) types.TypeID {
	b := tc.types.Builtins()
	n := tc.names
	switch name {
	case n.intName:
		tc.checkTypeArgCount(span, "int", 0, len(args))
		return b.Int
	case n.floatName:
		tc.checkTypeArgCount(span, "float", 0, len(args))
		return b.Float
	case n.boolName:
		tc.checkTypeArgCount(span, "bool", 0, len(args))
		return b.Bool
	case n.strName:
		tc.checkTypeArgCount(span, "str", 0, len(args))
		return b.Str
	case n.listName:
		if !tc.checkTypeArgCount(span, "list", 1, len(args)) {
			return tc.types.List(tc.freshVar())
		}
		return tc.types.List(args[0])
	case n.dictName:
		if !tc.checkTypeArgCount(span, "dict", 2, len(args)) {
			return tc.types.Dict(tc.freshVar(), tc.freshVar())
		}
		return tc.types.Dict(args[0], args[1])
	case n.optionName:
		if !tc.checkTypeArgCount(span, "Option", 1, len(args)) {
			return tc.types.Option(tc.freshVar())
		}
		return tc.types.Option(args[0])
	case n.taskName:
		if !tc.checkTypeArgCount(span, "Task", 1, len(args)) {
			return tc.types.Task(tc.freshVar())
		}
		return tc.types.Task(args[0])
	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) checkTypeArgCount(span source.Span, name string, want, got int) bool {
	if want == got {
		return true
	}
	if want == 0 {
		tc.report(diag.TypeWrongTypeArgCount, span, "type '%s' takes no type arguments", name)
		return false
	}
	tc.report(diag.TypeWrongTypeArgCount, span,
		"type '%s' expects %d type argument(s), found %d", name, want, got)
	return false
}

func paramMapping(params, args []types.TypeID) map[types.TypeID]types.TypeID {
	if len(params) == 0 {
		return nil
	}
	m := make(map[types.TypeID]types.TypeID, len(params))
	for i, p := range params {
		if i < len(args) {
			m[p] = args[i]
		}
	}
	return m
}

// instantiate replaces rigid type parameters according to mapping,
// rebuilding composite types through the interner.
func (tc *typeChecker) instantiate(id types.TypeID, mapping map[types.TypeID]types.TypeID) types.TypeID {
	if len(mapping) == 0 {
		return id
	}
	t, ok := tc.types.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindParam:
		if repl, ok := mapping[id]; ok {
			return repl
		}
		return id
	case types.KindList:
		return tc.types.List(tc.instantiate(t.Elem, mapping))
	case types.KindDict:
		return tc.types.Dict(tc.instantiate(t.Elem, mapping), tc.instantiate(t.Elem2, mapping))
	case types.KindOption:
		return tc.types.Option(tc.instantiate(t.Elem, mapping))
	case types.KindTask:
		return tc.types.Task(tc.instantiate(t.Elem, mapping))
	case types.KindStruct, types.KindEnum:
		args := tc.types.Args(id)
		if len(args) == 0 {
			return id
		}
		inst := make([]types.TypeID, len(args))
		for i, arg := range args {
			inst[i] = tc.instantiate(arg, mapping)
		}
		if t.Kind == types.KindStruct {
			return tc.types.Struct(t.Decl, inst)
		}
		return tc.types.Enum(t.Decl, inst)
	case types.KindFn:
		info, _ := tc.types.FnInfo(id)
		params := make([]types.TypeID, len(info.Params))
		for i, p := range info.Params {
			params[i] = tc.instantiate(p, mapping)
		}
		return tc.types.Fn(params, tc.instantiate(info.Ret, mapping))
	default:
		return id
	}
}
