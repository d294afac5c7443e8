package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// checkPattern types a pattern against the scrutinee type and assigns
// types to every binding it introduces.
func (tc *typeChecker) checkPattern(id ast.PatID, t types.TypeID) {
	if !id.IsValid() {
		return
	}
	pat := tc.builder.Pats.Get(id)
	if pat == nil {
		return
	}
	tc.result.PatTypes[id] = t

	switch pat.Kind {
	case ast.PatWildcard:

	case ast.PatLiteral:
		lit, _ := tc.builder.Pats.Literal(id)
		if lit.Kind == ast.LitNone {
			tc.result.PatVariants[id] = VariantRef{Tag: OptionTagNone}
			tc.unify(tc.types.Option(tc.freshVar()), t, pat.Span)
			return
		}
		tc.unify(tc.literalType(lit.Kind), t, pat.Span)

	case ast.PatBinding:
		if symID, ok := tc.syms.BindSyms[id]; ok {
			if prior, seen := tc.result.DeclTypes[symID]; seen {
				tc.unify(prior, t, pat.Span)
			} else {
				tc.result.DeclTypes[symID] = t
			}
		}

	case ast.PatEnumVariant:
		data, _ := tc.builder.Pats.EnumVariant(id)
		tc.checkVariantPattern(id, pat, data, t)

	case ast.PatStruct:
		data, _ := tc.builder.Pats.Struct(id)
		tc.checkStructPattern(id, pat, data, t)

	case ast.PatList:
		elem := tc.freshVar()
		tc.unify(tc.types.List(elem), t, pat.Span)
		data, _ := tc.builder.Pats.List(id)
		for _, sub := range data.Elems {
			tc.checkPattern(sub, elem)
		}
		if symID, ok := tc.syms.RestSyms[id]; ok {
			tc.result.DeclTypes[symID] = tc.types.List(elem)
		}
	}
}

func (tc *typeChecker) checkVariantPattern(id ast.PatID, pat *ast.Pat, data *ast.PatEnumVariantData, t types.TypeID) {
	walked := tc.subst.Walk(tc.types, t)
	wt, ok := tc.types.Lookup(walked)
	if !ok {
		return
	}
	variantName := data.Path[len(data.Path)-1]

	switch wt.Kind {
	case types.KindOption:
		tc.checkOptionVariant(id, pat, data, wt.Elem, variantName)

	case types.KindEnum:
		enumSym := symbols.SymbolID(wt.Decl)
		if headSym, bound := tc.syms.PatSyms[id]; bound && headSym != enumSym {
			tc.report(diag.TypePatternMismatch, data.PathSpan,
				"pattern names '%s' but the value is %s",
				tc.declName(uint32(headSym)), tc.format(t))
			return
		}
		info := tc.ensureEnum(enumSym)
		if info == nil {
			return
		}
		tag := -1
		for i, variant := range info.Variants {
			if variant.Name == variantName {
				tag = i
				break
			}
		}
		if tag < 0 {
			tc.report(diag.TypePatternMismatch, data.PathSpan,
				"enum %s has no variant '%s'",
				tc.format(t), tc.syms.Table.Strings.MustLookup(variantName))
			return
		}
		tc.result.PatVariants[id] = VariantRef{Enum: enumSym, Tag: uint32(tag)}
		payloads := info.Variants[tag].Payloads
		if len(data.Args) != len(payloads) {
			tc.report(diag.TypePatternMismatch, pat.Span,
				"variant '%s' carries %d value(s), pattern has %d",
				tc.syms.Table.Strings.MustLookup(variantName), len(payloads), len(data.Args))
			return
		}
		mapping := paramMapping(info.TypeParams, tc.types.Args(walked))
		for i, arg := range data.Args {
			tc.checkPattern(arg, tc.instantiate(payloads[i], mapping))
		}

	case types.KindStruct:
		// `Point(x, y)` destructures a struct's fields positionally.
		tc.checkPositionalStruct(id, pat, data, walked, wt)

	case types.KindVar:
		if bound := tc.bindVariantScrutinee(id, data, walked); bound {
			tc.checkVariantPattern(id, pat, data, walked)
			return
		}
		tc.report(diag.TypeAmbiguous, pat.Span,
			"cannot determine the matched type; annotate the scrutinee")

	default:
		tc.report(diag.TypePatternMismatch, pat.Span,
			"cannot match a variant pattern against %s", tc.format(t))
	}
}

func (tc *typeChecker) checkOptionVariant(id ast.PatID, pat *ast.Pat, data *ast.PatEnumVariantData, elem types.TypeID, variantName source.StringID) {
	switch variantName {
	case tc.names.someName:
		tc.result.PatVariants[id] = VariantRef{Tag: OptionTagSome}
		if len(data.Args) != 1 {
			tc.report(diag.TypePatternMismatch, pat.Span,
				"variant 'Some' carries 1 value, pattern has %d", len(data.Args))
			return
		}
		tc.checkPattern(data.Args[0], elem)
	case tc.names.noneName:
		tc.result.PatVariants[id] = VariantRef{Tag: OptionTagNone}
		if len(data.Args) != 0 {
			tc.report(diag.TypePatternMismatch, pat.Span,
				"variant 'None' carries no values, pattern has %d", len(data.Args))
		}
	default:
		tc.report(diag.TypePatternMismatch, data.PathSpan,
			"Option has no variant '%s'",
			tc.syms.Table.Strings.MustLookup(variantName))
	}
}

func (tc *typeChecker) checkPositionalStruct(id ast.PatID, pat *ast.Pat, data *ast.PatEnumVariantData, instance types.TypeID, wt types.Type) {
	structSym := symbols.SymbolID(wt.Decl)
	sym := tc.syms.Table.Symbols.Get(structSym)
	if sym == nil || len(data.Path) != 1 || data.Path[0] != sym.Name {
		tc.report(diag.TypePatternMismatch, data.PathSpan,
			"cannot match a variant pattern against %s", tc.format(instance))
		return
	}
	info := tc.ensureStruct(structSym)
	if info == nil {
		return
	}
	if len(data.Args) != len(info.Fields) {
		tc.report(diag.TypePatternMismatch, pat.Span,
			"struct %s has %d field(s), pattern has %d",
			tc.format(instance), len(info.Fields), len(data.Args))
		return
	}
	mapping := paramMapping(info.TypeParams, tc.types.Args(instance))
	for i, arg := range data.Args {
		tc.checkPattern(arg, tc.instantiate(info.Fields[i].Type, mapping))
	}
}

// bindVariantScrutinee pins an unconstrained scrutinee to the enum named
// by the pattern head, when the head tells us which enum that is.
func (tc *typeChecker) bindVariantScrutinee(id ast.PatID, data *ast.PatEnumVariantData, v types.TypeID) bool {
	if headSym, bound := tc.syms.PatSyms[id]; bound {
		sym := tc.syms.Table.Symbols.Get(headSym)
		if sym == nil {
			return false
		}
		if sym.Flags&symbols.SymbolFlagBuiltin != 0 && sym.Name == tc.names.optionName {
			tc.subst.Bind(v, tc.types.Option(tc.freshVar()))
			return true
		}
		if sym.Kind == symbols.SymbolEnum {
			info := tc.ensureEnum(headSym)
			if info == nil {
				return false
			}
			fresh := make([]types.TypeID, len(info.TypeParams))
			for i := range fresh {
				fresh[i] = tc.freshVar()
			}
			tc.subst.Bind(v, tc.types.Enum(uint32(headSym), fresh))
			return true
		}
		return false
	}
	// Bare Some/None heads imply Option.
	head := data.Path[0]
	if head == tc.names.someName || head == tc.names.noneName {
		tc.subst.Bind(v, tc.types.Option(tc.freshVar()))
		return true
	}
	return false
}

func (tc *typeChecker) checkStructPattern(id ast.PatID, pat *ast.Pat, data *ast.PatStructData, t types.TypeID) {
	walked := tc.subst.Walk(tc.types, t)
	wt, ok := tc.types.Lookup(walked)
	if !ok {
		return
	}
	switch wt.Kind {
	case types.KindStruct:
		structSym := symbols.SymbolID(wt.Decl)
		if headSym, bound := tc.syms.PatSyms[id]; bound && headSym != structSym {
			tc.report(diag.TypePatternMismatch, data.NameSpan,
				"pattern names '%s' but the value is %s",
				tc.declName(uint32(headSym)), tc.format(t))
			return
		}
		info := tc.ensureStruct(structSym)
		if info == nil {
			return
		}
		mapping := paramMapping(info.TypeParams, tc.types.Args(walked))
		declared := make(map[source.StringID]types.TypeID, len(info.Fields))
		for _, field := range info.Fields {
			declared[field.Name] = field.Type
		}
		shorthand := tc.syms.FieldSyms[id]
		for i, field := range data.Fields {
			fieldT, known := declared[field.Name]
			if !known {
				tc.report(diag.TypeUnknownField, field.NameSpan,
					"struct %s has no field '%s'",
					tc.format(t), tc.syms.Table.Strings.MustLookup(field.Name))
				continue
			}
			inst := tc.instantiate(fieldT, mapping)
			if field.Pattern.IsValid() {
				tc.checkPattern(field.Pattern, inst)
				continue
			}
			if i < len(shorthand) && shorthand[i].IsValid() {
				tc.result.DeclTypes[shorthand[i]] = inst
			}
		}

	case types.KindVar:
		if headSym, bound := tc.syms.PatSyms[id]; bound {
			info := tc.ensureStruct(headSym)
			if info != nil {
				fresh := make([]types.TypeID, len(info.TypeParams))
				for i := range fresh {
					fresh[i] = tc.freshVar()
				}
				tc.subst.Bind(walked, tc.types.Struct(uint32(headSym), fresh))
				tc.checkStructPattern(id, pat, data, walked)
				return
			}
		}
		tc.report(diag.TypeAmbiguous, pat.Span,
			"cannot determine the matched type; annotate the scrutinee")

	default:
		tc.report(diag.TypePatternMismatch, pat.Span,
			"cannot match a struct pattern against %s", tc.format(t))
	}
}
