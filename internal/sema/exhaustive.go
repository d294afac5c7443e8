package sema

import (
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// armView is the shape of one match arm for exhaustiveness purposes.
// Guarded arms never count as coverage: a guard can fail at runtime.
type armView struct {
	Pattern ast.PatID
	Guarded bool
}

func (tc *typeChecker) checkExhaustive(subjectT types.TypeID, arms []armView, span source.Span) {
	for _, arm := range arms {
		if !arm.Guarded && tc.patIrrefutable(arm.Pattern) {
			return
		}
	}

	walked := tc.subst.Walk(tc.types, subjectT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		return
	}
	switch t.Kind {
	case types.KindOption:
		someCovered, noneCovered := false, false
		for _, arm := range arms {
			if arm.Guarded {
				continue
			}
			ref, ok := tc.result.PatVariants[arm.Pattern]
			if !ok || !tc.variantFullyCovers(arm.Pattern) {
				continue
			}
			switch ref.Tag {
			case OptionTagSome:
				someCovered = true
			case OptionTagNone:
				noneCovered = true
			}
		}
		var missing []string
		if !someCovered {
			missing = append(missing, "Some")
		}
		if !noneCovered {
			missing = append(missing, "None")
		}
		if len(missing) > 0 {
			tc.report(diag.TypeNonexhaustiveMatch, span,
				"match is not exhaustive; missing variant(s): %s",
				strings.Join(missing, ", "))
		}

	case types.KindEnum:
		info := tc.ensureEnum(symbols.SymbolID(t.Decl))
		if info == nil {
			return
		}
		covered := make([]bool, len(info.Variants))
		for _, arm := range arms {
			if arm.Guarded {
				continue
			}
			ref, ok := tc.result.PatVariants[arm.Pattern]
			if !ok || ref.Enum != symbols.SymbolID(t.Decl) {
				continue
			}
			if int(ref.Tag) < len(covered) && tc.variantFullyCovers(arm.Pattern) {
				covered[ref.Tag] = true
			}
		}
		var missing []string
		for i, variant := range info.Variants {
			if !covered[i] {
				missing = append(missing, tc.syms.Table.Strings.MustLookup(variant.Name))
			}
		}
		if len(missing) > 0 {
			tc.report(diag.TypeNonexhaustiveMatch, span,
				"match is not exhaustive; missing variant(s): %s",
				strings.Join(missing, ", "))
		}

	case types.KindBool:
		trueCovered, falseCovered := false, false
		for _, arm := range arms {
			if arm.Guarded {
				continue
			}
			lit, ok := tc.builder.Pats.Literal(arm.Pattern)
			if !ok || lit.Kind != ast.LitBool {
				continue
			}
			if tc.syms.Table.Strings.MustLookup(lit.Value) == "true" {
				trueCovered = true
			} else {
				falseCovered = true
			}
		}
		if !trueCovered || !falseCovered {
			tc.report(diag.TypeNonexhaustiveMatch, span,
				"match is not exhaustive; add a wildcard arm")
		}

	default:
		tc.report(diag.TypeNonexhaustiveMatch, span,
			"match is not exhaustive; add a wildcard arm")
	}
}

// patIrrefutable reports whether a pattern matches every value of its
// type: wildcards, bindings, and struct destructurings whose subpatterns
// are themselves irrefutable.
func (tc *typeChecker) patIrrefutable(id ast.PatID) bool {
	pat := tc.builder.Pats.Get(id)
	if pat == nil {
		return false
	}
	switch pat.Kind {
	case ast.PatWildcard, ast.PatBinding:
		return true
	case ast.PatStruct:
		data, _ := tc.builder.Pats.Struct(id)
		for _, field := range data.Fields {
			if field.Pattern.IsValid() && !tc.patIrrefutable(field.Pattern) {
				return false
			}
		}
		return true
	case ast.PatEnumVariant:
		// Positional struct destructuring carries no tag to refute.
		if _, isVariant := tc.result.PatVariants[id]; isVariant {
			return false
		}
		data, _ := tc.builder.Pats.EnumVariant(id)
		for _, arg := range data.Args {
			if !tc.patIrrefutable(arg) {
				return false
			}
		}
		return true
	}
	return false
}

// variantFullyCovers reports whether a variant pattern's payload patterns
// are themselves irrefutable, so matching the tag guarantees a match.
func (tc *typeChecker) variantFullyCovers(id ast.PatID) bool {
	data, ok := tc.builder.Pats.EnumVariant(id)
	if !ok {
		// A bare None literal has no payload to refute.
		return true
	}
	for _, arg := range data.Args {
		if !tc.patIrrefutable(arg) {
			return false
		}
	}
	return true
}
