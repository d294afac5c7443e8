package sema

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/types"
)

// unify makes expected and actual equal under the substitution, reporting
// a mismatch at span on failure. Reporting here keeps every caller to one
// line; callers that want a more specific message check shapes first.
func (tc *typeChecker) unify(expected, actual types.TypeID, span source.Span) bool {
	if tc.unifies(expected, actual, span) {
		return true
	}
	tc.report(diag.TypeMismatch, span, "type mismatch: expected %s, found %s",
		tc.format(expected), tc.format(actual))
	return false
}

func (tc *typeChecker) unifies(a, b types.TypeID, span source.Span) bool {
	a = tc.subst.Walk(tc.types, a)
	b = tc.subst.Walk(tc.types, b)
	if a == b {
		return true
	}
	ta, okA := tc.types.Lookup(a)
	tb, okB := tc.types.Lookup(b)
	if !okA || !okB {
		// Invalid types come from already-reported errors; swallow.
		return true
	}
	if ta.Kind == types.KindVar {
		return tc.bindVar(a, b, span)
	}
	if tb.Kind == types.KindVar {
		return tc.bindVar(b, a, span)
	}
	if ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case types.KindList, types.KindOption, types.KindTask:
		return tc.unifies(ta.Elem, tb.Elem, span)
	case types.KindDict:
		return tc.unifies(ta.Elem, tb.Elem, span) && tc.unifies(ta.Elem2, tb.Elem2, span)
	case types.KindStruct, types.KindEnum:
		if ta.Decl != tb.Decl {
			return false
		}
		argsA, argsB := tc.types.Args(a), tc.types.Args(b)
		if len(argsA) != len(argsB) {
			return false
		}
		for i := range argsA {
			if !tc.unifies(argsA[i], argsB[i], span) {
				return false
			}
		}
		return true
	case types.KindFn:
		infoA, _ := tc.types.FnInfo(a)
		infoB, _ := tc.types.FnInfo(b)
		if len(infoA.Params) != len(infoB.Params) {
			return false
		}
		for i := range infoA.Params {
			if !tc.unifies(infoA.Params[i], infoB.Params[i], span) {
				return false
			}
		}
		return tc.unifies(infoA.Ret, infoB.Ret, span)
	default:
		// Primitives and rigid parameters are equal only by identity,
		// which the a == b check above already handled.
		return false
	}
}

func (tc *typeChecker) bindVar(v, t types.TypeID, span source.Span) bool {
	if tc.subst.Occurs(tc.types, v, t) {
		tc.report(diag.TypeOccursCheck, span,
			"cannot construct the infinite type %s", tc.format(t))
		return true // already reported; suppress the mismatch message
	}
	tc.subst.Bind(v, t)
	return true
}

// expectBool unifies t with bool, reporting a condition-specific message.
func (tc *typeChecker) expectBool(t types.TypeID, span source.Span) {
	if !tc.unifies(t, tc.types.Builtins().Bool, span) {
		tc.report(diag.TypeCondNotBool, span,
			"condition must be bool, found %s", tc.format(t))
	}
}
