package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/types"
)

func binaryOpText(op ast.ExprBinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinEq:
		return "=="
	case ast.BinNe:
		return "!="
	case ast.BinLt:
		return "<"
	case ast.BinLe:
		return "<="
	case ast.BinGt:
		return ">"
	case ast.BinGe:
		return ">="
	case ast.BinAnd:
		return "and"
	case ast.BinOr:
		return "or"
	case ast.BinIs:
		return "is"
	case ast.BinIsNot:
		return "is not"
	default:
		return "?"
	}
}

func (tc *typeChecker) typeBinary(id ast.ExprID, bin *ast.ExprBinaryData) types.TypeID {
	b := tc.types.Builtins()
	span := tc.builder.Exprs.Get(id).Span
	leftT := tc.typeExpr(bin.Left)
	rightT := tc.typeExpr(bin.Right)

	switch bin.Op {
	case ast.BinAdd:
		// A str on either side turns + into concatenation; the other
		// operand is stringified at runtime.
		if tc.isStr(leftT) || tc.isStr(rightT) {
			return b.Str
		}
		return tc.arith(bin.Op, leftT, rightT, span)

	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod:
		return tc.arith(bin.Op, leftT, rightT, span)

	case ast.BinEq, ast.BinNe:
		tc.unify(leftT, rightT, tc.builder.Exprs.Get(bin.Right).Span)
		return b.Bool

	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		tc.unify(leftT, rightT, tc.builder.Exprs.Get(bin.Right).Span)
		walked := tc.subst.Walk(tc.types, leftT)
		t, ok := tc.types.Lookup(walked)
		if ok {
			switch t.Kind {
			case types.KindInt, types.KindFloat, types.KindStr:
			case types.KindVar:
				tc.subst.Bind(walked, b.Int)
			default:
				tc.report(diag.TypeInvalidBinaryOp, span,
					"operator '%s' is not defined for %s",
					binaryOpText(bin.Op), tc.format(leftT))
			}
		}
		return b.Bool

	case ast.BinAnd, ast.BinOr:
		if !tc.unifies(b.Bool, leftT, span) {
			tc.report(diag.TypeInvalidBinaryOp, tc.builder.Exprs.Get(bin.Left).Span,
				"operand of '%s' must be bool, found %s",
				binaryOpText(bin.Op), tc.format(leftT))
		}
		if !tc.unifies(b.Bool, rightT, span) {
			tc.report(diag.TypeInvalidBinaryOp, tc.builder.Exprs.Get(bin.Right).Span,
				"operand of '%s' must be bool, found %s",
				binaryOpText(bin.Op), tc.format(rightT))
		}
		return b.Bool

	case ast.BinIs, ast.BinIsNot:
		if !tc.isNoneLiteral(bin.Right) {
			tc.report(diag.TypeInvalidBinaryOp, tc.builder.Exprs.Get(bin.Right).Span,
				"right operand of '%s' must be None", binaryOpText(bin.Op))
			return b.Bool
		}
		if !tc.unifies(tc.types.Option(tc.freshVar()), leftT, span) {
			tc.report(diag.TypeInvalidBinaryOp, tc.builder.Exprs.Get(bin.Left).Span,
				"left operand of '%s' must be an Option, found %s",
				binaryOpText(bin.Op), tc.format(leftT))
		}
		return b.Bool

	default:
		return tc.freshVar()
	}
}

// arith handles the shared numeric rule: both operands unify and must be
// int or float. An unconstrained result defaults to int.
func (tc *typeChecker) arith(op ast.ExprBinaryOp, leftT, rightT types.TypeID, span source.Span) types.TypeID {
	b := tc.types.Builtins()
	if !tc.unifies(leftT, rightT, span) {
		tc.report(diag.TypeInvalidBinaryOp, span,
			"operator '%s' is not defined for %s and %s",
			binaryOpText(op), tc.format(leftT), tc.format(rightT))
		return tc.freshVar()
	}
	walked := tc.subst.Walk(tc.types, leftT)
	t, ok := tc.types.Lookup(walked)
	if !ok {
		return tc.freshVar()
	}
	switch t.Kind {
	case types.KindInt, types.KindFloat:
		return walked
	case types.KindVar:
		tc.subst.Bind(walked, b.Int)
		return b.Int
	default:
		tc.report(diag.TypeInvalidBinaryOp, span,
			"operator '%s' is not defined for %s",
			binaryOpText(op), tc.format(leftT))
		return tc.freshVar()
	}
}

func (tc *typeChecker) typeUnary(id ast.ExprID, un *ast.ExprUnaryData) types.TypeID {
	b := tc.types.Builtins()
	span := tc.builder.Exprs.Get(id).Span
	operandT := tc.typeExpr(un.Operand)
	switch un.Op {
	case ast.UnNeg, ast.UnPos:
		walked := tc.subst.Walk(tc.types, operandT)
		t, ok := tc.types.Lookup(walked)
		if !ok {
			return tc.freshVar()
		}
		switch t.Kind {
		case types.KindInt, types.KindFloat:
			return walked
		case types.KindVar:
			tc.subst.Bind(walked, b.Int)
			return b.Int
		default:
			op := "-"
			if un.Op == ast.UnPos {
				op = "+"
			}
			tc.report(diag.TypeInvalidUnaryOp, span,
				"unary '%s' is not defined for %s", op, tc.format(operandT))
			return tc.freshVar()
		}
	case ast.UnNot:
		if !tc.unifies(b.Bool, operandT, span) {
			tc.report(diag.TypeInvalidUnaryOp, span,
				"'not' expects bool, found %s", tc.format(operandT))
		}
		return b.Bool
	default:
		return tc.freshVar()
	}
}

func (tc *typeChecker) isStr(t types.TypeID) bool {
	walked := tc.subst.Walk(tc.types, t)
	tt, ok := tc.types.Lookup(walked)
	return ok && tt.Kind == types.KindStr
}

func (tc *typeChecker) isNoneLiteral(id ast.ExprID) bool {
	lit, ok := tc.builder.Exprs.Literal(id)
	return ok && lit.Kind == ast.LitNone
}
