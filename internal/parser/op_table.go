package parser

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/token"
)

// Binary precedence levels, low to high. Range binds looser than
// comparison; unary operators bind tighter than every binary level.
const (
	precOr             = 1 // or
	precAnd            = 2 // and
	precRange          = 3 // .. ..=
	precEquality       = 4 // == != is
	precComparison     = 5 // < <= > >=
	precAdditive       = 6 // + -
	precMultiplicative = 7 // * / %
)

// binaryPrec returns the precedence of kind as a binary operator, or -1.
// All binary operators are left-associative.
func binaryPrec(kind token.Kind) int {
	switch kind {
	case token.KwOr:
		return precOr
	case token.KwAnd:
		return precAnd
	case token.DotDot, token.DotDotEq:
		return precRange
	case token.EqEq, token.BangEq, token.KwIs:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return -1
	}
}

func binaryOp(kind token.Kind) ast.ExprBinaryOp {
	switch kind {
	case token.Plus:
		return ast.BinAdd
	case token.Minus:
		return ast.BinSub
	case token.Star:
		return ast.BinMul
	case token.Slash:
		return ast.BinDiv
	case token.Percent:
		return ast.BinMod
	case token.EqEq:
		return ast.BinEq
	case token.BangEq:
		return ast.BinNe
	case token.Lt:
		return ast.BinLt
	case token.LtEq:
		return ast.BinLe
	case token.Gt:
		return ast.BinGt
	case token.GtEq:
		return ast.BinGe
	case token.KwAnd:
		return ast.BinAnd
	case token.KwOr:
		return ast.BinOr
	case token.KwIs:
		return ast.BinIs
	default:
		return ast.BinAdd
	}
}

func unaryOp(kind token.Kind) (ast.ExprUnaryOp, bool) {
	switch kind {
	case token.Minus:
		return ast.UnNeg, true
	case token.Plus:
		return ast.UnPos, true
	case token.KwNot:
		return ast.UnNot, true
	default:
		return ast.UnNeg, false
	}
}

func assignOp(kind token.Kind) (ast.AssignOp, bool) {
	switch kind {
	case token.Assign:
		return ast.AssignSet, true
	case token.PlusAssign:
		return ast.AssignAdd, true
	case token.MinusAssign:
		return ast.AssignSub, true
	case token.StarAssign:
		return ast.AssignMul, true
	case token.SlashAssign:
		return ast.AssignDiv, true
	case token.PercentAssign:
		return ast.AssignMod, true
	default:
		return ast.AssignSet, false
	}
}
