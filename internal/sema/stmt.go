package sema

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

func (tc *typeChecker) checkItem(id ast.ItemID) {
	item := tc.builder.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFn:
		tc.checkFnBody(tc.syms.ItemSyms[id])
	case ast.ItemStruct:
		for _, methodSym := range tc.syms.MethodSyms[id] {
			tc.checkFnBody(methodSym)
		}
	case ast.ItemStmt:
		if wrap, ok := tc.builder.Items.Stmt(id); ok {
			tc.checkStmt(wrap.Stmt)
		}
	}
}

func (tc *typeChecker) checkFnBody(symID symbols.SymbolID) {
	sig := tc.result.FnSigs[symID]
	if sig == nil {
		return
	}
	fn, ok := tc.builder.Items.Fn(sig.Item)
	if !ok {
		return
	}
	for i, param := range fn.Params {
		if param.Default.IsValid() && i < len(sig.Params) {
			defT := tc.typeExpr(param.Default)
			tc.unify(sig.Params[i], defT, tc.builder.Exprs.Get(param.Default).Span)
		}
	}
	tc.retStack = append(tc.retStack, sig.Ret)
	tc.checkStmt(fn.Body)
	tc.retStack = tc.retStack[:len(tc.retStack)-1]
}

func (tc *typeChecker) checkStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	stmt := tc.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := tc.builder.Stmts.Block(id)
		for _, child := range block.Stmts {
			tc.checkStmt(child)
		}

	case ast.StmtLet:
		let, _ := tc.builder.Stmts.Let(id)
		tc.checkLet(let)

	case ast.StmtAssign:
		assign, _ := tc.builder.Stmts.Assign(id)
		tc.checkAssign(id, assign)

	case ast.StmtExpr:
		expr, _ := tc.builder.Stmts.Expr(id)
		tc.typeExpr(expr.Value)

	case ast.StmtReturn:
		ret, _ := tc.builder.Stmts.Return(id)
		tc.checkReturn(id, ret)

	case ast.StmtBreak, ast.StmtContinue, ast.StmtPass:
		// Loop placement is a parse-time concern.

	case ast.StmtIf:
		ifStmt, _ := tc.builder.Stmts.If(id)
		condT := tc.typeExpr(ifStmt.Cond)
		tc.expectBool(condT, tc.builder.Exprs.Get(ifStmt.Cond).Span)
		tc.checkStmt(ifStmt.Then)
		tc.checkStmt(ifStmt.Else)

	case ast.StmtWhile:
		while, _ := tc.builder.Stmts.While(id)
		condT := tc.typeExpr(while.Cond)
		tc.expectBool(condT, tc.builder.Exprs.Get(while.Cond).Span)
		tc.checkStmt(while.Body)

	case ast.StmtFor:
		forStmt, _ := tc.builder.Stmts.For(id)
		iterT := tc.typeExpr(forStmt.Iter)
		elemT := tc.iterableElem(iterT, tc.builder.Exprs.Get(forStmt.Iter).Span)
		tc.checkPattern(forStmt.Pattern, elemT)
		tc.checkStmt(forStmt.Body)

	case ast.StmtMatch:
		match, _ := tc.builder.Stmts.Match(id)
		subjectT := tc.typeExpr(match.Subject)
		views := make([]armView, len(match.Arms))
		for i, arm := range match.Arms {
			tc.checkPattern(arm.Pattern, subjectT)
			if arm.Guard.IsValid() {
				guardT := tc.typeExpr(arm.Guard)
				tc.expectBool(guardT, tc.builder.Exprs.Get(arm.Guard).Span)
			}
			tc.checkStmt(arm.Body)
			views[i] = armView{Pattern: arm.Pattern, Guarded: arm.Guard.IsValid()}
		}
		tc.checkExhaustive(subjectT, views, stmt.Span)
	}
}

func (tc *typeChecker) checkLet(let *ast.StmtLetData) {
	var declared types.TypeID
	if let.Type.IsValid() {
		declared = tc.resolveTypeExpr(let.Type)
	}
	if let.Value.IsValid() {
		valT := tc.typeExpr(let.Value)
		if declared.IsValid() {
			tc.unify(declared, valT, tc.builder.Exprs.Get(let.Value).Span)
		} else {
			declared = valT
		}
	}
	if !declared.IsValid() {
		declared = tc.freshVar()
	}
	tc.checkPattern(let.Pattern, declared)
}

func (tc *typeChecker) checkAssign(id ast.StmtID, assign *ast.StmtAssignData) {
	span := tc.builder.Stmts.Get(id).Span
	if !tc.assignable(assign.Target) {
		tc.report(diag.TypeMismatch, tc.builder.Exprs.Get(assign.Target).Span,
			"cannot assign to this expression")
		tc.typeExpr(assign.Value)
		return
	}
	targetT := tc.typeExpr(assign.Target)
	valT := tc.typeExpr(assign.Value)

	if assign.Op == ast.AssignSet {
		tc.unify(targetT, valT, tc.builder.Exprs.Get(assign.Value).Span)
		return
	}

	// Augmented assignment follows the binary operator rules.
	if assign.Op == ast.AssignAdd && (tc.isStr(targetT) || tc.isStr(valT)) {
		tc.unify(tc.types.Builtins().Str, targetT, span)
		return
	}
	var op ast.ExprBinaryOp
	switch assign.Op {
	case ast.AssignAdd:
		op = ast.BinAdd
	case ast.AssignSub:
		op = ast.BinSub
	case ast.AssignMul:
		op = ast.BinMul
	case ast.AssignDiv:
		op = ast.BinDiv
	case ast.AssignMod:
		op = ast.BinMod
	}
	resT := tc.arith(op, targetT, valT, span)
	tc.unifies(targetT, resT, span)
}

func (tc *typeChecker) assignable(target ast.ExprID) bool {
	expr := tc.builder.Exprs.Get(target)
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		symID, ok := tc.syms.ExprSyms[target]
		if !ok {
			return true // undefined name, already reported
		}
		sym := tc.syms.Table.Symbols.Get(symID)
		return sym != nil && (sym.Kind == symbols.SymbolLet || sym.Kind == symbols.SymbolParam)
	case ast.ExprMember, ast.ExprIndex:
		return true
	default:
		return false
	}
}

func (tc *typeChecker) checkReturn(id ast.StmtID, ret *ast.StmtReturnData) {
	span := tc.builder.Stmts.Get(id).Span
	if len(tc.retStack) == 0 {
		tc.report(diag.TypeMismatch, span, "return outside of a function")
		if ret.Value.IsValid() {
			tc.typeExpr(ret.Value)
		}
		return
	}
	want := tc.retStack[len(tc.retStack)-1]
	if !ret.Value.IsValid() {
		tc.unify(want, tc.types.Builtins().Unit, span)
		return
	}
	valT := tc.typeExpr(ret.Value)
	tc.unify(want, valT, tc.builder.Exprs.Get(ret.Value).Span)
}
