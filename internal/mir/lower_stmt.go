package mir

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/types"
)

func (fl *funcLowerer) lowerStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	stmt := fl.lw.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		data, _ := fl.lw.builder.Stmts.Block(id)
		for _, sub := range data.Stmts {
			fl.lowerStmt(sub)
		}

	case ast.StmtLet:
		data, _ := fl.lw.builder.Stmts.Let(id)
		fl.lowerLet(data, stmt.Span)

	case ast.StmtAssign:
		data, _ := fl.lw.builder.Stmts.Assign(id)
		fl.lowerAssign(data, stmt.Span)

	case ast.StmtExpr:
		data, _ := fl.lw.builder.Stmts.Expr(id)
		fl.lowerExpr(data.Value)

	case ast.StmtReturn:
		data, _ := fl.lw.builder.Stmts.Return(id)
		fl.lowerReturn(data.Value, stmt.Span)

	case ast.StmtBreak:
		if n := len(fl.loopStack); n > 0 {
			fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: fl.loopStack[n-1].breakTarget}})
		}

	case ast.StmtContinue:
		if n := len(fl.loopStack); n > 0 {
			fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: fl.loopStack[n-1].continueTarget}})
		}

	case ast.StmtPass:

	case ast.StmtIf:
		data, _ := fl.lw.builder.Stmts.If(id)
		fl.lowerIf(data)

	case ast.StmtWhile:
		data, _ := fl.lw.builder.Stmts.While(id)
		fl.lowerWhile(data)

	case ast.StmtFor:
		data, _ := fl.lw.builder.Stmts.For(id)
		fl.lowerFor(data, stmt.Span)

	case ast.StmtMatch:
		data, _ := fl.lw.builder.Stmts.Match(id)
		fl.lowerMatchStmt(data, stmt.Span)
	}
}

func (fl *funcLowerer) lowerLet(data *ast.StmtLetData, span source.Span) {
	value := fl.lowerExpr(data.Value)
	pat := fl.lw.builder.Pats.Get(data.Pattern)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatBinding:
		if sym, ok := fl.lw.syms.BindSyms[data.Pattern]; ok {
			dst := fl.localForSym(sym, pat.Span)
			fl.assign(local(dst), useOf(value))
		}
	case ast.PatWildcard:
	default:
		subject := fl.materialize(value, "let", span)
		fl.lowerDestructure(data.Pattern, subject, span)
	}
}

func (fl *funcLowerer) lowerAssign(data *ast.StmtAssignData, span source.Span) {
	dst, ok := fl.lowerPlace(data.Target)
	if !ok {
		return
	}
	value := fl.lowerExpr(data.Value)
	if data.Op == ast.AssignSet {
		fl.assign(dst, useOf(value))
		return
	}

	targetT := fl.exprType(data.Target, span)
	current := fl.copyOf(dst, targetT)
	if data.Op == ast.AssignAdd && fl.isStr(targetT) {
		fl.callExtern(dst, true, ExternStrConcat, current, value)
		return
	}
	fl.assign(dst, RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    augmentedOp(data.Op),
		Left:  current,
		Right: value,
	}})
}

func augmentedOp(op ast.AssignOp) ast.ExprBinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd
	case ast.AssignSub:
		return ast.BinSub
	case ast.AssignMul:
		return ast.BinMul
	case ast.AssignDiv:
		return ast.BinDiv
	default:
		return ast.BinMod
	}
}

func (fl *funcLowerer) lowerReturn(value ast.ExprID, span source.Span) {
	if !value.IsValid() {
		fl.dropRoots()
		fl.setTerm(Terminator{Kind: TermReturn})
		return
	}
	op := fl.lowerExpr(value)
	fl.dropRoots()
	fl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: op}})
}

func (fl *funcLowerer) lowerIf(data *ast.StmtIfData) {
	cond := fl.lowerExpr(data.Cond)
	thenBB := fl.newBlock()
	joinBB := fl.newBlock()
	elseBB := joinBB
	if data.Else.IsValid() {
		elseBB = fl.newBlock()
	}
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	fl.startBlock(thenBB)
	fl.lowerStmt(data.Then)
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})

	if data.Else.IsValid() {
		fl.startBlock(elseBB)
		fl.lowerStmt(data.Else)
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})
	}
	fl.startBlock(joinBB)
}

func (fl *funcLowerer) lowerWhile(data *ast.StmtWhileData) {
	headBB := fl.newBlock()
	bodyBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})
	fl.startBlock(headBB)
	cond := fl.lowerExpr(data.Cond)
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: exitBB}})

	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: headBB})
	fl.startBlock(bodyBB)
	fl.lowerStmt(data.Body)
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]

	fl.startBlock(exitBB)
}

// lowerFor lowers `for pat in iter` as an index-driven loop. Ranges
// iterate a counter directly; lists, dicts, and strings iterate an index
// against their length.
func (fl *funcLowerer) lowerFor(data *ast.StmtForData, span source.Span) {
	if rng, ok := fl.lw.builder.Exprs.Range(data.Iter); ok {
		fl.lowerForRange(data, rng, span)
		return
	}

	iterT := fl.exprType(data.Iter, span)
	iterable := fl.materialize(fl.lowerExpr(data.Iter), "iter", span)

	intT := fl.intType()
	length := fl.newTemp(intT, "len", span)
	fl.assign(local(length), RValue{Kind: RValueLen, Len: fl.copyOf(local(iterable), iterT)})
	idx := fl.newTemp(intT, "idx", span)
	fl.assign(local(idx), useOf(intConst(intT, "0")))

	headBB := fl.newBlock()
	bodyBB := fl.newBlock()
	stepBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})
	fl.startBlock(headBB)
	cond := fl.newTemp(fl.boolType(), "cond", span)
	fl.assign(local(cond), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    ast.BinLt,
		Left:  fl.copyOf(local(idx), intT),
		Right: fl.copyOf(local(length), intT),
	}})
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
		Cond: fl.copyOf(local(cond), fl.boolType()),
		Then: bodyBB,
		Else: exitBB,
	}})

	fl.startBlock(bodyBB)
	elemT := fl.elemTypeOf(iterT)
	elem := fl.newTemp(elemT, "elem", span)
	fl.assign(local(elem), useOf(fl.copyOf(local(iterable).index(idx), elemT)))
	fl.bindLoopPattern(data.Pattern, elem, span)

	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: stepBB})
	fl.lowerStmt(data.Body)
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: stepBB}})

	fl.startBlock(stepBB)
	fl.assign(local(idx), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    ast.BinAdd,
		Left:  fl.copyOf(local(idx), intT),
		Right: intConst(intT, "1"),
	}})
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})

	fl.startBlock(exitBB)
}

func (fl *funcLowerer) lowerForRange(data *ast.StmtForData, rng *ast.ExprRangeData, span source.Span) {
	intT := fl.intType()
	counter := fl.newTemp(intT, "i", span)
	fl.assign(local(counter), useOf(fl.lowerExpr(rng.Start)))
	limit := fl.materialize(fl.lowerExpr(rng.End), "limit", span)

	headBB := fl.newBlock()
	bodyBB := fl.newBlock()
	stepBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})
	fl.startBlock(headBB)
	op := ast.BinLt
	if rng.Inclusive {
		op = ast.BinLe
	}
	cond := fl.newTemp(fl.boolType(), "cond", span)
	fl.assign(local(cond), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    op,
		Left:  fl.copyOf(local(counter), intT),
		Right: fl.copyOf(local(limit), intT),
	}})
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
		Cond: fl.copyOf(local(cond), fl.boolType()),
		Then: bodyBB,
		Else: exitBB,
	}})

	fl.startBlock(bodyBB)
	fl.bindLoopPattern(data.Pattern, counter, span)
	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: stepBB})
	fl.lowerStmt(data.Body)
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: stepBB}})

	fl.startBlock(stepBB)
	fl.assign(local(counter), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    ast.BinAdd,
		Left:  fl.copyOf(local(counter), intT),
		Right: intConst(intT, "1"),
	}})
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})

	fl.startBlock(exitBB)
}

// bindLoopPattern binds one iteration value: plain bindings assign
// directly, destructuring patterns go through the decision tree.
func (fl *funcLowerer) bindLoopPattern(pattern ast.PatID, value LocalID, span source.Span) {
	pat := fl.lw.builder.Pats.Get(pattern)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatWildcard:
	case ast.PatBinding:
		if sym, ok := fl.lw.syms.BindSyms[pattern]; ok {
			dst := fl.localForSym(sym, pat.Span)
			fl.assign(local(dst), useOf(fl.copyOf(local(value), fl.f.Locals[value].Type)))
		}
	default:
		fl.lowerDestructure(pattern, value, span)
	}
}

func (fl *funcLowerer) isStr(t types.TypeID) bool {
	return t == fl.strType()
}

func (fl *funcLowerer) elemTypeOf(t types.TypeID) types.TypeID {
	tt, ok := fl.lw.types.Lookup(t)
	if !ok {
		return types.NoTypeID
	}
	switch tt.Kind {
	case types.KindList:
		return tt.Elem
	case types.KindDict:
		return tt.Elem // iteration yields keys
	case types.KindStr:
		return fl.strType()
	case types.KindRange:
		return fl.intType()
	default:
		fl.lw.ice(diag.IceLowering, source.Span{}, "iterating non-iterable type")
		return types.NoTypeID
	}
}
