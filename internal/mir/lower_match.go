package mir

import (
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/patmatch"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/types"
)

func (fl *funcLowerer) patOptions() patmatch.Options {
	return patmatch.Options{
		Reporter: fl.lw.reporter,
		Symbols:  fl.lw.syms,
		Sema:     fl.lw.sems,
	}
}

func (fl *funcLowerer) lowerMatchStmt(data *ast.StmtMatchData, span source.Span) {
	if data == nil {
		return
	}
	subject := fl.materialize(fl.lowerExpr(data.Subject), "match", span)
	arms := make([]patmatch.Arm, len(data.Arms))
	for i, arm := range data.Arms {
		arms[i] = patmatch.Arm{Pattern: arm.Pattern, Guard: arm.Guard}
	}
	tree := patmatch.Compile(fl.lw.builder, arms, span, fl.patOptions())
	if tree == nil {
		return
	}
	fl.emitTree(tree, subject, span, func(arm int) {
		fl.lowerStmt(data.Arms[arm].Body)
	})
}

func (fl *funcLowerer) lowerMatchExpr(id ast.ExprID, data *ast.ExprMatchData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	t := fl.exprType(id, span)
	res := fl.newTemp(t, "match", span)

	subject := fl.materialize(fl.lowerExpr(data.Subject), "match", span)
	arms := make([]patmatch.Arm, len(data.Arms))
	for i, arm := range data.Arms {
		arms[i] = patmatch.Arm{Pattern: arm.Pattern, Guard: arm.Guard}
	}
	tree := patmatch.Compile(fl.lw.builder, arms, span, fl.patOptions())
	if tree == nil {
		return unitConst(fl.unitType())
	}
	fl.emitTree(tree, subject, span, func(arm int) {
		fl.assign(local(res), useOf(fl.lowerExpr(data.Arms[arm].Value)))
	})
	return fl.copyOf(local(res), t)
}

// lowerDestructure binds a non-trivial let pattern against a
// materialized subject.
func (fl *funcLowerer) lowerDestructure(pattern ast.PatID, subject LocalID, span source.Span) {
	tree := patmatch.CompileLet(fl.lw.builder, pattern, span, fl.patOptions())
	if tree == nil {
		return
	}
	fl.emitTree(tree, subject, span, func(int) {})
}

// matchEmitter turns one decision tree into blocks. Nodes are emitted
// once and shared via the block map.
type matchEmitter struct {
	fl      *funcLowerer
	tree    *patmatch.Tree
	subject LocalID
	span    source.Span
	arm     func(int)
	join    BlockID
	blocks  map[patmatch.NodeID]BlockID
}

// emitTree branches from the current block into the tree and leaves the
// lowerer positioned on the join block.
func (fl *funcLowerer) emitTree(tree *patmatch.Tree, subject LocalID, span source.Span, arm func(int)) {
	em := &matchEmitter{
		fl:      fl,
		tree:    tree,
		subject: subject,
		span:    span,
		arm:     arm,
		join:    fl.newBlock(),
		blocks:  make(map[patmatch.NodeID]BlockID),
	}
	pre := fl.cur
	entry := em.emitNode(tree.Root)
	fl.startBlock(pre)
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: entry}})
	fl.startBlock(em.join)
}

func (em *matchEmitter) emitNode(id patmatch.NodeID) BlockID {
	if bb, ok := em.blocks[id]; ok {
		return bb
	}
	node := em.tree.Node(id)
	bb := em.fl.newBlock()
	em.blocks[id] = bb
	em.fl.startBlock(bb)

	if node == nil {
		em.fl.lw.ice(diag.IceDecisionTree, em.span, "decision tree references a missing node")
		em.fl.setTerm(Terminator{Kind: TermUnreachable})
		return bb
	}

	switch node.Kind {
	case patmatch.NodeLeaf:
		em.emitLeaf(node)
	case patmatch.NodeSwitch:
		em.emitSwitch(node)
	case patmatch.NodeFail:
		// No arm matched; exhaustive matches never reach this.
		em.fl.setTerm(Terminator{Kind: TermUnreachable})
	default:
		em.fl.lw.ice(diag.IceDecisionTree, em.span, "invalid decision tree node")
		em.fl.setTerm(Terminator{Kind: TermUnreachable})
	}
	return bb
}

func (em *matchEmitter) emitLeaf(node *patmatch.Node) {
	fl := em.fl
	for _, binding := range node.Bindings {
		em.bind(binding)
	}
	if node.Guard.IsValid() {
		cond := fl.lowerExpr(node.Guard)
		guardTail := fl.cur
		bodyBB := fl.newBlock()
		elseBB := em.emitNode(node.Else)
		// emitNode moved the cursor; terminate the guard block itself.
		fl.startBlock(guardTail)
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: elseBB}})
		fl.startBlock(bodyBB)
	}
	em.arm(node.Arm)
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: em.join}})
}

func (em *matchEmitter) emitSwitch(node *patmatch.Node) {
	fl := em.fl
	value, t := em.placeAt(node.Path)

	switch node.Test {
	case patmatch.TestEnumTag:
		intT := fl.intType()
		tag := fl.newTemp(intT, "tag", em.span)
		fl.assign(local(tag), RValue{Kind: RValueTagOf, TagOf: fl.copyOf(value, t)})
		head := fl.cur
		cases := make([]SwitchTagCase, len(node.Cases))
		for i, c := range node.Cases {
			cases[i] = SwitchTagCase{Tag: c.Tag, Target: em.emitNode(c.Node)}
		}
		def := NoBlockID
		if node.Default.IsValid() {
			def = em.emitNode(node.Default)
		}
		fl.startBlock(head)
		fl.setTerm(Terminator{Kind: TermSwitchTag, SwitchTag: SwitchTagTerm{
			Value:   fl.copyOf(local(tag), intT),
			Cases:   cases,
			Default: def,
		}})

	case patmatch.TestLiteral:
		head := fl.cur
		cases := make([]SwitchConstCase, len(node.Cases))
		for i, c := range node.Cases {
			cases[i] = SwitchConstCase{
				Value:  em.litConst(c),
				Target: em.emitNode(c.Node),
			}
		}
		def := NoBlockID
		if node.Default.IsValid() {
			def = em.emitNode(node.Default)
		}
		fl.startBlock(head)
		fl.setTerm(Terminator{Kind: TermSwitchConst, SwitchConst: SwitchConstTerm{
			Value:   fl.copyOf(value, t),
			Cases:   cases,
			Default: def,
		}})

	case patmatch.TestListLen, patmatch.TestListMinLen:
		if len(node.Cases) != 1 {
			fl.lw.ice(diag.IceDecisionTree, em.span, "list length test with %d cases", len(node.Cases))
			fl.setTerm(Terminator{Kind: TermUnreachable})
			return
		}
		intT := fl.intType()
		n := fl.newTemp(intT, "len", em.span)
		fl.assign(local(n), RValue{Kind: RValueLen, Len: fl.copyOf(value, t)})
		op := ast.BinEq
		if node.Test == patmatch.TestListMinLen {
			op = ast.BinGe
		}
		cond := fl.newTemp(fl.boolType(), "cond", em.span)
		fl.assign(local(cond), RValue{Kind: RValueBinary, Binary: BinaryOp{
			Op:    op,
			Left:  fl.copyOf(local(n), intT),
			Right: intConst(intT, itoa(int(node.Cases[0].Tag))),
		}})
		head := fl.cur
		hit := em.emitNode(node.Cases[0].Node)
		miss := em.emitNode(node.Default)
		fl.startBlock(head)
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
			Cond: fl.copyOf(local(cond), fl.boolType()),
			Then: hit,
			Else: miss,
		}})
	}
}

// bind assigns one pattern variable from its path. A trailing rest step
// becomes a slice of the remaining elements.
func (em *matchEmitter) bind(binding patmatch.Binding) {
	fl := em.fl
	dst := fl.localForSym(binding.Sym, em.span)
	dstT := fl.f.Locals[dst].Type

	n := len(binding.Path)
	if n > 0 && binding.Path[n-1].Kind == patmatch.StepRest {
		rest := binding.Path[n-1]
		base, baseT := em.placeAt(binding.Path[:n-1])
		fl.assign(local(dst), RValue{Kind: RValueSlice, Slice: SliceOp{
			List:  fl.copyOf(base, baseT),
			Front: rest.Index,
			Back:  rest.Aux,
		}})
		return
	}
	p, _ := em.placeAt(binding.Path)
	fl.assign(local(dst), useOf(fl.copyOf(p, dstT)))
}

// placeAt translates a tree path into a place rooted at the subject.
// The type of the addressed value is tracked only as far as lowering
// needs it.
func (em *matchEmitter) placeAt(path patmatch.Path) (Place, types.TypeID) {
	p := local(em.subject)
	t := em.fl.f.Locals[em.subject].Type
	for _, step := range path {
		switch step.Kind {
		case patmatch.StepField:
			p = p.field(step.Index)
		case patmatch.StepPayload:
			p = p.payload(step.Index)
		case patmatch.StepElem:
			p = p.elem(step.Index)
		case patmatch.StepElemBack:
			p = p.elemBack(step.Index)
		default:
			em.fl.lw.ice(diag.IceDecisionTree, em.span, "rest step in the middle of a path")
		}
		t = types.NoTypeID
	}
	return p, t
}

func (em *matchEmitter) litConst(c patmatch.Case) Const {
	b := em.fl.lw.types.Builtins()
	text := em.fl.lw.builder.Strings.MustLookup(c.LitVal)
	switch c.LitKind {
	case ast.LitInt:
		return Const{Kind: ConstInt, Type: b.Int, Text: strings.ReplaceAll(text, "_", "")}
	case ast.LitFloat:
		return Const{Kind: ConstFloat, Type: b.Float, Text: strings.ReplaceAll(text, "_", "")}
	case ast.LitBool:
		return Const{Kind: ConstBool, Type: b.Bool, Bool: text == "true"}
	case ast.LitString:
		return Const{Kind: ConstStr, Type: b.Str, Text: text}
	default:
		return Const{Kind: ConstUnit, Type: b.Unit}
	}
}
