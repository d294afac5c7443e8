package mir

import (
	"strconv"
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/mono"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// lowerExpr evaluates one expression into an operand, emitting whatever
// instructions and blocks the evaluation needs.
func (fl *funcLowerer) lowerExpr(id ast.ExprID) Operand {
	if !id.IsValid() {
		return unitConst(fl.unitType())
	}
	expr := fl.lw.builder.Exprs.Get(id)
	if expr == nil {
		return unitConst(fl.unitType())
	}
	switch expr.Kind {
	case ast.ExprIdent:
		return fl.lowerIdent(id, expr.Span)
	case ast.ExprLit:
		data, _ := fl.lw.builder.Exprs.Literal(id)
		return fl.lowerLiteral(id, data, expr.Span)
	case ast.ExprBinary:
		data, _ := fl.lw.builder.Exprs.Binary(id)
		return fl.lowerBinary(id, data, expr.Span)
	case ast.ExprUnary:
		data, _ := fl.lw.builder.Exprs.Unary(id)
		return fl.lowerUnary(id, data, expr.Span)
	case ast.ExprCall:
		data, _ := fl.lw.builder.Exprs.Call(id)
		return fl.lowerCall(id, data, expr.Span)
	case ast.ExprMember:
		data, _ := fl.lw.builder.Exprs.Member(id)
		return fl.lowerMember(id, data, expr.Span)
	case ast.ExprIndex:
		data, _ := fl.lw.builder.Exprs.Index(id)
		return fl.lowerIndex(id, data, expr.Span)
	case ast.ExprStructInit:
		data, _ := fl.lw.builder.Exprs.StructInit(id)
		return fl.lowerStructInit(id, data, expr.Span)
	case ast.ExprList:
		data, _ := fl.lw.builder.Exprs.List(id)
		return fl.lowerList(id, data, expr.Span)
	case ast.ExprDict:
		data, _ := fl.lw.builder.Exprs.Dict(id)
		return fl.lowerDict(id, data, expr.Span)
	case ast.ExprComprehension:
		data, _ := fl.lw.builder.Exprs.Comprehension(id)
		return fl.lowerComprehension(id, data, expr.Span)
	case ast.ExprRange:
		data, _ := fl.lw.builder.Exprs.Range(id)
		return fl.lowerRangeValue(id, data, expr.Span)
	case ast.ExprIf:
		data, _ := fl.lw.builder.Exprs.If(id)
		return fl.lowerIfExpr(id, data, expr.Span)
	case ast.ExprMatch:
		data, _ := fl.lw.builder.Exprs.Match(id)
		return fl.lowerMatchExpr(id, data, expr.Span)
	case ast.ExprAwait:
		data, _ := fl.lw.builder.Exprs.Await(id)
		return fl.lowerAwait(id, data, expr.Span)
	case ast.ExprSpawn:
		data, _ := fl.lw.builder.Exprs.Spawn(id)
		return fl.lowerSpawn(id, data, expr.Span)
	case ast.ExprLambda:
		data, _ := fl.lw.builder.Exprs.Lambda(id)
		return fl.lowerLambda(id, data, expr.Span)
	case ast.ExprFString:
		data, _ := fl.lw.builder.Exprs.FString(id)
		return fl.lowerFString(id, data, expr.Span)
	default:
		fl.lw.ice(diag.IceLowering, expr.Span, "unhandled expression kind %d", expr.Kind)
		return unitConst(fl.unitType())
	}
}

func (fl *funcLowerer) lowerIdent(id ast.ExprID, span source.Span) Operand {
	symID, ok := fl.lw.syms.ExprSyms[id]
	if !ok {
		fl.lw.ice(diag.IceLowering, span, "unresolved identifier reached lowering")
		return unitConst(fl.unitType())
	}
	sym := fl.lw.syms.Table.Symbols.Get(symID)
	if sym == nil {
		return unitConst(fl.unitType())
	}
	switch sym.Kind {
	case symbols.SymbolLet, symbols.SymbolParam:
		l := fl.localForSym(symID, span)
		return fl.copyOf(local(l), fl.f.Locals[l].Type)
	case symbols.SymbolFunction:
		return fl.fnValue(id, symID, sym, span)
	default:
		fl.lw.ice(diag.IceLowering, span, "'%s' is not a value", fl.lw.symName(symID))
		return unitConst(fl.unitType())
	}
}

func (fl *funcLowerer) lowerLiteral(id ast.ExprID, data *ast.ExprLiteralData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	t := fl.exprType(id, span)
	text := fl.lw.builder.Strings.MustLookup(data.Value)
	switch data.Kind {
	case ast.LitInt:
		return intConst(t, strings.ReplaceAll(text, "_", ""))
	case ast.LitFloat:
		return Operand{Kind: OperandConst, Type: t, Const: Const{
			Kind: ConstFloat, Type: t, Text: strings.ReplaceAll(text, "_", ""),
		}}
	case ast.LitString:
		return strConst(t, text)
	case ast.LitBool:
		return boolConst(t, text == "true")
	case ast.LitNone:
		return fl.makeOption(sema.OptionTagNone, Operand{}, false, t, span)
	default:
		return unitConst(fl.unitType())
	}
}

func (fl *funcLowerer) lowerBinary(id ast.ExprID, data *ast.ExprBinaryData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	switch data.Op {
	case ast.BinAnd, ast.BinOr:
		return fl.lowerShortCircuit(data, span)
	case ast.BinIs, ast.BinIsNot:
		return fl.lowerNoneTest(data, span)
	}

	left := fl.lowerExpr(data.Left)
	right := fl.lowerExpr(data.Right)
	t := fl.exprType(id, span)

	// String concatenation goes through the runtime.
	if data.Op == ast.BinAdd && fl.isStr(t) {
		dst := fl.newTemp(t, "str", span)
		fl.callExtern(local(dst), true, ExternStrConcat, left, right)
		return fl.copyOf(local(dst), t)
	}

	dst := fl.newTemp(t, "bin", span)
	fl.assign(local(dst), RValue{Kind: RValueBinary, Binary: BinaryOp{Op: data.Op, Left: left, Right: right}})
	return fl.copyOf(local(dst), t)
}

// lowerShortCircuit evaluates `and`/`or` without touching the right
// operand when the left already decides the result.
func (fl *funcLowerer) lowerShortCircuit(data *ast.ExprBinaryData, span source.Span) Operand {
	boolT := fl.boolType()
	res := fl.newTemp(boolT, "sc", span)

	left := fl.lowerExpr(data.Left)
	fl.assign(local(res), useOf(left))

	rhsBB := fl.newBlock()
	joinBB := fl.newBlock()
	cond := fl.copyOf(local(res), boolT)
	if data.Op == ast.BinAnd {
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: rhsBB, Else: joinBB}})
	} else {
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: joinBB, Else: rhsBB}})
	}

	fl.startBlock(rhsBB)
	right := fl.lowerExpr(data.Right)
	fl.assign(local(res), useOf(right))
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})

	fl.startBlock(joinBB)
	return fl.copyOf(local(res), boolT)
}

// lowerNoneTest lowers `x is None` / `x is not None` as a tag compare.
func (fl *funcLowerer) lowerNoneTest(data *ast.ExprBinaryData, span source.Span) Operand {
	value := fl.lowerExpr(data.Left)
	intT := fl.intType()
	tag := fl.newTemp(intT, "tag", span)
	fl.assign(local(tag), RValue{Kind: RValueTagOf, TagOf: value})

	op := ast.BinEq
	if data.Op == ast.BinIsNot {
		op = ast.BinNe
	}
	boolT := fl.boolType()
	res := fl.newTemp(boolT, "is", span)
	fl.assign(local(res), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    op,
		Left:  fl.copyOf(local(tag), intT),
		Right: intConst(intT, itoa(int(sema.OptionTagNone))),
	}})
	return fl.copyOf(local(res), boolT)
}

func (fl *funcLowerer) lowerUnary(id ast.ExprID, data *ast.ExprUnaryData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	operand := fl.lowerExpr(data.Operand)
	if data.Op == ast.UnPos {
		return operand
	}
	t := fl.exprType(id, span)
	dst := fl.newTemp(t, "un", span)
	fl.assign(local(dst), RValue{Kind: RValueUnary, Unary: UnaryOp{Op: data.Op, Operand: operand}})
	return fl.copyOf(local(dst), t)
}

func (fl *funcLowerer) lowerCall(id ast.ExprID, data *ast.ExprCallData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}

	// Some(x) carries a variant ref on the call itself.
	if ref, ok := fl.lw.sems.VariantRefs[id]; ok {
		arg := Operand{}
		hasArg := false
		if len(data.Args) > 0 {
			arg = fl.lowerExpr(data.Args[0])
			hasArg = true
		}
		return fl.makeOption(ref.Tag, arg, hasArg, fl.exprType(id, span), span)
	}

	// Enum.Variant(payload...) constructs a tagged value in place.
	if member, ok := fl.lw.builder.Exprs.Member(data.Target); ok {
		if ref, refOK := fl.lw.sems.VariantRefs[data.Target]; refOK {
			args := make([]Operand, len(data.Args))
			for i, arg := range data.Args {
				args[i] = fl.lowerExpr(arg)
			}
			return fl.makeEnumValue(ref, args, fl.exprType(id, span), span)
		}
		if symID, bound := fl.lw.sems.CallTargets[id]; bound {
			return fl.lowerDirectCall(id, symID, data.Target, member.Target, data.Args, span)
		}
	}

	if symID, bound := fl.lw.sems.CallTargets[id]; bound {
		return fl.lowerDirectCall(id, symID, data.Target, ast.NoExprID, data.Args, span)
	}

	// Builtins resolve through the target identifier, not CallTargets.
	if _, isIdent := fl.lw.builder.Exprs.Ident(data.Target); isIdent {
		if symID, bound := fl.lw.syms.ExprSyms[data.Target]; bound {
			sym := fl.lw.syms.Table.Symbols.Get(symID)
			if sym != nil && sym.Flags&symbols.SymbolFlagBuiltin != 0 {
				return fl.lowerBuiltinCall(id, symID, data.Args, span)
			}
		}
	}

	// Anything else is a call through a closure value.
	callee := fl.lowerExpr(data.Target)
	args := make([]Operand, len(data.Args))
	for i, arg := range data.Args {
		args[i] = fl.lowerExpr(arg)
	}
	return fl.emitCall(Callee{Kind: CalleeValue, Value: callee}, args, fl.exprType(id, span), span)
}

// lowerDirectCall handles a call bound to a named function. targetExpr
// is the call target (where generic instances are recorded), recvExpr
// the receiver expression for method calls, NoExprID otherwise.
func (fl *funcLowerer) lowerDirectCall(id ast.ExprID, symID symbols.SymbolID, targetExpr, recvExpr ast.ExprID, argExprs []ast.ExprID, span source.Span) Operand {
	sig := fl.lw.sems.FnSigs[symID]
	var args []Operand

	if sig != nil && sig.Recv.IsValid() && recvExpr.IsValid() {
		if len(sig.Params) == len(argExprs)+1 {
			args = append(args, fl.lowerExpr(recvExpr))
		} else {
			// Receiver of a self-less method is evaluated for effect only.
			fl.lowerExpr(recvExpr)
		}
	}
	for _, arg := range argExprs {
		args = append(args, fl.lowerExpr(arg))
	}
	if sig != nil && len(args) < len(sig.Params) {
		args = fl.appendDefaults(sig, args, span)
	}

	typeArgs := fl.instanceArgs(id, targetExpr)
	if sig != nil && sig.Recv.IsValid() && recvExpr.IsValid() {
		typeArgs = fl.withRecvArgs(recvExpr, sig, typeArgs, span)
	}
	fid := fl.funcFor(symID, typeArgs, span)
	if fid == NoFuncID {
		return unitConst(fl.unitType())
	}
	return fl.emitCall(Callee{Kind: CalleeFunc, Func: fid, Name: fl.lw.symName(symID)},
		args, fl.exprType(id, span), span)
}

// appendDefaults fills omitted trailing arguments from the declared
// parameter defaults.
func (fl *funcLowerer) appendDefaults(sig *sema.FnSig, args []Operand, span source.Span) []Operand {
	fn, ok := fl.lw.builder.Items.Fn(sig.Item)
	if !ok {
		return args
	}
	for i := len(args); i < len(fn.Params); i++ {
		def := fn.Params[i].Default
		if !def.IsValid() {
			fl.lw.ice(diag.IceLowering, span, "missing argument without a default")
			return args
		}
		args = append(args, fl.lowerExpr(def))
	}
	return args
}

// withRecvArgs prepends the receiver's struct type arguments to a
// method's own, matching the instance parameter order.
func (fl *funcLowerer) withRecvArgs(recvExpr ast.ExprID, sig *sema.FnSig, own []types.TypeID, span source.Span) []types.TypeID {
	info := fl.lw.sems.Structs[sig.Recv]
	if info == nil || len(info.TypeParams) == 0 {
		return own
	}
	recvT := fl.exprType(recvExpr, span)
	structArgs := fl.lw.types.Args(recvT)
	combined := make([]types.TypeID, 0, len(structArgs)+len(own))
	combined = append(combined, structArgs...)
	return append(combined, own...)
}

// instanceArgs finds the inferred type arguments for a generic call.
// Direct calls record them on the call node, method and value mentions
// on the target.
func (fl *funcLowerer) instanceArgs(call ast.ExprID, target ast.ExprID) []types.TypeID {
	if inst, ok := fl.lw.sems.Instances[call]; ok {
		return inst.TypeArgs
	}
	if target.IsValid() {
		if inst, ok := fl.lw.sems.Instances[target]; ok {
			return inst.TypeArgs
		}
	}
	return nil
}

func (fl *funcLowerer) lowerBuiltinCall(id ast.ExprID, symID symbols.SymbolID, args []ast.ExprID, span source.Span) Operand {
	name := fl.lw.symName(symID)
	switch name {
	case "print", "println":
		if len(args) != 1 {
			return unitConst(fl.unitType())
		}
		fl.emitPrint(fl.lowerExpr(args[0]), name == "println", span)
		return unitConst(fl.unitType())

	case "len":
		if len(args) != 1 {
			return intConst(fl.intType(), "0")
		}
		value := fl.lowerExpr(args[0])
		dst := fl.newTemp(fl.intType(), "len", span)
		fl.assign(local(dst), RValue{Kind: RValueLen, Len: value})
		return fl.copyOf(local(dst), fl.intType())

	default:
		fl.lw.ice(diag.IceLowering, span, "unknown builtin '%s'", name)
		return unitConst(fl.unitType())
	}
}

// emitPrint stringifies a value and hands it to the target's stdout
// entry point.
func (fl *funcLowerer) emitPrint(value Operand, newline bool, span source.Span) {
	strT := fl.strType()
	s := fl.newTemp(strT, "str", span)
	fl.callExtern(local(s), true, ExternToString, value)
	if newline {
		fl.callExtern(local(s), true, ExternStrConcat, fl.copyOf(local(s), strT), strConst(strT, "\n"))
	}
	if fl.lw.out.Target == TargetWasm {
		intT := fl.intType()
		n := fl.newTemp(intT, "len", span)
		fl.assign(local(n), RValue{Kind: RValueLen, Len: fl.copyOf(local(s), strT)})
		fl.callExtern(Place{Local: NoLocalID}, false, ExternHostWrite,
			fl.copyOf(local(s), strT), fl.copyOf(local(n), intT))
		return
	}
	fl.callExtern(Place{Local: NoLocalID}, false, ExternWrite, fl.copyOf(local(s), strT))
}

// emitCall emits a call instruction, materializing a destination unless
// the result type is unit.
func (fl *funcLowerer) emitCall(callee Callee, args []Operand, ret types.TypeID, span source.Span) Operand {
	if ret == fl.unitType() || ret == types.NoTypeID {
		fl.call(Place{Local: NoLocalID}, false, callee, args)
		return unitConst(fl.unitType())
	}
	dst := fl.newTemp(ret, "call", span)
	fl.call(local(dst), true, callee, args)
	return fl.copyOf(local(dst), ret)
}

func (fl *funcLowerer) lowerMember(id ast.ExprID, data *ast.ExprMemberData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}

	// Module member bound by the resolver.
	if symID, ok := fl.lw.syms.ExprSyms[id]; ok {
		sym := fl.lw.syms.Table.Symbols.Get(symID)
		if sym != nil {
			switch sym.Kind {
			case symbols.SymbolFunction:
				return fl.fnValue(id, symID, sym, span)
			case symbols.SymbolLet:
				l := fl.localForSym(symID, span)
				return fl.copyOf(local(l), fl.f.Locals[l].Type)
			}
		}
	}

	// Enum.Variant in value position.
	if ref, ok := fl.lw.sems.VariantRefs[id]; ok {
		t := fl.exprType(id, span)
		if tt, found := fl.lw.types.Lookup(t); found && tt.Kind == types.KindFn {
			return fl.ctorValue(ref, t, span)
		}
		return fl.makeEnumValue(ref, nil, t, span)
	}

	t := fl.exprType(id, span)
	targetT := fl.exprType(data.Target, span)
	field := fl.lw.syms.Table.Strings.MustLookup(data.Field)

	if idx, _, ok := fl.fieldSlot(targetT, data.Field); ok {
		p, placed := fl.lowerPlace(data.Target)
		if !placed {
			base := fl.materialize(fl.lowerExpr(data.Target), "recv", span)
			p = local(base)
		}
		return fl.copyOf(p.field(idx), t)
	}

	// Bound method in value position: close over the receiver.
	if methodSym, ok := fl.methodSym(targetT, data.Field); ok {
		return fl.methodValue(id, methodSym, data.Target, t, span)
	}

	fl.lw.ice(diag.IceLowering, data.FieldSpan, "member '%s' survived checking unresolved", field)
	return unitConst(fl.unitType())
}

func (fl *funcLowerer) lowerIndex(id ast.ExprID, data *ast.ExprIndexData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	t := fl.exprType(id, span)
	base := fl.materialize(fl.lowerExpr(data.Target), "idxbase", span)
	idx := fl.materialize(fl.lowerExpr(data.Index), "idx", span)
	return fl.copyOf(local(base).index(idx), t)
}

func (fl *funcLowerer) lowerStructInit(id ast.ExprID, data *ast.ExprStructInitData, span source.Span) Operand {
	if data == nil {
		return unitConst(fl.unitType())
	}
	t := fl.exprType(id, span)
	info := fl.structInfoOf(t)
	if info == nil {
		fl.lw.ice(diag.IceLowering, span, "struct initialization without layout")
		return unitConst(fl.unitType())
	}
	p := fl.alloc(uint32(len(info.Fields)), t, "struct", span)
	for _, field := range data.Fields {
		value := fl.lowerExpr(field.Value)
		for i, decl := range info.Fields {
			if decl.Name == field.Name {
				fl.assign(local(p).field(uint32(i)), useOf(value))
				break
			}
		}
	}
	return fl.copyOf(local(p), t)
}

// lowerList builds a list cell: length header followed by the elements.
func (fl *funcLowerer) lowerList(id ast.ExprID, data *ast.ExprListData, span source.Span) Operand {
	t := fl.exprType(id, span)
	n := 0
	if data != nil {
		n = len(data.Elems)
	}
	p := fl.alloc(uint32(1+n), t, "list", span)
	fl.assign(local(p).field(0), useOf(intConst(fl.intType(), itoa(n))))
	if data != nil {
		for i, elem := range data.Elems {
			fl.assign(local(p).elem(uint32(i)), useOf(fl.lowerExpr(elem)))
		}
	}
	return fl.copyOf(local(p), t)
}

// lowerDict builds a dict cell: entry count followed by key/value pairs.
func (fl *funcLowerer) lowerDict(id ast.ExprID, data *ast.ExprDictData, span source.Span) Operand {
	t := fl.exprType(id, span)
	n := 0
	if data != nil {
		n = len(data.Entries)
	}
	p := fl.alloc(uint32(1+2*n), t, "dict", span)
	fl.assign(local(p).field(0), useOf(intConst(fl.intType(), itoa(n))))
	if data != nil {
		for i, entry := range data.Entries {
			fl.assign(local(p).elem(uint32(2*i)), useOf(fl.lowerExpr(entry.Key)))
			fl.assign(local(p).elem(uint32(2*i+1)), useOf(fl.lowerExpr(entry.Value)))
		}
	}
	return fl.copyOf(local(p), t)
}

// lowerComprehension builds an empty list and appends one element per
// iteration that passes the filter.
func (fl *funcLowerer) lowerComprehension(id ast.ExprID, data *ast.ExprComprehensionData, span source.Span) Operand {
	t := fl.exprType(id, span)
	acc := fl.alloc(1, t, "list", span)
	fl.assign(local(acc).field(0), useOf(intConst(fl.intType(), "0")))

	body := func() {
		if data.Cond.IsValid() {
			cond := fl.lowerExpr(data.Cond)
			keepBB := fl.newBlock()
			skipBB := fl.newBlock()
			fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: keepBB, Else: skipBB}})
			fl.startBlock(keepBB)
			elem := fl.lowerExpr(data.Elem)
			fl.callExtern(local(acc), true, ExternListPush, fl.copyOf(local(acc), t), elem)
			fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: skipBB}})
			fl.startBlock(skipBB)
			return
		}
		elem := fl.lowerExpr(data.Elem)
		fl.callExtern(local(acc), true, ExternListPush, fl.copyOf(local(acc), t), elem)
	}
	fl.emitIteration(data.Pattern, data.Iter, span, body)
	return fl.copyOf(local(acc), t)
}

// emitIteration drives `pattern in iter` and invokes body once per
// element, sharing the loop shape with for statements.
func (fl *funcLowerer) emitIteration(pattern ast.PatID, iter ast.ExprID, span source.Span, body func()) {
	intT := fl.intType()

	var counter, limit LocalID
	cmp := ast.BinLt
	indexed := false
	var iterable LocalID
	var iterT types.TypeID

	if rng, ok := fl.lw.builder.Exprs.Range(iter); ok {
		counter = fl.newTemp(intT, "i", span)
		fl.assign(local(counter), useOf(fl.lowerExpr(rng.Start)))
		limit = fl.materialize(fl.lowerExpr(rng.End), "limit", span)
		if rng.Inclusive {
			cmp = ast.BinLe
		}
	} else {
		indexed = true
		iterT = fl.exprType(iter, span)
		iterable = fl.materialize(fl.lowerExpr(iter), "iter", span)
		limit = fl.newTemp(intT, "len", span)
		fl.assign(local(limit), RValue{Kind: RValueLen, Len: fl.copyOf(local(iterable), iterT)})
		counter = fl.newTemp(intT, "idx", span)
		fl.assign(local(counter), useOf(intConst(intT, "0")))
	}

	headBB := fl.newBlock()
	bodyBB := fl.newBlock()
	stepBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headBB}})
	fl.startBlock(headBB)
	cond := fl.newTemp(fl.boolType(), "cond", span)
	fl.assign(local(cond), RValue{Kind: RValueBinary, Binary: BinaryOp{
		Op:    cmp,
		Left:  fl.copyOf(local(counter), intT),
		Right: fl.copyOf(local(limit), intT),
	}})
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
		Cond: fl.copyOf(local(cond), fl.boolType()),
		Then: bodyBB,
		Else: exitBB,
	}})

	fl.startBlock(bodyBB)
	if indexed {
		elemT := fl.elemTypeOf(iterT)
		elem := fl.newTemp(elemT, "elem", span)
		fl.assign(local(elem), useOf(fl.copyOf(local(iterable).index(counter), elemT)))
		fl.bindLoopPattern(pattern, elem, span)
	} else {
		fl.bindLoopPattern(pattern, counter, span)
	}
	body()
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

// lowerRangeValue materializes a range used as a value: start, end, and
// the inclusive flag.
func (fl *funcLowerer) lowerRangeValue(id ast.ExprID, data *ast.ExprRangeData, span source.Span) Operand {
	t := fl.exprType(id, span)
	p := fl.alloc(3, t, "range", span)
	fl.assign(local(p).field(0), useOf(fl.lowerExpr(data.Start)))
	fl.assign(local(p).field(1), useOf(fl.lowerExpr(data.End)))
	fl.assign(local(p).field(2), useOf(boolConst(fl.boolType(), data.Inclusive)))
	return fl.copyOf(local(p), t)
}

func (fl *funcLowerer) lowerIfExpr(id ast.ExprID, data *ast.ExprIfData, span source.Span) Operand {
	t := fl.exprType(id, span)
	res := fl.newTemp(t, "if", span)

	cond := fl.lowerExpr(data.Cond)
	thenBB := fl.newBlock()
	elseBB := fl.newBlock()
	joinBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	fl.startBlock(thenBB)
	fl.assign(local(res), useOf(fl.lowerExpr(data.Then)))
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})

	fl.startBlock(elseBB)
	fl.assign(local(res), useOf(fl.lowerExpr(data.Else)))
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})

	fl.startBlock(joinBB)
	return fl.copyOf(local(res), t)
}

func (fl *funcLowerer) lowerAwait(id ast.ExprID, data *ast.ExprAwaitData, span source.Span) Operand {
	handle := fl.lowerExpr(data.Value)
	t := fl.exprType(id, span)
	dst := fl.newTemp(t, "await", span)
	fl.callExtern(local(dst), true, ExternTaskJoin, handle)
	return fl.copyOf(local(dst), t)
}

// lowerFString stringifies each placeholder and concatenates the parts
// in source order.
func (fl *funcLowerer) lowerFString(id ast.ExprID, data *ast.ExprFStringData, span source.Span) Operand {
	strT := fl.strType()
	if data == nil || len(data.Parts) == 0 {
		return strConst(strT, "")
	}

	acc := fl.newTemp(strT, "fstr", span)
	fl.assign(local(acc), useOf(strConst(strT, "")))
	for _, part := range data.Parts {
		if part.Expr.IsValid() {
			value := fl.lowerExpr(part.Expr)
			piece := fl.newTemp(strT, "str", span)
			fl.callExtern(local(piece), true, ExternToString, value)
			fl.callExtern(local(acc), true, ExternStrConcat,
				fl.copyOf(local(acc), strT), fl.copyOf(local(piece), strT))
			continue
		}
		text := fl.lw.builder.Strings.MustLookup(part.Text)
		fl.callExtern(local(acc), true, ExternStrConcat,
			fl.copyOf(local(acc), strT), strConst(strT, text))
	}
	return fl.copyOf(local(acc), strT)
}

// lowerPlace resolves an assignable location. Returns false for targets
// that are not places.
func (fl *funcLowerer) lowerPlace(target ast.ExprID) (Place, bool) {
	expr := fl.lw.builder.Exprs.Get(target)
	if expr == nil {
		return Place{Local: NoLocalID}, false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		symID, ok := fl.lw.syms.ExprSyms[target]
		if !ok {
			return Place{Local: NoLocalID}, false
		}
		sym := fl.lw.syms.Table.Symbols.Get(symID)
		if sym == nil || (sym.Kind != symbols.SymbolLet && sym.Kind != symbols.SymbolParam) {
			return Place{Local: NoLocalID}, false
		}
		return local(fl.localForSym(symID, expr.Span)), true

	case ast.ExprMember:
		data, _ := fl.lw.builder.Exprs.Member(target)
		if data == nil {
			return Place{Local: NoLocalID}, false
		}
		targetT := fl.exprType(data.Target, expr.Span)
		idx, _, ok := fl.fieldSlot(targetT, data.Field)
		if !ok {
			return Place{Local: NoLocalID}, false
		}
		base, placed := fl.lowerPlace(data.Target)
		if !placed {
			base = local(fl.materialize(fl.lowerExpr(data.Target), "recv", expr.Span))
		}
		return base.field(idx), true

	case ast.ExprIndex:
		data, _ := fl.lw.builder.Exprs.Index(target)
		if data == nil {
			return Place{Local: NoLocalID}, false
		}
		base, placed := fl.lowerPlace(data.Target)
		if !placed {
			base = local(fl.materialize(fl.lowerExpr(data.Target), "idxbase", expr.Span))
		}
		idx := fl.materialize(fl.lowerExpr(data.Index), "idx", expr.Span)
		return base.index(idx), true

	default:
		return Place{Local: NoLocalID}, false
	}
}

// materialize pins an operand into a local so it can be projected or
// reused.
func (fl *funcLowerer) materialize(op Operand, hint string, span source.Span) LocalID {
	if op.Kind == OperandCopy && len(op.Place.Proj) == 0 && op.Place.Local != NoLocalID {
		return op.Place.Local
	}
	dst := fl.newTemp(op.Type, hint, span)
	fl.assign(local(dst), useOf(op))
	return dst
}

// makeOption allocates a built-in Option cell.
func (fl *funcLowerer) makeOption(tag uint32, payload Operand, hasPayload bool, t types.TypeID, span source.Span) Operand {
	p := fl.alloc(optionWords, t, "opt", span)
	fl.assign(local(p).tag(), useOf(intConst(fl.intType(), itoa(int(tag)))))
	if hasPayload {
		fl.assign(local(p).payload(0), useOf(payload))
	}
	return fl.copyOf(local(p), t)
}

// makeEnumValue allocates a tagged cell for a user enum variant, or an
// Option cell when the ref has no enum symbol.
func (fl *funcLowerer) makeEnumValue(ref sema.VariantRef, payloads []Operand, t types.TypeID, span source.Span) Operand {
	words := uint32(optionWords)
	if ref.Enum.IsValid() {
		if layout := fl.lw.out.enumLayoutFor(ref.Enum); layout != nil {
			words = 1 + layout.PayloadWords
		}
	}
	p := fl.alloc(words, t, "enum", span)
	fl.assign(local(p).tag(), useOf(intConst(fl.intType(), itoa(int(ref.Tag)))))
	for i, payload := range payloads {
		fl.assign(local(p).payload(uint32(i)), useOf(payload))
	}
	return fl.copyOf(local(p), t)
}

func (m *Module) enumLayoutFor(sym symbols.SymbolID) *EnumLayout {
	for i := range m.Enums {
		if m.Enums[i].Sym == sym {
			return &m.Enums[i]
		}
	}
	return nil
}

// structInfoOf resolves the declaration info behind a struct instance
// type.
func (fl *funcLowerer) structInfoOf(t types.TypeID) *sema.StructInfo {
	tt, ok := fl.lw.types.Lookup(t)
	if !ok || tt.Kind != types.KindStruct {
		return nil
	}
	return fl.lw.sems.Structs[symbols.SymbolID(tt.Decl)]
}

// fieldSlot finds a field's declaration index and instantiated type on a
// struct instance.
func (fl *funcLowerer) fieldSlot(instance types.TypeID, field source.StringID) (uint32, types.TypeID, bool) {
	info := fl.structInfoOf(instance)
	if info == nil {
		return 0, types.NoTypeID, false
	}
	mapping := mono.ParamMapping(info.TypeParams, fl.lw.types.Args(instance))
	for i, decl := range info.Fields {
		if decl.Name == field {
			return uint32(i), mono.Specialize(fl.lw.types, decl.Type, mapping), true
		}
	}
	return 0, types.NoTypeID, false
}

func (fl *funcLowerer) methodSym(instance types.TypeID, field source.StringID) (symbols.SymbolID, bool) {
	info := fl.structInfoOf(instance)
	if info == nil {
		return symbols.NoSymbolID, false
	}
	sym, ok := info.Methods[field]
	return sym, ok
}

func itoa(n int) string { return strconv.Itoa(n) }
