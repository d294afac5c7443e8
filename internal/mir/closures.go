package mir

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Closures are two-word cells: [code, env]. Calling through a value
// invokes the code with env prepended to the call arguments, so every
// function that flows as a value is wrapped in a thunk taking env as
// its first parameter. Lambda and spawn bodies take that shape natively.

// makeClosure allocates the closure cell.
func (fl *funcLowerer) makeClosure(code FuncID, fnT types.TypeID, env Operand, span source.Span) Operand {
	p := fl.alloc(2, fnT, "closure", span)
	fl.assign(local(p).field(0), useOf(Operand{
		Kind:  OperandConst,
		Type:  fnT,
		Const: Const{Kind: ConstFunc, Type: fnT, Func: code},
	}))
	fl.assign(local(p).field(1), useOf(env))
	return fl.copyOf(local(p), fnT)
}

func (lw *lowerer) synthLowerer(name string) *funcLowerer {
	id := lw.newFuncID()
	return lw.newFuncLowerer(unit{id: id, sym: symbols.NoSymbolID, name: name})
}

// fnValue turns a function name in value position into a closure.
func (fl *funcLowerer) fnValue(id ast.ExprID, symID symbols.SymbolID, sym *symbols.Symbol, span source.Span) Operand {
	fnT := fl.exprType(id, span)
	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		return fl.builtinValue(symID, fnT, span)
	}
	typeArgs := fl.instanceArgs(id, ast.NoExprID)
	fid := fl.funcFor(symID, typeArgs, span)
	if fid == NoFuncID {
		return unitConst(fl.unitType())
	}
	thunk := fl.lw.fnThunk(fid, fnT, fl.lw.symName(symID))
	return fl.makeClosure(thunk, fnT, unitConst(fl.unitType()), span)
}

// fnThunk wraps a directly-lowered function so it fits the closure
// calling convention: the env parameter is accepted and ignored.
func (lw *lowerer) fnThunk(target FuncID, fnT types.TypeID, name string) FuncID {
	if id, ok := lw.fnThunks[target]; ok {
		return id
	}
	info, ok := lw.types.FnInfo(fnT)
	if !ok {
		lw.ice(diag.IceLowering, source.Span{}, "function value '%s' without a function type", name)
		return NoFuncID
	}
	fl := lw.synthLowerer(name + "$thunk")
	lw.fnThunks[target] = fl.f.ID
	fl.f.Result = info.Ret
	fl.f.ParamCount = 1 + len(info.Params)
	fl.addTempNamed("env", types.NoTypeID, source.Span{})
	args := make([]Operand, len(info.Params))
	for i, pt := range info.Params {
		p := fl.addTempNamed(fmt.Sprintf("arg%d", i), pt, source.Span{})
		args[i] = fl.copyOf(local(p), pt)
	}
	fl.emitTailCall(Callee{Kind: CalleeFunc, Func: target, Name: name}, args, info.Ret)
	fl.finish()
	return fl.f.ID
}

// builtinValue wraps a builtin used as a value. The wrapper shape
// depends on the concrete type the mention was given.
func (fl *funcLowerer) builtinValue(symID symbols.SymbolID, fnT types.TypeID, span source.Span) Operand {
	name := fl.lw.symName(symID)
	key := fmt.Sprintf("%s#%d", name, fnT)
	thunk, ok := fl.lw.builtinThunks[key]
	if !ok {
		thunk = fl.lw.builtinThunk(name, fnT, span)
		if thunk == NoFuncID {
			return unitConst(fl.unitType())
		}
		fl.lw.builtinThunks[key] = thunk
	}
	return fl.makeClosure(thunk, fnT, unitConst(fl.unitType()), span)
}

func (lw *lowerer) builtinThunk(name string, fnT types.TypeID, span source.Span) FuncID {
	info, ok := lw.types.FnInfo(fnT)
	if !ok || len(info.Params) != 1 {
		lw.ice(diag.IceLowering, span, "builtin '%s' used as a value with a non-function type", name)
		return NoFuncID
	}
	fl := lw.synthLowerer(name + "$thunk")
	fl.f.Result = info.Ret
	fl.f.ParamCount = 2
	fl.addTempNamed("env", types.NoTypeID, span)
	arg := fl.addTempNamed("arg0", info.Params[0], span)
	argOp := fl.copyOf(local(arg), info.Params[0])

	switch name {
	case "print", "println":
		fl.emitPrint(argOp, name == "println", span)
		fl.setTerm(Terminator{Kind: TermReturn})
	case "len":
		dst := fl.newTemp(fl.intType(), "len", span)
		fl.assign(local(dst), RValue{Kind: RValueLen, Len: argOp})
		fl.dropRoots()
		fl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: fl.copyOf(local(dst), fl.intType())}})
	case "Some":
		out := fl.makeOption(sema.OptionTagSome, argOp, true, info.Ret, span)
		fl.dropRoots()
		fl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: out}})
	default:
		lw.ice(diag.IceLowering, span, "unknown builtin '%s'", name)
	}
	fl.finish()
	return fl.f.ID
}

// ctorValue wraps a payloaded enum constructor used as a value.
func (fl *funcLowerer) ctorValue(ref sema.VariantRef, fnT types.TypeID, span source.Span) Operand {
	key := fmt.Sprintf("ctor#%d#%d#%d", ref.Enum, ref.Tag, fnT)
	thunk, ok := fl.lw.ctorThunks[key]
	if !ok {
		thunk = fl.lw.ctorThunk(ref, fnT, span)
		if thunk == NoFuncID {
			return unitConst(fl.unitType())
		}
		fl.lw.ctorThunks[key] = thunk
	}
	return fl.makeClosure(thunk, fnT, unitConst(fl.unitType()), span)
}

func (lw *lowerer) ctorThunk(ref sema.VariantRef, fnT types.TypeID, span source.Span) FuncID {
	info, ok := lw.types.FnInfo(fnT)
	if !ok {
		lw.ice(diag.IceLowering, span, "constructor value without a function type")
		return NoFuncID
	}
	name := "Some"
	if ref.Enum.IsValid() {
		if layout := lw.out.enumLayoutFor(ref.Enum); layout != nil && int(ref.Tag) < len(layout.Variants) {
			name = layout.Name + "." + layout.Variants[ref.Tag].Name
		}
	}
	fl := lw.synthLowerer(name + "$ctor")
	fl.f.Result = info.Ret
	fl.f.ParamCount = 1 + len(info.Params)
	fl.addTempNamed("env", types.NoTypeID, span)
	args := make([]Operand, len(info.Params))
	for i, pt := range info.Params {
		p := fl.addTempNamed(fmt.Sprintf("arg%d", i), pt, span)
		args[i] = fl.copyOf(local(p), pt)
	}
	out := fl.makeEnumValue(ref, args, info.Ret, span)
	fl.dropRoots()
	fl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: out}})
	fl.finish()
	return fl.f.ID
}

// methodValue closes a bound method over its receiver.
func (fl *funcLowerer) methodValue(id ast.ExprID, methodSym symbols.SymbolID, recvExpr ast.ExprID, fnT types.TypeID, span source.Span) Operand {
	sig := fl.lw.sems.FnSigs[methodSym]
	info, ok := fl.lw.types.FnInfo(fnT)
	if sig == nil || !ok {
		fl.lw.ice(diag.IceLowering, span, "bound method without a signature")
		return unitConst(fl.unitType())
	}
	typeArgs := fl.withRecvArgs(recvExpr, sig, fl.instanceArgs(id, ast.NoExprID), span)
	fid := fl.funcFor(methodSym, typeArgs, span)
	if fid == NoFuncID {
		return unitConst(fl.unitType())
	}
	name := fl.lw.symName(methodSym)

	// A self-less method needs no receiver in the environment.
	if len(sig.Params) == len(info.Params) {
		thunk := fl.lw.fnThunk(fid, fnT, name)
		fl.lowerExpr(recvExpr)
		return fl.makeClosure(thunk, fnT, unitConst(fl.unitType()), span)
	}

	recv := fl.lowerExpr(recvExpr)
	recvT := fl.exprType(recvExpr, span)
	env := fl.alloc(1, recvT, "env", span)
	fl.assign(local(env).field(0), useOf(recv))

	thunk, cached := fl.lw.methodThunks[fid]
	if !cached {
		thunk = fl.lw.methodThunk(fid, name, recvT, *info)
		fl.lw.methodThunks[fid] = thunk
	}
	return fl.makeClosure(thunk, fnT, fl.copyOf(local(env), recvT), span)
}

func (lw *lowerer) methodThunk(target FuncID, name string, recvT types.TypeID, info types.FnInfo) FuncID {
	fl := lw.synthLowerer(name + "$bound")
	fl.f.Result = info.Ret
	fl.f.ParamCount = 1 + len(info.Params)
	env := fl.addTempNamed("env", recvT, source.Span{})
	args := make([]Operand, 0, 1+len(info.Params))
	recv := fl.newTemp(recvT, "self", source.Span{})
	fl.assign(local(recv), useOf(fl.copyOf(local(env).field(0), recvT)))
	args = append(args, fl.copyOf(local(recv), recvT))
	for i, pt := range info.Params {
		p := fl.addTempNamed(fmt.Sprintf("arg%d", i), pt, source.Span{})
		args = append(args, fl.copyOf(local(p), pt))
	}
	fl.emitTailCall(Callee{Kind: CalleeFunc, Func: target, Name: name}, args, info.Ret)
	fl.finish()
	return fl.f.ID
}

// emitTailCall finishes a thunk body: call the target and return its
// result.
func (fl *funcLowerer) emitTailCall(callee Callee, args []Operand, ret types.TypeID) {
	if ret == fl.unitType() || ret == types.NoTypeID {
		fl.call(Place{Local: NoLocalID}, false, callee, args)
		fl.dropRoots()
		fl.setTerm(Terminator{Kind: TermReturn})
		return
	}
	dst := fl.newTemp(ret, "ret", source.Span{})
	fl.call(local(dst), true, callee, args)
	fl.dropRoots()
	fl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: fl.copyOf(local(dst), ret)}})
}

func (fl *funcLowerer) lowerLambda(id ast.ExprID, data *ast.ExprLambdaData, span source.Span) Operand {
	fnT := fl.exprType(id, span)
	info, ok := fl.lw.types.FnInfo(fnT)
	if !ok {
		fl.lw.ice(diag.IceLowering, span, "lambda without a function type")
		return unitConst(fl.unitType())
	}

	captures := fl.captureSyms(data.Body)
	env := fl.buildEnv(captures, span)

	thunkID := fl.lw.newFuncID()
	name := fmt.Sprintf("lambda$%d", fl.lw.nextSynth())
	tl := fl.lw.newFuncLowerer(unit{id: thunkID, sym: symbols.NoSymbolID, name: name, mapping: fl.mapping})
	tl.f.Span = span
	tl.f.Result = info.Ret
	tl.f.ParamCount = 1 + len(data.Params)
	envLocal := tl.addTempNamed("env", types.NoTypeID, span)

	paramSyms := fl.lw.syms.LambdaParamSyms[id]
	for i, p := range data.Params {
		t := types.NoTypeID
		if i < len(info.Params) {
			t = info.Params[i]
		}
		pname := fl.lw.syms.Table.Strings.MustLookup(p.Name)
		if i < len(paramSyms) && paramSyms[i].IsValid() {
			tl.ensureLocal(paramSyms[i], pname, t, p.NameSpan)
		} else {
			tl.addTempNamed(pname, t, p.NameSpan)
		}
	}
	fl.bindCaptures(tl, envLocal, captures, span)

	out := tl.lowerExpr(data.Body)
	tl.dropRoots()
	if info.Ret == tl.unitType() {
		tl.setTerm(Terminator{Kind: TermReturn})
	} else {
		tl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: out}})
	}
	tl.finish()

	return fl.makeClosure(thunkID, fnT, env, span)
}

func (fl *funcLowerer) lowerSpawn(id ast.ExprID, data *ast.ExprSpawnData, span source.Span) Operand {
	retT := fl.exprType(data.Value, span)
	captures := fl.captureSyms(data.Value)
	env := fl.buildEnv(captures, span)

	thunkID := fl.lw.newFuncID()
	name := fmt.Sprintf("spawn$%d", fl.lw.nextSynth())
	tl := fl.lw.newFuncLowerer(unit{id: thunkID, sym: symbols.NoSymbolID, name: name, mapping: fl.mapping})
	tl.f.Span = span
	tl.f.Result = retT
	tl.f.ParamCount = 1
	envLocal := tl.addTempNamed("env", types.NoTypeID, span)
	fl.bindCaptures(tl, envLocal, captures, span)

	out := tl.lowerExpr(data.Value)
	tl.dropRoots()
	if retT == tl.unitType() {
		tl.setTerm(Terminator{Kind: TermReturn})
	} else {
		tl.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: out}})
	}
	tl.finish()

	fnT := fl.lw.types.Fn(nil, retT)
	closure := fl.makeClosure(thunkID, fnT, env, span)
	taskT := fl.exprType(id, span)
	handle := fl.newTemp(taskT, "task", span)
	fl.callExtern(local(handle), true, ExternTaskSubmit, closure)
	return fl.copyOf(local(handle), taskT)
}

// buildEnv packs the captured locals into an environment cell. An empty
// capture set uses the unit constant instead of an allocation.
func (fl *funcLowerer) buildEnv(captures []symbols.SymbolID, span source.Span) Operand {
	if len(captures) == 0 {
		return unitConst(fl.unitType())
	}
	env := fl.alloc(uint32(len(captures)), types.NoTypeID, "env", span)
	for i, sym := range captures {
		l := fl.symToLocal[sym]
		fl.assign(local(env).field(uint32(i)), useOf(fl.copyOf(local(l), fl.f.Locals[l].Type)))
	}
	return fl.copyOf(local(env), types.NoTypeID)
}

// bindCaptures unpacks the environment into locals of the thunk, under
// the same symbols the body refers to.
func (fl *funcLowerer) bindCaptures(tl *funcLowerer, envLocal LocalID, captures []symbols.SymbolID, span source.Span) {
	for i, sym := range captures {
		t := fl.f.Locals[fl.symToLocal[sym]].Type
		l := tl.ensureLocal(sym, fl.lw.symName(sym), t, span)
		tl.assign(local(l), useOf(tl.copyOf(local(envLocal).field(uint32(i)), t)))
	}
}

// captureSyms lists the enclosing locals an expression closes over, in
// first-mention order.
func (fl *funcLowerer) captureSyms(root ast.ExprID) []symbols.SymbolID {
	var out []symbols.SymbolID
	seen := make(map[symbols.SymbolID]bool)
	walkExprs(fl.lw.builder, root, func(id ast.ExprID) {
		expr := fl.lw.builder.Exprs.Get(id)
		if expr == nil || expr.Kind != ast.ExprIdent {
			return
		}
		sym, ok := fl.lw.syms.ExprSyms[id]
		if !ok || seen[sym] {
			return
		}
		if _, local := fl.symToLocal[sym]; local {
			seen[sym] = true
			out = append(out, sym)
		}
	})
	return out
}

// walkExprs visits id and every expression reachable from it, preorder.
func walkExprs(b *ast.Builder, id ast.ExprID, visit func(ast.ExprID)) {
	if !id.IsValid() {
		return
	}
	expr := b.Exprs.Get(id)
	if expr == nil {
		return
	}
	visit(id)

	walk := func(sub ast.ExprID) { walkExprs(b, sub, visit) }
	switch expr.Kind {
	case ast.ExprBinary:
		data, _ := b.Exprs.Binary(id)
		walk(data.Left)
		walk(data.Right)
	case ast.ExprUnary:
		data, _ := b.Exprs.Unary(id)
		walk(data.Operand)
	case ast.ExprCall:
		data, _ := b.Exprs.Call(id)
		walk(data.Target)
		for _, arg := range data.Args {
			walk(arg)
		}
	case ast.ExprMember:
		data, _ := b.Exprs.Member(id)
		walk(data.Target)
	case ast.ExprIndex:
		data, _ := b.Exprs.Index(id)
		walk(data.Target)
		walk(data.Index)
	case ast.ExprStructInit:
		data, _ := b.Exprs.StructInit(id)
		for _, field := range data.Fields {
			walk(field.Value)
		}
	case ast.ExprList:
		data, _ := b.Exprs.List(id)
		for _, elem := range data.Elems {
			walk(elem)
		}
	case ast.ExprDict:
		data, _ := b.Exprs.Dict(id)
		for _, entry := range data.Entries {
			walk(entry.Key)
			walk(entry.Value)
		}
	case ast.ExprComprehension:
		data, _ := b.Exprs.Comprehension(id)
		walk(data.Iter)
		walk(data.Cond)
		walk(data.Elem)
	case ast.ExprRange:
		data, _ := b.Exprs.Range(id)
		walk(data.Start)
		walk(data.End)
	case ast.ExprIf:
		data, _ := b.Exprs.If(id)
		walk(data.Cond)
		walk(data.Then)
		walk(data.Else)
	case ast.ExprMatch:
		data, _ := b.Exprs.Match(id)
		walk(data.Subject)
		for _, arm := range data.Arms {
			walk(arm.Guard)
			walk(arm.Value)
		}
	case ast.ExprAwait:
		data, _ := b.Exprs.Await(id)
		walk(data.Value)
	case ast.ExprSpawn:
		data, _ := b.Exprs.Spawn(id)
		walk(data.Value)
	case ast.ExprLambda:
		data, _ := b.Exprs.Lambda(id)
		walk(data.Body)
	case ast.ExprFString:
		data, _ := b.Exprs.FString(id)
		for _, part := range data.Parts {
			walk(part.Expr)
		}
	}
}
