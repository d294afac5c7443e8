package mir

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/mono"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Options configure lowering of one checked file.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Sema     *sema.Result
	Cache    *mono.Cache // created internally when nil
	Target   Target
}

// Lower converts a checked file to IR. The caller guarantees no
// error-severity diagnostics upstream; violations of that contract
// surface as internal errors, never as user diagnostics.
func Lower(builder *ast.Builder, fileID ast.FileID, opts Options) *Module {
	m := newModule(opts.Target)
	if builder == nil || !fileID.IsValid() || opts.Symbols == nil || opts.Sema == nil {
		return m
	}
	lw := &lowerer{
		builder:   builder,
		reporter:  opts.Reporter,
		syms:      opts.Symbols,
		sems:      opts.Sema,
		types:     opts.Sema.Types,
		cache:     opts.Cache,
		out:       m,
		instFuncs: make(map[mono.Key]FuncID),

		fnThunks:      make(map[FuncID]FuncID),
		methodThunks:  make(map[FuncID]FuncID),
		builtinThunks: make(map[string]FuncID),
		ctorThunks:    make(map[string]FuncID),
	}
	if lw.cache == nil {
		lw.cache = mono.NewCache(lw.types, lw.declName)
	}
	lw.run(fileID)
	return m
}

// unit is one function body awaiting lowering: a declaration, a
// specialization of one, or a synthesized top-level wrapper.
type unit struct {
	id      FuncID
	sym     symbols.SymbolID
	name    string
	item    ast.ItemID
	mapping map[types.TypeID]types.TypeID
}

type lowerer struct {
	builder  *ast.Builder
	reporter diag.Reporter
	syms     *symbols.Result
	sems     *sema.Result
	types    *types.Interner
	cache    *mono.Cache
	out      *Module

	instFuncs map[mono.Key]FuncID
	worklist  []unit
	broken    bool

	// Thunk caches for values flowing through the closure convention.
	fnThunks      map[FuncID]FuncID
	methodThunks  map[FuncID]FuncID
	builtinThunks map[string]FuncID
	ctorThunks    map[string]FuncID
	synthSeq      uint32
}

func (lw *lowerer) nextSynth() uint32 {
	lw.synthSeq++
	return lw.synthSeq
}

func (lw *lowerer) run(fileID ast.FileID) {
	file := lw.builder.Files.Get(fileID)
	if file == nil {
		return
	}

	lw.collectLayouts(file.Items)

	// Non-generic declarations lower directly; generic ones only through
	// recorded instantiations.
	var topStmts []ast.StmtID
	for _, itemID := range file.Items {
		item := lw.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemFn:
			fn, _ := lw.builder.Items.Fn(itemID)
			if len(fn.TypeParams) == 0 {
				lw.enqueueDecl(lw.syms.ItemSyms[itemID], itemID)
			}
		case ast.ItemStruct:
			data, _ := lw.builder.Items.Struct(itemID)
			// Methods of generic structs specialize with their receiver
			// and reach lowering only through call sites.
			if len(data.TypeParams) > 0 {
				continue
			}
			for i, methodID := range data.Methods {
				method, _ := lw.builder.Items.Fn(methodID)
				if method == nil || len(method.TypeParams) > 0 {
					continue
				}
				methodSyms := lw.syms.MethodSyms[itemID]
				if i < len(methodSyms) {
					lw.enqueueDecl(methodSyms[i], methodID)
				}
			}
		case ast.ItemStmt:
			data, _ := lw.builder.Items.Stmt(itemID)
			topStmts = append(topStmts, data.Stmt)
		}
	}
	if len(topStmts) > 0 {
		lw.enqueueTopLevel(topStmts)
	}

	mono.Collect(lw.cache, lw.syms, lw.sems)
	for _, inst := range lw.cache.Instances() {
		lw.enqueueInstance(inst)
	}

	for len(lw.worklist) > 0 && !lw.broken {
		u := lw.worklist[0]
		lw.worklist = lw.worklist[1:]
		lw.lowerUnit(u)
	}
}

func (lw *lowerer) ice(code diag.Code, span source.Span, format string, args ...any) {
	lw.broken = true
	if lw.reporter == nil {
		return
	}
	lw.reporter.Report(code, diag.SevInternal, span, fmt.Sprintf(format, args...), nil)
}

func (lw *lowerer) declName(decl uint32) string {
	sym := lw.syms.Table.Symbols.Get(symbols.SymbolID(decl))
	if sym == nil {
		return "<anon>"
	}
	return lw.syms.Table.Strings.MustLookup(sym.Name)
}

func (lw *lowerer) symName(sym symbols.SymbolID) string {
	return lw.declName(uint32(sym))
}

func (lw *lowerer) newFuncID() FuncID {
	raw, err := safecast.Conv[int32](len(lw.out.Funcs))
	if err != nil {
		panic(fmt.Errorf("mir: func id overflow: %w", err))
	}
	lw.out.Funcs = append(lw.out.Funcs, nil)
	return FuncID(raw)
}

func (lw *lowerer) enqueueDecl(sym symbols.SymbolID, item ast.ItemID) {
	if !sym.IsValid() {
		return
	}
	if _, done := lw.out.FuncBySym[sym]; done {
		return
	}
	id := lw.newFuncID()
	lw.out.FuncBySym[sym] = id
	name := lw.symName(sym)
	if sig := lw.sems.FnSigs[sym]; sig != nil && sig.Recv.IsValid() {
		name = lw.symName(sig.Recv) + "." + name
	}
	lw.worklist = append(lw.worklist, unit{id: id, sym: sym, name: name, item: item})
}

func (lw *lowerer) enqueueInstance(inst *mono.Instance) FuncID {
	if id, done := lw.instFuncs[inst.Key]; done {
		return id
	}
	sig := lw.sems.FnSigs[inst.Sym]
	if sig == nil {
		lw.ice(diag.IceLowering, source.Span{}, "instance of '%s' has no signature", inst.Name)
		return NoFuncID
	}
	id := lw.newFuncID()
	lw.instFuncs[inst.Key] = id
	name := inst.Name
	if sig.Recv.IsValid() {
		name = lw.symName(sig.Recv) + "." + name
	}
	lw.worklist = append(lw.worklist, unit{
		id:      id,
		sym:     inst.Sym,
		name:    name,
		item:    sig.Item,
		mapping: mono.ParamMapping(lw.instanceParams(sig), inst.TypeArgs),
	})
	return id
}

// instanceParams lists the rigid parameters an instance tuple binds:
// the receiver struct's parameters first, then the function's own.
func (lw *lowerer) instanceParams(sig *sema.FnSig) []types.TypeID {
	if !sig.Recv.IsValid() {
		return sig.TypeParams
	}
	info := lw.sems.Structs[sig.Recv]
	if info == nil || len(info.TypeParams) == 0 {
		return sig.TypeParams
	}
	params := make([]types.TypeID, 0, len(info.TypeParams)+len(sig.TypeParams))
	params = append(params, info.TypeParams...)
	return append(params, sig.TypeParams...)
}

// enqueueTopLevel wraps file-scope statements into one synthesized
// function, run before main by the runtime.
func (lw *lowerer) enqueueTopLevel(stmts []ast.StmtID) {
	id := lw.newFuncID()
	fl := lw.newFuncLowerer(unit{id: id, sym: symbols.NoSymbolID, name: "__toplevel"})
	fl.f.Result = lw.types.Builtins().Unit
	for _, stmt := range stmts {
		fl.lowerStmt(stmt)
	}
	fl.finish()
}

func (lw *lowerer) lowerUnit(u unit) {
	fn, ok := lw.builder.Items.Fn(u.item)
	if !ok {
		lw.ice(diag.IceLowering, source.Span{}, "function item %d missing for '%s'", u.item, u.name)
		return
	}
	sig := lw.sems.FnSigs[u.sym]
	if sig == nil {
		lw.ice(diag.IceLowering, fn.NameSpan, "no signature for '%s'", u.name)
		return
	}

	fl := lw.newFuncLowerer(u)
	fl.f.Span = fn.NameSpan
	fl.f.Result = fl.resolve(sig.Ret, fn.NameSpan)
	fl.f.ParamCount = len(fn.Params)

	paramSyms := lw.syms.ParamSyms[u.item]
	for i, p := range fn.Params {
		t := types.NoTypeID
		if i < len(sig.Params) {
			t = fl.resolve(sig.Params[i], p.NameSpan)
		}
		if i < len(paramSyms) && paramSyms[i].IsValid() {
			fl.ensureLocal(paramSyms[i], lw.syms.Table.Strings.MustLookup(p.Name), t, p.NameSpan)
		} else {
			fl.addTempNamed(lw.syms.Table.Strings.MustLookup(p.Name), t, p.NameSpan)
		}
	}

	fl.lowerStmt(fn.Body)
	fl.finish()
}

type loopCtx struct {
	breakTarget    BlockID
	continueTarget BlockID
}

type funcLowerer struct {
	lw *lowerer
	f  *Func

	cur        BlockID
	symToLocal map[symbols.SymbolID]LocalID
	mapping    map[types.TypeID]types.TypeID
	nextTemp   uint32
	loopStack  []loopCtx
}

func (lw *lowerer) newFuncLowerer(u unit) *funcLowerer {
	fl := &funcLowerer{
		lw: lw,
		f: &Func{
			ID:   u.id,
			Sym:  u.sym,
			Name: u.name,
		},
		symToLocal: make(map[symbols.SymbolID]LocalID),
		mapping:    u.mapping,
		nextTemp:   1,
	}
	fl.f.Entry = fl.newBlock()
	fl.cur = fl.f.Entry
	return fl
}

// finish seals the function: implicit return on fallthrough, a
// terminator on every block, and registration in the module.
func (fl *funcLowerer) finish() {
	if !fl.curBlock().Terminated() {
		fl.lowerImplicitReturn()
	}
	for i := range fl.f.Blocks {
		if fl.f.Blocks[i].Term.Kind == TermNone {
			fl.f.Blocks[i].Term.Kind = TermUnreachable
		}
	}
	fl.lw.out.Funcs[fl.f.ID] = fl.f
}

// resolve specializes a semantic type against the instance mapping and
// rejects types that still carry inference artifacts.
func (fl *funcLowerer) resolve(t types.TypeID, span source.Span) types.TypeID {
	out := mono.Specialize(fl.lw.types, t, fl.mapping)
	if mono.ContainsParam(fl.lw.types, out) {
		fl.lw.ice(diag.IceUnresolvedTypeVar, span,
			"type %s reached lowering with an unresolved parameter",
			fl.lw.types.Format(out, fl.lw.declName))
	}
	if tt, ok := fl.lw.types.Lookup(out); ok && tt.Kind == types.KindVar {
		fl.lw.ice(diag.IceUnresolvedTypeVar, span,
			"unresolved type variable reached lowering")
	}
	return out
}

func (fl *funcLowerer) exprType(id ast.ExprID, span source.Span) types.TypeID {
	return fl.resolve(fl.lw.sems.ExprTypes[id], span)
}

func (fl *funcLowerer) curBlock() *Block {
	idx := int(fl.cur)
	if idx < 0 || idx >= len(fl.f.Blocks) {
		return nil
	}
	return &fl.f.Blocks[idx]
}

func (fl *funcLowerer) newBlock() BlockID {
	raw, err := safecast.Conv[int32](len(fl.f.Blocks))
	if err != nil {
		panic(fmt.Errorf("mir: block id overflow: %w", err))
	}
	id := BlockID(raw)
	fl.f.Blocks = append(fl.f.Blocks, Block{ID: id})
	return id
}

func (fl *funcLowerer) startBlock(id BlockID) {
	fl.cur = id
}

func (fl *funcLowerer) setTerm(t Terminator) {
	b := fl.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Term = t
}

func (fl *funcLowerer) emit(ins Instr) {
	b := fl.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Instrs = append(b.Instrs, ins)
}

func (fl *funcLowerer) assign(dst Place, src RValue) {
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{Dst: dst, Src: src}})
}

func (fl *funcLowerer) call(dst Place, hasDst bool, callee Callee, args []Operand) {
	fl.emit(Instr{Kind: InstrCall, Call: CallInstr{HasDst: hasDst, Dst: dst, Callee: callee, Args: args}})
}

func (fl *funcLowerer) callExtern(dst Place, hasDst bool, name string, args ...Operand) {
	fl.call(dst, hasDst, Callee{Kind: CalleeExtern, Name: name, Extern: fl.lw.out.extern(name)}, args)
}

func (fl *funcLowerer) newLocalID() LocalID {
	raw, err := safecast.Conv[int32](len(fl.f.Locals))
	if err != nil {
		panic(fmt.Errorf("mir: local id overflow: %w", err))
	}
	return LocalID(raw)
}

func (fl *funcLowerer) ensureLocal(sym symbols.SymbolID, name string, t types.TypeID, span source.Span) LocalID {
	if existing, ok := fl.symToLocal[sym]; ok {
		return existing
	}
	id := fl.newLocalID()
	fl.symToLocal[sym] = id
	fl.f.Locals = append(fl.f.Locals, Local{Sym: sym, Type: t, Name: name, Span: span})
	return id
}

func (fl *funcLowerer) localForSym(sym symbols.SymbolID, span source.Span) LocalID {
	if existing, ok := fl.symToLocal[sym]; ok {
		return existing
	}
	// First mention; the declared type comes from the checker.
	t := fl.resolve(fl.lw.sems.DeclTypes[sym], span)
	return fl.ensureLocal(sym, fl.lw.symName(sym), t, span)
}

func (fl *funcLowerer) newTemp(t types.TypeID, hint string, span source.Span) LocalID {
	return fl.addTempNamed(fmt.Sprintf("tmp_%s%d", hint, fl.tempIndex()), t, span)
}

func (fl *funcLowerer) tempIndex() uint32 {
	i := fl.nextTemp
	fl.nextTemp++
	return i
}

func (fl *funcLowerer) addTempNamed(name string, t types.TypeID, span source.Span) LocalID {
	id := fl.newLocalID()
	fl.f.Locals = append(fl.f.Locals, Local{Sym: symbols.NoSymbolID, Type: t, Name: name, Span: span})
	return id
}

// alloc emits an allocator call plus GC root registration and returns
// the pointer local.
func (fl *funcLowerer) alloc(words uint32, t types.TypeID, hint string, span source.Span) LocalID {
	dst := fl.newTemp(t, hint, span)
	fl.f.Locals[dst].Rooted = true
	fl.callExtern(local(dst), true, ExternAlloc,
		intConst(fl.intType(), fmt.Sprintf("%d", words*WordSize)),
		intConst(fl.intType(), fmt.Sprintf("%d", WordSize)))
	fl.callExtern(Place{Local: NoLocalID}, false, ExternAddRoot, fl.copyOf(local(dst), t))
	return dst
}

// lowerImplicitReturn emits the function epilogue for a body that falls
// off the end.
func (fl *funcLowerer) lowerImplicitReturn() {
	fl.dropRoots()
	unit := fl.lw.types.Builtins().Unit
	if fl.f.Result == unit || fl.f.Result == types.NoTypeID {
		fl.setTerm(Terminator{Kind: TermReturn})
		return
	}
	// A checked non-unit function cannot fall through.
	fl.setTerm(Terminator{Kind: TermUnreachable})
}

// dropRoots unregisters every allocation this function rooted.
func (fl *funcLowerer) dropRoots() {
	for i := range fl.f.Locals {
		if fl.f.Locals[i].Rooted {
			fl.callExtern(Place{Local: NoLocalID}, false, ExternRemoveRoot,
				fl.copyOf(local(LocalID(i)), fl.f.Locals[i].Type))
		}
	}
}

func (fl *funcLowerer) intType() types.TypeID  { return fl.lw.types.Builtins().Int }
func (fl *funcLowerer) boolType() types.TypeID { return fl.lw.types.Builtins().Bool }
func (fl *funcLowerer) strType() types.TypeID  { return fl.lw.types.Builtins().Str }
func (fl *funcLowerer) unitType() types.TypeID { return fl.lw.types.Builtins().Unit }

func (fl *funcLowerer) copyOf(p Place, t types.TypeID) Operand {
	return Operand{Kind: OperandCopy, Type: t, Place: p}
}

func intConst(t types.TypeID, text string) Operand {
	return Operand{Kind: OperandConst, Type: t, Const: Const{Kind: ConstInt, Type: t, Text: text}}
}

func boolConst(t types.TypeID, v bool) Operand {
	return Operand{Kind: OperandConst, Type: t, Const: Const{Kind: ConstBool, Type: t, Bool: v}}
}

func strConst(t types.TypeID, text string) Operand {
	return Operand{Kind: OperandConst, Type: t, Const: Const{Kind: ConstStr, Type: t, Text: text}}
}

func unitConst(t types.TypeID) Operand {
	return Operand{Kind: OperandConst, Type: t, Const: Const{Kind: ConstUnit, Type: t}}
}

// collectLayouts records fixed field and tag layouts for every nominal
// declaration, in file order.
func (lw *lowerer) collectLayouts(items []ast.ItemID) {
	for _, itemID := range items {
		item := lw.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		sym := lw.syms.ItemSyms[itemID]
		switch item.Kind {
		case ast.ItemStruct:
			info := lw.sems.Structs[sym]
			if info == nil {
				continue
			}
			fields := make([]FieldSlot, 0, len(info.Fields))
			for _, field := range info.Fields {
				fields = append(fields, FieldSlot{
					Name: lw.syms.Table.Strings.MustLookup(field.Name),
					Type: field.Type,
				})
			}
			lw.out.Structs = append(lw.out.Structs, structLayout(sym, lw.symName(sym), fields))

		case ast.ItemEnum:
			info := lw.sems.Enums[sym]
			if info == nil {
				continue
			}
			variants := make([]VariantLayout, 0, len(info.Variants))
			for tag, variant := range info.Variants {
				variants = append(variants, VariantLayout{
					Name:     lw.syms.Table.Strings.MustLookup(variant.Name),
					Tag:      uint32(tag),
					Payloads: variant.Payloads,
				})
			}
			lw.out.Enums = append(lw.out.Enums, enumLayout(sym, lw.symName(sym), variants))
		}
	}
}

// funcFor resolves a callee symbol (plus concrete type arguments for
// generics) to a lowered function ID, scheduling new specializations.
func (fl *funcLowerer) funcFor(sym symbols.SymbolID, typeArgs []types.TypeID, span source.Span) FuncID {
	if len(typeArgs) == 0 {
		if id, ok := fl.lw.out.FuncBySym[sym]; ok {
			return id
		}
		sig := fl.lw.sems.FnSigs[sym]
		if sig == nil {
			fl.lw.ice(diag.IceLowering, span, "call to unlowered function '%s'", fl.lw.symName(sym))
			return NoFuncID
		}
		fl.lw.enqueueDecl(sym, sig.Item)
		return fl.lw.out.FuncBySym[sym]
	}
	args := make([]types.TypeID, len(typeArgs))
	for i, arg := range typeArgs {
		args[i] = fl.resolve(arg, span)
	}
	inst, _ := fl.lw.cache.Record(sym, fl.lw.symName(sym), args)
	if inst == nil {
		return NoFuncID
	}
	if id, ok := fl.lw.instFuncs[inst.Key]; ok {
		return id
	}
	return fl.lw.enqueueInstance(inst)
}
