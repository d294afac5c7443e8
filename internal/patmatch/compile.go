package patmatch

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Options supply the resolved and typed side tables the compiler reads.
// Both are required; Reporter receives internal errors only, since
// pattern well-formedness was already checked.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Sema     *sema.Result
}

// Arm is one case of a match in textual order.
type Arm struct {
	Pattern ast.PatID
	Guard   ast.ExprID // NoExprID when unguarded
}

// Compile turns ordered match arms into a decision tree. Evaluation of
// the tree against a value reaches the leaf of the first arm whose
// pattern matches; a guarded leaf re-enters the remaining arms when the
// guard fails. Arms sharing a leading tag share one switch branch.
func Compile(builder *ast.Builder, arms []Arm, span source.Span, opts Options) *Tree {
	c := &compiler{
		builder:  builder,
		reporter: opts.Reporter,
		syms:     opts.Symbols,
		sems:     opts.Sema,
		span:     span,
		tree:     newTree(),
	}
	rows := make([]row, 0, len(arms))
	for i, arm := range arms {
		rows = append(rows, row{
			cons:  []constraint{{path: nil, pat: arm.Pattern}},
			arm:   i,
			guard: arm.Guard,
		})
	}
	c.tree.Root = c.compileRows(rows)
	return c.tree
}

// CompileLet compiles a destructuring let as a single unguarded arm.
// The caller traps on a tree that CanFail.
func CompileLet(builder *ast.Builder, pattern ast.PatID, span source.Span, opts Options) *Tree {
	return Compile(builder, []Arm{{Pattern: pattern, Guard: ast.NoExprID}}, span, opts)
}

// constraint is one pending test: the pattern must match the value at path.
type constraint struct {
	path Path
	pat  ast.PatID
}

type row struct {
	cons     []constraint
	arm      int
	guard    ast.ExprID
	bindings []Binding
}

type compiler struct {
	builder  *ast.Builder
	reporter diag.Reporter
	syms     *symbols.Result
	sems     *sema.Result
	span     source.Span
	tree     *Tree
	fail     NodeID
	broken   bool
}

func (c *compiler) ice(format string, args ...any) {
	c.broken = true
	if c.reporter == nil {
		return
	}
	c.reporter.Report(diag.IceDecisionTree, diag.SevInternal, c.span, fmt.Sprintf(format, args...), nil)
}

func (c *compiler) failNode() NodeID {
	if !c.fail.IsValid() {
		c.fail = c.tree.add(Node{Kind: NodeFail})
	}
	return c.fail
}

func (c *compiler) compileRows(rows []row) NodeID {
	if c.broken || len(rows) == 0 {
		return c.failNode()
	}
	head := c.simplify(rows[0])
	if len(head.cons) == 0 {
		leaf := Node{Kind: NodeLeaf, Arm: head.arm, Guard: head.guard, Bindings: head.bindings}
		if head.guard.IsValid() {
			leaf.Else = c.compileRows(rows[1:])
		}
		return c.tree.add(leaf)
	}

	rest := make([]row, 0, len(rows))
	rest = append(rest, head)
	rest = append(rest, rows[1:]...)

	pivot := head.cons[0]
	pat := c.builder.Pats.Get(pivot.pat)
	switch pat.Kind {
	case ast.PatLiteral:
		if _, isTag := c.sems.PatVariants[pivot.pat]; isTag {
			return c.switchOnTag(rest, pivot.path)
		}
		return c.switchOnLiteral(rest, pivot.path)
	case ast.PatEnumVariant:
		return c.switchOnTag(rest, pivot.path)
	case ast.PatList:
		return c.switchOnListLen(rest, pivot.path, pivot.pat)
	default:
		c.ice("refutable constraint with pattern kind %d", pat.Kind)
		return c.failNode()
	}
}

// simplify discharges every irrefutable constraint of a row: wildcards
// vanish, bindings capture their path, struct patterns decompose into
// field constraints. Refutable constraints survive untouched.
func (c *compiler) simplify(r row) row {
	out := row{arm: r.arm, guard: r.guard, bindings: append([]Binding(nil), r.bindings...)}
	pending := append([]constraint(nil), r.cons...)
	for len(pending) > 0 {
		cn := pending[0]
		pending = pending[1:]
		pat := c.builder.Pats.Get(cn.pat)
		if pat == nil {
			c.ice("dangling pattern id %d", cn.pat)
			continue
		}
		switch pat.Kind {
		case ast.PatWildcard:

		case ast.PatBinding:
			if sym, ok := c.syms.BindSyms[cn.pat]; ok {
				out.bindings = append(out.bindings, Binding{Sym: sym, Path: cn.path})
			}

		case ast.PatStruct:
			pending = append(c.explodeStruct(cn, &out), pending...)

		case ast.PatEnumVariant:
			if _, isTag := c.sems.PatVariants[cn.pat]; isTag {
				out.cons = append(out.cons, cn)
				break
			}
			// Positional struct destructuring: fields in declaration order.
			data, _ := c.builder.Pats.EnumVariant(cn.pat)
			subs := make([]constraint, 0, len(data.Args))
			for i, arg := range data.Args {
				subs = append(subs, constraint{
					path: extend(cn.path, Step{Kind: StepField, Index: uint32(i)}),
					pat:  arg,
				})
			}
			pending = append(subs, pending...)

		case ast.PatLiteral, ast.PatList:
			out.cons = append(out.cons, cn)

		default:
			c.ice("unknown pattern kind %d", pat.Kind)
		}
	}
	return out
}

// explodeStruct turns a struct pattern into per-field constraints using
// the declaration's field order. Shorthand fields bind directly.
func (c *compiler) explodeStruct(cn constraint, out *row) []constraint {
	data, _ := c.builder.Pats.Struct(cn.pat)
	info := c.structInfoFor(cn.pat)
	if info == nil {
		return nil
	}
	index := make(map[source.StringID]uint32, len(info.Fields))
	for i, field := range info.Fields {
		index[field.Name] = uint32(i)
	}
	shorthand := c.syms.FieldSyms[cn.pat]
	var subs []constraint
	for i, field := range data.Fields {
		fi, known := index[field.Name]
		if !known {
			c.ice("struct pattern names unchecked field")
			continue
		}
		path := extend(cn.path, Step{Kind: StepField, Index: fi})
		if field.Pattern.IsValid() {
			subs = append(subs, constraint{path: path, pat: field.Pattern})
			continue
		}
		if i < len(shorthand) && shorthand[i].IsValid() {
			out.bindings = append(out.bindings, Binding{Sym: shorthand[i], Path: path})
		}
	}
	return subs
}

func (c *compiler) structInfoFor(pat ast.PatID) *sema.StructInfo {
	t, ok := c.sems.PatTypes[pat]
	if !ok {
		c.ice("struct pattern carries no type")
		return nil
	}
	tt, ok := c.sems.Types.Lookup(t)
	if !ok || tt.Kind != types.KindStruct {
		c.ice("struct pattern against non-struct type")
		return nil
	}
	info := c.sems.Structs[symbols.SymbolID(tt.Decl)]
	if info == nil {
		c.ice("struct pattern against undeclared struct")
		return nil
	}
	return info
}

// consAt finds a row's constraint on the given path, -1 when the row
// accepts any value there.
func consAt(r row, p Path) int {
	for i, cn := range r.cons {
		if pathEq(cn.path, p) {
			return i
		}
	}
	return -1
}

// anyAt reports whether a row matches every value at the path: no
// constraint there, or an irrefutable one. Irrefutable constraints stay
// in the row; simplify discharges them when the row leads.
func (c *compiler) anyAt(r row, i int) bool {
	if i < 0 {
		return true
	}
	pat := c.builder.Pats.Get(r.cons[i].pat)
	if pat == nil {
		return true
	}
	switch pat.Kind {
	case ast.PatWildcard, ast.PatBinding, ast.PatStruct:
		return true
	case ast.PatEnumVariant:
		_, isTag := c.sems.PatVariants[r.cons[i].pat]
		return !isTag
	}
	return false
}

// without returns the row's constraints minus index i, freshly allocated.
func without(r row, i int) []constraint {
	out := make([]constraint, 0, len(r.cons)-1)
	out = append(out, r.cons[:i]...)
	return append(out, r.cons[i+1:]...)
}

// tagOf reads the variant tag a constraint tests, false for constraints
// that match any value or test something other than a tag.
func (c *compiler) tagOf(r row, i int) (sema.VariantRef, bool) {
	if i < 0 {
		return sema.VariantRef{}, false
	}
	ref, ok := c.sems.PatVariants[r.cons[i].pat]
	return ref, ok
}

// switchOnTag groups all rows testing the value at path by variant tag,
// producing exactly one case per distinct tag.
func (c *compiler) switchOnTag(rows []row, path Path) NodeID {
	var order []sema.VariantRef
	seen := make(map[sema.VariantRef]bool)
	for _, r := range rows {
		if ref, ok := c.tagOf(r, consAt(r, path)); ok && !seen[ref] {
			seen[ref] = true
			order = append(order, ref)
		}
	}

	node := Node{Kind: NodeSwitch, Path: path, Test: TestEnumTag}
	for _, ref := range order {
		var group []row
		for _, r := range rows {
			i := consAt(r, path)
			rr, tagged := c.tagOf(r, i)
			switch {
			case c.anyAt(r, i):
				group = append(group, r)
			case tagged && rr == ref:
				group = append(group, c.openVariant(r, i, ref))
			case !tagged:
				c.ice("tag switch over non-tag constraint")
			}
		}
		node.Cases = append(node.Cases, Case{Tag: ref.Tag, Node: c.compileRows(group)})
	}

	if len(node.Cases) < c.variantCount(order) {
		var residual []row
		for _, r := range rows {
			if c.anyAt(r, consAt(r, path)) {
				residual = append(residual, r)
			}
		}
		node.Default = c.compileRows(residual)
	}
	return c.tree.add(node)
}

// openVariant replaces a tag constraint with constraints on its payloads.
func (c *compiler) openVariant(r row, i int, ref sema.VariantRef) row {
	cons := without(r, i)
	if data, ok := c.builder.Pats.EnumVariant(r.cons[i].pat); ok {
		for pi, arg := range data.Args {
			cons = append(cons, constraint{
				path: extend(r.cons[i].path, Step{Kind: StepPayload, Index: uint32(pi), Aux: ref.Tag}),
				pat:  arg,
			})
		}
	}
	r.cons = cons
	return r
}

// variantCount is how many tags the switched enum declares; Option has
// two. Used to drop the default branch when every tag has a case.
func (c *compiler) variantCount(refs []sema.VariantRef) int {
	if len(refs) == 0 {
		return 0
	}
	enum := refs[0].Enum
	if !enum.IsValid() {
		return 2
	}
	if info := c.sems.Enums[enum]; info != nil {
		return len(info.Variants)
	}
	c.ice("tag switch on undeclared enum")
	return 0
}

func (c *compiler) switchOnLiteral(rows []row, path Path) NodeID {
	type key struct {
		kind  ast.ExprLitKind
		value source.StringID
	}
	litAt := func(r row, i int) (key, bool) {
		if i < 0 {
			return key{}, false
		}
		lit, ok := c.builder.Pats.Literal(r.cons[i].pat)
		if !ok || lit.Kind == ast.LitNone {
			return key{}, false
		}
		return key{kind: lit.Kind, value: lit.Value}, true
	}

	var order []key
	seen := make(map[key]bool)
	for _, r := range rows {
		if k, ok := litAt(r, consAt(r, path)); ok && !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	node := Node{Kind: NodeSwitch, Path: path, Test: TestLiteral}
	boolsCovered := make(map[string]bool, 2)
	for _, k := range order {
		var group []row
		for _, r := range rows {
			i := consAt(r, path)
			rk, isLit := litAt(r, i)
			switch {
			case c.anyAt(r, i):
				group = append(group, r)
			case isLit && rk == k:
				rr := r
				rr.cons = without(r, i)
				group = append(group, rr)
			case !isLit:
				c.ice("literal switch over non-literal constraint")
			}
		}
		node.Cases = append(node.Cases, Case{LitKind: k.kind, LitVal: k.value, Node: c.compileRows(group)})
		if k.kind == ast.LitBool {
			boolsCovered[c.syms.Table.Strings.MustLookup(k.value)] = true
		}
	}

	// Two bool cases cover the whole type.
	if !(boolsCovered["true"] && boolsCovered["false"]) {
		var residual []row
		for _, r := range rows {
			if c.anyAt(r, consAt(r, path)) {
				residual = append(residual, r)
			}
		}
		node.Default = c.compileRows(residual)
	}
	return c.tree.add(node)
}

// listShape is a list pattern's length requirement: exactly min elements
// without a rest, at least min with one.
type listShape struct {
	min     uint32
	hasRest bool
}

func (c *compiler) listShapeAt(r row, i int) (listShape, bool) {
	if i < 0 {
		return listShape{}, false
	}
	data, ok := c.builder.Pats.List(r.cons[i].pat)
	if !ok {
		return listShape{}, false
	}
	return listShape{min: uint32(len(data.Elems)), hasRest: data.HasRest}, true
}

// switchOnListLen emits one length test taken from the first row, sending
// rows whose shape is decided by the outcome to the matching branch and
// keeping undecided rows for later tests.
func (c *compiler) switchOnListLen(rows []row, path Path, pivotPat ast.PatID) NodeID {
	data, ok := c.builder.Pats.List(pivotPat)
	if !ok {
		c.ice("list constraint without list payload")
		return c.failNode()
	}
	pivot := listShape{min: uint32(len(data.Elems)), hasRest: data.HasRest}

	var hit, miss []row
	for _, r := range rows {
		i := consAt(r, path)
		if c.anyAt(r, i) {
			hit = append(hit, r)
			miss = append(miss, r)
			continue
		}
		shape, isList := c.listShapeAt(r, i)
		if !isList {
			c.ice("list switch over non-list constraint")
			continue
		}
		if pivot.hasRest {
			// Test: length >= pivot.min.
			switch {
			case shape.hasRest && shape.min <= pivot.min:
				hit = append(hit, c.openList(r, i))
			case shape.min >= pivot.min:
				hit = append(hit, r) // still undecided, retested when it leads
			}
			if shape.min < pivot.min {
				miss = append(miss, r)
			}
			continue
		}
		// Test: length == pivot.min.
		switch {
		case !shape.hasRest && shape.min == pivot.min:
			hit = append(hit, c.openList(r, i))
		case shape.hasRest && shape.min <= pivot.min:
			hit = append(hit, c.openList(r, i))
			miss = append(miss, r)
		default: // wrong exact length, or a rest needing more elements
			miss = append(miss, r)
		}
	}

	test := TestListLen
	if pivot.hasRest {
		test = TestListMinLen
	}
	node := Node{Kind: NodeSwitch, Path: path, Test: test}
	node.Cases = []Case{{Tag: pivot.min, Node: c.compileRows(hit)}}
	node.Default = c.compileRows(miss)
	return c.tree.add(node)
}

// openList replaces a list constraint with element constraints. Prefix
// elements address from the front, suffix elements from the back, and
// the rest binding captures the slice between them.
func (c *compiler) openList(r row, i int) row {
	cn := r.cons[i]
	data, _ := c.builder.Pats.List(cn.pat)
	cons := without(r, i)
	n := uint32(len(data.Elems))
	for ei, elem := range data.Elems {
		var step Step
		if !data.HasRest || uint32(ei) < data.RestIndex {
			step = Step{Kind: StepElem, Index: uint32(ei)}
		} else {
			step = Step{Kind: StepElemBack, Index: n - uint32(ei)}
		}
		cons = append(cons, constraint{path: extend(cn.path, step), pat: elem})
	}
	r.cons = cons
	if data.HasRest {
		if sym, ok := c.syms.RestSyms[cn.pat]; ok {
			r.bindings = append(append([]Binding(nil), r.bindings...), Binding{
				Sym:  sym,
				Path: extend(cn.path, Step{Kind: StepRest, Index: data.RestIndex, Aux: n - data.RestIndex}),
			})
		}
	}
	return r
}
