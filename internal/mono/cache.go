package mono

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Key identifies one specialization of a generic function.
//
// Go maps cannot key on slices, so the normalized type arguments are
// folded into a stable ArgsKey string; the arguments themselves live on
// the Instance.
type Key struct {
	Sym     symbols.SymbolID
	ArgsKey string
}

// Instance is one monomorphized function: the generic declaration plus
// the concrete type arguments it was specialized with. Name is the
// mangled IR-level name, unique per instance.
type Instance struct {
	Key      Key
	Sym      symbols.SymbolID
	TypeArgs []types.TypeID
	Name     string
}

// Cache deduplicates specializations. Two call sites with the same
// callee and the same concrete type-argument tuple share one Instance.
type Cache struct {
	types   *types.Interner
	namer   types.DeclNamer
	entries map[Key]*Instance
	order   []Key
}

func NewCache(interner *types.Interner, namer types.DeclNamer) *Cache {
	return &Cache{
		types:   interner,
		namer:   namer,
		entries: make(map[Key]*Instance),
	}
}

// Record registers a specialization, returning its Instance and whether
// this call created it. Recording an already-seen tuple is a cache hit.
func (c *Cache) Record(sym symbols.SymbolID, baseName string, args []types.TypeID) (*Instance, bool) {
	if c == nil || !sym.IsValid() {
		return nil, false
	}
	key := Key{Sym: sym, ArgsKey: argsKey(args)}
	if inst, ok := c.entries[key]; ok {
		return inst, false
	}
	inst := &Instance{
		Key:      key,
		Sym:      sym,
		TypeArgs: append([]types.TypeID(nil), args...),
		Name:     c.mangle(baseName, args),
	}
	c.entries[key] = inst
	c.order = append(c.order, key)
	return inst, true
}

// Instances returns every recorded specialization in insertion order.
func (c *Cache) Instances() []*Instance {
	out := make([]*Instance, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key])
	}
	return out
}

func (c *Cache) Len() int { return len(c.entries) }

// Lookup finds an already-recorded instance without creating one.
func (c *Cache) Lookup(sym symbols.SymbolID, args []types.TypeID) (*Instance, bool) {
	inst, ok := c.entries[Key{Sym: sym, ArgsKey: argsKey(args)}]
	return inst, ok
}

// mangle renders `name[int, str]` for dumps and IR symbol names.
func (c *Cache) mangle(base string, args []types.TypeID) string {
	if len(args) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('[')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.types.Format(arg, c.namer))
	}
	b.WriteByte(']')
	return b.String()
}

func argsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// Collect seeds a cache with every ground instantiation the checker
// observed in one file. Call sites are visited in expression order so
// mangled names and instance order are deterministic. Instantiations
// whose arguments still contain rigid parameters belong to generic
// bodies; they are resolved transitively during lowering, against the
// enclosing instance's own arguments.
func Collect(cache *Cache, syms *symbols.Result, sems *sema.Result) {
	if cache == nil || syms == nil || sems == nil {
		return
	}
	sites := make([]ast.ExprID, 0, len(sems.Instances))
	for at := range sems.Instances {
		sites = append(sites, at)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })

	for _, at := range sites {
		inst := sems.Instances[at]
		if hasRigidArgs(sems.Types, inst.TypeArgs) {
			continue
		}
		// Method instances also carry the receiver's struct arguments,
		// which only the call site knows; lowering records those itself.
		if sig := sems.FnSigs[inst.Sym]; sig != nil && sig.Recv.IsValid() {
			continue
		}
		sym := syms.Table.Symbols.Get(inst.Sym)
		if sym == nil {
			continue
		}
		cache.Record(inst.Sym, syms.Table.Strings.MustLookup(sym.Name), inst.TypeArgs)
	}
}

func hasRigidArgs(interner *types.Interner, args []types.TypeID) bool {
	for _, arg := range args {
		if containsParam(interner, arg) {
			return true
		}
	}
	return false
}
