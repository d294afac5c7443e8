package symbols

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

// KindMask restricts lookup to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

// KindMaskTypes matches every kind valid in type position.
const KindMaskTypes = KindMask(1<<SymbolStruct | 1<<SymbolEnum |
	1<<SymbolTypeAlias | 1<<SymbolTypeParam)

func matchKind(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

// Resolver drives scope management and declaration/lookup routines.
// Lookup is lexical: inner scopes shadow outer ones; re-declaring a name
// already bound in the same scope is a duplicate-definition error.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to an existing scope. If root is valid it
// becomes the current scope; otherwise scope operations are no-ops.
func NewResolver(table *Table, root ScopeID, reporter diag.Reporter) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	parent := r.CurrentScope()
	scope := r.table.Scopes.New(kind, parent, owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Sprintf("scope stack mismatch: closing #%d while expecting #%d", top, expected))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. A name already bound
// in the same scope is reported as NameDuplicate; shadowing an outer
// binding is allowed.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	if prev, ok := scope.NameIndex[sym.Name]; ok {
		r.reportDuplicate(sym.Name, sym.Span, prev)
		return NoSymbolID, false
	}
	sym.Scope = scopeID
	id := r.table.Symbols.New(sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = id
	return id, true
}

// Lookup walks the scope chain searching for a symbol with the given name.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	return r.LookupMasked(name, KindMaskAny)
}

// LookupMasked finds the innermost symbol matching name and kind mask.
func (r *Resolver) LookupMasked(name source.StringID, mask KindMask) (SymbolID, bool) {
	if mask == KindMaskNone {
		return NoSymbolID, false
	}
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if id, ok := scope.NameIndex[name]; ok {
			if sym := r.table.Symbols.Get(id); sym != nil && matchKind(mask, sym.Kind) {
				return id, true
			}
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

func (r *Resolver) reportDuplicate(name source.StringID, span source.Span, prev SymbolID) {
	if r.reporter == nil {
		return
	}
	msg := fmt.Sprintf("duplicate definition of '%s'", r.table.Strings.MustLookup(name))
	var notes []diag.Note
	if prevSym := r.table.Symbols.Get(prev); prevSym != nil {
		noteMsg := "previous definition here"
		if prevSym.Flags&SymbolFlagBuiltin != 0 {
			noteMsg = "built-in definition"
		}
		if prevSym.Span != (source.Span{}) {
			notes = append(notes, diag.Note{Span: prevSym.Span, Msg: noteMsg})
		}
	}
	r.reporter.Report(diag.NameDuplicate, diag.SevError, span, msg, notes)
}
