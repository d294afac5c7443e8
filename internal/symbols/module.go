package symbols

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

// ModuleState is the DFS color mark used to detect import cycles without
// recursing or deadlocking.
type ModuleState uint8

const (
	ModuleUnloaded  ModuleState = iota // white: never seen
	ModuleResolving                    // grey: on the current DFS path
	ModuleResolved                     // black: export table final
)

// Module holds one module's resolution state and its exported symbols.
type Module struct {
	Key     string // dotted path, e.g. "std.math"
	State   ModuleState
	Exports map[source.StringID]SymbolID
}

// ModuleTable maps dotted module paths to already-resolved export tables.
// The driver begins a module before resolving its file and finishes it
// with the exports afterwards; a use of a grey module is a cycle.
type ModuleTable struct {
	modules map[string]*Module
}

func NewModuleTable() *ModuleTable {
	return &ModuleTable{modules: make(map[string]*Module)}
}

// Begin marks the module grey. Returns false if it is already on the
// current resolution path.
func (mt *ModuleTable) Begin(key string) bool {
	mod, ok := mt.modules[key]
	if !ok {
		mt.modules[key] = &Module{Key: key, State: ModuleResolving}
		return true
	}
	if mod.State == ModuleResolving {
		return false
	}
	mod.State = ModuleResolving
	return true
}

// Finish marks the module black and installs its export table.
func (mt *ModuleTable) Finish(key string, exports map[source.StringID]SymbolID) {
	mod, ok := mt.modules[key]
	if !ok {
		mod = &Module{Key: key}
		mt.modules[key] = mod
	}
	mod.State = ModuleResolved
	mod.Exports = exports
}

// Get returns the module entry, if any.
func (mt *ModuleTable) Get(key string) (*Module, bool) {
	mod, ok := mt.modules[key]
	return mod, ok
}

// Export looks a name up in a resolved module's export table.
func (mt *ModuleTable) Export(key string, name source.StringID) (SymbolID, bool) {
	mod, ok := mt.modules[key]
	if !ok || mod.State != ModuleResolved {
		return NoSymbolID, false
	}
	id, ok := mod.Exports[name]
	return id, ok
}
