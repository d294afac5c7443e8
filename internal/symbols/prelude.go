package symbols

// PreludeEntry describes a built-in symbol injected before source traversal.
type PreludeEntry struct {
	Name string
	Kind SymbolKind
}

// DefaultPrelude lists the names every file sees without a use item.
// Their types are attached during type checking; the resolver only makes
// the names visible.
func DefaultPrelude() []PreludeEntry {
	return []PreludeEntry{
		{Name: "int", Kind: SymbolStruct},
		{Name: "float", Kind: SymbolStruct},
		{Name: "bool", Kind: SymbolStruct},
		{Name: "str", Kind: SymbolStruct},
		{Name: "list", Kind: SymbolStruct},
		{Name: "dict", Kind: SymbolStruct},
		{Name: "Option", Kind: SymbolEnum},
		{Name: "Task", Kind: SymbolStruct},
		{Name: "Some", Kind: SymbolFunction}, // Option.Some constructor
		{Name: "print", Kind: SymbolFunction},
		{Name: "println", Kind: SymbolFunction},
		{Name: "len", Kind: SymbolFunction},
	}
}

// installPrelude declares prelude entries into the root scope.
func (r *Resolver) installPrelude(scopeID ScopeID, entries []PreludeEntry) {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return
	}
	for _, entry := range entries {
		nameID := r.table.Strings.Intern(entry.Name)
		if _, taken := scope.NameIndex[nameID]; taken {
			continue
		}
		id := r.table.Symbols.New(Symbol{
			Name:  nameID,
			Kind:  entry.Kind,
			Scope: scopeID,
			Flags: SymbolFlagBuiltin,
		})
		scope.Symbols = append(scope.Symbols, id)
		scope.NameIndex[nameID] = id
	}
}
