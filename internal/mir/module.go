package mir

import "github.com/Ottrlang/otterlang/internal/symbols"

// Module is one lowered compilation unit: functions, nominal layouts,
// and the extern table its instructions call into.
type Module struct {
	Target Target

	Funcs     []*Func
	FuncBySym map[symbols.SymbolID]FuncID

	Structs []StructLayout
	Enums   []EnumLayout

	Externs      []Extern
	externByName map[string]ExternID
}

func newModule(target Target) *Module {
	m := &Module{
		Target:       target,
		FuncBySym:    make(map[symbols.SymbolID]FuncID),
		Externs:      externTable(target),
		externByName: make(map[string]ExternID),
	}
	for _, ext := range m.Externs {
		m.externByName[ext.Name] = ext.ID
	}
	return m
}

func (m *Module) extern(name string) ExternID {
	id, ok := m.externByName[name]
	if !ok {
		return NoExternID
	}
	return id
}

func (m *Module) Func(id FuncID) *Func {
	if id == NoFuncID || int(id) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[id]
}
