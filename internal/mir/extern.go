package mir

// Target selects the runtime environment the emitted IR links against.
type Target uint8

const (
	TargetNative Target = iota
	TargetWasm
)

func (t Target) String() string {
	if t == TargetWasm {
		return "wasm"
	}
	return "native"
}

// Extern is one fixed-signature runtime entry point. Only the signature
// is defined here; the implementation lives in the runtime.
type Extern struct {
	ID     ExternID
	Name   string
	Params []string
	Result string // "" for no result
}

// Runtime entry point names. Signatures are fixed; see externTable.
const (
	ExternAlloc      = "otter_alloc"
	ExternAddRoot    = "otter_add_root"
	ExternRemoveRoot = "otter_remove_root"
	ExternTaskSubmit = "otter_task_submit"
	ExternTaskJoin   = "otter_task_join"
	ExternToString   = "otter_to_string"
	ExternStrConcat  = "otter_str_concat"
	ExternListPush   = "otter_list_push"
	ExternWrite      = "otter_write"

	// WASM host imports: stdout and monotonic time never reach the OS
	// directly on a freestanding target.
	ExternHostWrite = "host_write"
	ExternHostNowMs = "host_now_ms"
)

func externTable(target Target) []Extern {
	table := []Extern{
		{Name: ExternAlloc, Params: []string{"i64", "i64"}, Result: "ptr"},
		{Name: ExternAddRoot, Params: []string{"ptr"}},
		{Name: ExternRemoveRoot, Params: []string{"ptr"}},
		{Name: ExternTaskSubmit, Params: []string{"closure"}, Result: "handle"},
		{Name: ExternTaskJoin, Params: []string{"handle"}, Result: "val"},
		{Name: ExternToString, Params: []string{"val"}, Result: "str"},
		{Name: ExternStrConcat, Params: []string{"str", "str"}, Result: "str"},
		{Name: ExternListPush, Params: []string{"list", "val"}, Result: "list"},
	}
	if target == TargetWasm {
		table = append(table,
			Extern{Name: ExternHostWrite, Params: []string{"ptr", "i64"}},
			Extern{Name: ExternHostNowMs, Result: "i64"},
		)
	} else {
		table = append(table, Extern{Name: ExternWrite, Params: []string{"str"}})
	}
	for i := range table {
		table[i].ID = ExternID(i)
	}
	return table
}

// writeExtern is the stdout entry point for the module's target.
func (m *Module) writeExtern() string {
	if m.Target == TargetWasm {
		return ExternHostWrite
	}
	return ExternWrite
}
