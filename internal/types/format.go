package types

import (
	"fmt"
	"strings"
)

// DeclNamer resolves a declaring symbol to its source name. The checker
// passes a closure over its symbol table.
type DeclNamer func(decl uint32) string

// Format renders a type for diagnostics: `list[int]`, `fn(int) -> bool`,
// `Option[str]`, `Point`, `Pair[int, str]`.
func (in *Interner) Format(id TypeID, namer DeclNamer) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindUnit, KindBool, KindInt, KindFloat, KindStr, KindRange:
		return t.Kind.String()
	case KindList:
		return "list[" + in.Format(t.Elem, namer) + "]"
	case KindDict:
		return "dict[" + in.Format(t.Elem, namer) + ", " + in.Format(t.Elem2, namer) + "]"
	case KindOption:
		return "Option[" + in.Format(t.Elem, namer) + "]"
	case KindTask:
		return "Task[" + in.Format(t.Elem, namer) + "]"
	case KindStruct, KindEnum:
		name := "<anon>"
		if namer != nil {
			name = namer(t.Decl)
		}
		args := in.Args(id)
		if len(args) == 0 {
			return name
		}
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = in.Format(arg, namer)
		}
		return name + "[" + strings.Join(parts, ", ") + "]"
	case KindFn:
		info, _ := in.FnInfo(id)
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = in.Format(p, namer)
		}
		out := "fn(" + strings.Join(parts, ", ") + ")"
		if info.Ret.IsValid() && info.Ret != in.builtins.Unit {
			out += " -> " + in.Format(info.Ret, namer)
		}
		return out
	case KindParam:
		if namer != nil {
			return namer(t.Decl)
		}
		return fmt.Sprintf("T%d", t.Index)
	case KindVar:
		return fmt.Sprintf("?%d", t.Index)
	default:
		return "<invalid>"
	}
}
