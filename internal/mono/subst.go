package mono

import "github.com/Ottrlang/otterlang/internal/types"

// Specialize rewrites every rigid parameter in a type using the given
// mapping, rebuilding composites through the interner. Types without
// parameters come back unchanged.
func Specialize(in *types.Interner, id types.TypeID, mapping map[types.TypeID]types.TypeID) types.TypeID {
	if in == nil || len(mapping) == 0 {
		return id
	}
	if repl, ok := mapping[id]; ok {
		return repl
	}
	t, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindList:
		return in.List(Specialize(in, t.Elem, mapping))
	case types.KindOption:
		return in.Option(Specialize(in, t.Elem, mapping))
	case types.KindTask:
		return in.Task(Specialize(in, t.Elem, mapping))
	case types.KindDict:
		return in.Dict(Specialize(in, t.Elem, mapping), Specialize(in, t.Elem2, mapping))
	case types.KindStruct:
		return in.Struct(t.Decl, specializeAll(in, in.Args(id), mapping))
	case types.KindEnum:
		return in.Enum(t.Decl, specializeAll(in, in.Args(id), mapping))
	case types.KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return id
		}
		return in.Fn(specializeAll(in, info.Params, mapping), Specialize(in, info.Ret, mapping))
	default:
		return id
	}
}

func specializeAll(in *types.Interner, ids []types.TypeID, mapping map[types.TypeID]types.TypeID) []types.TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = Specialize(in, id, mapping)
	}
	return out
}

// ParamMapping pairs a declaration's rigid parameters with concrete
// arguments, positionally.
func ParamMapping(params, args []types.TypeID) map[types.TypeID]types.TypeID {
	if len(params) == 0 || len(params) != len(args) {
		return nil
	}
	out := make(map[types.TypeID]types.TypeID, len(params))
	for i, p := range params {
		out[p] = args[i]
	}
	return out
}

// containsParam reports whether a type still mentions a rigid parameter.
func containsParam(in *types.Interner, id types.TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindParam:
		return true
	case types.KindList, types.KindOption, types.KindTask:
		return containsParam(in, t.Elem)
	case types.KindDict:
		return containsParam(in, t.Elem) || containsParam(in, t.Elem2)
	case types.KindStruct, types.KindEnum:
		for _, arg := range in.Args(id) {
			if containsParam(in, arg) {
				return true
			}
		}
		return false
	case types.KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		for _, p := range info.Params {
			if containsParam(in, p) {
				return true
			}
		}
		return containsParam(in, info.Ret)
	default:
		return false
	}
}

// ContainsParam is the exported form used by lowering to reject
// under-specialized signatures.
func ContainsParam(in *types.Interner, id types.TypeID) bool {
	return containsParam(in, id)
}
