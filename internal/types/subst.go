package types

// Subst is the unification substitution: a mapping from type variables to
// types. One Subst is local to one checking run and is always passed
// explicitly, never shared.
type Subst struct {
	m map[TypeID]TypeID
}

func NewSubst() *Subst {
	return &Subst{m: make(map[TypeID]TypeID)}
}

// Bind records var := t. The caller is responsible for the occurs check.
func (s *Subst) Bind(v, t TypeID) {
	s.m[v] = t
}

// Walk follows variable bindings until it reaches a non-variable type or
// an unbound variable. Path compression keeps repeated walks cheap.
func (s *Subst) Walk(in *Interner, id TypeID) TypeID {
	seen := id
	for {
		t, ok := in.Lookup(id)
		if !ok || t.Kind != KindVar {
			break
		}
		next, bound := s.m[id]
		if !bound {
			break
		}
		id = next
	}
	if seen != id {
		s.m[seen] = id
	}
	return id
}

// Apply resolves every variable inside id, rebuilding composite types
// through the interner. Unbound variables stay in place.
func (s *Subst) Apply(in *Interner, id TypeID) TypeID {
	id = s.Walk(in, id)
	t, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case KindList:
		return in.List(s.Apply(in, t.Elem))
	case KindDict:
		return in.Dict(s.Apply(in, t.Elem), s.Apply(in, t.Elem2))
	case KindOption:
		return in.Option(s.Apply(in, t.Elem))
	case KindTask:
		return in.Task(s.Apply(in, t.Elem))
	case KindStruct, KindEnum:
		args := in.Args(id)
		if len(args) == 0 {
			return id
		}
		applied := make([]TypeID, len(args))
		changed := false
		for i, arg := range args {
			applied[i] = s.Apply(in, arg)
			if applied[i] != arg {
				changed = true
			}
		}
		if !changed {
			return id
		}
		if t.Kind == KindStruct {
			return in.Struct(t.Decl, applied)
		}
		return in.Enum(t.Decl, applied)
	case KindFn:
		info, _ := in.FnInfo(id)
		params := make([]TypeID, len(info.Params))
		changed := false
		for i, p := range info.Params {
			params[i] = s.Apply(in, p)
			if params[i] != p {
				changed = true
			}
		}
		ret := s.Apply(in, info.Ret)
		if !changed && ret == info.Ret {
			return id
		}
		return in.Fn(params, ret)
	default:
		return id
	}
}

// Occurs reports whether variable v appears inside id (after walking
// bindings). Binding a variable to a type containing itself would build
// an infinite type.
func (s *Subst) Occurs(in *Interner, v, id TypeID) bool {
	id = s.Walk(in, id)
	if id == v {
		return true
	}
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindList, KindOption, KindTask:
		return s.Occurs(in, v, t.Elem)
	case KindDict:
		return s.Occurs(in, v, t.Elem) || s.Occurs(in, v, t.Elem2)
	case KindStruct, KindEnum:
		for _, arg := range in.Args(id) {
			if s.Occurs(in, v, arg) {
				return true
			}
		}
		return false
	case KindFn:
		info, _ := in.FnInfo(id)
		for _, p := range info.Params {
			if s.Occurs(in, v, p) {
				return true
			}
		}
		return s.Occurs(in, v, info.Ret)
	default:
		return false
	}
}

// HasFreeVars reports whether id still contains an unbound variable after
// substitution. Lowering refuses such types.
func (s *Subst) HasFreeVars(in *Interner, id TypeID) bool {
	id = s.Walk(in, id)
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindVar:
		return true
	case KindList, KindOption, KindTask:
		return s.HasFreeVars(in, t.Elem)
	case KindDict:
		return s.HasFreeVars(in, t.Elem) || s.HasFreeVars(in, t.Elem2)
	case KindStruct, KindEnum:
		for _, arg := range in.Args(id) {
			if s.HasFreeVars(in, arg) {
				return true
			}
		}
		return false
	case KindFn:
		info, _ := in.FnInfo(id)
		for _, p := range info.Params {
			if s.HasFreeVars(in, p) {
				return true
			}
		}
		return s.HasFreeVars(in, info.Ret)
	default:
		return false
	}
}
