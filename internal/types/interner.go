package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	Str     TypeID
	Range   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// One interner serves one checking run; unification variables are unique
// and never deduplicated.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	argLists [][]TypeID
	fnInfos  []FnInfo
	nextVar  uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		argLists: [][]TypeID{nil}, // reserve 0 as the empty list
		fnInfos:  []FnInfo{{}},    // reserve 0 as invalid sentinel
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Range = in.Intern(Type{Kind: KindRange})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID. Variables
// must be created through NewVar, never interned directly.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := in.keyOf(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.internRaw(t)
	in.index[key] = id
	return id
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// List interns a list type.
func (in *Interner) List(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindList, Elem: elem})
}

// Dict interns a dict type.
func (in *Interner) Dict(key, value TypeID) TypeID {
	return in.Intern(Type{Kind: KindDict, Elem: key, Elem2: value})
}

// Option interns Option[elem].
func (in *Interner) Option(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindOption, Elem: elem})
}

// Task interns Task[elem].
func (in *Interner) Task(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindTask, Elem: elem})
}

// Struct interns a nominal struct instance.
func (in *Interner) Struct(decl uint32, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindStruct, Decl: decl, Payload: in.internArgs(args)})
}

// Enum interns a nominal enum instance.
func (in *Interner) Enum(decl uint32, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindEnum, Decl: decl, Payload: in.internArgs(args)})
}

// Param interns the rigid type parameter #index of a declaration.
func (in *Interner) Param(decl uint32, index uint32) TypeID {
	return in.Intern(Type{Kind: KindParam, Decl: decl, Index: index})
}

// Fn interns a function type.
func (in *Interner) Fn(params []TypeID, ret TypeID) TypeID {
	info := FnInfo{Params: append([]TypeID(nil), params...), Ret: ret}
	key := fnKey(info)
	if id, ok := in.index[key]; ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.fnInfos))
	if err != nil {
		panic(fmt.Errorf("len(fnInfos) overflow: %w", err))
	}
	in.fnInfos = append(in.fnInfos, info)
	id := in.internRaw(Type{Kind: KindFn, Payload: payload})
	in.index[key] = id
	return id
}

// NewVar allocates a fresh unification variable.
func (in *Interner) NewVar() TypeID {
	in.nextVar++
	return in.internRaw(Type{Kind: KindVar, Index: in.nextVar})
}

// FnInfo returns the signature of a function type.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFn || int(t.Payload) >= len(in.fnInfos) {
		return nil, false
	}
	return &in.fnInfos[t.Payload], true
}

// Args returns the type arguments of a nominal instance.
func (in *Interner) Args(id TypeID) []TypeID {
	t, ok := in.Lookup(id)
	if !ok || int(t.Payload) >= len(in.argLists) {
		return nil
	}
	if t.Kind != KindStruct && t.Kind != KindEnum {
		return nil
	}
	return in.argLists[t.Payload]
}

func (in *Interner) internArgs(args []TypeID) uint32 {
	if len(args) == 0 {
		return 0
	}
	payload, err := safecast.Conv[uint32](len(in.argLists))
	if err != nil {
		panic(fmt.Errorf("len(argLists) overflow: %w", err))
	}
	in.argLists = append(in.argLists, append([]TypeID(nil), args...))
	return payload
}

// typeKey makes structurally-equal descriptors map to one TypeID. Arg
// lists are folded into the string field so nominal instances with the
// same arguments deduplicate.
type typeKey struct {
	Kind  Kind
	Elem  TypeID
	Elem2 TypeID
	Decl  uint32
	Index uint32
	Extra string
}

func (in *Interner) keyOf(t Type) typeKey {
	key := typeKey{Kind: t.Kind, Elem: t.Elem, Elem2: t.Elem2, Decl: t.Decl, Index: t.Index}
	if (t.Kind == KindStruct || t.Kind == KindEnum) && t.Payload != 0 {
		key.Extra = encodeIDs(in.argLists[t.Payload])
	}
	return key
}

func fnKey(info FnInfo) typeKey {
	return typeKey{Kind: KindFn, Elem: info.Ret, Extra: encodeIDs(info.Params)}
}

func encodeIDs(ids []TypeID) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	return b.String()
}
