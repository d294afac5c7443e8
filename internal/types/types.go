package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit         // the None type
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList   // Elem
	KindDict   // Elem key, Elem2 value
	KindOption // Elem; built-in enum with variants Some/None
	KindTask   // Elem; handle produced by spawn, consumed by await
	KindRange  // integer range, iterable
	KindStruct // Decl + optional type arguments
	KindEnum   // Decl + optional type arguments
	KindFn     // Payload indexes the fn info table
	KindParam  // rigid type parameter: Decl owner + Index
	KindVar    // unification variable, unique per Index
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "None"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindOption:
		return "Option"
	case KindTask:
		return "Task"
	case KindRange:
		return "range"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindFn:
		return "fn"
	case KindParam:
		return "type parameter"
	case KindVar:
		return "type variable"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. Decl refers to the
// declaring symbol (a symbols.SymbolID value) for nominal types and rigid
// parameters; Payload indexes the interner's side tables.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Elem2   TypeID
	Decl    uint32
	Index   uint32
	Payload uint32
}

// FnInfo stores a function type's full signature.
type FnInfo struct {
	Params []TypeID
	Ret    TypeID
}
