package mir

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/types"
)

// InstrKind enumerates instruction kinds in the IR.
type InstrKind uint8

const (
	// InstrAssign stores an RValue into a place.
	InstrAssign InstrKind = iota
	// InstrCall invokes a lowered function, an extern entry point, or a
	// closure value.
	InstrCall
)

// Instr is one three-address instruction.
type Instr struct {
	Kind InstrKind

	Assign AssignInstr
	Call   CallInstr
}

type AssignInstr struct {
	Dst Place
	Src RValue
}

// CalleeKind distinguishes call target types.
type CalleeKind uint8

const (
	// CalleeFunc targets a function in this module by ID.
	CalleeFunc CalleeKind = iota
	// CalleeExtern targets a runtime entry point by name.
	CalleeExtern
	// CalleeValue targets a closure value.
	CalleeValue
)

type Callee struct {
	Kind   CalleeKind
	Func   FuncID
	Name   string
	Extern ExternID
	Value  Operand
}

type CallInstr struct {
	HasDst bool
	Dst    Place
	Callee Callee
	Args   []Operand
}

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst is an immediate constant.
	OperandConst OperandKind = iota
	// OperandCopy reads a place.
	OperandCopy
)

type Operand struct {
	Kind OperandKind
	Type types.TypeID

	Const Const
	Place Place
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstStr
	ConstUnit
	// ConstFunc references a lowered function, used when passing a
	// closure's code to the task runtime or as a fn value.
	ConstFunc
)

// Const is an immediate. Numeric constants keep their source text with
// underscores stripped; parsing to machine width is the back end's job.
type Const struct {
	Kind ConstKind
	Type types.TypeID

	Text string
	Bool bool
	Func FuncID
}

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse passes an operand through.
	RValueUse RValueKind = iota
	// RValueUnary applies a source-level unary operator.
	RValueUnary
	// RValueBinary applies a source-level binary operator.
	RValueBinary
	// RValueLen reads the length of a list, dict, or str.
	RValueLen
	// RValueTagOf reads an enum value's variant tag.
	RValueTagOf
	// RValueSlice takes list elements from Front to length-Back.
	RValueSlice
)

type RValue struct {
	Kind RValueKind

	Use    Operand
	Unary  UnaryOp
	Binary BinaryOp
	Len    Operand
	TagOf  Operand
	Slice  SliceOp
}

type UnaryOp struct {
	Op      ast.ExprUnaryOp
	Operand Operand
}

type BinaryOp struct {
	Op    ast.ExprBinaryOp
	Left  Operand
	Right Operand
}

type SliceOp struct {
	List  Operand
	Front uint32
	Back  uint32
}

func useOf(op Operand) RValue { return RValue{Kind: RValueUse, Use: op} }
