package mir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
	TermSwitchTag
	TermSwitchConst
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Goto        GotoTerm
	If          IfTerm
	SwitchTag   SwitchTagTerm
	SwitchConst SwitchConstTerm
}

type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

type SwitchTagCase struct {
	Tag    uint32
	Target BlockID
}

// SwitchTagTerm dispatches on an enum value's tag. Default is NoBlockID
// when the cases cover every variant.
type SwitchTagTerm struct {
	Value   Operand
	Cases   []SwitchTagCase
	Default BlockID
}

type SwitchConstCase struct {
	Value  Const
	Target BlockID
}

// SwitchConstTerm dispatches on equality against literal constants.
type SwitchConstTerm struct {
	Value   Operand
	Cases   []SwitchConstCase
	Default BlockID
}
