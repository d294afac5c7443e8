package mir

import "fmt"

// Validate checks structural invariants of a lowered module: every
// function registered, every block terminated, every reference in
// range. Violations are lowering bugs, not user errors.
func Validate(m *Module) error {
	for id, f := range m.Funcs {
		if f == nil {
			return fmt.Errorf("mir: func %d was scheduled but never lowered", id)
		}
		if err := validateFunc(m, f); err != nil {
			return fmt.Errorf("mir: fn %s: %w", f.Name, err)
		}
	}
	return nil
}

func validateFunc(m *Module, f *Func) error {
	if f.ParamCount > len(f.Locals) {
		return fmt.Errorf("%d params but %d locals", f.ParamCount, len(f.Locals))
	}
	if int(f.Entry) >= len(f.Blocks) || f.Entry < 0 {
		return fmt.Errorf("entry bb%d out of range", f.Entry)
	}
	blockOK := func(id BlockID) bool { return id >= 0 && int(id) < len(f.Blocks) }
	localOK := func(id LocalID) bool { return id >= 0 && int(id) < len(f.Locals) }

	checkPlace := func(p Place) error {
		if !localOK(p.Local) {
			return fmt.Errorf("place local L%d out of range", p.Local)
		}
		for _, proj := range p.Proj {
			if proj.Kind == PlaceProjIndex && !localOK(proj.IndexLocal) {
				return fmt.Errorf("index local L%d out of range", proj.IndexLocal)
			}
		}
		return nil
	}
	checkOperand := func(op Operand) error {
		if op.Kind == OperandCopy {
			return checkPlace(op.Place)
		}
		return nil
	}

	for i := range f.Blocks {
		b := &f.Blocks[i]
		for j := range b.Instrs {
			ins := &b.Instrs[j]
			switch ins.Kind {
			case InstrAssign:
				if err := checkPlace(ins.Assign.Dst); err != nil {
					return err
				}
				for _, op := range rvalueOperands(&ins.Assign.Src) {
					if err := checkOperand(op); err != nil {
						return err
					}
				}
			case InstrCall:
				call := &ins.Call
				if call.HasDst {
					if err := checkPlace(call.Dst); err != nil {
						return err
					}
				}
				switch call.Callee.Kind {
				case CalleeFunc:
					if call.Callee.Func < 0 || int(call.Callee.Func) >= len(m.Funcs) {
						return fmt.Errorf("call target fn%d out of range", call.Callee.Func)
					}
				case CalleeExtern:
					if call.Callee.Extern == NoExternID {
						return fmt.Errorf("call to unknown extern '%s'", call.Callee.Name)
					}
				case CalleeValue:
					if err := checkOperand(call.Callee.Value); err != nil {
						return err
					}
				}
				for _, op := range call.Args {
					if err := checkOperand(op); err != nil {
						return err
					}
				}
			}
		}

		switch b.Term.Kind {
		case TermNone:
			return fmt.Errorf("bb%d has no terminator", b.ID)
		case TermGoto:
			if !blockOK(b.Term.Goto.Target) {
				return fmt.Errorf("bb%d: goto target out of range", b.ID)
			}
		case TermIf:
			if !blockOK(b.Term.If.Then) || !blockOK(b.Term.If.Else) {
				return fmt.Errorf("bb%d: if target out of range", b.ID)
			}
		case TermSwitchTag:
			for _, c := range b.Term.SwitchTag.Cases {
				if !blockOK(c.Target) {
					return fmt.Errorf("bb%d: switch target out of range", b.ID)
				}
			}
			if d := b.Term.SwitchTag.Default; d != NoBlockID && !blockOK(d) {
				return fmt.Errorf("bb%d: switch default out of range", b.ID)
			}
		case TermSwitchConst:
			for _, c := range b.Term.SwitchConst.Cases {
				if !blockOK(c.Target) {
					return fmt.Errorf("bb%d: switch target out of range", b.ID)
				}
			}
			if d := b.Term.SwitchConst.Default; d != NoBlockID && !blockOK(d) {
				return fmt.Errorf("bb%d: switch default out of range", b.ID)
			}
		}
	}
	return nil
}

func rvalueOperands(rv *RValue) []Operand {
	switch rv.Kind {
	case RValueUse:
		return []Operand{rv.Use}
	case RValueUnary:
		return []Operand{rv.Unary.Operand}
	case RValueBinary:
		return []Operand{rv.Binary.Left, rv.Binary.Right}
	case RValueLen:
		return []Operand{rv.Len}
	case RValueTagOf:
		return []Operand{rv.TagOf}
	case RValueSlice:
		return []Operand{rv.Slice.List}
	default:
		return nil
	}
}
