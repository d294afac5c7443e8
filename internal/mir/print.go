package mir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Dump renders the module as stable text: externs, layouts, then
// functions sorted by name. Lowering the same input twice produces
// byte-identical output.
func (m *Module) Dump(in *types.Interner, namer types.DeclNamer) string {
	p := &printer{m: m, in: in, namer: namer}
	p.printf("module target=%s\n", m.Target)

	if len(m.Externs) > 0 {
		p.printf("\nexterns:\n")
		for _, ext := range m.Externs {
			p.printf("  %s(%s)", ext.Name, strings.Join(ext.Params, ", "))
			if ext.Result != "" {
				p.printf(" -> %s", ext.Result)
			}
			p.printf("\n")
		}
	}

	for _, layout := range m.Structs {
		p.printf("\nstruct %s size=%d:\n", layout.Name, layout.Size)
		for _, field := range layout.Fields {
			p.printf("  +%d %s: %s\n", field.Offset, field.Name, p.typ(field.Type))
		}
	}
	for _, layout := range m.Enums {
		p.printf("\nenum %s size=%d:\n", layout.Name, layout.Size)
		for _, variant := range layout.Variants {
			p.printf("  #%d %s", variant.Tag, variant.Name)
			if len(variant.Payloads) > 0 {
				parts := make([]string, len(variant.Payloads))
				for i, t := range variant.Payloads {
					parts[i] = p.typ(t)
				}
				p.printf("(%s)", strings.Join(parts, ", "))
			}
			p.printf("\n")
		}
	}

	funcs := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortStableFunc(funcs, func(a, b *Func) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, f := range funcs {
		p.printFunc(f)
	}
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	m     *Module
	in    *types.Interner
	namer types.DeclNamer
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) typ(t types.TypeID) string {
	if t == types.NoTypeID {
		return "any"
	}
	return p.in.Format(t, p.namer)
}

func (p *printer) printFunc(f *Func) {
	p.printf("\nfn %s -> %s:\n", f.Name, p.typ(f.Result))
	for i, l := range f.Locals {
		role := ""
		if i < f.ParamCount {
			role = " param"
		}
		rooted := ""
		if l.Rooted {
			rooted = " rooted"
		}
		p.printf("  L%d %s: %s%s%s\n", i, l.Name, p.typ(l.Type), role, rooted)
	}
	for i := range f.Blocks {
		b := &f.Blocks[i]
		p.printf("  bb%d:\n", b.ID)
		for j := range b.Instrs {
			p.printf("    %s\n", p.instr(&b.Instrs[j]))
		}
		p.printf("    %s\n", p.term(&b.Term))
	}
}

func (p *printer) instr(ins *Instr) string {
	switch ins.Kind {
	case InstrAssign:
		return fmt.Sprintf("%s = %s", p.place(ins.Assign.Dst), p.rvalue(&ins.Assign.Src))
	case InstrCall:
		call := &ins.Call
		args := make([]string, len(call.Args))
		for i := range call.Args {
			args[i] = p.operand(call.Args[i])
		}
		callStr := fmt.Sprintf("call %s(%s)", p.callee(&call.Callee), strings.Join(args, ", "))
		if call.HasDst {
			return fmt.Sprintf("%s = %s", p.place(call.Dst), callStr)
		}
		return callStr
	default:
		return "<invalid instr>"
	}
}

func (p *printer) callee(c *Callee) string {
	switch c.Kind {
	case CalleeFunc:
		return c.Name
	case CalleeExtern:
		return "@" + c.Name
	case CalleeValue:
		return "*" + p.operand(c.Value)
	default:
		return "<invalid callee>"
	}
}

func (p *printer) rvalue(rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return p.operand(rv.Use)
	case RValueUnary:
		return fmt.Sprintf("%s %s", unaryOpName(rv.Unary.Op), p.operand(rv.Unary.Operand))
	case RValueBinary:
		return fmt.Sprintf("%s %s, %s", binaryOpName(rv.Binary.Op),
			p.operand(rv.Binary.Left), p.operand(rv.Binary.Right))
	case RValueLen:
		return fmt.Sprintf("len %s", p.operand(rv.Len))
	case RValueTagOf:
		return fmt.Sprintf("tagof %s", p.operand(rv.TagOf))
	case RValueSlice:
		return fmt.Sprintf("slice %s [%d..len-%d]", p.operand(rv.Slice.List),
			rv.Slice.Front, rv.Slice.Back)
	default:
		return "<invalid rvalue>"
	}
}

func (p *printer) operand(op Operand) string {
	switch op.Kind {
	case OperandConst:
		return p.constant(op.Const)
	case OperandCopy:
		return p.place(op.Place)
	default:
		return "<invalid operand>"
	}
}

func (p *printer) constant(c Const) string {
	switch c.Kind {
	case ConstInt, ConstFloat:
		return c.Text
	case ConstBool:
		if c.Bool {
			return "true"
		}
		return "false"
	case ConstStr:
		return fmt.Sprintf("%q", c.Text)
	case ConstUnit:
		return "unit"
	case ConstFunc:
		if f := p.m.Func(c.Func); f != nil {
			return "&" + f.Name
		}
		return "&<missing>"
	default:
		return "<invalid const>"
	}
}

func (p *printer) place(pl Place) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "L%d", pl.Local)
	for _, proj := range pl.Proj {
		switch proj.Kind {
		case PlaceProjField:
			fmt.Fprintf(&sb, ".f%d", proj.Index)
		case PlaceProjTag:
			sb.WriteString(".tag")
		case PlaceProjPayload:
			fmt.Fprintf(&sb, ".pl%d", proj.Index)
		case PlaceProjIndex:
			fmt.Fprintf(&sb, "[L%d]", proj.IndexLocal)
		case PlaceProjElem:
			fmt.Fprintf(&sb, ".e%d", proj.Index)
		case PlaceProjElemBack:
			fmt.Fprintf(&sb, ".eb%d", proj.Index)
		}
	}
	return sb.String()
}

func binaryOpName(op ast.ExprBinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "add"
	case ast.BinSub:
		return "sub"
	case ast.BinMul:
		return "mul"
	case ast.BinDiv:
		return "div"
	case ast.BinMod:
		return "mod"
	case ast.BinEq:
		return "eq"
	case ast.BinNe:
		return "ne"
	case ast.BinLt:
		return "lt"
	case ast.BinLe:
		return "le"
	case ast.BinGt:
		return "gt"
	case ast.BinGe:
		return "ge"
	case ast.BinAnd:
		return "and"
	case ast.BinOr:
		return "or"
	default:
		return "is"
	}
}

func unaryOpName(op ast.ExprUnaryOp) string {
	switch op {
	case ast.UnNeg:
		return "neg"
	case ast.UnNot:
		return "not"
	default:
		return "pos"
	}
}

func (p *printer) term(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return fmt.Sprintf("return %s", p.operand(t.Return.Value))
		}
		return "return"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s then bb%d else bb%d",
			p.operand(t.If.Cond), t.If.Then, t.If.Else)
	case TermSwitchTag:
		parts := make([]string, len(t.SwitchTag.Cases))
		for i, c := range t.SwitchTag.Cases {
			parts[i] = fmt.Sprintf("#%d->bb%d", c.Tag, c.Target)
		}
		s := fmt.Sprintf("switchtag %s [%s]", p.operand(t.SwitchTag.Value), strings.Join(parts, " "))
		if t.SwitchTag.Default != NoBlockID {
			s += fmt.Sprintf(" default bb%d", t.SwitchTag.Default)
		}
		return s
	case TermSwitchConst:
		parts := make([]string, len(t.SwitchConst.Cases))
		for i, c := range t.SwitchConst.Cases {
			parts[i] = fmt.Sprintf("%s->bb%d", p.constant(c.Value), c.Target)
		}
		s := fmt.Sprintf("switchconst %s [%s]", p.operand(t.SwitchConst.Value), strings.Join(parts, " "))
		if t.SwitchConst.Default != NoBlockID {
			s += fmt.Sprintf(" default bb%d", t.SwitchConst.Default)
		}
		return s
	case TermUnreachable:
		return "unreachable"
	default:
		return "<no terminator>"
	}
}
