package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/source"
)

// DumpAST renders a parsed file as an indented tree, one node per line.
// Names and literal texts come from the builder's interner; spans are
// omitted so the dump stays diff-friendly.
func DumpAST(w io.Writer, builder *ast.Builder, fileID ast.FileID) {
	d := astDumper{w: w, b: builder}
	file := builder.Files.Get(fileID)
	if file == nil {
		return
	}
	fmt.Fprintln(w, "file")
	for _, itemID := range file.Items {
		d.item(itemID, 1)
	}
}

type astDumper struct {
	w io.Writer
	b *ast.Builder
}

func (d *astDumper) printf(depth int, format string, args ...any) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *astDumper) str(id source.StringID) string {
	if id == source.NoStringID {
		return "_"
	}
	return d.b.Strings.MustLookup(id)
}

func (d *astDumper) path(segs []source.StringID) string {
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		parts = append(parts, d.str(seg))
	}
	return strings.Join(parts, ".")
}

func (d *astDumper) item(id ast.ItemID, depth int) {
	item := d.b.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFn:
		fn, _ := d.b.Items.Fn(id)
		d.printf(depth, "fn %s%s", d.str(fn.Name), d.typeParams(fn.TypeParams))
		for _, p := range fn.Params {
			d.printf(depth+1, "param %s%s", d.str(p.Name), d.typeSuffix(p.Type))
			if p.Default.IsValid() {
				d.expr(p.Default, depth+2)
			}
		}
		if fn.Ret.IsValid() {
			d.printf(depth+1, "ret %s", d.typeExpr(fn.Ret))
		}
		d.stmt(fn.Body, depth+1)
	case ast.ItemStruct:
		st, _ := d.b.Items.Struct(id)
		d.printf(depth, "struct %s%s", d.str(st.Name), d.typeParams(st.TypeParams))
		for _, f := range st.Fields {
			d.printf(depth+1, "field %s%s", d.str(f.Name), d.typeSuffix(f.Type))
		}
		for _, m := range st.Methods {
			d.item(m, depth+1)
		}
	case ast.ItemEnum:
		en, _ := d.b.Items.Enum(id)
		d.printf(depth, "enum %s%s", d.str(en.Name), d.typeParams(en.TypeParams))
		for _, v := range en.Variants {
			payloads := make([]string, 0, len(v.Payloads))
			for _, p := range v.Payloads {
				payloads = append(payloads, d.typeExpr(p))
			}
			if len(payloads) == 0 {
				d.printf(depth+1, "variant %s", d.str(v.Name))
			} else {
				d.printf(depth+1, "variant %s(%s)", d.str(v.Name), strings.Join(payloads, ", "))
			}
		}
	case ast.ItemTypeAlias:
		alias, _ := d.b.Items.TypeAlias(id)
		d.printf(depth, "type %s%s = %s", d.str(alias.Name), d.typeParams(alias.TypeParams), d.typeExpr(alias.Target))
	case ast.ItemUse:
		use, _ := d.b.Items.Use(id)
		if use.Alias != source.NoStringID {
			d.printf(depth, "use %s as %s", d.path(use.Path), d.str(use.Alias))
		} else {
			d.printf(depth, "use %s", d.path(use.Path))
		}
	case ast.ItemStmt:
		wrap, _ := d.b.Items.Stmt(id)
		d.stmt(wrap.Stmt, depth)
	}
}

func (d *astDumper) typeParams(params []ast.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, d.str(p.Name))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func (d *astDumper) typeSuffix(id ast.TypeID) string {
	if !id.IsValid() {
		return ""
	}
	return ": " + d.typeExpr(id)
}

func (d *astDumper) typeExpr(id ast.TypeID) string {
	te := d.b.Types.Get(id)
	if te == nil {
		return "?"
	}
	switch te.Kind {
	case ast.TypeExprName:
		name, _ := d.b.Types.Name(id)
		out := d.path(name.Path)
		if len(name.Args) > 0 {
			args := make([]string, 0, len(name.Args))
			for _, a := range name.Args {
				args = append(args, d.typeExpr(a))
			}
			out += "[" + strings.Join(args, ", ") + "]"
		}
		return out
	case ast.TypeExprFn:
		fn, _ := d.b.Types.Fn(id)
		params := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, d.typeExpr(p))
		}
		out := "fn(" + strings.Join(params, ", ") + ")"
		if fn.Ret.IsValid() {
			out += " -> " + d.typeExpr(fn.Ret)
		}
		return out
	}
	return "?"
}

func (d *astDumper) stmt(id ast.StmtID, depth int) {
	stmt := d.b.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := d.b.Stmts.Block(id)
		d.printf(depth, "block")
		for _, s := range block.Stmts {
			d.stmt(s, depth+1)
		}
	case ast.StmtLet:
		let, _ := d.b.Stmts.Let(id)
		d.printf(depth, "let%s", d.typeSuffix(let.Type))
		d.pat(let.Pattern, depth+1)
		if let.Value.IsValid() {
			d.expr(let.Value, depth+1)
		}
	case ast.StmtAssign:
		assign, _ := d.b.Stmts.Assign(id)
		d.printf(depth, "assign %s", assignOpName(assign.Op))
		d.expr(assign.Target, depth+1)
		d.expr(assign.Value, depth+1)
	case ast.StmtExpr:
		es, _ := d.b.Stmts.Expr(id)
		d.printf(depth, "expr-stmt")
		d.expr(es.Value, depth+1)
	case ast.StmtReturn:
		ret, _ := d.b.Stmts.Return(id)
		d.printf(depth, "return")
		if ret.Value.IsValid() {
			d.expr(ret.Value, depth+1)
		}
	case ast.StmtBreak:
		d.printf(depth, "break")
	case ast.StmtContinue:
		d.printf(depth, "continue")
	case ast.StmtPass:
		d.printf(depth, "pass")
	case ast.StmtIf:
		ifs, _ := d.b.Stmts.If(id)
		d.printf(depth, "if")
		d.expr(ifs.Cond, depth+1)
		d.stmt(ifs.Then, depth+1)
		if ifs.Else.IsValid() {
			d.printf(depth, "else")
			d.stmt(ifs.Else, depth+1)
		}
	case ast.StmtWhile:
		wh, _ := d.b.Stmts.While(id)
		d.printf(depth, "while")
		d.expr(wh.Cond, depth+1)
		d.stmt(wh.Body, depth+1)
	case ast.StmtFor:
		f, _ := d.b.Stmts.For(id)
		d.printf(depth, "for")
		d.pat(f.Pattern, depth+1)
		d.expr(f.Iter, depth+1)
		d.stmt(f.Body, depth+1)
	case ast.StmtMatch:
		m, _ := d.b.Stmts.Match(id)
		d.printf(depth, "match")
		d.expr(m.Subject, depth+1)
		for _, arm := range m.Arms {
			d.printf(depth+1, "case")
			d.pat(arm.Pattern, depth+2)
			if arm.Guard.IsValid() {
				d.printf(depth+2, "guard")
				d.expr(arm.Guard, depth+3)
			}
			d.stmt(arm.Body, depth+2)
		}
	}
}

func (d *astDumper) expr(id ast.ExprID, depth int) {
	expr := d.b.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := d.b.Exprs.Ident(id)
		d.printf(depth, "ident %s", d.str(ident.Name))
	case ast.ExprLit:
		lit, _ := d.b.Exprs.Literal(id)
		d.printf(depth, "lit %s", d.literal(lit.Kind, lit.Value))
	case ast.ExprBinary:
		bin, _ := d.b.Exprs.Binary(id)
		d.printf(depth, "binary %s", binaryOpName(bin.Op))
		d.expr(bin.Left, depth+1)
		d.expr(bin.Right, depth+1)
	case ast.ExprUnary:
		un, _ := d.b.Exprs.Unary(id)
		d.printf(depth, "unary %s", unaryOpName(un.Op))
		d.expr(un.Operand, depth+1)
	case ast.ExprCall:
		call, _ := d.b.Exprs.Call(id)
		d.printf(depth, "call")
		d.expr(call.Target, depth+1)
		for _, arg := range call.Args {
			d.expr(arg, depth+1)
		}
	case ast.ExprMember:
		member, _ := d.b.Exprs.Member(id)
		d.printf(depth, "member .%s", d.str(member.Field))
		d.expr(member.Target, depth+1)
	case ast.ExprIndex:
		idx, _ := d.b.Exprs.Index(id)
		d.printf(depth, "index")
		d.expr(idx.Target, depth+1)
		d.expr(idx.Index, depth+1)
	case ast.ExprStructInit:
		init, _ := d.b.Exprs.StructInit(id)
		d.printf(depth, "struct-init %s", d.typeExpr(init.Type))
		for _, f := range init.Fields {
			d.printf(depth+1, "field %s", d.str(f.Name))
			d.expr(f.Value, depth+2)
		}
	case ast.ExprList:
		list, _ := d.b.Exprs.List(id)
		d.printf(depth, "list")
		for _, e := range list.Elems {
			d.expr(e, depth+1)
		}
	case ast.ExprDict:
		dict, _ := d.b.Exprs.Dict(id)
		d.printf(depth, "dict")
		for _, entry := range dict.Entries {
			d.printf(depth+1, "entry")
			d.expr(entry.Key, depth+2)
			d.expr(entry.Value, depth+2)
		}
	case ast.ExprComprehension:
		comp, _ := d.b.Exprs.Comprehension(id)
		d.printf(depth, "comprehension")
		d.expr(comp.Elem, depth+1)
		d.pat(comp.Pattern, depth+1)
		d.expr(comp.Iter, depth+1)
		if comp.Cond.IsValid() {
			d.expr(comp.Cond, depth+1)
		}
	case ast.ExprRange:
		rng, _ := d.b.Exprs.Range(id)
		if rng.Inclusive {
			d.printf(depth, "range inclusive")
		} else {
			d.printf(depth, "range")
		}
		d.expr(rng.Start, depth+1)
		d.expr(rng.End, depth+1)
	case ast.ExprIf:
		ifs, _ := d.b.Exprs.If(id)
		d.printf(depth, "if-expr")
		d.expr(ifs.Cond, depth+1)
		d.expr(ifs.Then, depth+1)
		d.expr(ifs.Else, depth+1)
	case ast.ExprMatch:
		m, _ := d.b.Exprs.Match(id)
		d.printf(depth, "match-expr")
		d.expr(m.Subject, depth+1)
		for _, arm := range m.Arms {
			d.printf(depth+1, "case")
			d.pat(arm.Pattern, depth+2)
			if arm.Guard.IsValid() {
				d.printf(depth+2, "guard")
				d.expr(arm.Guard, depth+3)
			}
			d.expr(arm.Value, depth+2)
		}
	case ast.ExprAwait:
		aw, _ := d.b.Exprs.Await(id)
		d.printf(depth, "await")
		d.expr(aw.Value, depth+1)
	case ast.ExprSpawn:
		sp, _ := d.b.Exprs.Spawn(id)
		d.printf(depth, "spawn")
		d.expr(sp.Value, depth+1)
	case ast.ExprLambda:
		lam, _ := d.b.Exprs.Lambda(id)
		names := make([]string, 0, len(lam.Params))
		for _, p := range lam.Params {
			names = append(names, d.str(p.Name))
		}
		d.printf(depth, "lambda (%s)", strings.Join(names, ", "))
		d.expr(lam.Body, depth+1)
	case ast.ExprFString:
		fstr, _ := d.b.Exprs.FString(id)
		d.printf(depth, "fstring")
		for _, part := range fstr.Parts {
			if part.Expr.IsValid() {
				d.expr(part.Expr, depth+1)
			} else {
				d.printf(depth+1, "text %q", d.str(part.Text))
			}
		}
	}
}

func (d *astDumper) pat(id ast.PatID, depth int) {
	pat := d.b.Pats.Get(id)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatWildcard:
		d.printf(depth, "pat _")
	case ast.PatLiteral:
		lit, _ := d.b.Pats.Literal(id)
		d.printf(depth, "pat lit %s", d.literal(lit.Kind, lit.Value))
	case ast.PatBinding:
		bind, _ := d.b.Pats.Binding(id)
		d.printf(depth, "pat bind %s", d.str(bind.Name))
	case ast.PatEnumVariant:
		variant, _ := d.b.Pats.EnumVariant(id)
		d.printf(depth, "pat variant %s", d.path(variant.Path))
		for _, arg := range variant.Args {
			d.pat(arg, depth+1)
		}
	case ast.PatStruct:
		st, _ := d.b.Pats.Struct(id)
		d.printf(depth, "pat struct %s", d.str(st.Name))
		for _, f := range st.Fields {
			d.printf(depth+1, "field %s", d.str(f.Name))
			if f.Pattern.IsValid() {
				d.pat(f.Pattern, depth+2)
			}
		}
	case ast.PatList:
		list, _ := d.b.Pats.List(id)
		d.printf(depth, "pat list")
		for i, e := range list.Elems {
			if list.HasRest && uint32(i) == list.RestIndex {
				d.printf(depth+1, "rest %s", d.str(list.RestName))
			}
			d.pat(e, depth+1)
		}
		if list.HasRest && list.RestIndex == uint32(len(list.Elems)) {
			d.printf(depth+1, "rest %s", d.str(list.RestName))
		}
	}
}

func (d *astDumper) literal(kind ast.ExprLitKind, value source.StringID) string {
	switch kind {
	case ast.LitInt:
		return "int " + d.str(value)
	case ast.LitFloat:
		return "float " + d.str(value)
	case ast.LitString:
		return fmt.Sprintf("str %q", d.str(value))
	case ast.LitBool:
		return "bool " + d.str(value)
	case ast.LitNone:
		return "None"
	}
	return "?"
}

func assignOpName(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	case ast.AssignMul:
		return "*="
	case ast.AssignDiv:
		return "/="
	case ast.AssignMod:
		return "%="
	default:
		return "="
	}
}

func binaryOpName(op ast.ExprBinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinEq:
		return "=="
	case ast.BinNe:
		return "!="
	case ast.BinLt:
		return "<"
	case ast.BinLe:
		return "<="
	case ast.BinGt:
		return ">"
	case ast.BinGe:
		return ">="
	case ast.BinAnd:
		return "and"
	case ast.BinOr:
		return "or"
	case ast.BinIs:
		return "is"
	case ast.BinIsNot:
		return "is not"
	}
	return "?"
}

func unaryOpName(op ast.ExprUnaryOp) string {
	switch op {
	case ast.UnNeg:
		return "-"
	case ast.UnPos:
		return "+"
	case ast.UnNot:
		return "not"
	}
	return "?"
}
