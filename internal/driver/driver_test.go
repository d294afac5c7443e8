package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/driver"
	"github.com/Ottrlang/otterlang/internal/mir"
	"github.com/Ottrlang/otterlang/internal/token"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestTokenizeProducesEOFTerminatedStream(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.ot", "let x = 1\nprintln(x)\n")
	res, err := driver.Tokenize(path, 16)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if len(res.Tokens) == 0 || res.Tokens[len(res.Tokens)-1].Kind != token.EOF {
		t.Fatal("token stream must end with EOF")
	}
}

func TestTokenizeReportsTabIndent(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.ot", "fn f():\n\treturn 1\n")
	res, err := driver.Tokenize(path, 16)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if !hasCode(res.Bag, diag.LexTabIndent) {
		t.Fatalf("expected LEX1002, got %+v", res.Bag.Items())
	}
}

func TestCheckReportsTypeErrors(t *testing.T) {
	// '+' with a string operand is concatenation; '-' is numeric only.
	path := writeSource(t, t.TempDir(), "main.ot", "let x = 1 - \"one\"\n")
	res, err := driver.Check(path, 16)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected a type error")
	}
}

func TestLowerRefusesBrokenInput(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.ot", "let x = undefined_name\n")
	res, err := driver.Lower(path, mir.TargetNative, 16)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Module != nil {
		t.Fatal("lowering must not run over a file with errors")
	}
	if !hasCode(res.Bag, diag.DrvLowerRefused) {
		t.Fatalf("expected DRV5001, got %+v", res.Bag.Items())
	}
}

func TestLowerProducesDumpableModule(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.ot", "fn main():\n    println(\"hi\")\nmain()\n")
	res, err := driver.Lower(path, mir.TargetNative, 16)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if res.Module == nil {
		t.Fatal("expected a lowered module")
	}
	dump := res.DumpIR()
	if !strings.Contains(dump, "fn main") {
		t.Errorf("dump is missing main:\n%s", dump)
	}
	if !strings.Contains(dump, "@"+mir.ExternWrite) {
		t.Errorf("native dump should route output through %s:\n%s", mir.ExternWrite, dump)
	}
}

func TestCheckDirResolvesSiblingModules(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "mathx.ot", "pub fn double(n: int) -> int:\n    return n * 2\n")
	writeSource(t, dir, "main.ot", "use mathx\nlet y = mathx.double(21)\n")

	res, err := driver.CheckDir(context.Background(), dir, 16)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if len(res.Files) != 2 {
		t.Fatalf("checked %d files, want 2", len(res.Files))
	}
}

func TestCheckDirResolvesImportedStructAndMethod(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "geom.ot", "pub struct Point:\n"+
		"    x: int\n"+
		"    y: int\n"+
		"    fn sum(self) -> int:\n"+
		"        return self.x + self.y\n"+
		"pub fn origin() -> Point:\n"+
		"    return Point(x: 0, y: 0)\n")
	// Both lets must infer from the imported signatures alone; a
	// degraded signature would leave them unconstrained.
	writeSource(t, dir, "main.ot", "use geom\nlet p = geom.origin()\nlet s = p.sum()\n")

	res, err := driver.CheckDir(context.Background(), dir, 16)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
}

func TestCheckDirDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.ot", "use b\npub fn fa() -> int:\n    return 1\n")
	writeSource(t, dir, "b.ot", "use a\npub fn fb() -> int:\n    return 2\n")

	res, err := driver.CheckDir(context.Background(), dir, 16)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if !hasCode(res.Bag, diag.NameCircularImport) {
		t.Fatalf("expected NAM3005, got %+v", res.Bag.Items())
	}
}

func TestCheckDirUnknownModule(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.ot", "use nowhere\n")

	res, err := driver.CheckDir(context.Background(), dir, 16)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if !hasCode(res.Bag, diag.NameUnknownModule) {
		t.Fatalf("expected NAM3006, got %+v", res.Bag.Items())
	}
}

func TestCheckDirUsesDottedKeysForSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, filepath.Join("std", "mathx.ot"), "pub fn sq(n: int) -> int:\n    return n * n\n")
	writeSource(t, dir, "main.ot", "use std.mathx as m\nlet y = m.sq(3)\n")

	res, err := driver.CheckDir(context.Background(), dir, 16)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
}
