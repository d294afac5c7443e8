package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	m, err := Parse([]byte("[package]\nname = \"demo\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Package.Name != "demo" {
		t.Errorf("name = %q, want demo", m.Package.Name)
	}
	if m.Package.Entry != "main.ot" {
		t.Errorf("entry = %q, want main.ot", m.Package.Entry)
	}
	if m.Package.Target != "native" {
		t.Errorf("target = %q, want native", m.Package.Target)
	}
	if m.Wasm.HostModule != "otter_host" {
		t.Errorf("host module = %q, want otter_host", m.Wasm.HostModule)
	}
}

func TestParseFullManifest(t *testing.T) {
	src := `
[package]
name = "web"
entry = "src/app.ot"
target = "wasm"

[wasm]
host_module = "env"
`
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Package.Entry != "src/app.ot" {
		t.Errorf("entry = %q", m.Package.Entry)
	}
	if m.Package.Target != "wasm" {
		t.Errorf("target = %q", m.Package.Target)
	}
	if m.Wasm.HostModule != "env" {
		t.Errorf("host module = %q", m.Wasm.HostModule)
	}
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse([]byte("[package]\nentry = \"main.ot\"\n"))
	if !errors.Is(err, ErrPackageNameMissing) {
		t.Fatalf("err = %v, want ErrPackageNameMissing", err)
	}
}

func TestParseRejectsBadTarget(t *testing.T) {
	_, err := Parse([]byte("[package]\nname = \"demo\"\ntarget = \"jvm\"\n"))
	if !errors.Is(err, ErrBadTarget) {
		t.Fatalf("err = %v, want ErrBadTarget", err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("Find: manifest not found")
	}
	if path != filepath.Join(root, ManifestName) {
		t.Errorf("path = %q, want manifest at %q", path, root)
	}

	dir, ok, err := FindRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindRoot: ok=%v err=%v", ok, err)
	}
	if dir != root {
		t.Errorf("root = %q, want %q", dir, root)
	}
}

func TestFindMissingManifest(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatal("Find reported a manifest in an empty tree")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\ntarget = \"wasm\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Package.Name != "demo" || m.Package.Target != "wasm" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}
