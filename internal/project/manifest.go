package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the CLI looks for at a project root.
const ManifestName = "otter.toml"

// Manifest is a parsed otter.toml.
type Manifest struct {
	Package Package `toml:"package"`
	Wasm    Wasm    `toml:"wasm"`
}

// Package is the [package] section.
type Package struct {
	Name   string `toml:"name"`
	Entry  string `toml:"entry"`  // entry file, defaults to main.ot
	Target string `toml:"target"` // "native" or "wasm"
}

// Wasm is the [wasm] section: host import configuration for the wasm
// target.
type Wasm struct {
	HostModule string `toml:"host_module"` // import module name, defaults to "otter_host"
}

var (
	// ErrPackageNameMissing indicates [package].name is absent.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrBadTarget indicates [package].target is neither native nor wasm.
	ErrBadTarget = errors.New("[package].target must be \"native\" or \"wasm\"")
)

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes, applying defaults.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Package.Name == "" {
		return nil, ErrPackageNameMissing
	}
	if m.Package.Entry == "" {
		m.Package.Entry = "main.ot"
	}
	switch m.Package.Target {
	case "":
		m.Package.Target = "native"
	case "native", "wasm":
	default:
		return nil, fmt.Errorf("%w, found %q", ErrBadTarget, m.Package.Target)
	}
	if m.Wasm.HostModule == "" {
		m.Wasm.HostModule = "otter_host"
	}
	return &m, nil
}

// Find walks up from startDir to locate otter.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindRoot returns the directory containing otter.toml, if any.
func FindRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := Find(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}
