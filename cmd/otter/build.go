package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ottrlang/otterlang/internal/driver"
	"github.com/Ottrlang/otterlang/internal/mir"
	"github.com/Ottrlang/otterlang/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.ot]",
	Short: "Compile an OtterLang module to IR",
	Long: "Build runs the whole pipeline and lowers the module to IR. Without a\n" +
		"file argument it reads the entry file from the nearest otter.toml.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("dump-ir", false, "print the lowered IR")
	buildCmd.Flags().String("target", "", "compilation target (native|wasm)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}
	dumpIR, err := cmd.Flags().GetBool("dump-ir")
	if err != nil {
		return fmt.Errorf("failed to get dump-ir flag: %w", err)
	}
	targetFlag, err := cmd.Flags().GetString("target")
	if err != nil {
		return fmt.Errorf("failed to get target flag: %w", err)
	}

	entry, manifestTarget, err := resolveEntry(args)
	if err != nil {
		return err
	}
	if targetFlag == "" {
		targetFlag = manifestTarget
	}
	target, err := parseTarget(targetFlag)
	if err != nil {
		return err
	}

	result, err := driver.Lower(entry, target, maxDiag)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if dumpIR && result.Module != nil {
		fmt.Fprint(os.Stdout, result.DumpIR())
	}

	return reportDiagnostics(cmd, result.Bag, result.FileSet)
}

// resolveEntry picks the file to build: the explicit argument, or the
// manifest entry of the enclosing project.
func resolveEntry(args []string) (entry, target string, err error) {
	if len(args) == 1 {
		return args[0], "", nil
	}
	manifestPath, ok, err := project.Find(".")
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("no input file and no %s found", project.ManifestName)
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		return "", "", err
	}
	root := filepath.Dir(manifestPath)
	return filepath.Join(root, manifest.Package.Entry), manifest.Package.Target, nil
}

func parseTarget(name string) (mir.Target, error) {
	switch name {
	case "", "native":
		return mir.TargetNative, nil
	case "wasm":
		return mir.TargetWasm, nil
	default:
		return mir.TargetNative, fmt.Errorf("unknown target %q, expected native or wasm", name)
	}
}
