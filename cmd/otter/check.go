package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ottrlang/otterlang/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path",
	Short: "Type-check OtterLang sources",
	Long: "Check runs the full front-end (parse, resolve, type check) on one file,\n" +
		"or on every .ot file under a directory with cross-module resolution.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}

	if info.IsDir() {
		result, err := driver.CheckDir(cmd.Context(), args[0], maxDiag)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		// Every file shares one FileSet; any file's view resolves all
		// spans.
		if len(result.Files) == 0 {
			return nil
		}
		return reportDiagnostics(cmd, result.Bag, result.Files[0].FileSet)
	}

	result, err := driver.Check(args[0], maxDiag)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return reportDiagnostics(cmd, result.Bag, result.FileSet)
}
