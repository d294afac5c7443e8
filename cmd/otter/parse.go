package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ottrlang/otterlang/internal/diagfmt"
	"github.com/Ottrlang/otterlang/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.ot",
	Short: "Parse an OtterLang source file",
	Long:  "Parse builds the AST for a source file and reports syntax diagnostics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Bool("dump-ast", false, "print the AST as an indented tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	dumpAST, err := cmd.Flags().GetBool("dump-ast")
	if err != nil {
		return fmt.Errorf("failed to get dump-ast flag: %w", err)
	}
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(args[0], maxDiag)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	if dumpAST {
		diagfmt.DumpAST(os.Stdout, result.Builder, result.FileID)
	}

	return reportDiagnostics(cmd, result.Bag, result.FileSet)
}
