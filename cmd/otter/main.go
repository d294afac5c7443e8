package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/diagfmt"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "otter",
	Short: "OtterLang compiler and toolchain",
	Long:  "otter compiles OtterLang source files: tokenize, parse, check, and build to IR.",
	// Diagnostics are already on stderr; usage spam after a failed
	// compile helps nobody.
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	return mode == "on" || (mode == "auto" && isTerminal(os.Stderr))
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("max-diagnostics must be positive, got %d", n)
	}
	return n, nil
}

// reportDiagnostics renders the bag on stderr and returns a non-nil
// error when it contains errors, so the process exits with status 1.
func reportDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	bag.Sort()
	bag.Dedup()
	if bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
			Color:      useColor(cmd),
			ShowSource: true,
			ShowNotes:  true,
		})
	}
	if summary := diagfmt.Summary(bag); summary != "" {
		fmt.Fprintln(os.Stderr, summary)
	}
	if bag.HasErrors() {
		return fmt.Errorf("compilation failed")
	}
	return nil
}
