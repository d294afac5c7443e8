package driver

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

// CheckResult carries the parsed file plus resolution and type-check
// artefacts. The bag accumulates diagnostics from every stage run so
// far.
type CheckResult struct {
	ParseResult
	Symbols symbols.Result
	Sema    sema.Result
}

// Check runs the front-end on one file: parse, resolve, type check.
// Later stages run even when earlier ones reported errors so the user
// sees as much as possible in one pass.
func Check(path string, maxDiagnostics int) (*CheckResult, error) {
	parsed, err := Parse(path, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return CheckParsed(parsed, symbols.ResolveOptions{}), nil
}

// CheckParsed resolves and type-checks an already parsed file. The
// resolve options let the directory driver inject a shared table and
// module exports; the reporter is always this result's bag.
func CheckParsed(parsed *ParseResult, opts symbols.ResolveOptions) *CheckResult {
	res := &CheckResult{ParseResult: *parsed}
	reporter := diag.BagReporter{Bag: res.Bag}

	opts.Reporter = reporter
	res.Symbols = guardResolve(reporter, func() symbols.Result {
		return symbols.ResolveFile(parsed.Builder, parsed.FileID, opts)
	})

	res.Sema = guardCheck(reporter, func() sema.Result {
		return sema.Check(parsed.Builder, parsed.FileID, sema.Options{
			Reporter: reporter,
			Symbols:  &res.Symbols,
		})
	})
	return res
}

func guardResolve(r diag.Reporter, run func() symbols.Result) symbols.Result {
	var out symbols.Result
	guard(r, func() { out = run() })
	return out
}

func guardCheck(r diag.Reporter, run func() sema.Result) sema.Result {
	var out sema.Result
	guard(r, func() { out = run() })
	return out
}
