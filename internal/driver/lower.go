package driver

import (
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/mir"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// LowerResult is a checked file plus its IR module. Module is nil when
// lowering was refused or failed.
type LowerResult struct {
	CheckResult
	Module *mir.Module
}

// Lower runs the full pipeline on one file and lowers it to IR for the
// given target. Lowering refuses to run over a file with errors; the
// refusal itself is an error diagnostic so exit codes stay uniform.
func Lower(path string, target mir.Target, maxDiagnostics int) (*LowerResult, error) {
	checked, err := Check(path, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return LowerChecked(checked, target), nil
}

// LowerChecked lowers an already checked file.
func LowerChecked(checked *CheckResult, target mir.Target) *LowerResult {
	res := &LowerResult{CheckResult: *checked}
	reporter := diag.BagReporter{Bag: res.Bag}

	if res.Bag.HasErrors() {
		diag.ReportError(reporter, diag.DrvLowerRefused,
			source.Span{File: checked.File.ID},
			"cannot lower a module with errors; fix the diagnostics above first")
		return res
	}

	guard(reporter, func() {
		res.Module = mir.Lower(checked.Builder, checked.FileID, mir.Options{
			Reporter: reporter,
			Symbols:  &res.Symbols,
			Sema:     &res.Sema,
			Target:   target,
		})
	})
	if res.Bag.HasInternal() {
		res.Module = nil
	}
	return res
}

// Namer renders declaration names for IR dumps.
func (r *LowerResult) Namer() types.DeclNamer {
	return func(decl uint32) string {
		sym := r.Symbols.Table.Symbols.Get(symbols.SymbolID(decl))
		if sym == nil {
			return "<anon>"
		}
		return r.Symbols.Table.Strings.MustLookup(sym.Name)
	}
}

// DumpIR renders the lowered module, or an empty string when lowering
// did not produce one.
func (r *LowerResult) DumpIR() string {
	if r.Module == nil {
		return ""
	}
	return r.Module.Dump(r.Sema.Types, r.Namer())
}
