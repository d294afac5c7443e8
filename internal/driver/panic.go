package driver

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

// guard runs one stage and converts a panic into an internal
// diagnostic. The pipeline halts after an internal diagnostic, so a
// recovered stage never feeds garbage to the next one.
func guard(r diag.Reporter, run func()) {
	defer func() {
		if p := recover(); p != nil {
			diag.ReportInternal(r, diag.IcePanic, source.Span{},
				fmt.Sprintf("compiler panic: %v", p))
		}
	}()
	run()
}
