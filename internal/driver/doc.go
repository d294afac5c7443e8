// Package driver wires the compiler stages together: it loads files,
// runs lexing, parsing, resolution, type checking and lowering, and
// collects diagnostics per stage. Each stage entry point returns a
// result struct carrying the diag.Bag for that run; callers decide how
// to render it. Panics inside a stage are converted to internal
// diagnostics at this boundary so the CLI never crashes on a compiler
// bug.
package driver
