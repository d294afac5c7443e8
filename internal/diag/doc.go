// Package diag defines the diagnostic model shared by all pipeline stages.
//
// Diagnostic is the central record: severity, a stable numeric Code, the
// message, a primary source span, and optional notes pointing at secondary
// spans. Stages emit diagnostics through a Reporter so that producers stay
// decoupled from storage; BagReporter aggregates into a Bag, which supports
// sorting, deduplication, and merging.
//
// The package performs no formatting or IO. Rendering lives in
// internal/diagfmt, orchestration in internal/driver.
package diag
