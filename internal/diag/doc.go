// Package diag defines the diagnostic model shared by all analysis phases.
//
// Diagnostic is the central record: a numeric Code with a stable symbolic
// name, a tri-level Severity, the primary source.Span, a short message,
// optional notes, and an optional structured property bag. The property
// bag carries machine-readable facts about the finding (the misspelled
// value, the expected default, the offending attribute name) so external
// fixers and extension filters can act on diagnostics without parsing
// messages.
//
// Producers emit through a Reporter so that emission stays decoupled from
// storage; Bag is the per-pass sink that supports sorting, deduplication
// and suppression. Rendering lives in internal/diagfmt, orchestration in
// internal/driver. Package diag performs no IO.
package diag
