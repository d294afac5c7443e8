// Package token defines lexical token kinds for the OtterLang compiler.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Indentation structure is explicit: the lexer emits Newline, Indent and
//     Dedent tokens; no other token carries layout information.
//   - F-strings appear as FStringStart .. FStringEnd with interleaved
//     FStringText chunks and FStringExprStart/FStringExprEnd framed
//     sub-streams of ordinary tokens.
//   - Built-in type names (int, float, bool, str) are identifiers. They are
//     recognized by the semantic layer, not the lexer.
package token
