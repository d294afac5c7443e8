// Package lexer converts source bytes into tokens.
//
// Layout is explicit in the output: logical lines end with Newline, and
// indentation changes are materialized as Indent/Dedent pairs driven by a
// width stack. Newlines inside parentheses, brackets, and braces are
// swallowed, so expressions may wrap without affecting block structure.
// Interpolated strings come out as framed sub-streams (FStringStart ...
// FStringEnd) so downstream stages never re-lex string contents.
//
// The lexer never stops on bad input. Every lexical error is reported
// through the Options.Reporter and scanning continues, so a single pass
// collects all diagnostics for a file.
package lexer
