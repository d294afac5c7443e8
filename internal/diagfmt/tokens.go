package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Ottrlang/otterlang/internal/token"
)

// TokenJSON is one token rendered for machine consumption.
type TokenJSON struct {
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// FormatTokensPretty dumps one token per line: index, kind, and the
// lexeme when the token carries one. Layout tokens print bare.
func FormatTokensPretty(w io.Writer, tokens []token.Token) {
	for i, tok := range tokens {
		fmt.Fprintf(w, "%3d: %s", i, tok.Kind)
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintln(w)
		if tok.Kind == token.EOF {
			return
		}
	}
}

// FormatTokensJSON dumps the token stream as an indented JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	out := make([]TokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TokenJSON{
			Kind:      tok.Kind.String(),
			Text:      tok.Text,
			StartByte: tok.Span.Start,
			EndByte:   tok.Span.End,
		})
		if tok.Kind == token.EOF {
			break
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
