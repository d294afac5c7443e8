package parser

import (
	"strings"
)

// decodeString turns a raw string token (quotes included) into its value.
// Escape validity was already checked by the lexer; unknown escapes pass
// through verbatim so parsing can continue.
func decodeString(raw string) string {
	if len(raw) >= 2 {
		quote := raw[0]
		raw = raw[1:]
		if len(raw) > 0 && raw[len(raw)-1] == quote {
			raw = raw[:len(raw)-1]
		}
	}
	return unescape(raw, false)
}

// decodeFStringText decodes one literal chunk of an f-string, where the
// doubled braces `{{` and `}}` collapse to single braces.
func decodeFStringText(raw string) string {
	return unescape(raw, true)
}

func unescape(s string, braces bool) string {
	if !strings.ContainsAny(s, "\\{}") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '\'', '"', '{', '}':
				b.WriteByte(s[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		case braces && c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case braces && c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
