package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline terminates a logical line.
	Newline
	// Indent opens an indented block.
	Indent
	// Dedent closes an indented block.
	Dedent

	// Ident represents an identifier token.
	Ident

	// KwFn represents the 'fn' keyword.
	KwFn // fn
	// KwLet represents the 'let' keyword.
	KwLet // let
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElif represents the 'elif' keyword.
	KwElif // elif
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwWhile represents the 'while' keyword.
	KwWhile // while
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwIn represents the 'in' keyword.
	KwIn // in
	// KwBreak represents the 'break' keyword.
	KwBreak // break
	// KwContinue represents the 'continue' keyword.
	KwContinue // continue
	// KwPass represents the 'pass' keyword.
	KwPass // pass
	// KwMatch represents the 'match' keyword.
	KwMatch // match
	// KwCase represents the 'case' keyword.
	KwCase // case
	// KwStruct represents the 'struct' keyword.
	KwStruct // struct
	// KwEnum represents the 'enum' keyword.
	KwEnum // enum
	// KwType represents the 'type' keyword.
	KwType // type
	// KwUse represents the 'use' keyword.
	KwUse // use
	// KwPub represents the 'pub' keyword.
	KwPub // pub
	// KwAs represents the 'as' keyword.
	KwAs // as
	// KwSpawn represents the 'spawn' keyword.
	KwSpawn // spawn
	// KwAwait represents the 'await' keyword.
	KwAwait // await
	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwNot represents the 'not' keyword.
	KwNot // not
	// KwIs represents the 'is' keyword.
	KwIs // is
	// KwLambda represents the 'lambda' keyword.
	KwLambda // lambda
	// KwTrue represents the 'true' literal keyword.
	KwTrue // true
	// KwFalse represents the 'false' literal keyword.
	KwFalse // false
	// KwNone represents the 'None' literal keyword.
	KwNone // None

	// IntLit represents an integer literal token.
	IntLit
	// FloatLit represents a float literal token.
	FloatLit
	// StringLit represents a plain string literal token.
	StringLit

	// FStringStart opens an f-string.
	FStringStart
	// FStringText is a literal text chunk inside an f-string.
	FStringText
	// FStringExprStart opens a `{expr}` placeholder.
	FStringExprStart
	// FStringExprEnd closes a `{expr}` placeholder.
	FStringExprEnd
	// FStringEnd closes an f-string.
	FStringEnd

	// Plus represents the plus operator token.
	Plus // +
	// Minus represents the minus operator token.
	Minus // -
	// Star represents the star operator token.
	Star // *
	// Slash represents the slash operator token.
	Slash // /
	// Percent represents the percent operator token.
	Percent // %
	// Assign represents the assign operator token.
	Assign // =
	// PlusAssign represents the plus assign operator token.
	PlusAssign // +=
	// MinusAssign represents the minus assign operator token.
	MinusAssign // -=
	// StarAssign represents the star assign operator token.
	StarAssign // *=
	// SlashAssign represents the slash assign operator token.
	SlashAssign // /=
	// PercentAssign represents the percent assign operator token.
	PercentAssign // %=
	// EqEq represents the equality operator token.
	EqEq // ==
	// BangEq represents the inequality operator token.
	BangEq // !=
	// Lt represents the less-than operator token.
	Lt // <
	// LtEq represents the less-or-equal operator token.
	LtEq // <=
	// Gt represents the greater-than operator token.
	Gt // >
	// GtEq represents the greater-or-equal operator token.
	GtEq // >=
	// LParen represents the left parenthesis token.
	LParen // (
	// RParen represents the right parenthesis token.
	RParen // )
	// LBracket represents the left bracket token.
	LBracket // [
	// RBracket represents the right bracket token.
	RBracket // ]
	// LBrace represents the left brace token.
	LBrace // {
	// RBrace represents the right brace token.
	RBrace // }
	// Comma represents the comma token.
	Comma // ,
	// Dot represents the dot token.
	Dot // .
	// DotDot represents the range operator token.
	DotDot // ..
	// DotDotEq represents the inclusive range operator token.
	DotDotEq // ..=
	// Colon represents the colon token.
	Colon // :
	// Arrow represents the arrow token.
	Arrow // ->
	// Underscore represents the wildcard token.
	Underscore // _
)

var kindNames = [...]string{
	Invalid: "INVALID",
	EOF:     "EOF",
	Newline: "NEWLINE",
	Indent:  "INDENT",
	Dedent:  "DEDENT",

	Ident: "IDENT",

	KwFn:       "FN",
	KwLet:      "LET",
	KwReturn:   "RETURN",
	KwIf:       "IF",
	KwElif:     "ELIF",
	KwElse:     "ELSE",
	KwWhile:    "WHILE",
	KwFor:      "FOR",
	KwIn:       "IN",
	KwBreak:    "BREAK",
	KwContinue: "CONTINUE",
	KwPass:     "PASS",
	KwMatch:    "MATCH",
	KwCase:     "CASE",
	KwStruct:   "STRUCT",
	KwEnum:     "ENUM",
	KwType:     "TYPE",
	KwUse:      "USE",
	KwPub:      "PUB",
	KwAs:       "AS",
	KwSpawn:    "SPAWN",
	KwAwait:    "AWAIT",
	KwAnd:      "AND",
	KwOr:       "OR",
	KwNot:      "NOT",
	KwIs:       "IS",
	KwLambda:   "LAMBDA",
	KwTrue:     "TRUE",
	KwFalse:    "FALSE",
	KwNone:     "NONE",

	IntLit:    "INT",
	FloatLit:  "FLOAT",
	StringLit: "STRING",

	FStringStart:     "FSTRING_START",
	FStringText:      "FSTRING_TEXT",
	FStringExprStart: "FSTRING_EXPR_START",
	FStringExprEnd:   "FSTRING_EXPR_END",
	FStringEnd:       "FSTRING_END",

	Plus:          "PLUS",
	Minus:         "MINUS",
	Star:          "STAR",
	Slash:         "SLASH",
	Percent:       "PERCENT",
	Assign:        "ASSIGN",
	PlusAssign:    "PLUS_ASSIGN",
	MinusAssign:   "MINUS_ASSIGN",
	StarAssign:    "STAR_ASSIGN",
	SlashAssign:   "SLASH_ASSIGN",
	PercentAssign: "PERCENT_ASSIGN",
	EqEq:          "EQEQ",
	BangEq:        "BANGEQ",
	Lt:            "LT",
	LtEq:          "LTEQ",
	Gt:            "GT",
	GtEq:          "GTEQ",
	LParen:        "LPAREN",
	RParen:        "RPAREN",
	LBracket:      "LBRACKET",
	RBracket:      "RBRACKET",
	LBrace:        "LBRACE",
	RBrace:        "RBRACE",
	Comma:         "COMMA",
	Dot:           "DOT",
	DotDot:        "DOTDOT",
	DotDotEq:      "DOTDOTEQ",
	Colon:         "COLON",
	Arrow:         "ARROW",
	Underscore:    "UNDERSCORE",
}

// String returns the stable uppercase name used in token dumps.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "INVALID"
}
