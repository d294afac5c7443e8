package token

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"return":   KwReturn,
	"if":       KwIf,
	"elif":     KwElif,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"break":    KwBreak,
	"continue": KwContinue,
	"pass":     KwPass,
	"match":    KwMatch,
	"case":     KwCase,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"type":     KwType,
	"use":      KwUse,
	"pub":      KwPub,
	"as":       KwAs,
	"spawn":    KwSpawn,
	"await":    KwAwait,
	"and":      KwAnd,
	"or":       KwOr,
	"not":      KwNot,
	"is":       KwIs,
	"lambda":   KwLambda,
	"true":     KwTrue,
	"false":    KwFalse,
	"None":     KwNone,
}

// LookupKeyword returns the keyword kind for ident, if it is reserved.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
