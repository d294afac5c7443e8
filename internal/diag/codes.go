package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical (1000-1999)
	LexInfo                 Code = 1000
	LexUnknownChar          Code = 1001
	LexTabIndent            Code = 1002
	LexInconsistentIndent   Code = 1003
	LexUnterminatedString   Code = 1004
	LexUnterminatedFString  Code = 1005
	LexBadNumber            Code = 1006
	LexBadEscape            Code = 1007
	LexUnbalancedDelimiter  Code = 1008

	// Syntax (2000-2999)
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnexpectedTopLevel   Code = 2002
	SynExpectIdentifier     Code = 2003
	SynExpectExpression     Code = 2004
	SynExpectType           Code = 2005
	SynExpectColon          Code = 2006
	SynExpectNewline        Code = 2007
	SynMissingBlock         Code = 2008
	SynExpectPattern        Code = 2009
	SynDefaultParamOrder    Code = 2010
	SynPositionalStructInit Code = 2011
	SynExpectCaseArm        Code = 2012
	SynRestPatternPosition  Code = 2013

	// Name resolution (3000-3999)
	NameInfo           Code = 3000
	NameUndefined      Code = 3001
	NameDuplicate      Code = 3002
	NameNotAType       Code = 3003
	NameUnknownMember  Code = 3004
	NameCircularImport Code = 3005
	NameUnknownModule  Code = 3006

	// Type checking (4000-4999)
	TypeInfo                Code = 4000
	TypeMismatch            Code = 4001
	TypeOccursCheck         Code = 4002
	TypeWrongArgCount       Code = 4003
	TypeNotCallable         Code = 4004
	TypeInvalidBinaryOp     Code = 4005
	TypeInvalidUnaryOp      Code = 4006
	TypeNonexhaustiveMatch  Code = 4007
	TypeMissingField        Code = 4008
	TypeExtraField          Code = 4009
	TypeDuplicateField      Code = 4010
	TypeUnknownField        Code = 4011
	TypeNotIterable         Code = 4012
	TypeWrongTypeArgCount   Code = 4013
	TypePatternMismatch     Code = 4014
	TypeNotIndexable        Code = 4015
	TypeBadAwait            Code = 4016
	TypeCondNotBool         Code = 4017
	TypeAmbiguous           Code = 4018

	// Driver (5000-5999)
	DrvInfo         Code = 5000
	DrvLowerRefused Code = 5001

	// Compiler-internal errors (9000-9999). These indicate a bug in the
	// compiler, never malformed user input.
	IceUnresolvedTypeVar Code = 9001
	IceDecisionTree      Code = 9002
	IceLowering          Code = 9003
	IcePanic             Code = 9004
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                "Lexical information",
	LexUnknownChar:         "Unknown character",
	LexTabIndent:           "Tab character in indentation",
	LexInconsistentIndent:  "Inconsistent indentation",
	LexUnterminatedString:  "Unterminated string",
	LexUnterminatedFString: "Unterminated f-string placeholder",
	LexBadNumber:           "Malformed numeric literal",
	LexBadEscape:           "Invalid escape sequence",
	LexUnbalancedDelimiter: "Unbalanced delimiter",

	SynInfo:                 "Syntax information",
	SynUnexpectedToken:      "Unexpected token",
	SynUnexpectedTopLevel:   "Unexpected top-level construct",
	SynExpectIdentifier:     "Expected identifier",
	SynExpectExpression:     "Expected expression",
	SynExpectType:           "Expected type",
	SynExpectColon:          "Expected ':'",
	SynExpectNewline:        "Expected end of line",
	SynMissingBlock:         "Expected indented block",
	SynExpectPattern:        "Expected pattern",
	SynDefaultParamOrder:    "Parameter without default follows parameter with default",
	SynPositionalStructInit: "Struct fields must be given by name",
	SynExpectCaseArm:        "Expected 'case' arm",
	SynRestPatternPosition:  "At most one '..rest' per list pattern",

	NameInfo:           "Name resolution information",
	NameUndefined:      "Undefined symbol",
	NameDuplicate:      "Duplicate definition",
	NameNotAType:       "Not a type",
	NameUnknownMember:  "Unknown module member",
	NameCircularImport: "Circular module dependency",
	NameUnknownModule:  "Unknown module",

	TypeInfo:               "Type information",
	TypeMismatch:           "Type mismatch",
	TypeOccursCheck:        "Infinite type",
	TypeWrongArgCount:      "Wrong number of arguments",
	TypeNotCallable:        "Not callable",
	TypeInvalidBinaryOp:    "Invalid operand types for binary operator",
	TypeInvalidUnaryOp:     "Invalid operand type for unary operator",
	TypeNonexhaustiveMatch: "Non-exhaustive match",
	TypeMissingField:       "Missing struct field",
	TypeExtraField:         "Unknown struct field",
	TypeDuplicateField:     "Duplicate struct field",
	TypeUnknownField:       "No such field",
	TypeNotIterable:        "Not iterable",
	TypeWrongTypeArgCount:  "Wrong number of type arguments",
	TypePatternMismatch:    "Pattern does not match scrutinee type",
	TypeNotIndexable:       "Not indexable",
	TypeBadAwait:           "'await' requires a task handle",
	TypeCondNotBool:        "Condition must be bool",
	TypeAmbiguous:          "Ambiguous type",

	DrvInfo:         "Driver information",
	DrvLowerRefused: "Module has errors; lowering refused",

	IceUnresolvedTypeVar: "Internal: unresolved type variable reached lowering",
	IceDecisionTree:      "Internal: decision-tree invariant violated",
	IceLowering:          "Internal: lowering invariant violated",
	IcePanic:             "Internal: compiler panic",
}

// ID returns the stable short identifier, e.g. "TYP4007".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DRV%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// IsInternal reports whether the code marks a compiler bug.
func (c Code) IsInternal() bool {
	return c >= 9000
}
