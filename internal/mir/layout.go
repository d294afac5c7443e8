package mir

import (
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// WordSize is the abstract slot width. Every field, payload, and list
// element occupies one word; sub-word packing is a back-end concern.
const WordSize = 8

type FieldSlot struct {
	Name   string
	Type   types.TypeID
	Offset uint32
}

// StructLayout is a fixed-offset field layout in declaration order.
type StructLayout struct {
	Sym    symbols.SymbolID
	Name   string
	Fields []FieldSlot
	Size   uint32
}

type VariantLayout struct {
	Name     string
	Tag      uint32
	Payloads []types.TypeID
}

// EnumLayout is a tag word followed by a payload area sized to the
// largest variant.
type EnumLayout struct {
	Sym          symbols.SymbolID
	Name         string
	Variants     []VariantLayout
	PayloadWords uint32
	Size         uint32
}

func structLayout(sym symbols.SymbolID, name string, fields []FieldSlot) StructLayout {
	for i := range fields {
		fields[i].Offset = uint32(i) * WordSize
	}
	return StructLayout{
		Sym:    sym,
		Name:   name,
		Fields: fields,
		Size:   uint32(len(fields)) * WordSize,
	}
}

func enumLayout(sym symbols.SymbolID, name string, variants []VariantLayout) EnumLayout {
	payloadWords := uint32(0)
	for _, v := range variants {
		if n := uint32(len(v.Payloads)); n > payloadWords {
			payloadWords = n
		}
	}
	return EnumLayout{
		Sym:          sym,
		Name:         name,
		Variants:     variants,
		PayloadWords: payloadWords,
		Size:         (1 + payloadWords) * WordSize,
	}
}

// optionWords is the allocation size of a built-in Option value: tag
// plus one payload slot.
const optionWords = 2
