package mir

import (
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

type Func struct {
	ID   FuncID
	Sym  symbols.SymbolID // NoSymbolID for synthesized thunks
	Name string
	Span source.Span

	// ParamCount prefixes Locals: locals [0, ParamCount) receive the
	// call arguments in order.
	ParamCount int
	Result     types.TypeID

	Locals []Local
	Blocks []Block
	Entry  BlockID
}
