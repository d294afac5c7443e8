package patmatch

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

// NodeID indexes into a Tree. 0 is the invalid sentinel.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// StepKind is one navigation step from the scrutinee to a sub-value.
type StepKind uint8

const (
	// StepPayload selects payload #Index of an enum variant. Only valid
	// under a switch case that established the tag.
	StepPayload StepKind = iota
	// StepField selects struct field #Index (declaration order).
	StepField
	// StepElem selects list element #Index from the front.
	StepElem
	// StepElemBack selects the element Index positions from the end
	// (1 = last element).
	StepElemBack
	// StepRest slices the list from element Index to length-Aux.
	StepRest
)

type Step struct {
	Kind  StepKind
	Index uint32
	Aux   uint32
}

// Path addresses a sub-value of the scrutinee. The empty path is the
// scrutinee itself.
type Path []Step

func pathEq(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func extend(p Path, s Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Binding captures one pattern variable: the symbol and where its value
// lives relative to the scrutinee.
type Binding struct {
	Sym  symbols.SymbolID
	Path Path
}

// TestKind is the runtime discriminant a switch node inspects.
type TestKind uint8

const (
	// TestEnumTag switches on the variant tag.
	TestEnumTag TestKind = iota
	// TestLiteral compares against literal case values.
	TestLiteral
	// TestListLen requires the exact list length in Case.Tag.
	TestListLen
	// TestListMinLen requires at least Case.Tag elements.
	TestListMinLen
)

// Case is one switch branch. Tag carries the variant tag or list length;
// literal branches carry the literal kind and decoded text instead.
type Case struct {
	Tag     uint32
	LitKind ast.ExprLitKind
	LitVal  source.StringID
	Node    NodeID
}

type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	// NodeLeaf executes arm #Arm with Bindings in scope. A guarded leaf
	// falls through to Else when the guard evaluates false.
	NodeLeaf
	// NodeSwitch dispatches on the value at Path.
	NodeSwitch
	// NodeFail traps: no arm matched. Unreachable for matches the
	// checker proved exhaustive.
	NodeFail
)

type Node struct {
	Kind NodeKind

	// Leaf
	Arm      int
	Guard    ast.ExprID
	Else     NodeID
	Bindings []Binding

	// Switch
	Path    Path
	Test    TestKind
	Cases   []Case
	Default NodeID
}

// Tree is the compiled form of one match or destructuring let.
type Tree struct {
	nodes []Node
	Root  NodeID
}

func newTree() *Tree {
	return &Tree{nodes: make([]Node, 1)} // reserve 0 as invalid
}

func (t *Tree) add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return id
}

// Node returns the node for an ID, nil when invalid.
func (t *Tree) Node(id NodeID) *Node {
	if !id.IsValid() || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Len reports the node count, excluding the invalid sentinel.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// CanFail reports whether any path through the tree reaches a fail node;
// true means the pattern set is refutable at runtime.
func (t *Tree) CanFail() bool {
	for i := 1; i < len(t.nodes); i++ {
		if t.nodes[i].Kind == NodeFail {
			return true
		}
	}
	return false
}
