package expr

// NodeKind discriminates expression AST nodes.
type NodeKind uint8

const (
	// KindText is a literal run with no embedded references.
	KindText NodeKind = iota
	// KindProperty is $(Name) with optional trailing function chain.
	KindProperty
	// KindItem is @(Name) with optional transform and separator.
	KindItem
	// KindMetadata is %(Name) or %(Item.Name).
	KindMetadata
	// KindSequence is a concatenation of segments ("a$(B)c").
	KindSequence
	// KindList is a separator-delimited list of expressions.
	KindList
	// KindError marks a malformed region; the rest of the tree stays
	// usable.
	KindError
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindProperty:
		return "Property"
	case KindItem:
		return "Item"
	case KindMetadata:
		return "Metadata"
	case KindSequence:
		return "Sequence"
	case KindList:
		return "List"
	case KindError:
		return "Error"
	}
	return "Unknown"
}

// ErrorKind classifies malformed-expression regions.
type ErrorKind uint8

const (
	ErrNone ErrorKind = iota
	ErrExpectingName
	ErrExpectingRightParen
	ErrExpectingValue
	ErrIncompleteReference
	ErrExpectingTransform
)

func (e ErrorKind) String() string {
	switch e {
	case ErrExpectingName:
		return "expecting name"
	case ErrExpectingRightParen:
		return "expecting ')'"
	case ErrExpectingValue:
		return "expecting value"
	case ErrIncompleteReference:
		return "incomplete reference"
	case ErrExpectingTransform:
		return "expecting transform"
	}
	return "unknown"
}

// Node is one expression AST node. Offsets are positions in the unescaped
// text; translate through Value.SpanOf for source spans. Nodes are built
// once per visited value and never persisted past the pass.
type Node struct {
	Kind   NodeKind
	Offset int
	Length int

	// Name is the referenced property/item/metadata name, or the literal
	// text for KindText.
	Name       string
	NameOffset int

	// ItemName qualifies KindMetadata (%(Item.Meta)); empty when bare.
	ItemName       string
	ItemNameOffset int

	// Transform is the raw transform body of an item reference, Funcs the
	// raw property function chain; both empty when absent.
	Transform       string
	TransformOffset int
	Funcs           string

	// Separator is the explicit third argument of an item reference.
	Separator string

	// Err is set for KindError nodes.
	Err ErrorKind

	Children []*Node
}

func (n *Node) End() int {
	return n.Offset + n.Length
}

// Walk visits n and all descendants depth-first.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// HasReferences reports whether the tree contains any non-literal node.
func HasReferences(n *Node) bool {
	found := false
	Walk(n, func(node *Node) {
		switch node.Kind {
		case KindProperty, KindItem, KindMetadata:
			found = true
		}
	})
	return found
}
