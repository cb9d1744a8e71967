package expr

import (
	"buildcheck/internal/source"
)

// FindReferences returns one source span per occurrence of the named
// symbol in the parsed value, each exactly covering the name as written.
// Item references include the item qualifier of %(Item.Meta) nodes.
// Matching is case-insensitive ASCII.
func FindReferences(root *Node, v Value, kind NodeKind, name string) []source.Span {
	var out []source.Span
	Walk(root, func(n *Node) {
		switch kind {
		case KindProperty:
			if n.Kind == KindProperty && equalFoldASCII(n.Name, name) {
				out = append(out, v.SpanOf(n.NameOffset, n.NameOffset+len(n.Name)))
			}
		case KindItem:
			if n.Kind == KindItem && equalFoldASCII(n.Name, name) {
				out = append(out, v.SpanOf(n.NameOffset, n.NameOffset+len(n.Name)))
			}
			if n.Kind == KindMetadata && n.ItemName != "" && equalFoldASCII(n.ItemName, name) {
				out = append(out, v.SpanOf(n.ItemNameOffset, n.ItemNameOffset+len(n.ItemName)))
			}
		case KindMetadata:
			if n.Kind == KindMetadata && equalFoldASCII(n.Name, name) {
				out = append(out, v.SpanOf(n.NameOffset, n.NameOffset+len(n.Name)))
			}
		}
	})
	return out
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
