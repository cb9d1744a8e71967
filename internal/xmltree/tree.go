package xmltree

import (
	"buildcheck/internal/source"
)

// Element is one markup element with byte-offset spans. Attributes and
// text keep their raw (escaped) form so that downstream expression
// parsing can map diagnostics back to original source offsets.
type Element struct {
	Name     string
	Span     source.Span // from '<' to the closing '>' of the end tag
	NameSpan source.Span
	Attrs    []*Attribute
	Children []*Element
	Text     []TextRun
	Parent   *Element
	Closed   bool // false when the end tag was missing (best-effort span)
}

// Attribute is a name/value pair on an element. RawValue is the escaped
// text exactly as written between the quotes.
type Attribute struct {
	Name      string
	NameSpan  source.Span
	RawValue  string
	ValueSpan source.Span // inside the quotes
}

// TextRun is one run of character data directly inside an element,
// in raw escaped form.
type TextRun struct {
	Raw  string
	Span source.Span
}

// Attr returns the attribute with the given name (case-insensitive ASCII),
// or nil.
func (e *Element) Attr(name string) *Attribute {
	for _, a := range e.Attrs {
		if equalFoldASCII(a.Name, name) {
			return a
		}
	}
	return nil
}

// Child returns the first child element with the given name
// (case-insensitive ASCII), or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if equalFoldASCII(c.Name, name) {
			return c
		}
	}
	return nil
}

// JoinedText concatenates all raw text runs of the element.
func (e *Element) JoinedText() string {
	switch len(e.Text) {
	case 0:
		return ""
	case 1:
		return e.Text[0].Raw
	}
	n := 0
	for _, r := range e.Text {
		n += len(r.Raw)
	}
	buf := make([]byte, 0, n)
	for _, r := range e.Text {
		buf = append(buf, r.Raw...)
	}
	return string(buf)
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
