package xmltree

import (
	"bytes"
	"fmt"
	"strings"

	"buildcheck/internal/diag"
	"buildcheck/internal/source"
)

// Parse scans a document into an element tree. It never fails: malformed
// markup produces MarkupSyntax diagnostics and a best-effort tree, so the
// analyzer can keep working on incomplete buffers. Returns the root
// element, or nil when the document contains no element at all.
func Parse(f *source.File, rep diag.Reporter) *Element {
	p := &parser{src: f.Content, file: f.ID, rep: rep}
	return p.run()
}

type parser struct {
	src  []byte
	file source.FileID
	pos  uint32
	rep  diag.Reporter
}

func (p *parser) run() *Element {
	var root *Element
	var cur *Element

	for int(p.pos) < len(p.src) {
		textStart := p.pos
		lt := p.findByte('<')
		if lt > textStart && cur != nil {
			p.addText(cur, textStart, lt)
		}
		if int(lt) >= len(p.src) {
			break
		}
		p.pos = lt

		switch {
		case p.hasPrefix("<?"):
			p.skipUntil("?>")
		case p.hasPrefix("<!--"):
			p.skipUntil("-->")
		case p.hasPrefix("<![CDATA["):
			start := p.pos + 9
			end := p.skipUntil("]]>")
			if cur != nil && end > start {
				cur.Text = append(cur.Text, TextRun{
					Raw:  string(p.src[start:end]),
					Span: source.Span{File: p.file, Start: start, End: end},
				})
			}
		case p.hasPrefix("<!"):
			p.skipUntil(">")
		case p.hasPrefix("</"):
			cur = p.closeTag(cur)
		default:
			el := p.openTag(cur)
			if el == nil {
				continue
			}
			if cur != nil {
				cur.Children = append(cur.Children, el)
			} else if root == nil {
				root = el
			} else {
				p.report(el.Span, "multiple root elements")
			}
			if !el.Closed {
				cur = el
			}
		}
	}

	// Unterminated elements run to end of input.
	for e := cur; e != nil; e = e.Parent {
		e.Span.End = uint32(len(p.src))
		p.report(source.Span{File: p.file, Start: e.Span.Start, End: e.NameSpan.End},
			fmt.Sprintf("element '%s' is never closed", e.Name))
	}
	return root
}

// openTag parses "<name attr=... >" starting at '<'. Returns the element
// with Closed=true when self-closing, or nil when no name could be read.
func (p *parser) openTag(parent *Element) *Element {
	start := p.pos
	p.pos++ // '<'
	nameStart := p.pos
	name := p.scanName()
	if name == "" {
		p.report(source.Span{File: p.file, Start: start, End: start + 1}, "expected element name after '<'")
		p.pos++
		return nil
	}
	el := &Element{
		Name:     name,
		Span:     source.Span{File: p.file, Start: start, End: p.pos},
		NameSpan: source.Span{File: p.file, Start: nameStart, End: p.pos},
		Parent:   parent,
	}

	for {
		p.skipSpace()
		if int(p.pos) >= len(p.src) {
			return el
		}
		switch p.src[p.pos] {
		case '>':
			p.pos++
			el.Span.End = p.pos
			return el
		case '/':
			p.pos++
			if int(p.pos) < len(p.src) && p.src[p.pos] == '>' {
				p.pos++
			}
			el.Span.End = p.pos
			el.Closed = true
			return el
		default:
			if a := p.attribute(); a != nil {
				el.Attrs = append(el.Attrs, a)
			} else {
				// Unparseable junk: step over it so we make progress.
				p.pos++
			}
		}
	}
}

func (p *parser) attribute() *Attribute {
	nameStart := p.pos
	name := p.scanName()
	if name == "" {
		p.report(source.Span{File: p.file, Start: p.pos, End: p.pos + 1}, "expected attribute name")
		return nil
	}
	a := &Attribute{
		Name:     name,
		NameSpan: source.Span{File: p.file, Start: nameStart, End: p.pos},
	}
	p.skipSpace()
	if int(p.pos) >= len(p.src) || p.src[p.pos] != '=' {
		p.report(a.NameSpan, fmt.Sprintf("attribute '%s' has no value", name))
		a.ValueSpan = source.Span{File: p.file, Start: p.pos, End: p.pos}
		return a
	}
	p.pos++ // '='
	p.skipSpace()
	if int(p.pos) >= len(p.src) || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
		p.report(a.NameSpan, fmt.Sprintf("attribute '%s' value is not quoted", name))
		vs := p.pos
		for int(p.pos) < len(p.src) && !isSpace(p.src[p.pos]) && p.src[p.pos] != '>' && p.src[p.pos] != '/' {
			p.pos++
		}
		a.RawValue = string(p.src[vs:p.pos])
		a.ValueSpan = source.Span{File: p.file, Start: vs, End: p.pos}
		return a
	}
	quote := p.src[p.pos]
	p.pos++
	vs := p.pos
	for int(p.pos) < len(p.src) && p.src[p.pos] != quote && p.src[p.pos] != '\n' && p.src[p.pos] != '<' {
		p.pos++
	}
	a.RawValue = string(p.src[vs:p.pos])
	a.ValueSpan = source.Span{File: p.file, Start: vs, End: p.pos}
	if int(p.pos) < len(p.src) && p.src[p.pos] == quote {
		p.pos++
	} else {
		p.report(a.ValueSpan, fmt.Sprintf("attribute '%s' value is not terminated", name))
	}
	return a
}

// closeTag consumes "</name>" and returns the new enclosing element.
func (p *parser) closeTag(cur *Element) *Element {
	start := p.pos
	p.pos += 2 // "</"
	name := p.scanName()
	p.skipSpace()
	if int(p.pos) < len(p.src) && p.src[p.pos] == '>' {
		p.pos++
	}
	end := p.pos
	sp := source.Span{File: p.file, Start: start, End: end}

	// Find the matching open element; anything inside it that is still
	// open gets closed implicitly with a diagnostic.
	match := cur
	for match != nil && match.Name != name {
		match = match.Parent
	}
	if match == nil {
		p.report(sp, fmt.Sprintf("closing tag '%s' has no matching open element", name))
		return cur
	}
	for e := cur; e != match; e = e.Parent {
		e.Span.End = end
		p.report(sp, fmt.Sprintf("element '%s' is implicitly closed by '%s'", e.Name, name))
	}
	match.Span.End = end
	match.Closed = true
	return match.Parent
}

func (p *parser) addText(e *Element, start, end uint32) {
	raw := p.src[start:end]
	if len(strings.TrimSpace(string(raw))) == 0 {
		return
	}
	e.Text = append(e.Text, TextRun{
		Raw:  string(raw),
		Span: source.Span{File: p.file, Start: start, End: end},
	})
}

func (p *parser) scanName() string {
	start := p.pos
	for int(p.pos) < len(p.src) && isNameByte(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) findByte(b byte) uint32 {
	i := p.pos
	for int(i) < len(p.src) && p.src[i] != b {
		i++
	}
	return i
}

// skipUntil advances past the next occurrence of marker and returns the
// offset where the marker begins (end of input when absent).
func (p *parser) skipUntil(marker string) uint32 {
	idx := bytes.Index(p.src[p.pos:], []byte(marker))
	if idx < 0 {
		end := uint32(len(p.src))
		p.report(source.Span{File: p.file, Start: p.pos, End: end},
			fmt.Sprintf("unterminated section, expected '%s'", marker))
		p.pos = end
		return end
	}
	at := p.pos + uint32(idx)
	p.pos = at + uint32(len(marker))
	return at
}

func (p *parser) skipSpace() {
	for int(p.pos) < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.src[p.pos:], []byte(s))
}

func (p *parser) report(sp source.Span, msg string) {
	if p.rep == nil {
		return
	}
	p.rep.Report(diag.NewError(diag.MarkupSyntax, sp, msg))
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameByte(b byte, first bool) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', b == '_':
		return true
	case first:
		return false
	case '0' <= b && b <= '9', b == '-', b == '.', b == ':':
		return true
	}
	return false
}
