package expr

// Options selects which sub-language features the parser recognizes.
// They derive from the governing symbol's value kind: list parsing only
// happens when the kind permits lists, and disabled reference syntax is
// kept as literal text rather than rejected.
type Options uint8

const (
	// Lists enables ';' as a list separator.
	Lists Options = 1 << iota
	// CommaLists additionally enables ',' as a separator.
	CommaLists
	// Items enables @() item references.
	Items
	// Metadata enables %() metadata references.
	Metadata
	// Transforms enables the -> transform inside item references.
	Transforms
)

// All enables every feature; used for shape checking before symbol
// resolution narrows the options.
const All = Lists | CommaLists | Items | Metadata | Transforms

func (o Options) has(f Options) bool { return o&f != 0 }

// Parse builds a best-effort AST for the unescaped value. It never fails
// and never panics on malformed input: bad regions become KindError nodes
// and the remainder of the value is still analyzed, since callers
// re-invoke the parser on partial text while a document is being edited.
func Parse(v Value, opts Options) *Node {
	p := &parser{src: v.Text, opts: opts}
	return p.run()
}

type parser struct {
	src  string
	opts Options
	pos  int
}

func (p *parser) run() *Node {
	var items []*Node
	itemStart := 0
	var segs []*Node
	textStart := 0

	flushText := func(end int) {
		if end > textStart {
			segs = append(segs, &Node{
				Kind:   KindText,
				Offset: textStart,
				Length: end - textStart,
				Name:   p.src[textStart:end],
			})
		}
	}
	flushItem := func(end int) {
		flushText(end)
		if node := combine(segs, itemStart, end); node != nil {
			items = append(items, node)
		}
		segs = nil
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ';' && p.opts.has(Lists),
			c == ',' && p.opts.has(CommaLists):
			flushItem(p.pos)
			p.pos++
			itemStart = p.pos
			textStart = p.pos
		case c == '$' && p.peekIs('('):
			flushText(p.pos)
			segs = append(segs, p.parseProperty())
			textStart = p.pos
		case c == '@' && p.peekIs('(') && p.opts.has(Items):
			flushText(p.pos)
			segs = append(segs, p.parseItem())
			textStart = p.pos
		case c == '%' && p.peekIs('(') && p.opts.has(Metadata):
			flushText(p.pos)
			segs = append(segs, p.parseMetadata())
			textStart = p.pos
		default:
			p.pos++
		}
	}
	flushItem(len(p.src))

	switch len(items) {
	case 0:
		return &Node{Kind: KindText, Offset: 0, Length: 0, Name: ""}
	case 1:
		return items[0]
	}
	return &Node{
		Kind:     KindList,
		Offset:   0,
		Length:   len(p.src),
		Children: items,
	}
}

// combine folds the segments of one list item into a single node.
// Whitespace-only items between separators are dropped.
func combine(segs []*Node, start, end int) *Node {
	switch len(segs) {
	case 0:
		return nil
	case 1:
		if segs[0].Kind == KindText && isAllSpace(segs[0].Name) {
			return nil
		}
		return segs[0]
	}
	first, last := segs[0], segs[len(segs)-1]
	return &Node{
		Kind:     KindSequence,
		Offset:   first.Offset,
		Length:   last.End() - first.Offset,
		Children: segs,
	}
}

// parseProperty parses $(Name) with an optional function chain:
// $(Name.Func().Other). The chain is kept raw.
func (p *parser) parseProperty() *Node {
	start := p.pos
	p.pos += 2 // "$("
	p.skipSpace()
	nameOff := p.pos
	name := p.scanIdent()
	if name == "" {
		return p.errorNode(start, ErrExpectingName)
	}
	node := &Node{
		Kind:       KindProperty,
		Offset:     start,
		Name:       name,
		NameOffset: nameOff,
	}
	if p.pos < len(p.src) && (p.src[p.pos] == '.' || p.src[p.pos] == '[') {
		funcStart := p.pos
		if !p.skipBalanced() {
			return p.errorNode(start, ErrExpectingRightParen)
		}
		node.Funcs = p.src[funcStart:p.pos]
	}
	p.skipSpace()
	if !p.eat(')') {
		return p.errorNode(start, ErrExpectingRightParen)
	}
	node.Length = p.pos - start
	return node
}

// parseItem parses @(Name), @(Name->transform) and
// @(Name->transform, 'sep'). Transform bodies are kept raw; they are
// themselves expressions but their references are resolved lazily by
// consumers that need them.
func (p *parser) parseItem() *Node {
	start := p.pos
	p.pos += 2 // "@("
	p.skipSpace()
	nameOff := p.pos
	name := p.scanIdent()
	if name == "" {
		return p.errorNode(start, ErrExpectingName)
	}
	node := &Node{
		Kind:       KindItem,
		Offset:     start,
		Name:       name,
		NameOffset: nameOff,
	}
	p.skipSpace()

	if p.opts.has(Transforms) && p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] == '>' {
		p.pos += 2
		p.skipSpace()
		trOff := p.pos
		tr, ok := p.scanTransform()
		if !ok {
			return p.errorNode(start, ErrExpectingTransform)
		}
		node.Transform = tr
		node.TransformOffset = trOff
		p.skipSpace()
	}

	if p.eat(',') {
		p.skipSpace()
		sep, ok := p.scanQuoted()
		if !ok {
			return p.errorNode(start, ErrExpectingValue)
		}
		node.Separator = sep
		p.skipSpace()
	}

	if !p.eat(')') {
		return p.errorNode(start, ErrExpectingRightParen)
	}
	node.Length = p.pos - start
	return node
}

// parseMetadata parses %(Name) and %(Item.Name).
func (p *parser) parseMetadata() *Node {
	start := p.pos
	p.pos += 2 // "%("
	p.skipSpace()
	firstOff := p.pos
	first := p.scanIdent()
	if first == "" {
		return p.errorNode(start, ErrExpectingName)
	}
	node := &Node{
		Kind:       KindMetadata,
		Offset:     start,
		Name:       first,
		NameOffset: firstOff,
	}
	if p.eat('.') {
		secondOff := p.pos
		second := p.scanIdent()
		if second == "" {
			return p.errorNode(start, ErrExpectingName)
		}
		node.ItemName = first
		node.ItemNameOffset = firstOff
		node.Name = second
		node.NameOffset = secondOff
	}
	p.skipSpace()
	if !p.eat(')') {
		return p.errorNode(start, ErrExpectingRightParen)
	}
	node.Length = p.pos - start
	return node
}

// errorNode swallows the rest of the current list item so scanning can
// resume cleanly at the next separator.
func (p *parser) errorNode(start int, kind ErrorKind) *Node {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c == ';' && p.opts.has(Lists)) || (c == ',' && p.opts.has(CommaLists)) {
			break
		}
		p.pos++
	}
	return &Node{
		Kind:   KindError,
		Offset: start,
		Length: p.pos - start,
		Err:    kind,
	}
}

func (p *parser) scanIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentByte(c, p.pos == start) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// scanTransform reads either a quoted transform ('%(Filename).o') or a
// bare one (%(Filename)), raw, up to a top-level ',' or ')'.
func (p *parser) scanTransform() (string, bool) {
	if p.pos < len(p.src) && p.src[p.pos] == '\'' {
		return p.scanQuoted()
	}
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return p.src[start:p.pos], p.pos > start
			}
			depth--
		case ',':
			if depth == 0 {
				return p.src[start:p.pos], p.pos > start
			}
		}
		p.pos++
	}
	return "", false
}

func (p *parser) scanQuoted() (string, bool) {
	if p.pos >= len(p.src) || p.src[p.pos] != '\'' {
		return "", false
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '\'' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", false
	}
	s := p.src[start:p.pos]
	p.pos++
	return s, true
}

// skipBalanced advances over a property function chain until the ')' that
// closes the enclosing reference, leaving pos on that ')'.
func (p *parser) skipBalanced() bool {
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return true
			}
			depth--
		case '\'':
			p.pos++
			for p.pos < len(p.src) && p.src[p.pos] != '\'' {
				p.pos++
			}
			if p.pos >= len(p.src) {
				return false
			}
		}
		p.pos++
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peekIs(c byte) bool {
	return p.pos+1 < len(p.src) && p.src[p.pos+1] == c
}

func (p *parser) eat(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_':
		return true
	case first:
		return false
	case '0' <= c && c <= '9', c == '-':
		return true
	}
	return false
}

func isAllSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
