package expr

import (
	"strconv"
	"strings"

	"buildcheck/internal/source"
)

// Value couples unescaped text with the mapping back to original source
// offsets. Attribute values and element text arrive XML-escaped; every
// diagnostic against the unescaped text must be translated back through
// this mapping, because entities change byte widths.
type Value struct {
	Text string
	span source.Span
	// offs[i] is the source offset of Text[i]; offs[len(Text)] is the
	// source end offset. Nil when the raw text contained no entities
	// (identity mapping, the common case).
	offs []uint32
}

// Unescape decodes XML entities in raw, which occupies span in the
// source document. Unknown entities are kept literally.
func Unescape(raw string, span source.Span) Value {
	amp := strings.IndexByte(raw, '&')
	if amp < 0 {
		return Value{Text: raw, span: span}
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	offs := make([]uint32, 0, len(raw)+1)

	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '&' {
			offs = append(offs, span.Start+uint32(i))
			sb.WriteByte(c)
			i++
			continue
		}
		semi := strings.IndexByte(raw[i:], ';')
		if semi < 0 {
			offs = append(offs, span.Start+uint32(i))
			sb.WriteByte(c)
			i++
			continue
		}
		entity := raw[i+1 : i+semi]
		decoded, ok := decodeEntity(entity)
		if !ok {
			offs = append(offs, span.Start+uint32(i))
			sb.WriteByte(c)
			i++
			continue
		}
		for n := 0; n < len(decoded); n++ {
			offs = append(offs, span.Start+uint32(i))
		}
		sb.WriteString(decoded)
		i += semi + 1
	}
	offs = append(offs, span.End)
	return Value{Text: sb.String(), span: span, offs: offs}
}

// Literal wraps already-unescaped text occupying span.
func Literal(text string, span source.Span) Value {
	return Value{Text: text, span: span}
}

// SpanOf maps the half-open range [start, end) in unescaped text back to
// a source span.
func (v Value) SpanOf(start, end int) source.Span {
	if v.offs == nil {
		return source.Span{File: v.span.File, Start: v.span.Start + uint32(start), End: v.span.Start + uint32(end)}
	}
	if start < 0 {
		start = 0
	}
	if end > len(v.offs)-1 {
		end = len(v.offs) - 1
	}
	if start > end {
		start = end
	}
	return source.Span{File: v.span.File, Start: v.offs[start], End: v.offs[end]}
}

// Span returns the source span of the whole value.
func (v Value) Span() source.Span {
	return v.span
}

func decodeEntity(name string) (string, bool) {
	switch name {
	case "amp":
		return "&", true
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "quot":
		return "\"", true
	case "apos":
		return "'", true
	}
	if len(name) > 1 && name[0] == '#' {
		digits := name[1:]
		base := 10
		if digits[0] == 'x' || digits[0] == 'X' {
			digits = digits[1:]
			base = 16
		}
		n, err := strconv.ParseUint(digits, base, 32)
		if err != nil {
			return "", false
		}
		return string(rune(n)), true
	}
	return "", false
}
