package validate

import (
	"fmt"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
	"buildcheck/internal/xmltree"
)

// Analyzer is a pluggable rule driven by the core validation pass. It
// declares the symbol writes it wants to observe; the core invokes
// OnWrite as those writes are visited, so an analyzer never walks the
// tree itself. Filters run after the pass and can only suppress
// diagnostics, never add or modify them.
type Analyzer struct {
	// Name identifies the analyzer in diagnostics it reports.
	Name string
	// Doc is a one-line description.
	Doc string

	// WriteTargets are the symbol writes this analyzer observes.
	WriteTargets []WriteTarget
	// OnWrite is called once per observed write, in document order.
	OnWrite func(*AnalysisContext, WriteEvent)

	Filters []DiagnosticFilter
}

// WriteTarget names one observed symbol, case-insensitive.
type WriteTarget struct {
	Kind schema.SymbolKind
	Name string
}

// WriteEvent describes one write of an observed symbol.
type WriteEvent struct {
	Target WriteTarget
	// Element is the writing element: the property or metadata element,
	// the item element, or the Output element.
	Element *xmltree.Element
	// Attribute is the value-carrying attribute, nil when the value is
	// element text.
	Attribute *xmltree.Attribute
	// Span covers the written value.
	Span source.Span
}

// AnalysisContext is the analyzer's view of the pass.
type AnalysisContext struct {
	Doc     *Document
	Schemas *schema.Resolver

	v    *Validator
	name string
}

// Report adds a diagnostic to the document, stamped with the reporting
// analyzer's name.
func (c *AnalysisContext) Report(d diag.Diagnostic) {
	c.v.report(d.WithProp("analyzer", c.name))
}

// DiagnosticFilter suppresses core diagnostics of one code. A nil
// Suppress predicate suppresses every diagnostic with that code.
type DiagnosticFilter struct {
	Code     diag.Code
	Suppress func(doc *Document, d diag.Diagnostic) bool
}

type writeKey struct {
	kind schema.SymbolKind
	name string
}

// extensionSet indexes analyzers by observed write target and tracks
// which ones have been disabled after a contained failure.
type extensionSet struct {
	byTarget map[writeKey][]*Analyzer
	filtered []*Analyzer
	disabled map[*Analyzer]bool
}

func newExtensionSet(analyzers []*Analyzer) *extensionSet {
	s := &extensionSet{
		byTarget: make(map[writeKey][]*Analyzer),
		disabled: make(map[*Analyzer]bool),
	}
	for _, a := range analyzers {
		if a == nil {
			continue
		}
		for _, t := range a.WriteTargets {
			k := writeKey{kind: t.Kind, name: schema.FoldName(t.Name)}
			s.byTarget[k] = append(s.byTarget[k], a)
		}
		if len(a.Filters) > 0 {
			s.filtered = append(s.filtered, a)
		}
	}
	return s
}

// write dispatches one symbol write to the analyzers observing it. An
// analyzer that fails is reported once and disabled for the rest of the
// pass; the core rules and other analyzers are unaffected.
func (s *extensionSet) write(v *Validator, kind schema.SymbolKind, name string, el *xmltree.Element, attr *xmltree.Attribute) {
	analyzers := s.byTarget[writeKey{kind: kind, name: schema.FoldName(name)}]
	if len(analyzers) == 0 {
		return
	}
	ev := WriteEvent{
		Target:    WriteTarget{Kind: kind, Name: name},
		Element:   el,
		Attribute: attr,
		Span:      writeSpan(el, attr),
	}
	for _, a := range analyzers {
		if s.disabled[a] || a.OnWrite == nil {
			continue
		}
		s.runContained(v, a, el, func() {
			a.OnWrite(&AnalysisContext{
				Doc:     v.doc,
				Schemas: v.resolver,
				v:       v,
				name:    a.Name,
			}, ev)
		})
	}
}

func (s *extensionSet) runContained(v *Validator, a *Analyzer, el *xmltree.Element, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.disabled[a] = true
			msg := fmt.Sprintf("analyzer '%s' failed and was disabled: %v", a.Name, r)
			v.log.Logf("%s at %s", msg, el.Span)
			v.report(diag.NewError(diag.InternalError, el.NameSpan, msg))
		}
	}()
	fn()
}

// applyFilters runs every analyzer's filters over the finished bag. A
// failing predicate keeps the diagnostic.
func (s *extensionSet) applyFilters(doc *Document) {
	for _, a := range s.filtered {
		if s.disabled[a] {
			continue
		}
		for _, f := range a.Filters {
			doc.Bag.Remove(func(d diag.Diagnostic) bool {
				return d.Code == f.Code && suppresses(f, doc, d)
			})
		}
	}
}

func suppresses(f DiagnosticFilter, doc *Document, d diag.Diagnostic) (ok bool) {
	if f.Suppress == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f.Suppress(doc, d)
}

func writeSpan(el *xmltree.Element, attr *xmltree.Attribute) source.Span {
	if attr != nil {
		return attr.ValueSpan
	}
	if len(el.Text) > 0 {
		return el.Text[0].Span
	}
	return el.Span
}
