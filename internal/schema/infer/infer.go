// Package infer derives a per-document schema from the document's own
// declarations and usages. The result is merged into the resolver chain
// after all static schemas, so explicit knowledge always wins, and it is
// rebuilt from scratch on every pass.
package infer

import (
	"strings"

	"buildcheck/internal/expr"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
	"buildcheck/internal/xmltree"
)

// UsageKind records how a symbol name was seen in the document.
type UsageKind uint8

const (
	UsageRead UsageKind = 1 << iota
	UsageWrite
	UsageDeclaration
)

// DocSchema is the inferred schema plus the per-document usage records.
// It implements schema.Provider over the declared/written symbols.
type DocSchema struct {
	properties map[string]*schema.Symbol
	items      map[string]*schema.Symbol
	metadata   map[string]*schema.Symbol // key item\x00meta, item may be ""
	tasks      map[string]*schema.Symbol
	targets    map[string]*schema.Symbol

	propUsage   map[string]UsageKind
	itemUsage   map[string]UsageKind
	metaUsage   map[string]UsageKind
	taskUsage   map[string]UsageKind
	targetUsage map[string]UsageKind

	// Frameworks are the declared TargetFramework / TargetFrameworks
	// values in document order, used for framework cross-checks.
	Frameworks []string
}

// Infer runs the first pass over the element tree.
func Infer(root *xmltree.Element) *DocSchema {
	d := &DocSchema{
		properties:  make(map[string]*schema.Symbol),
		items:       make(map[string]*schema.Symbol),
		metadata:    make(map[string]*schema.Symbol),
		tasks:       make(map[string]*schema.Symbol),
		targets:     make(map[string]*schema.Symbol),
		propUsage:   make(map[string]UsageKind),
		itemUsage:   make(map[string]UsageKind),
		metaUsage:   make(map[string]UsageKind),
		taskUsage:   make(map[string]UsageKind),
		targetUsage: make(map[string]UsageKind),
	}
	if root != nil {
		d.walk(root, schema.ResolveRoot(root.Name))
	}
	return d
}

func (d *DocSchema) walk(el *xmltree.Element, syntax *schema.ElementSyntax) {
	if syntax != nil {
		d.collect(el, syntax)
	}
	for _, child := range el.Children {
		d.walk(child, schema.ResolveElement(syntax, child.Name))
	}
}

func (d *DocSchema) collect(el *xmltree.Element, syntax *schema.ElementSyntax) {
	switch syntax.Kind {
	case schema.ElemProperty:
		d.declareProperty(el)
	case schema.ElemItem, schema.ElemItemDefinition:
		d.declareItem(el)
	case schema.ElemMetadata:
		if el.Parent != nil {
			d.declareMetadata(el.Parent.Name, el)
		}
	case schema.ElemTarget:
		if a := el.Attr("Name"); a != nil && a.RawValue != "" {
			d.record(d.targetUsage, a.RawValue, UsageDeclaration|UsageWrite)
			d.declare(d.targets, a.RawValue, &schema.Symbol{
				Name: a.RawValue, SymKind: schema.SymTarget, DeclaredAt: a.ValueSpan,
			})
		}
		for _, name := range []string{"DependsOnTargets", "BeforeTargets", "AfterTargets"} {
			if a := el.Attr(name); a != nil {
				for _, t := range splitList(a.RawValue) {
					d.record(d.targetUsage, t, UsageRead)
				}
			}
		}
	case schema.ElemOnError:
		if a := el.Attr("ExecuteTargets"); a != nil {
			for _, t := range splitList(a.RawValue) {
				d.record(d.targetUsage, t, UsageRead)
			}
		}
	case schema.ElemTask:
		d.declareTaskUsage(el)
	case schema.ElemUsingTask:
		d.declareUsingTask(el)
	case schema.ElemOutput:
		if a := el.Attr("PropertyName"); a != nil && a.RawValue != "" {
			d.record(d.propUsage, a.RawValue, UsageWrite|UsageDeclaration)
			d.declare(d.properties, a.RawValue, &schema.Symbol{
				Name: a.RawValue, SymKind: schema.SymProperty, DeclaredAt: a.ValueSpan,
			})
		}
		if a := el.Attr("ItemName"); a != nil && a.RawValue != "" {
			d.record(d.itemUsage, a.RawValue, UsageWrite|UsageDeclaration)
			d.declare(d.items, a.RawValue, &schema.Symbol{
				Name: a.RawValue, SymKind: schema.SymItem, DeclaredAt: a.ValueSpan,
			})
		}
	}

	// Every attribute value and text run contributes expression reads.
	for _, a := range el.Attrs {
		d.collectReads(a.RawValue)
	}
	for _, t := range el.Text {
		d.collectReads(t.Raw)
	}
}

func (d *DocSchema) declareProperty(el *xmltree.Element) {
	name := el.Name
	d.record(d.propUsage, name, UsageWrite|UsageDeclaration)
	d.declare(d.properties, name, &schema.Symbol{
		Name: name, SymKind: schema.SymProperty, DeclaredAt: el.NameSpan,
	})

	if isTargetFrameworkProp(name) {
		text := strings.TrimSpace(el.JoinedText())
		for _, fw := range splitList(text) {
			d.Frameworks = append(d.Frameworks, fw)
		}
	}
}

func (d *DocSchema) declareItem(el *xmltree.Element) {
	d.record(d.itemUsage, el.Name, UsageWrite|UsageDeclaration)
	d.declare(d.items, el.Name, &schema.Symbol{
		Name: el.Name, SymKind: schema.SymItem, DeclaredAt: el.NameSpan,
	})
}

func (d *DocSchema) declareMetadata(itemName string, el *xmltree.Element) {
	key := schema.FoldName(itemName) + "\x00" + schema.FoldName(el.Name)
	d.metaUsage[key] |= UsageWrite | UsageDeclaration
	if _, ok := d.metadata[key]; !ok {
		d.metadata[key] = &schema.Symbol{
			Name: el.Name, SymKind: schema.SymMetadata, DeclaredAt: el.NameSpan,
		}
	}
}

func (d *DocSchema) declareTaskUsage(el *xmltree.Element) {
	d.record(d.taskUsage, el.Name, UsageRead)
	folded := schema.FoldName(el.Name)
	if _, ok := d.tasks[folded]; !ok {
		// A task used without a UsingTask declaration: infer a permissive
		// parameter set from its attributes so validation can proceed.
		sym := &schema.Symbol{
			Name: el.Name, SymKind: schema.SymTask,
			Parameters: make(map[string]*schema.Symbol),
			DeclaredAt: el.NameSpan,
		}
		for _, a := range el.Attrs {
			if isTaskInfraAttr(a.Name) {
				continue
			}
			sym.Parameters[schema.FoldName(a.Name)] = &schema.Symbol{
				Name: a.Name, SymKind: schema.SymTaskParameter,
			}
		}
		d.tasks[folded] = sym
	}
}

func (d *DocSchema) declareUsingTask(el *xmltree.Element) {
	a := el.Attr("TaskName")
	if a == nil || a.RawValue == "" {
		return
	}
	// The declared name may be namespace-qualified; register the short
	// name, which is how task elements reference it.
	name := a.RawValue
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}
	d.record(d.taskUsage, name, UsageDeclaration|UsageWrite)

	sym := &schema.Symbol{
		Name: name, SymKind: schema.SymTask,
		DeclaredAt: a.ValueSpan,
	}
	// Parameters stays nil without a ParameterGroup: an assembly task's
	// parameter set is unknown, which is not the same as known-empty.
	if pg := el.Child("ParameterGroup"); pg != nil {
		sym.Parameters = make(map[string]*schema.Symbol)
		for _, param := range pg.Children {
			psym := &schema.Symbol{
				Name: param.Name, SymKind: schema.SymTaskParameter,
				DeclaredAt: param.NameSpan,
			}
			if req := param.Attr("Required"); req != nil && strings.EqualFold(req.RawValue, "true") {
				psym.Required = true
			}
			if out := param.Attr("Output"); out != nil && strings.EqualFold(out.RawValue, "true") {
				psym.IsOutput = true
			}
			sym.Parameters[schema.FoldName(param.Name)] = psym
		}
	}
	d.tasks[schema.FoldName(name)] = sym
}

// collectReads parses raw attribute/text content and records reference
// usages. Full syntax is enabled: inference wants every reference the
// author wrote, regardless of what the governing kind later permits.
func (d *DocSchema) collectReads(raw string) {
	if !strings.ContainsAny(raw, "$@%") {
		return
	}
	root := expr.Parse(expr.Unescape(raw, source.Span{}), expr.All)
	expr.Walk(root, func(n *expr.Node) {
		switch n.Kind {
		case expr.KindProperty:
			d.record(d.propUsage, n.Name, UsageRead)
		case expr.KindItem:
			d.record(d.itemUsage, n.Name, UsageRead)
		case expr.KindMetadata:
			if n.ItemName != "" {
				d.record(d.itemUsage, n.ItemName, UsageRead)
			}
			key := schema.FoldName(n.ItemName) + "\x00" + schema.FoldName(n.Name)
			d.metaUsage[key] |= UsageRead
		}
	})
}

func (d *DocSchema) record(m map[string]UsageKind, name string, kind UsageKind) {
	m[schema.FoldName(name)] |= kind
}

func (d *DocSchema) declare(m map[string]*schema.Symbol, name string, sym *schema.Symbol) {
	folded := schema.FoldName(name)
	if _, ok := m[folded]; !ok {
		m[folded] = sym
	}
}

func isTargetFrameworkProp(name string) bool {
	return strings.EqualFold(name, "TargetFramework") || strings.EqualFold(name, "TargetFrameworks")
}

func isTaskInfraAttr(name string) bool {
	switch schema.FoldName(name) {
	case "condition", "continueonerror", "architecture", "runtime":
		return true
	}
	return false
}

func splitList(s string) []string {
	parts := strings.Split(s, ";")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && !strings.ContainsAny(p, "$@%") {
			out = append(out, p)
		}
	}
	return out
}
