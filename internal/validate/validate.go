package validate

import (
	"context"
	"fmt"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/xmltree"
)

// Logger receives internal-fault reports. Rendering diagnostics is a
// separate concern; this sink only exists so contained per-node failures
// are not silently swallowed.
type Logger interface {
	Logf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}

// Options configures a validation pass.
type Options struct {
	// Schemas are the explicit and imported providers, most specific
	// first. The document's own inferred schema is always appended last.
	Schemas []schema.Provider
	// Analyzers are extension rules; see extensions.go.
	Analyzers []*Analyzer
	// Log receives internal-fault reports; nil discards them.
	Log Logger
}

// Validator walks one document depth-first, cross-referencing the
// element tree against the schema chain and the parsed expressions of
// every value. It appends diagnostics to the document's bag and never
// mutates schema state.
type Validator struct {
	ctx      context.Context
	doc      *Document
	resolver *schema.Resolver // full chain including self-inference
	external *schema.Resolver // chain excluding self-inference
	rep      diag.Reporter
	log      Logger
	exts     *extensionSet
}

// Validate runs a full pass over the document. The only error it
// returns is the context's cancellation error; partial diagnostics must
// then be discarded by the caller. Everything else becomes diagnostics.
func Validate(ctx context.Context, doc *Document, opts Options) error {
	providers := make([]schema.Provider, 0, len(opts.Schemas)+1)
	providers = append(providers, opts.Schemas...)
	providers = append(providers, doc.Inferred)
	resolver := schema.NewResolver(providers...)

	logger := opts.Log
	if logger == nil {
		logger = nopLogger{}
	}

	v := &Validator{
		ctx:      ctx,
		doc:      doc,
		resolver: resolver,
		external: resolver.Excluding(doc.Inferred),
		rep:      diag.BagReporter{Bag: doc.Bag},
		log:      logger,
		exts:     newExtensionSet(opts.Analyzers),
	}

	if doc.Root == nil {
		return ctx.Err()
	}

	rootSyntax := schema.ResolveRoot(doc.Root.Name)
	if rootSyntax == nil {
		v.report(diag.NewError(diag.UnknownElement, doc.Root.NameSpan,
			fmt.Sprintf("unknown root element '%s'", doc.Root.Name)))
	}
	if err := v.visit(doc.Root, rootSyntax, visitState{known: rootSyntax != nil}); err != nil {
		return err
	}

	// Filters run strictly after diagnostic generation and may only
	// suppress, never synthesize.
	v.exts.applyFilters(doc)
	doc.Bag.Sort()
	return ctx.Err()
}

// visitState carries the context-sensitive flags for one tree position.
type visitState struct {
	known    bool // the element resolved to a syntax
	inTarget bool
}

// handlers is the closed dispatch table: exactly one handler fires per
// element kind, never overlapping.
var handlers = map[schema.ElementKind]func(*Validator, *xmltree.Element, *schema.ElementSyntax, visitState){
	schema.ElemProject:        (*Validator).checkProject,
	schema.ElemProperty:       (*Validator).checkProperty,
	schema.ElemItem:           (*Validator).checkItem,
	schema.ElemItemDefinition: (*Validator).checkItem,
	schema.ElemMetadata:       (*Validator).checkMetadata,
	schema.ElemTarget:         (*Validator).checkTarget,
	schema.ElemTask:           (*Validator).checkTask,
	schema.ElemOutput:         (*Validator).checkOutput,
	schema.ElemUsingTask:      (*Validator).checkUsingTask,
	schema.ElemImport:         (*Validator).checkImport,
	schema.ElemChoose:         (*Validator).checkChoose,
}

// visit processes one element and recurses. Cooperative cancellation is
// observed between element visits; any other failure inside a single
// element's rules is contained by checkContained and never aborts the
// pass.
func (v *Validator) visit(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) error {
	if err := v.ctx.Err(); err != nil {
		return err
	}

	if syntax == nil {
		if st.known {
			v.report(diag.New(diag.SevWarning, diag.UnknownElement, el.NameSpan,
				fmt.Sprintf("unknown element '%s'", el.Name)))
		}
		// Recurse defensively: children still get expression-level
		// checks, but no further unknown-element noise.
		return v.visitChildren(el, nil, visitState{known: false, inTarget: st.inTarget})
	}

	v.checkContained(el, func() {
		v.checkCommon(el, syntax, st)
		if handler, ok := handlers[syntax.Kind]; ok {
			handler(v, el, syntax, st)
		}
	})

	childState := visitState{known: true, inTarget: st.inTarget || syntax.Kind == schema.ElemTarget}
	if syntax.Kind == schema.ElemUsingTaskBody || syntax.Kind == schema.ElemProjectExtensions {
		childState.known = false
	}
	return v.visitChildren(el, syntax, childState)
}

func (v *Validator) visitChildren(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) error {
	for _, child := range el.Children {
		childSyntax := schema.ResolveElement(syntax, child.Name)
		if err := v.visit(child, childSyntax, st); err != nil {
			return err
		}
	}
	return nil
}

// checkContained runs one element's rules with fault containment: an
// uncaught failure becomes an InternalError diagnostic and the pass
// continues with siblings and ancestors.
func (v *Validator) checkContained(el *xmltree.Element, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error validating element '%s': %v", el.Name, r)
			v.log.Logf("%s at %s", msg, el.Span)
			v.report(diag.NewError(diag.InternalError, el.NameSpan, msg))
		}
	}()
	fn()
}

// checkCommon applies the rules shared by every resolved element:
// syntax-level deprecation, required attributes, unknown attributes and
// attribute value validation.
func (v *Validator) checkCommon(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	if syntax.Deprecation != "" {
		v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, el.NameSpan,
			fmt.Sprintf("element '%s' is deprecated: %s", el.Name, syntax.Deprecation)))
	}

	for i := range syntax.Attrs {
		as := &syntax.Attrs[i]
		if as.Required && el.Attr(as.Name) == nil {
			v.report(diag.NewError(diag.MissingRequiredAttribute, el.NameSpan,
				fmt.Sprintf("element '%s' is missing required attribute '%s'", el.Name, as.Name)).
				WithProp("attribute", as.Name))
		}
	}

	for _, attr := range el.Attrs {
		as := syntax.Attribute(attr.Name)
		if as == nil {
			// Task parameters are validated against the task's declared
			// parameter set, not the element syntax.
			if syntax.Kind == schema.ElemTask || syntax.Abstract && syntax.Kind == schema.ElemUnknown {
				continue
			}
			v.report(diag.New(diag.SevWarning, diag.UnknownAttribute, attr.NameSpan,
				fmt.Sprintf("unknown attribute '%s'", attr.Name)))
			continue
		}
		if as.Deprecation != "" {
			v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, attr.NameSpan,
				fmt.Sprintf("attribute '%s' is deprecated: %s", attr.Name, as.Deprecation)))
		}
		v.validateAttribute(el, attr, as, st)
	}
}

func (v *Validator) report(d diag.Diagnostic) {
	v.rep.Report(d)
}
