package validate

import (
	"fmt"
	"sort"
	"strings"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/schema/infer"
	"buildcheck/internal/xmltree"
)

// checkTask validates one task invocation: the task must be resolvable,
// every attribute that is not task infrastructure must match a declared
// parameter, and required parameters must be present and non-empty.
func (v *Validator) checkTask(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	name := el.Name
	ext := v.external.Task(name)
	if ext == nil && !v.doc.Inferred.HasTaskUsage(name, infer.UsageDeclaration) {
		v.report(diag.New(diag.SevInfo, diag.UnresolvedInferredTask, el.NameSpan,
			fmt.Sprintf("task '%s' has no declaration; its parameters cannot be validated", name)))
	}
	if ext != nil && ext.Deprecated() {
		v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, el.NameSpan,
			fmt.Sprintf("task '%s' is deprecated: %s", ext.Name, ext.Deprecation)))
	}

	decl := v.taskDeclaration(name, ext)
	for _, attr := range el.Attrs {
		if syntax.Attribute(attr.Name) != nil {
			// Condition, ContinueOnError and friends are handled by the
			// common attribute pass.
			continue
		}
		if decl == nil {
			// No declared parameter set; still parse the value so
			// expression errors and unknown references surface.
			v.validateValue(schema.KindUnknown, nil, attr.RawValue, attr.ValueSpan)
			continue
		}
		p := decl.Parameter(attr.Name)
		if p == nil {
			v.report(diag.New(diag.SevWarning, diag.UnknownTaskParameter, attr.NameSpan,
				fmt.Sprintf("task '%s' has no parameter '%s'", decl.Name, attr.Name)))
			continue
		}
		if p.Deprecated() {
			v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, attr.NameSpan,
				fmt.Sprintf("task parameter '%s' is deprecated: %s", p.Name, p.Deprecation)))
		}
		v.validateValue(p.Kind, p, attr.RawValue, attr.ValueSpan)
	}

	if decl != nil {
		v.checkRequiredParams(el, decl)
	}
}

// taskDeclaration picks the parameter authority for a task invocation:
// the external schema when it knows the task, otherwise the document's
// own UsingTask declaration when it carries a ParameterGroup. Tasks
// inferred purely from their invocation stay unchecked; their parameter
// set would just echo the attributes under test.
func (v *Validator) taskDeclaration(name string, ext *schema.Symbol) *schema.Symbol {
	if ext != nil {
		return ext
	}
	if !v.doc.Inferred.HasTaskUsage(name, infer.UsageDeclaration) {
		return nil
	}
	if inf := v.doc.Inferred.Task(name); inf != nil && inf.Parameters != nil {
		return inf
	}
	return nil
}

// checkRequiredParams reports missing and empty required parameters. A
// parameter that is supplied but blank is an empty-value problem, never
// a missing-attribute one.
func (v *Validator) checkRequiredParams(el *xmltree.Element, task *schema.Symbol) {
	names := make([]string, 0, len(task.Parameters))
	for k := range task.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		p := task.Parameters[k]
		if !p.Required {
			continue
		}
		attr := el.Attr(p.Name)
		if attr == nil {
			v.report(diag.NewError(diag.MissingRequiredTaskParameter, el.NameSpan,
				fmt.Sprintf("task '%s' is missing required parameter '%s'", task.Name, p.Name)).
				WithProp("parameter", p.Name))
			continue
		}
		if strings.TrimSpace(attr.RawValue) == "" {
			v.report(diag.NewError(diag.EmptyRequiredTaskParameter, attr.NameSpan,
				fmt.Sprintf("required parameter '%s' is empty", p.Name)).
				WithProp("parameter", p.Name))
		}
	}
}

// checkOutput validates an Output element: exactly one of PropertyName
// and ItemName, a TaskParameter that the enclosing task actually
// declares as an output, and write legality for the target property.
func (v *Validator) checkOutput(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	propName := el.Attr("PropertyName")
	itemName := el.Attr("ItemName")
	if (propName == nil) == (itemName == nil) {
		v.report(diag.NewError(diag.OutputMustHavePropertyOrItemName, el.NameSpan,
			"Output must have exactly one of PropertyName and ItemName"))
	}

	if propName != nil && propName.RawValue != "" {
		if ext := v.external.Property(propName.RawValue); ext != nil {
			switch {
			case ext.Reserved:
				v.report(diag.NewError(diag.PropertyWriteReserved, propName.ValueSpan,
					fmt.Sprintf("the property '%s' is reserved and cannot be written", ext.Name)))
			case ext.ReadOnly:
				v.report(diag.New(diag.SevWarning, diag.PropertyWriteReadonly, propName.ValueSpan,
					fmt.Sprintf("the property '%s' is read-only", ext.Name)))
			}
		}
		v.exts.write(v, schema.SymProperty, propName.RawValue, el, propName)
	}
	if itemName != nil && itemName.RawValue != "" {
		v.exts.write(v, schema.SymItem, itemName.RawValue, el, itemName)
	}

	tp := el.Attr("TaskParameter")
	if tp == nil || el.Parent == nil {
		return
	}
	decl := v.taskDeclaration(el.Parent.Name, v.external.Task(el.Parent.Name))
	if decl == nil || len(decl.Parameters) == 0 {
		return
	}
	p := decl.Parameter(tp.RawValue)
	if p == nil {
		v.report(diag.New(diag.SevWarning, diag.UnknownTaskParameter, tp.ValueSpan,
			fmt.Sprintf("task '%s' has no parameter '%s'", decl.Name, tp.RawValue)))
		return
	}
	if !p.IsOutput {
		v.report(diag.NewError(diag.NonOutputTaskParameter, tp.ValueSpan,
			fmt.Sprintf("parameter '%s' of task '%s' is not an output", p.Name, decl.Name)))
	}
}
