package validate

import (
	"fmt"
	"strings"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/xmltree"
)

// checkUsingTask enforces the UsingTask legality matrix: the assembly
// attributes, the factory/body pairing and the factory-specific body
// shape all constrain each other.
func (v *Validator) checkUsingTask(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	taskName := el.Attr("TaskName")
	assemblyName := el.Attr("AssemblyName")
	assemblyFile := el.Attr("AssemblyFile")
	factory := el.Attr("TaskFactory")
	body := el.Child("Task")
	paramGroup := el.Child("ParameterGroup")

	if taskName != nil {
		v.checkTaskName(taskName, factory)
	}

	switch {
	case assemblyName == nil && assemblyFile == nil:
		v.report(diag.NewError(diag.UsingTaskMustHaveAssembly, el.NameSpan,
			"UsingTask must have either AssemblyName or AssemblyFile"))
	case assemblyName != nil && assemblyFile != nil:
		v.report(diag.NewError(diag.TaskFactoryMustHaveOneAssemblyOnly, el.NameSpan,
			"UsingTask must not have both AssemblyName and AssemblyFile"))
	}

	if factory != nil && assemblyName != nil && assemblyFile == nil {
		v.report(diag.NewError(diag.TaskFactoryMustHaveAssemblyFile, factory.NameSpan,
			"a task factory requires AssemblyFile, not AssemblyName"))
	}

	if factory == nil {
		if paramGroup != nil {
			v.report(diag.NewError(diag.ParameterGroupMustHaveFactory, paramGroup.NameSpan,
				"ParameterGroup requires a TaskFactory attribute"))
		}
		if body != nil {
			v.report(diag.NewError(diag.TaskBodyMustHaveFactory, body.NameSpan,
				"a task body requires a TaskFactory attribute"))
		}
		if taskName != nil && taskName.RawValue != "" {
			v.checkAssemblyTaskResolution(taskName, el)
		}
		return
	}

	if body == nil {
		v.report(diag.NewError(diag.TaskFactoryMustHaveBody, factory.NameSpan,
			fmt.Sprintf("task factory '%s' requires a Task body element", factory.RawValue)))
		return
	}

	if isRoslynFactory(factory, assemblyFile) {
		v.checkRoslynBody(body, paramGroup)
	}
}

// checkTaskName validates the dotted-identifier shape, and nudges
// non-factory tasks toward fully qualified names so assembly resolution
// is unambiguous.
func (v *Validator) checkTaskName(attr *xmltree.Attribute, factory *xmltree.Attribute) {
	name := attr.RawValue
	if name == "" || strings.Contains(name, "$(") {
		return
	}
	for _, part := range strings.Split(name, ".") {
		if !isClrIdent(part) {
			v.report(diag.NewError(diag.InvalidTaskName, attr.ValueSpan,
				fmt.Sprintf("'%s' is not a valid task name", name)))
			return
		}
	}
	if factory == nil && !strings.Contains(name, ".") {
		v.report(diag.New(diag.SevWarning, diag.FullyQualifiedTaskName, attr.ValueSpan,
			fmt.Sprintf("task name '%s' should be fully qualified with its namespace", name)))
	}
}

// checkAssemblyTaskResolution reports, at the declaration site, an
// assembly-backed task that no configured schema knows about. This is
// informational: the assembly itself is never opened.
func (v *Validator) checkAssemblyTaskResolution(taskName *xmltree.Attribute, el *xmltree.Element) {
	name := taskName.RawValue
	if strings.Contains(name, "$(") {
		return
	}
	short := name
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		short = name[dot+1:]
	}
	if v.external.Task(name) == nil && v.external.Task(short) == nil {
		v.report(diag.New(diag.SevInfo, diag.UnresolvedAssemblyTask, taskName.ValueSpan,
			fmt.Sprintf("task '%s' is not known to any configured schema; parameters will be inferred from usage", name)))
	}
}

// isRoslynFactory matches RoslynCodeTaskFactory directly, plus the
// legacy CodeTaskFactory spelling when the assembly file is the
// conventional $(RoslynCodeTaskFactory) property.
func isRoslynFactory(factory, assemblyFile *xmltree.Attribute) bool {
	switch schema.FoldName(factory.RawValue) {
	case "roslyncodetaskfactory":
		return true
	case "codetaskfactory":
		return assemblyFile != nil && assemblyFile.RawValue == "$(RoslynCodeTaskFactory)"
	}
	return false
}

// checkRoslynBody requires a Code child and flags a ParameterGroup that
// the factory will ignore because the code is compiled as a whole class
// or loaded from an external source file.
func (v *Validator) checkRoslynBody(body *xmltree.Element, paramGroup *xmltree.Element) {
	code := body.Child("Code")
	if code == nil {
		v.report(diag.NewError(diag.RoslynCodeTaskFactoryRequiresCodeElement, body.NameSpan,
			"RoslynCodeTaskFactory requires a Code element inside the task body"))
		return
	}
	if paramGroup == nil {
		return
	}
	typeAttr := code.Attr("Type")
	wholeClass := typeAttr != nil && schema.FoldName(typeAttr.RawValue) == "class"
	if code.Attr("Source") != nil || wholeClass {
		v.report(diag.New(diag.SevWarning, diag.RoslynCodeTaskFactoryParameterGroupIgnored, paramGroup.NameSpan,
			"ParameterGroup is ignored when the code is a whole class or an external source file"))
	}
}
