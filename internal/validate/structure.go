package validate

import (
	"fmt"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/xmltree"
)

// checkProject flags project files that can never build anything: no
// SDK, no target, no import that could bring targets in. Shared props
// and targets files are exempt, they are fragments by design.
func (v *Validator) checkProject(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	if v.doc.Kind != DocProject {
		return
	}
	if sdk := el.Attr("Sdk"); sdk != nil && sdk.RawValue != "" {
		return
	}
	for _, child := range el.Children {
		switch schema.FoldName(child.Name) {
		case "target", "import", "importgroup", "sdk":
			return
		}
	}
	v.report(diag.New(diag.SevWarning, diag.NoTargets, el.NameSpan,
		"project has no targets and does not import any"))
}

// checkTarget enforces OnError placement: every sibling after the first
// OnError must itself be an OnError, and each offender is reported at
// its own position.
func (v *Validator) checkTarget(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	seenOnError := false
	for _, child := range el.Children {
		if schema.FoldName(child.Name) == "onerror" {
			seenOnError = true
			continue
		}
		if seenOnError {
			v.report(diag.NewError(diag.OnErrorMustBeLastInTarget, child.NameSpan,
				fmt.Sprintf("'%s' cannot follow OnError; OnError must be the last element in a target", child.Name)))
		}
	}
}

// checkChoose enforces Otherwise placement.
func (v *Validator) checkChoose(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	seenOtherwise := false
	for _, child := range el.Children {
		if schema.FoldName(child.Name) == "otherwise" {
			seenOtherwise = true
			continue
		}
		if seenOtherwise {
			v.report(diag.NewError(diag.OtherwiseMustBeLastInChoose, child.NameSpan,
				fmt.Sprintf("'%s' cannot follow Otherwise; Otherwise must be the last element in a Choose", child.Name)))
		}
	}
}

// checkImport ties the SDK-resolution attributes to the Sdk attribute
// they modify.
func (v *Validator) checkImport(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	sdk := el.Attr("Sdk")
	hasSdk := sdk != nil && sdk.RawValue != ""
	if hasSdk {
		return
	}
	if a := el.Attr("Version"); a != nil {
		v.report(diag.NewError(diag.ImportVersionRequiresSdk, a.NameSpan,
			"'Version' is only valid together with the 'Sdk' attribute"))
	}
	if a := el.Attr("MinimumVersion"); a != nil {
		v.report(diag.NewError(diag.ImportMinVersionRequiresSdk, a.NameSpan,
			"'MinimumVersion' is only valid together with the 'Sdk' attribute"))
	}
}
