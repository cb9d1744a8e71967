package validate

import (
	"fmt"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/schema/infer"
	"buildcheck/internal/xmltree"
)

// checkProperty handles one property element: write legality against the
// static schemas, deprecation, unread detection and value validation.
func (v *Validator) checkProperty(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	name := el.Name
	ext := v.external.Property(name)
	if ext != nil {
		switch {
		case ext.Reserved:
			v.report(diag.NewError(diag.PropertyWriteReserved, el.NameSpan,
				fmt.Sprintf("the property '%s' is reserved and cannot be written", ext.Name)))
		case ext.ReadOnly:
			v.report(diag.New(diag.SevWarning, diag.PropertyWriteReadonly, el.NameSpan,
				fmt.Sprintf("the property '%s' is read-only", ext.Name)))
		}
		if ext.Deprecated() {
			v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, el.NameSpan,
				fmt.Sprintf("property '%s' is deprecated: %s", ext.Name, ext.Deprecation)))
		}
	} else if !v.doc.Inferred.HasPropertyUsage(name, infer.UsageRead) {
		v.report(diag.New(diag.SevWarning, diag.UnreadProperty, el.NameSpan,
			fmt.Sprintf("property '%s' is never read", name)))
	}

	sym := v.resolver.Property(name)
	kind := schema.KindUnknown
	if sym != nil {
		kind = sym.Kind
	}
	v.validateElementText(el, kind, sym)
	v.exts.write(v, schema.SymProperty, name, el, nil)
}

// checkItem handles item and item-definition elements. The operation
// attributes are position sensitive: some only make sense inside a
// target, some only at the top level.
func (v *Validator) checkItem(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	name := el.Name
	include := el.Attr("Include")
	update := el.Attr("Update")
	remove := el.Attr("Remove")

	if syntax.Kind == schema.ElemItem {
		if st.inTarget {
			if update != nil {
				v.report(diag.NewError(diag.ItemUpdateNotAllowedInTarget, update.NameSpan,
					"'Update' is not valid on items inside a target"))
			}
		} else {
			for _, attrName := range [...]struct {
				name string
				code diag.Code
			}{
				{"KeepMetadata", diag.KeepMetadataOnlyAllowedInTarget},
				{"RemoveMetadata", diag.RemoveMetadataOnlyAllowedInTarget},
				{"KeepDuplicates", diag.KeepDuplicatesOnlyAllowedInTarget},
			} {
				if a := el.Attr(attrName.name); a != nil {
					v.report(diag.NewError(attrName.code, a.NameSpan,
						fmt.Sprintf("'%s' is only valid on items inside a target", attrName.name)))
				}
			}
			if include == nil && update == nil && remove == nil {
				v.report(diag.NewError(diag.ItemMustHaveInclude, el.NameSpan,
					fmt.Sprintf("item '%s' must have an Include, Update or Remove attribute", name)))
			}
		}
	}

	ext := v.external.Item(name)
	if ext != nil {
		if ext.Deprecated() {
			v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, el.NameSpan,
				fmt.Sprintf("item '%s' is deprecated: %s", ext.Name, ext.Deprecation)))
		}
	} else if !v.doc.Inferred.HasItemUsage(name, infer.UsageRead) {
		v.report(diag.New(diag.SevWarning, diag.UnreadItem, el.NameSpan,
			fmt.Sprintf("item '%s' is never read", name)))
	}

	v.exts.write(v, schema.SymItem, name, el, include)
}

// checkMetadata handles metadata elements; the owning item is the
// enclosing element.
func (v *Validator) checkMetadata(el *xmltree.Element, syntax *schema.ElementSyntax, st visitState) {
	itemName := ""
	if el.Parent != nil {
		itemName = el.Parent.Name
	}
	name := el.Name

	ext := v.external.Metadata(itemName, name)
	if ext != nil {
		if ext.Deprecated() {
			v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, el.NameSpan,
				fmt.Sprintf("metadata '%s' is deprecated: %s", ext.Name, ext.Deprecation)))
		}
	} else if !v.doc.Inferred.HasMetadataUsage(itemName, name, infer.UsageRead) {
		v.report(diag.New(diag.SevWarning, diag.UnreadMetadata, el.NameSpan,
			fmt.Sprintf("metadata '%s' is never read", name)))
	}

	sym := v.resolver.Metadata(itemName, name)
	kind := schema.KindUnknown
	if sym != nil {
		kind = sym.Kind
	}
	v.validateElementText(el, kind, sym)
	v.exts.write(v, schema.SymMetadata, name, el, nil)
}
