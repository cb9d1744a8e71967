package infer

import (
	"buildcheck/internal/schema"
)

// DocSchema implements schema.Provider over declared/written symbols;
// pure reads do not create provider entries, so a document cannot
// satisfy its own references.

func (d *DocSchema) Property(name string) *schema.Symbol {
	return d.properties[schema.FoldName(name)]
}

func (d *DocSchema) Item(name string) *schema.Symbol {
	return d.items[schema.FoldName(name)]
}

func (d *DocSchema) Metadata(itemName, name string) *schema.Symbol {
	if s := d.metadata[schema.FoldName(itemName)+"\x00"+schema.FoldName(name)]; s != nil {
		return s
	}
	if itemName != "" {
		// Unqualified declarations still satisfy qualified lookups.
		return d.metadata["\x00"+schema.FoldName(name)]
	}
	return nil
}

func (d *DocSchema) Task(name string) *schema.Symbol {
	return d.tasks[schema.FoldName(name)]
}

func (d *DocSchema) Target(name string) *schema.Symbol {
	return d.targets[schema.FoldName(name)]
}

// HasPropertyUsage reports whether the named property has all the given
// usage bits recorded in this document.
func (d *DocSchema) HasPropertyUsage(name string, kind UsageKind) bool {
	return d.propUsage[schema.FoldName(name)]&kind == kind
}

func (d *DocSchema) HasItemUsage(name string, kind UsageKind) bool {
	return d.itemUsage[schema.FoldName(name)]&kind == kind
}

// HasMetadataUsage checks both the item-qualified and the unqualified
// usage records.
func (d *DocSchema) HasMetadataUsage(itemName, name string, kind UsageKind) bool {
	if d.metaUsage[schema.FoldName(itemName)+"\x00"+schema.FoldName(name)]&kind == kind {
		return true
	}
	if itemName != "" {
		return d.metaUsage["\x00"+schema.FoldName(name)]&kind == kind
	}
	return false
}

func (d *DocSchema) HasTaskUsage(name string, kind UsageKind) bool {
	return d.taskUsage[schema.FoldName(name)]&kind == kind
}

func (d *DocSchema) HasTargetUsage(name string, kind UsageKind) bool {
	return d.targetUsage[schema.FoldName(name)]&kind == kind
}
